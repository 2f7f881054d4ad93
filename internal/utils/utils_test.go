package utils_test

import (
	"reflect"
	"testing"

	"github.com/temirov/ctxstudio/internal/utils"
)

// TestDeduplicateNames verifies order-preserving duplicate removal.
func TestDeduplicateNames(testingHandle *testing.T) {
	testCases := []struct {
		name          string
		inputNames    []string
		expectedNames []string
	}{
		{"nil input", nil, nil},
		{"no duplicates", []string{".git", "venv"}, []string{".git", "venv"}},
		{"duplicates collapse keeping first", []string{"node_modules", ".git", "node_modules", "venv", ".git"}, []string{"node_modules", ".git", "venv"}},
		{"empty entries dropped", []string{"", ".git", ""}, []string{".git"}},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subtestHandle *testing.T) {
			actualNames := utils.DeduplicateNames(testCase.inputNames)
			if !reflect.DeepEqual(actualNames, testCase.expectedNames) {
				subtestHandle.Fatalf("DeduplicateNames(%v) = %v, want %v", testCase.inputNames, actualNames, testCase.expectedNames)
			}
		})
	}
}
