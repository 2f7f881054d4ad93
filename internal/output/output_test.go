package output_test

import (
	"encoding/json"
	"testing"

	"github.com/temirov/ctxstudio/internal/output"
	"github.com/temirov/ctxstudio/internal/selection"
	"github.com/temirov/ctxstudio/internal/types"
)

func fixtureSelectionTree() *selection.Tree {
	return selection.NewTree(&types.TreeNode{
		Name: "project", Path: "/project", Kind: types.NodeKindDirectory,
		Children: []*types.TreeNode{
			{Name: "readme.md", Path: "/project/readme.md", Kind: types.NodeKindFile},
			{Name: "src", Path: "/project/src", Kind: types.NodeKindDirectory,
				Children: []*types.TreeNode{
					{Name: "main.go", Path: "/project/src/main.go", Kind: types.NodeKindFile},
				},
			},
		},
	})
}

// TestRenderTreeRaw verifies the box-drawing listing byte for byte.
func TestRenderTreeRaw(testingHandle *testing.T) {
	renderedText := output.RenderTreeRaw(fixtureSelectionTree())
	expectedText := "--- Directory Tree: /project ---\n" +
		"├── src/\n" +
		"│   └── main.go\n" +
		"└── readme.md\n"
	if renderedText != expectedText {
		testingHandle.Fatalf("rendered tree mismatch:\n--- got ---\n%s--- want ---\n%s", renderedText, expectedText)
	}
}

// TestRenderTreeJSON verifies the JSON shape and nesting.
func TestRenderTreeJSON(testingHandle *testing.T) {
	renderedJSON, renderError := output.RenderTreeJSON(fixtureSelectionTree())
	if renderError != nil {
		testingHandle.Fatalf("RenderTreeJSON: %v", renderError)
	}
	var decoded struct {
		Name     string `json:"name"`
		Path     string `json:"path"`
		Type     string `json:"type"`
		Children []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"children"`
	}
	if unmarshalError := json.Unmarshal([]byte(renderedJSON), &decoded); unmarshalError != nil {
		testingHandle.Fatalf("decode rendered JSON: %v", unmarshalError)
	}
	if decoded.Name != "project" || decoded.Type != "directory" || decoded.Path != "/project" {
		testingHandle.Fatalf("unexpected root node: %+v", decoded)
	}
	if len(decoded.Children) != 2 || decoded.Children[0].Name != "src" || decoded.Children[0].Type != "directory" {
		testingHandle.Fatalf("unexpected children: %+v", decoded.Children)
	}
}

// TestRenderBuildJSON verifies the build result field names and values.
func TestRenderBuildJSON(testingHandle *testing.T) {
	renderedJSON, renderError := output.RenderBuildJSON(types.ContextDocument{
		Text:              "document body",
		EstimatedTokens:   3,
		SelectedFileCount: 2,
	})
	if renderError != nil {
		testingHandle.Fatalf("RenderBuildJSON: %v", renderError)
	}
	var decoded map[string]any
	if unmarshalError := json.Unmarshal([]byte(renderedJSON), &decoded); unmarshalError != nil {
		testingHandle.Fatalf("decode rendered JSON: %v", unmarshalError)
	}
	if decoded["document"] != "document body" {
		testingHandle.Fatalf("document field = %v", decoded["document"])
	}
	if decoded["estimatedTokens"] != float64(3) {
		testingHandle.Fatalf("estimatedTokens field = %v", decoded["estimatedTokens"])
	}
	if decoded["selectedFiles"] != float64(2) {
		testingHandle.Fatalf("selectedFiles field = %v", decoded["selectedFiles"])
	}
}
