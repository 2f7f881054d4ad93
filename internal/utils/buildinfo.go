// Package utils holds small cross-cutting helpers: the application logger,
// version resolution, and shared constants.
package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const unknownVersion = "unknown"

// GetApplicationVersion resolves the version string reported by --version.
// A module-aware build carries the version in its build info; development
// builds fall back to git describe against the enclosing repository, and
// "unknown" covers everything else.
func GetApplicationVersion() string {
	buildInformation, buildInformationAvailable := debug.ReadBuildInfo()
	if buildInformationAvailable && buildInformation.Main.Version != "" && buildInformation.Main.Version != "(devel)" {
		return buildInformation.Main.Version
	}

	repositoryPath, repositoryLookupError := locateEnclosingRepository(".")
	if repositoryLookupError == nil && repositoryPath != "" {
		if described, describeError := describeRepository(repositoryPath, "--tags", "--exact-match"); describeError == nil {
			return described
		}
		if described, describeError := describeRepository(repositoryPath, "--tags", "--long", "--dirty"); describeError == nil {
			return described
		}
	}

	return unknownVersion
}

// describeRepository runs git describe with the given arguments inside
// repositoryPath and returns the trimmed output.
func describeRepository(repositoryPath string, describeArguments ...string) (string, error) {
	// #nosec G204
	describeCommand := exec.Command("git", append([]string{"describe"}, describeArguments...)...)
	describeCommand.Dir = repositoryPath
	describeOutput, describeError := describeCommand.Output()
	if describeError != nil {
		return "", describeError
	}
	described := strings.TrimSpace(string(describeOutput))
	if described == "" {
		return "", fmt.Errorf("git describe produced no output in %s", repositoryPath)
	}
	return described, nil
}

// locateEnclosingRepository walks upward from startDirectory to the directory
// that contains a .git folder.
func locateEnclosingRepository(startDirectory string) (string, error) {
	absoluteStartDirectory, absoluteError := filepath.Abs(startDirectory)
	if absoluteError != nil {
		return "", fmt.Errorf("resolve absolute path for %s: %w", startDirectory, absoluteError)
	}

	for currentDirectory := absoluteStartDirectory; ; {
		markerInformation, markerStatError := os.Stat(filepath.Join(currentDirectory, GitDirectoryName))
		if markerStatError == nil && markerInformation.IsDir() {
			return currentDirectory, nil
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", fmt.Errorf("no %s directory found in or above %s", GitDirectoryName, absoluteStartDirectory)
		}
		currentDirectory = parentDirectory
	}
}
