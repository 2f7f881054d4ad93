package scanner_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/temirov/ctxstudio/internal/scanner"
	"github.com/temirov/ctxstudio/internal/types"
)

const (
	plainFileName       = "plain.txt"
	nestedDirectoryName = "nested"
	nestedFileName      = "inner.go"
	excludedDirName     = "node_modules"
	cycleLinkName       = "loop"
)

// TestNewScannerMissingRoot verifies that a nonexistent root fails eagerly.
func TestNewScannerMissingRoot(testingHandle *testing.T) {
	missingPath := filepath.Join(testingHandle.TempDir(), "does-not-exist")
	_, constructionError := scanner.NewScanner(missingPath, nil, zap.NewNop())
	if constructionError == nil {
		testingHandle.Fatalf("expected error for missing root")
	}
	var invalidRoot *scanner.InvalidRootError
	if !errors.As(constructionError, &invalidRoot) {
		testingHandle.Fatalf("expected *InvalidRootError, got %T", constructionError)
	}
}

// TestNewScannerFileRoot verifies that a file root fails eagerly.
func TestNewScannerFileRoot(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	filePath := filepath.Join(rootDirectory, plainFileName)
	if writeError := os.WriteFile(filePath, []byte("x"), 0o644); writeError != nil {
		testingHandle.Fatalf("writing file: %v", writeError)
	}
	_, constructionError := scanner.NewScanner(filePath, nil, zap.NewNop())
	var invalidRoot *scanner.InvalidRootError
	if !errors.As(constructionError, &invalidRoot) {
		testingHandle.Fatalf("expected *InvalidRootError for file root, got %v", constructionError)
	}
}

// TestScanNestedStructure verifies that directories and files are collected
// with their kinds and absolute paths.
func TestScanNestedStructure(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	nestedDirectoryPath := filepath.Join(rootDirectory, nestedDirectoryName)
	if makeDirError := os.MkdirAll(nestedDirectoryPath, 0o755); makeDirError != nil {
		testingHandle.Fatalf("mkdir: %v", makeDirError)
	}
	if writeError := os.WriteFile(filepath.Join(rootDirectory, plainFileName), []byte("hello"), 0o644); writeError != nil {
		testingHandle.Fatalf("write: %v", writeError)
	}
	if writeError := os.WriteFile(filepath.Join(nestedDirectoryPath, nestedFileName), []byte("package inner"), 0o644); writeError != nil {
		testingHandle.Fatalf("write nested: %v", writeError)
	}

	directoryScanner, constructionError := scanner.NewScanner(rootDirectory, nil, zap.NewNop())
	if constructionError != nil {
		testingHandle.Fatalf("NewScanner: %v", constructionError)
	}
	rootNode := directoryScanner.Scan()
	if rootNode.Kind != types.NodeKindDirectory {
		testingHandle.Fatalf("root kind = %s, want directory", rootNode.Kind)
	}
	if len(rootNode.Children) != 2 {
		testingHandle.Fatalf("expected 2 children, got %d", len(rootNode.Children))
	}
	childrenByName := map[string]*types.TreeNode{}
	for _, childNode := range rootNode.Children {
		childrenByName[childNode.Name] = childNode
	}
	fileNode, fileFound := childrenByName[plainFileName]
	if !fileFound || fileNode.Kind != types.NodeKindFile {
		testingHandle.Fatalf("missing file node %s", plainFileName)
	}
	directoryNode, directoryFound := childrenByName[nestedDirectoryName]
	if !directoryFound || directoryNode.Kind != types.NodeKindDirectory {
		testingHandle.Fatalf("missing directory node %s", nestedDirectoryName)
	}
	if len(directoryNode.Children) != 1 || directoryNode.Children[0].Name != nestedFileName {
		testingHandle.Fatalf("unexpected nested children: %+v", directoryNode.Children)
	}
	expectedNestedPath := filepath.Join(nestedDirectoryPath, nestedFileName)
	if directoryNode.Children[0].Path != expectedNestedPath {
		testingHandle.Fatalf("nested path = %s, want %s", directoryNode.Children[0].Path, expectedNestedPath)
	}
}

// TestScanFiltersExcludedDirectories verifies that excluded directory names
// produce no node and no recursion.
func TestScanFiltersExcludedDirectories(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	excludedPath := filepath.Join(rootDirectory, excludedDirName)
	if makeDirError := os.MkdirAll(excludedPath, 0o755); makeDirError != nil {
		testingHandle.Fatalf("mkdir excluded: %v", makeDirError)
	}
	if writeError := os.WriteFile(filepath.Join(excludedPath, plainFileName), []byte("x"), 0o644); writeError != nil {
		testingHandle.Fatalf("write inside excluded: %v", writeError)
	}
	if writeError := os.WriteFile(filepath.Join(rootDirectory, plainFileName), []byte("x"), 0o644); writeError != nil {
		testingHandle.Fatalf("write: %v", writeError)
	}

	directoryScanner, constructionError := scanner.NewScanner(rootDirectory, []string{excludedDirName}, zap.NewNop())
	if constructionError != nil {
		testingHandle.Fatalf("NewScanner: %v", constructionError)
	}
	rootNode := directoryScanner.Scan()
	if len(rootNode.Children) != 1 || rootNode.Children[0].Name != plainFileName {
		testingHandle.Fatalf("excluded directory leaked into scan: %+v", rootNode.Children)
	}
}

// TestScanSymlinkCycle verifies that a symlink back to an ancestor terminates
// traversal with the cyclic branch scanned as empty.
func TestScanSymlinkCycle(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	if writeError := os.WriteFile(filepath.Join(rootDirectory, plainFileName), []byte("x"), 0o644); writeError != nil {
		testingHandle.Fatalf("write: %v", writeError)
	}
	cycleLinkPath := filepath.Join(rootDirectory, cycleLinkName)
	if symlinkError := os.Symlink(rootDirectory, cycleLinkPath); symlinkError != nil {
		testingHandle.Skipf("symlinks unavailable: %v", symlinkError)
	}

	directoryScanner, constructionError := scanner.NewScanner(rootDirectory, nil, zap.NewNop())
	if constructionError != nil {
		testingHandle.Fatalf("NewScanner: %v", constructionError)
	}
	rootNode := directoryScanner.Scan()

	var cycleNode *types.TreeNode
	for _, childNode := range rootNode.Children {
		if childNode.Name == cycleLinkName {
			cycleNode = childNode
		}
	}
	if cycleNode == nil {
		testingHandle.Fatalf("cycle link missing from scan: %+v", rootNode.Children)
	}
	if cycleNode.Kind != types.NodeKindDirectory {
		testingHandle.Fatalf("cycle link kind = %s, want directory", cycleNode.Kind)
	}
	if len(cycleNode.Children) != 0 {
		testingHandle.Fatalf("cyclic branch should scan as empty, got %d children", len(cycleNode.Children))
	}
}

// TestScanUnreadableDirectory verifies that a permission failure yields a
// partial tree instead of aborting the scan.
func TestScanUnreadableDirectory(testingHandle *testing.T) {
	if os.Geteuid() == 0 {
		testingHandle.Skip("permission checks are bypassed when running as root")
	}
	rootDirectory := testingHandle.TempDir()
	lockedDirectoryPath := filepath.Join(rootDirectory, nestedDirectoryName)
	if makeDirError := os.MkdirAll(lockedDirectoryPath, 0o755); makeDirError != nil {
		testingHandle.Fatalf("mkdir: %v", makeDirError)
	}
	if writeError := os.WriteFile(filepath.Join(lockedDirectoryPath, nestedFileName), []byte("x"), 0o644); writeError != nil {
		testingHandle.Fatalf("write: %v", writeError)
	}
	if writeError := os.WriteFile(filepath.Join(rootDirectory, plainFileName), []byte("x"), 0o644); writeError != nil {
		testingHandle.Fatalf("write: %v", writeError)
	}
	if chmodError := os.Chmod(lockedDirectoryPath, 0o000); chmodError != nil {
		testingHandle.Fatalf("chmod: %v", chmodError)
	}
	testingHandle.Cleanup(func() {
		_ = os.Chmod(lockedDirectoryPath, 0o755)
	})

	directoryScanner, constructionError := scanner.NewScanner(rootDirectory, nil, zap.NewNop())
	if constructionError != nil {
		testingHandle.Fatalf("NewScanner: %v", constructionError)
	}
	rootNode := directoryScanner.Scan()
	if len(rootNode.Children) != 2 {
		testingHandle.Fatalf("expected both entries in partial tree, got %d", len(rootNode.Children))
	}
	for _, childNode := range rootNode.Children {
		if childNode.Name == nestedDirectoryName && len(childNode.Children) != 0 {
			testingHandle.Fatalf("unreadable directory should stay empty, got %d children", len(childNode.Children))
		}
	}
}
