// Package scanner walks a root directory into an ownership-free tree
// description, filtering excluded directory names and guarding against
// symlink cycles. A scan is total from the caller's perspective: every
// root, however hostile, yields some tree.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/ctxstudio/internal/types"
)

const (
	reasonPathMissing      = "path does not exist"
	reasonPathNotDirectory = "path is not a directory"
)

// InvalidRootError reports that a requested scan root is missing or is not a directory.
type InvalidRootError struct {
	Path   string
	Reason string
}

// Error returns the formatted error message.
func (invalidRoot *InvalidRootError) Error() string {
	return fmt.Sprintf("invalid root %s: %s", invalidRoot.Path, invalidRoot.Reason)
}

// Scanner traverses a single root directory. Construct one per load; a
// Scanner holds no state between calls to Scan.
type Scanner struct {
	rootPath               string
	excludedDirectoryNames map[string]struct{}
	logger                 *zap.Logger
}

// NewScanner validates the root path eagerly and returns a Scanner for it.
// It fails with *InvalidRootError when the root does not exist or is not a
// directory; no traversal happens before that check.
func NewScanner(rootPath string, excludedDirectoryNames []string, logger *zap.Logger) (*Scanner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	absoluteRootPath, absoluteError := filepath.Abs(rootPath)
	if absoluteError != nil {
		return nil, &InvalidRootError{Path: rootPath, Reason: absoluteError.Error()}
	}
	rootInformation, statError := os.Stat(absoluteRootPath)
	if statError != nil {
		logger.Error("scan root does not exist", zap.String("path", absoluteRootPath))
		return nil, &InvalidRootError{Path: absoluteRootPath, Reason: reasonPathMissing}
	}
	if !rootInformation.IsDir() {
		logger.Error("scan root is not a directory", zap.String("path", absoluteRootPath))
		return nil, &InvalidRootError{Path: absoluteRootPath, Reason: reasonPathNotDirectory}
	}

	excludedSet := make(map[string]struct{}, len(excludedDirectoryNames))
	for _, directoryName := range excludedDirectoryNames {
		excludedSet[directoryName] = struct{}{}
	}
	return &Scanner{
		rootPath:               absoluteRootPath,
		excludedDirectoryNames: excludedSet,
		logger:                 logger,
	}, nil
}

// RootPath returns the resolved absolute root the scanner operates on.
func (directoryScanner *Scanner) RootPath() string {
	return directoryScanner.rootPath
}

// Scan performs a depth-first traversal of the root and returns its tree.
// It never fails: per-entry and per-directory errors are logged and skipped,
// producing a partial tree, and an unexpected panic anywhere in the traversal
// is recovered at this boundary, yielding an empty root.
func (directoryScanner *Scanner) Scan() (rootNode *types.TreeNode) {
	rootNode = &types.TreeNode{
		Name: filepath.Base(directoryScanner.rootPath),
		Path: directoryScanner.rootPath,
		Kind: types.NodeKindDirectory,
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			directoryScanner.logger.Error("scan aborted by unexpected failure",
				zap.String("path", directoryScanner.rootPath),
				zap.Any("failure", recovered))
			rootNode.Children = nil
		}
	}()

	directoryScanner.logger.Info("starting scan", zap.String("path", directoryScanner.rootPath))
	ancestorIdentities := make(map[fileIdentity]struct{})
	directoryScanner.scanDirectory(rootNode, ancestorIdentities)
	return rootNode
}

// scanDirectory fills directoryNode.Children with the enumerable entries of
// its path. The ancestorIdentities set holds the filesystem identities of the
// current root-to-node path only; a revisited identity terminates the branch
// as an empty directory.
func (directoryScanner *Scanner) scanDirectory(directoryNode *types.TreeNode, ancestorIdentities map[fileIdentity]struct{}) {
	identity, identityKnown := identityForPath(directoryNode.Path)
	if identityKnown {
		if _, alreadyOnPath := ancestorIdentities[identity]; alreadyOnPath {
			directoryScanner.logger.Warn("symlink cycle detected, skipping", zap.String("path", directoryNode.Path))
			return
		}
		ancestorIdentities[identity] = struct{}{}
		defer delete(ancestorIdentities, identity)
	}

	directoryEntries, readDirectoryError := os.ReadDir(directoryNode.Path)
	if readDirectoryError != nil {
		// Partial result, not failure: the directory simply stays empty.
		directoryScanner.logger.Warn("unable to read directory",
			zap.String("path", directoryNode.Path), zap.Error(readDirectoryError))
		if len(directoryEntries) == 0 {
			return
		}
	}

	for _, directoryEntry := range directoryEntries {
		childPath := filepath.Join(directoryNode.Path, directoryEntry.Name())
		childInformation, statError := os.Stat(childPath)
		if statError != nil {
			directoryScanner.logger.Warn("unable to inspect entry",
				zap.String("path", childPath), zap.Error(statError))
			continue
		}

		switch {
		case childInformation.IsDir():
			if _, excluded := directoryScanner.excludedDirectoryNames[directoryEntry.Name()]; excluded {
				directoryScanner.logger.Debug("skipping excluded directory", zap.String("name", directoryEntry.Name()))
				continue
			}
			childNode := &types.TreeNode{
				Name: directoryEntry.Name(),
				Path: childPath,
				Kind: types.NodeKindDirectory,
			}
			directoryScanner.scanDirectory(childNode, ancestorIdentities)
			directoryNode.Children = append(directoryNode.Children, childNode)
		case childInformation.Mode().IsRegular():
			directoryNode.Children = append(directoryNode.Children, &types.TreeNode{
				Name: directoryEntry.Name(),
				Path: childPath,
				Kind: types.NodeKindFile,
			})
		default:
			directoryScanner.logger.Debug("skipping irregular entry", zap.String("path", childPath))
		}
	}
}
