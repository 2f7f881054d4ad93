//go:build !unix

package scanner

import (
	"path/filepath"
)

// fileIdentity uniquely identifies a filesystem object. Platforms without
// stat inode data fall back to resolved real path equality.
type fileIdentity struct {
	device   uint64
	inode    uint64
	realPath string
}

// identityForPath resolves the filesystem identity of path by resolving
// symlinks to the real path. The boolean is false when resolution fails;
// the caller proceeds without cycle protection for that branch.
func identityForPath(path string) (fileIdentity, bool) {
	resolvedPath, resolveError := filepath.EvalSymlinks(path)
	if resolveError != nil {
		return fileIdentity{}, false
	}
	return fileIdentity{realPath: resolvedPath}, true
}
