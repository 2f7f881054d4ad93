//go:build unix

package scanner

import (
	"os"
	"path/filepath"
	"syscall"
)

// fileIdentity uniquely identifies a filesystem object. On Unix it is the
// device and inode pair; when stat data is unavailable the resolved real
// path serves as a substitute.
type fileIdentity struct {
	device   uint64
	inode    uint64
	realPath string
}

// identityForPath resolves the filesystem identity of path, following
// symlinks. The boolean is false when no identity could be determined; the
// caller proceeds without cycle protection for that branch rather than
// failing the scan.
func identityForPath(path string) (fileIdentity, bool) {
	fileInformation, statError := os.Stat(path)
	if statError == nil {
		if rawStat, ok := fileInformation.Sys().(*syscall.Stat_t); ok {
			return fileIdentity{device: uint64(rawStat.Dev), inode: uint64(rawStat.Ino)}, true
		}
	}
	resolvedPath, resolveError := filepath.EvalSymlinks(path)
	if resolveError != nil {
		return fileIdentity{}, false
	}
	return fileIdentity{realPath: resolvedPath}, true
}
