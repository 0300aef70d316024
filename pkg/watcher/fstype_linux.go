//go:build linux

package watcher

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Filesystem magic numbers from statfs(2).
const (
	magicNFS  = 0x6969
	magicSMB  = 0x517B
	magicSMB2 = 0xFE534D42
	magicCIFS = 0xFF534D42
	magicFUSE = 0x65735546
)

// DetectFilesystemType classifies the filesystem holding path. Paths that do
// not exist yet are classified by their nearest existing parent.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	p := path
	for {
		if _, err := os.Stat(p); err == nil {
			break
		}
		parent := filepath.Dir(p)
		if parent == p {
			return FSTypeUnknown
		}
		p = parent
	}

	var st unix.Statfs_t
	if err := unix.Statfs(p, &st); err != nil {
		return FSTypeUnknown
	}
	switch uint32(st.Type) {
	case magicNFS:
		return FSTypeNFS
	case magicSMB, magicSMB2, magicCIFS:
		return FSTypeSMB
	case magicFUSE:
		// sshfs mounts are FUSE mounts; statfs cannot tell them apart.
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}
