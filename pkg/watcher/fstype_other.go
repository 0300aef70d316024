//go:build !linux

package watcher

// DetectFilesystemType treats every non-empty path as local on platforms
// without statfs magic numbers, so fsnotify is always tried there.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	return FSTypeLocal
}
