package fsutil

import (
	"syscall"
)

// GetFreeDiskSpace reports the bytes available to unprivileged writes on the
// volume holding path
func GetFreeDiskSpace(path string) (uint64, error) {
	mu := GetPathMutex(path)
	mu.Lock()
	defer mu.Unlock()

	var fs syscall.Statfs_t
	if err := syscall.Statfs(path, &fs); err != nil {
		return 0, err
	}
	return fs.Bavail * uint64(fs.Bsize), nil
}

// HasEnoughDiskSpace reports whether the volume holding path can absorb
// requiredBytes of new content. The restore preflight consults this before
// any record is copied.
func HasEnoughDiskSpace(path string, requiredBytes uint64) (bool, error) {
	free, err := GetFreeDiskSpace(path)
	if err != nil {
		return false, err
	}
	return free >= requiredBytes, nil
}
