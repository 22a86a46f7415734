// fsutil/directory.go
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DirEntry represents an entry in a directory (file or subdirectory)
type DirEntry struct {
	Path     string
	Name     string
	IsDir    bool
	Size     int64
	Mode     os.FileMode
	ModTime  time.Time
	FullPath string
}

// DirExists checks if a directory exists
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// CreateDir creates a directory if it doesn't exist
func CreateDir(path string, perm os.FileMode) error {
	if DirExists(path) {
		return nil // Directory already exists
	}
	return os.MkdirAll(path, perm)
}

// CreateDirIfNotExists creates a directory with standard permissions if it doesn't exist
func CreateDirIfNotExists(path string) error {
	return CreateDir(path, 0755)
}

// DeleteDirRecursive removes a directory and all its contents
func DeleteDirRecursive(path string) error {
	if !DirExists(path) {
		return nil // Directory doesn't exist, nothing to do
	}
	return os.RemoveAll(path)
}

// ListDir returns a list of all files and directories in a directory (non-recursive)
func ListDir(path string) ([]DirEntry, error) {
	if !DirExists(path) {
		return nil, fmt.Errorf("directory does not exist: %s", path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	result := make([]DirEntry, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}

		fullPath := filepath.Join(path, entry.Name())
		result = append(result, DirEntry{
			Path:     path,
			Name:     entry.Name(),
			IsDir:    entry.IsDir(),
			Size:     info.Size(),
			Mode:     info.Mode(),
			ModTime:  info.ModTime(),
			FullPath: fullPath,
		})
	}

	return result, nil
}

// ListDirs returns a list of subdirectories in a directory (non-recursive, no files)
func ListDirs(path string) ([]DirEntry, error) {
	entries, err := ListDir(path)
	if err != nil {
		return nil, err
	}

	dirs := make([]DirEntry, 0)
	for _, entry := range entries {
		if entry.IsDir {
			dirs = append(dirs, entry)
		}
	}

	return dirs, nil
}

// WalkDir walks a directory recursively and calls a function for each entry
func WalkDir(root string, fn func(path string, info fs.FileInfo, err error) error) error {
	return filepath.Walk(root, fn)
}

// CreateTempDirIn creates a temporary directory with a prefix in a specific directory
func CreateTempDirIn(dir, prefix string) (string, error) {
	if !DirExists(dir) {
		if err := CreateDirIfNotExists(dir); err != nil {
			return "", err
		}
	}

	return os.MkdirTemp(dir, prefix)
}
