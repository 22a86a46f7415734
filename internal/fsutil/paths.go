// fsutil/paths.go
package fsutil

import (
	"path/filepath"
)

// JoinPath joins path elements using the OS-specific separator
func JoinPath(elem ...string) string {
	return filepath.Join(elem...)
}
