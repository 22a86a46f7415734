// Package users implements the user-resolution policy: which user, if any, a
// concrete path belongs to on a given volume. The reference layout is
// <root>/Users/<name>/...
package users

import (
	"path/filepath"
	"strings"

	"github.com/profileport/profileport/internal/fsutil"
)

// profilesDirName is the directory under the volume root holding user profiles
const profilesDirName = "Users"

// Resolver decides the owning user for a concrete path on a volume. ok is
// false when the path belongs to no user (machine-scoped content).
type Resolver func(path, volumeRoot string) (user string, ok bool)

// Resolve is the reference Resolver for the <root>/Users/<name> layout
func Resolve(path, volumeRoot string) (string, bool) {
	profiles := filepath.Join(filepath.Clean(volumeRoot), profilesDirName)
	prefix := profiles + string(filepath.Separator)

	cleaned := filepath.Clean(path)
	if !strings.HasPrefix(cleaned, prefix) {
		return "", false
	}

	rest := cleaned[len(prefix):]
	name := rest
	if i := strings.IndexRune(rest, filepath.Separator); i >= 0 {
		name = rest[:i]
	}
	if name == "" || name == "Public" {
		return "", false
	}
	return name, true
}

// ProfilesDir returns the directory holding user profiles on a volume
func ProfilesDir(volumeRoot string) string {
	return filepath.Join(volumeRoot, profilesDirName)
}

// List enumerates user names present on a volume. The Public profile is
// machine-scoped and excluded. A volume without a profiles directory simply
// has no users.
func List(volumeRoot string) ([]string, error) {
	if !fsutil.DirExists(ProfilesDir(volumeRoot)) {
		return nil, nil
	}

	dirs, err := fsutil.ListDirs(ProfilesDir(volumeRoot))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d.Name == "Public" {
			continue
		}
		names = append(names, d.Name)
	}
	return names, nil
}
