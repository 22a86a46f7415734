// Package scan discovers the file population to back up from a source volume.
package scan

import (
	"io/fs"

	"github.com/profileport/profileport/internal/fsutil"
	"github.com/profileport/profileport/internal/logger"
	"github.com/profileport/profileport/internal/users"
)

// UserFiles enumerates every regular file under the named users' profile
// trees. Symlinks and other irregular entries are skipped; unreadable
// subtrees are logged and skipped rather than failing the scan.
func UserFiles(volumeRoot string, names []string) ([]string, error) {
	var paths []string

	for _, name := range names {
		profile := fsutil.JoinPath(users.ProfilesDir(volumeRoot), name)
		if !fsutil.DirExists(profile) {
			logger.LogWarn("User profile not found on source volume", map[string]interface{}{
				"user": name,
				"path": profile,
			})
			continue
		}

		err := fsutil.WalkDir(profile, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				logger.LogWarn("Skipping unreadable entry", map[string]interface{}{
					"path": path,
				})
				if info != nil && info.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if info.Mode().IsRegular() {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return paths, nil
}

// AllUserFiles enumerates regular files for every user present on the volume
func AllUserFiles(volumeRoot string) ([]string, error) {
	names, err := users.List(volumeRoot)
	if err != nil {
		return nil, err
	}
	return UserFiles(volumeRoot, names)
}
