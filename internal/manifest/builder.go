package manifest

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/profileport/profileport/internal/cryptoutil"
	"github.com/profileport/profileport/internal/folders"
	"github.com/profileport/profileport/internal/logger"
	"github.com/profileport/profileport/internal/users"
)

// Build produces a manifest from discovered concrete paths on a source
// volume. Inputs are deduplicated and sorted; each surviving path is owner-
// resolved, tokenized, and measured. hasher may be nil to build a size-only
// manifest.
//
// Per-path failures never abort the build: a path that vanished between
// selection and measurement is skipped with a warning, and a hash failure
// leaves the record's hash empty, so size-only verification still works.
// Partial manifests are expected output, not an error.
func Build(paths []string, volumeRoot string, resolve users.Resolver, hasher cryptoutil.Hasher) *Manifest {
	m := &Manifest{}

	for _, path := range dedupeSorted(paths) {
		info, err := os.Stat(path)
		if err != nil {
			logger.LogWarn("Skipping vanished file", map[string]interface{}{
				"path": path,
			})
			continue
		}
		if info.IsDir() {
			continue
		}

		user := ""
		if resolve != nil {
			user, _ = resolve(path, volumeRoot)
		}

		symbolic := folders.Decode(path, volumeRoot, user)
		if symbolic == path {
			logger.LogDebug("Path is not portable, recording as-is", map[string]interface{}{
				"path": path,
			})
		}

		origin, err := filepath.Rel(volumeRoot, path)
		if err != nil {
			origin = path
		}

		hash, algo := "", ""
		if hasher != nil {
			hash, err = hasher.HashFile(path)
			if err != nil {
				logger.LogWarn("Hashing failed, record will verify by size only", map[string]interface{}{
					"path": path,
				})
				hash = ""
			} else {
				algo = string(hasher.Algorithm())
			}
		}

		m.Records = append(m.Records, Record{
			Path:    filepath.ToSlash(symbolic),
			User:    user,
			Size:    info.Size(),
			ModTime: info.ModTime().UTC(),
			Hash:    hash,
			Algo:    algo,
			Origin:  filepath.ToSlash(origin),
		})
	}

	return m
}

// dedupeSorted returns the input paths sorted with duplicates removed
func dedupeSorted(paths []string) []string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	var out []string
	for i, p := range sorted {
		if i == 0 || p != sorted[i-1] {
			out = append(out, p)
		}
	}
	return out
}
