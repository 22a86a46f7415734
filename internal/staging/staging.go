// Package staging owns the on-disk package layout: a staged root holding
// manifest.json plus a files/ tree keyed by symbolic path. The literal token
// string is used as a path component, so the layout is independent of any
// live volume.
package staging

import (
	"fmt"
	"path/filepath"

	commonerrors "github.com/profileport/profileport/internal/errors"
	"github.com/profileport/profileport/internal/folders"
	"github.com/profileport/profileport/internal/fsutil"
	"github.com/profileport/profileport/internal/logger"
	"github.com/profileport/profileport/internal/manifest"
)

const (
	// ManifestName is the manifest file name inside a staged root
	ManifestName = "manifest.json"

	// FilesDirName is the directory inside a staged root holding content
	FilesDirName = "files"
)

// ManifestPath returns the manifest location inside a staged root
func ManifestPath(stagedRoot string) string {
	return filepath.Join(stagedRoot, ManifestName)
}

// FilesDir returns the content directory inside a staged root
func FilesDir(stagedRoot string) string {
	return filepath.Join(stagedRoot, FilesDirName)
}

// FilePath returns the staged location of a record's content. The symbolic
// path is used verbatim, token included.
func FilePath(stagedRoot, symbolic string) string {
	return filepath.Join(FilesDir(stagedRoot), filepath.FromSlash(symbolic))
}

// CheckLayout verifies that a directory has the staged-package shape. A
// missing manifest is ErrManifestMissing; a missing files tree is
// ErrStagingLayoutInvalid. An empty files tree is legal; an empty manifest
// describes one.
func CheckLayout(stagedRoot string) error {
	if !fsutil.DirExists(stagedRoot) {
		return fmt.Errorf("%w: %s", commonerrors.ErrStagingLayoutInvalid, stagedRoot)
	}
	if !fsutil.FileExists(ManifestPath(stagedRoot)) {
		return fmt.Errorf("%w: %s", commonerrors.ErrManifestMissing, ManifestPath(stagedRoot))
	}
	if !fsutil.DirExists(FilesDir(stagedRoot)) {
		return fmt.Errorf("%w: missing %s directory", commonerrors.ErrStagingLayoutInvalid, FilesDirName)
	}
	return nil
}

// Materialize lays out a staged root from a manifest and its source volume:
// each record's content is copied under files/<symbolic path> and the
// manifest is written alongside. Records whose source vanished are logged and
// skipped; the staged tree is as complete as the volume allows.
func Materialize(m *manifest.Manifest, sourceRoot, stagedRoot string) error {
	if err := fsutil.CreateDirIfNotExists(FilesDir(stagedRoot)); err != nil {
		return fmt.Errorf("error creating staged layout: %w", err)
	}

	for _, rec := range m.Records {
		src, err := folders.Encode(rec.Path, sourceRoot, rec.User)
		if err != nil {
			logger.LogError("Record cannot be located on the source volume", err, map[string]interface{}{
				"path": rec.Path,
			})
			continue
		}

		if !fsutil.FileExists(src) {
			logger.LogWarn("Source file vanished before staging", map[string]interface{}{
				"path": src,
			})
			continue
		}

		if err := fsutil.CopyFile(src, FilePath(stagedRoot, rec.Path)); err != nil {
			return fmt.Errorf("error staging %s: %w", rec.Path, err)
		}
	}

	return m.Save(ManifestPath(stagedRoot))
}
