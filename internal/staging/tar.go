package staging

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	commonerrors "github.com/profileport/profileport/internal/errors"
)

// Package writes a staged root into an uncompressed TAR archive. Entry names
// are relative to the staged root, so extraction reproduces the layout under
// any directory.
func Package(stagedRoot, dst string) error {
	if err := CheckLayout(stagedRoot); err != nil {
		return err
	}

	outFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer outFile.Close()

	tw := tar.NewWriter(outFile)
	defer tw.Close()

	return filepath.Walk(stagedRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(stagedRoot, path)
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		hdr, err := tar.FileInfoHeader(info, relPath)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(relPath)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err = io.Copy(tw, file)
		return err
	})
}

// Extract unpacks a package archive into a destination directory, restoring
// the staged layout and each entry's modification time. Entries that would
// escape the destination are rejected.
func Extract(src, dst string) error {
	file, err := os.Open(src)
	if err != nil {
		return err
	}
	defer file.Close()

	tr := tar.NewReader(file)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %s", commonerrors.ErrInvalidArchive, err.Error())
		}

		name := filepath.Clean(filepath.FromSlash(hdr.Name))
		if filepath.IsAbs(name) || name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
			return fmt.Errorf("%w: entry escapes destination: %s", commonerrors.ErrInvalidArchive, hdr.Name)
		}

		fpath := filepath.Join(dst, name)
		if hdr.Typeflag == tar.TypeDir {
			if err := os.MkdirAll(fpath, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
			return err
		}

		outFile, err := os.Create(fpath)
		if err != nil {
			return err
		}
		if _, err := io.Copy(outFile, tr); err != nil {
			outFile.Close()
			return err
		}
		if err := outFile.Close(); err != nil {
			return err
		}

		if err := os.Chtimes(fpath, hdr.ModTime, hdr.ModTime); err != nil {
			return err
		}
	}

	return nil
}
