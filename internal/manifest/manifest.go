// Package manifest defines the record schema describing a backed-up file
// population and builds manifests from discovered paths.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	commonerrors "github.com/profileport/profileport/internal/errors"
	"github.com/profileport/profileport/internal/folders"
	"github.com/profileport/profileport/internal/fsutil"
)

// Record describes one file by symbolic path and identity metadata
type Record struct {
	// Path is the symbolic path, e.g. {{Documents}}/report.pdf. A concrete
	// path appears here only when the file was not portable.
	Path string `json:"path"`

	// User owns the file on the source volume; empty for machine-scoped files
	User string `json:"user,omitempty"`

	// Size in bytes at backup time
	Size int64 `json:"size"`

	// ModTime is the modification time in UTC
	ModTime time.Time `json:"mtime"`

	// Hash is the hex content digest; empty when hashing failed, in which
	// case verification falls back to size only
	Hash string `json:"hash,omitempty"`

	// Algo names the digest algorithm that produced Hash, so a package built
	// under one configured algorithm verifies on a host defaulting to another
	Algo string `json:"algo,omitempty"`

	// Origin is the informational path relative to the source volume root
	Origin string `json:"origin,omitempty"`

	// Flags is reserved for future per-record markers
	Flags []string `json:"flags,omitempty"`
}

// Folder derives the known-folder identifier from the record's leading token.
// ok is false for non-portable records.
func (r Record) Folder() (folders.ID, bool) {
	id, _, ok := folders.Leading(r.Path)
	return id, ok
}

// Manifest is an ordered sequence of records. Order is discovery order and
// carries no semantics. A manifest is created wholesale at backup time and
// never mutated afterwards.
type Manifest struct {
	Records []Record
}

// Len returns the number of records
func (m *Manifest) Len() int {
	return len(m.Records)
}

// TotalSize sums the recorded sizes of all records
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, r := range m.Records {
		total += r.Size
	}
	return total
}

// Users returns the distinct user names appearing in the manifest, in first-
// appearance order
func (m *Manifest) Users() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range m.Records {
		if r.User == "" || seen[r.User] {
			continue
		}
		seen[r.User] = true
		out = append(out, r.User)
	}
	return out
}

// Save writes the manifest to a file as an ordered JSON array of records. An
// empty manifest serializes as an empty array.
func (m *Manifest) Save(path string) error {
	records := m.Records
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s", commonerrors.ErrFileWriteError, err.Error())
	}

	return fsutil.WriteFile(path, data, 0644)
}

// Load reads a manifest file. A missing file is ErrManifestMissing; anything
// the JSON decoder rejects is ErrManifestMalformed.
func Load(path string) (*Manifest, error) {
	data, err := fsutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", commonerrors.ErrManifestMissing, path)
		}
		return nil, fmt.Errorf("%w: %s", commonerrors.ErrFileReadError, err.Error())
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s", commonerrors.ErrManifestMalformed, err.Error())
	}

	return &Manifest{Records: records}, nil
}
