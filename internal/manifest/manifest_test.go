package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/profileport/profileport/internal/errors"
	"github.com/profileport/profileport/internal/folders"
)

func sampleManifest() *Manifest {
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Manifest{Records: []Record{
		{Path: "{{Documents}}/report.pdf", User: "Ann", Size: 100, ModTime: mtime, Hash: "aa"},
		{Path: "{{Pictures}}/1.jpg", User: "Ann", Size: 200, ModTime: mtime},
		{Path: "{{Desktop}}/todo.txt", User: "Bob", Size: 50, ModTime: mtime, Hash: "bb"},
		{Path: "{{ProgramData}}/svc/data.bin", Size: 25, ModTime: mtime},
	}}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	m := sampleManifest()
	require.NoError(t, m.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.Records, loaded.Records)
}

func TestSaveEmptyManifestIsEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, (&Manifest{}).Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, loaded.Len())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "manifest.json"))
	assert.ErrorIs(t, err, commonerrors.ErrManifestMissing)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, commonerrors.ErrManifestMalformed)
}

func TestAggregates(t *testing.T) {
	m := sampleManifest()
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, int64(375), m.TotalSize())
	assert.Equal(t, []string{"Ann", "Bob"}, m.Users())
}

func TestRecordFolder(t *testing.T) {
	id, ok := sampleManifest().Records[0].Folder()
	require.True(t, ok)
	assert.Equal(t, folders.Documents, id)

	_, ok = Record{Path: "/vol/raw/path.bin"}.Folder()
	assert.False(t, ok)
}
