package restore

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/profileport/profileport/internal/errors"
	"github.com/profileport/profileport/internal/manifest"
	"github.com/profileport/profileport/internal/staging"
)

// newStagedRoot lays out a staged package containing the given records, with
// content equal to each record's symbolic path unless absent names it
func newStagedRoot(t *testing.T, records []manifest.Record, absent ...string) string {
	t.Helper()
	stagedRoot := t.TempDir()
	m := &manifest.Manifest{Records: records}
	require.NoError(t, m.Save(staging.ManifestPath(stagedRoot)))
	require.NoError(t, os.MkdirAll(staging.FilesDir(stagedRoot), 0755))

	skip := make(map[string]bool)
	for _, p := range absent {
		skip[p] = true
	}

	for _, rec := range records {
		if skip[rec.Path] {
			continue
		}
		path := staging.FilePath(stagedRoot, rec.Path)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(rec.Path), 0644))
		require.NoError(t, os.Chtimes(path, rec.ModTime, rec.ModTime))
	}
	return stagedRoot
}

func annReport() manifest.Record {
	return manifest.Record{
		Path:    "{{Documents}}/report.pdf",
		User:    "Ann",
		Size:    int64(len("{{Documents}}/report.pdf")),
		ModTime: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestApplyCopiesWithUserRemap(t *testing.T) {
	rec := annReport()
	stagedRoot := newStagedRoot(t, []manifest.Record{rec})
	dest := t.TempDir()

	summary, err := Apply(&manifest.Manifest{Records: []manifest.Record{rec}}, stagedRoot, dest, Options{
		UserMap:   map[string]string{"Ann": "Bob"},
		DirPolicy: DirAlwaysCreate,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Copied)
	want := filepath.Join(dest, "Users", "Bob", "Documents", "report.pdf")
	require.Len(t, summary.Results, 1)
	assert.Equal(t, OutcomeCopied, summary.Results[0].Outcome)
	assert.Equal(t, want, summary.Results[0].Destination)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, rec.Path, string(data))

	info, err := os.Stat(want)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(rec.ModTime), "modification time is preserved")
}

func TestApplyIsIdempotentWithoutOverwrite(t *testing.T) {
	rec := annReport()
	stagedRoot := newStagedRoot(t, []manifest.Record{rec})
	dest := t.TempDir()
	m := &manifest.Manifest{Records: []manifest.Record{rec}}
	opts := Options{DirPolicy: DirAlwaysCreate}

	first, err := Apply(m, stagedRoot, dest, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Copied)

	second, err := Apply(m, stagedRoot, dest, opts)
	require.NoError(t, err)
	assert.Zero(t, second.Copied)
	assert.Equal(t, 1, second.SkippedExisting)
}

func TestApplyOverwriteRecopies(t *testing.T) {
	rec := annReport()
	stagedRoot := newStagedRoot(t, []manifest.Record{rec})
	dest := t.TempDir()
	m := &manifest.Manifest{Records: []manifest.Record{rec}}

	_, err := Apply(m, stagedRoot, dest, Options{DirPolicy: DirAlwaysCreate})
	require.NoError(t, err)

	target := filepath.Join(dest, "Users", "Ann", "Documents", "report.pdf")
	require.NoError(t, os.WriteFile(target, []byte("locally changed"), 0644))

	summary, err := Apply(m, stagedRoot, dest, Options{Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Copied)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, rec.Path, string(data))
}

func TestApplyMissingSourceNeverAborts(t *testing.T) {
	present := annReport()
	gone := manifest.Record{Path: "{{Documents}}/gone.txt", User: "Ann", Size: 4}
	stagedRoot := newStagedRoot(t, []manifest.Record{gone, present}, gone.Path)
	dest := t.TempDir()

	summary, err := Apply(&manifest.Manifest{Records: []manifest.Record{gone, present}}, stagedRoot, dest, Options{
		DirPolicy: DirAlwaysCreate,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Copied)
	assert.Equal(t, 1, summary.SkippedMissingSource)
}

func TestApplyFolderFilterWithNoMatches(t *testing.T) {
	rec := annReport()
	stagedRoot := newStagedRoot(t, []manifest.Record{rec})
	dest := t.TempDir()

	summary, err := Apply(&manifest.Manifest{Records: []manifest.Record{rec}}, stagedRoot, dest, Options{
		OnlyFolder: "Pictures",
		DirPolicy:  DirAlwaysCreate,
	})
	require.NoError(t, err)
	assert.Zero(t, summary.Considered)
	assert.Zero(t, summary.Copied)
	assert.Equal(t, 1, summary.Total)
}

func TestApplyUserFilter(t *testing.T) {
	ann := annReport()
	bob := manifest.Record{Path: "{{Desktop}}/todo.txt", User: "Bob", Size: 20}
	stagedRoot := newStagedRoot(t, []manifest.Record{ann, bob})
	dest := t.TempDir()

	summary, err := Apply(&manifest.Manifest{Records: []manifest.Record{ann, bob}}, stagedRoot, dest, Options{
		OnlyUser:  "Bob",
		DirPolicy: DirAlwaysCreate,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Considered)
	assert.Equal(t, 1, summary.Copied)
	assert.NoFileExists(t, filepath.Join(dest, "Users", "Ann", "Documents", "report.pdf"))
}

func TestApplyDryRunDoesNotMutate(t *testing.T) {
	rec := annReport()
	stagedRoot := newStagedRoot(t, []manifest.Record{rec})
	dest := t.TempDir()

	summary, err := Apply(&manifest.Manifest{Records: []manifest.Record{rec}}, stagedRoot, dest, Options{
		DryRun:    true,
		DirPolicy: DirConfirm, // nothing should be asked in a dry run
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Copied, "dry run reports the hypothetical outcome")
	assert.NoDirExists(t, filepath.Join(dest, "Users"))
}

func TestApplyDeclinedConfirmationSkips(t *testing.T) {
	rec := annReport()
	stagedRoot := newStagedRoot(t, []manifest.Record{rec})
	dest := t.TempDir()

	asked := ""
	summary, err := Apply(&manifest.Manifest{Records: []manifest.Record{rec}}, stagedRoot, dest, Options{
		DirPolicy: DirConfirm,
		Confirm: func(dir string) bool {
			asked = dir
			return false
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SkippedNoConfirmation)
	assert.Zero(t, summary.Copied)
	assert.Equal(t, filepath.Join(dest, "Users", "Ann", "Documents"), asked)
	assert.NoDirExists(t, filepath.Join(dest, "Users"))
}

func TestApplyNeverCreatePolicy(t *testing.T) {
	rec := annReport()
	stagedRoot := newStagedRoot(t, []manifest.Record{rec})
	dest := t.TempDir()

	summary, err := Apply(&manifest.Manifest{Records: []manifest.Record{rec}}, stagedRoot, dest, Options{
		DirPolicy: DirNeverCreate,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SkippedNoConfirmation)
}

func TestApplyAcceptedConfirmationCopies(t *testing.T) {
	rec := annReport()
	stagedRoot := newStagedRoot(t, []manifest.Record{rec})
	dest := t.TempDir()

	summary, err := Apply(&manifest.Manifest{Records: []manifest.Record{rec}}, stagedRoot, dest, Options{
		DirPolicy: DirConfirm,
		Confirm:   func(string) bool { return true },
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Copied)
}

func TestApplyInsufficientSpaceAborts(t *testing.T) {
	rec := annReport()
	rec.Size = math.MaxInt64 / 2 // no volume has this much free
	stagedRoot := newStagedRoot(t, []manifest.Record{rec})
	dest := t.TempDir()

	_, err := Apply(&manifest.Manifest{Records: []manifest.Record{rec}}, stagedRoot, dest, Options{
		DirPolicy: DirAlwaysCreate,
	})
	require.ErrorIs(t, err, commonerrors.ErrInsufficientSpace)
	assert.NoDirExists(t, filepath.Join(dest, "Users"))
}

func TestApplyForceOverridesSpaceCheck(t *testing.T) {
	rec := annReport()
	rec.Size = math.MaxInt64 / 2
	stagedRoot := newStagedRoot(t, []manifest.Record{rec})
	dest := t.TempDir()

	summary, err := Apply(&manifest.Manifest{Records: []manifest.Record{rec}}, stagedRoot, dest, Options{
		Force:     true,
		DirPolicy: DirAlwaysCreate,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Copied)
	assert.FileExists(t, filepath.Join(dest, "Users", "Ann", "Documents", "report.pdf"))
}

func TestApplyDryRunSkipsSpaceCheck(t *testing.T) {
	rec := annReport()
	rec.Size = math.MaxInt64 / 2
	stagedRoot := newStagedRoot(t, []manifest.Record{rec})

	summary, err := Apply(&manifest.Manifest{Records: []manifest.Record{rec}}, stagedRoot, t.TempDir(), Options{
		DryRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Copied)
}

func TestApplyRejectsBrokenStagingLayout(t *testing.T) {
	stagedRoot := t.TempDir() // no manifest, no files/
	_, err := Apply(&manifest.Manifest{}, stagedRoot, t.TempDir(), Options{})
	assert.ErrorIs(t, err, commonerrors.ErrManifestMissing)
}

func TestApplyUnmappedUserPassesThrough(t *testing.T) {
	rec := annReport()
	stagedRoot := newStagedRoot(t, []manifest.Record{rec})
	dest := t.TempDir()

	summary, err := Apply(&manifest.Manifest{Records: []manifest.Record{rec}}, stagedRoot, dest, Options{
		UserMap:   map[string]string{"Carol": "Dave"},
		DirPolicy: DirAlwaysCreate,
	})
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, filepath.Join(dest, "Users", "Ann", "Documents", "report.pdf"), summary.Results[0].Destination)
}
