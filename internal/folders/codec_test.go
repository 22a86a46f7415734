package folders

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/profileport/profileport/internal/errors"
)

func TestLeading(t *testing.T) {
	id, suffix, ok := Leading("{{Documents}}/reports/q3.pdf")
	require.True(t, ok)
	assert.Equal(t, Documents, id)
	assert.Equal(t, "reports/q3.pdf", suffix)

	id, suffix, ok = Leading("{{Desktop}}")
	require.True(t, ok)
	assert.Equal(t, Desktop, id)
	assert.Empty(t, suffix)

	_, _, ok = Leading("/vol/Users/Ann/file.txt")
	assert.False(t, ok)

	_, _, ok = Leading("{{}}/x")
	assert.False(t, ok)
}

func TestEncode(t *testing.T) {
	path, err := Encode("{{Documents}}/report.pdf", "/vol", "Ann")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/vol", "Users", "Ann", "Documents", "report.pdf"), path)
}

func TestEncodePassesThroughConcretePaths(t *testing.T) {
	path, err := Encode("/other/place/file.txt", "/vol", "Ann")
	require.NoError(t, err)
	assert.Equal(t, "/other/place/file.txt", path)
}

func TestEncodeUserScopedTokenWithoutUser(t *testing.T) {
	_, err := Encode("{{Documents}}/report.pdf", "/vol", "")
	assert.ErrorIs(t, err, commonerrors.ErrUnresolvableFolder)
}

func TestDecodePrecedence(t *testing.T) {
	// AppDataRoaming sits under UserProfile; the longer prefix must win
	path := filepath.Join("/vol", "Users", "Ann", "AppData", "Roaming", "app", "state.db")
	assert.Equal(t, "{{AppDataRoaming}}/app/state.db", Decode(path, "/vol", "Ann"))

	// A path directly under the profile falls back to UserProfile
	path = filepath.Join("/vol", "Users", "Ann", "notes.txt")
	assert.Equal(t, "{{UserProfile}}/notes.txt", Decode(path, "/vol", "Ann"))
}

func TestDecodeSystemDriveCatchAll(t *testing.T) {
	path := filepath.Join("/vol", "stray", "file.bin")
	assert.Equal(t, "{{SystemDrive}}/stray/file.bin", Decode(path, "/vol", ""))
}

func TestDecodeOutsideRootUnchanged(t *testing.T) {
	assert.Equal(t, "/elsewhere/file.bin", Decode("/elsewhere/file.bin", "/vol", "Ann"))
}

func TestDecodeUnknownUserSkipsUserFolders(t *testing.T) {
	// Without a user, per-user folders are not candidates; the catch-all
	// still tokenizes the path
	path := filepath.Join("/vol", "Users", "Ann", "Documents", "report.pdf")
	assert.Equal(t, "{{SystemDrive}}/Users/Ann/Documents/report.pdf", Decode(path, "/vol", ""))
}

func TestDecodeAtFilesystemRoot(t *testing.T) {
	// A volume mounted at / resolves SystemDrive to the root itself; paths
	// under it must still tokenize
	assert.Equal(t, "{{SystemDrive}}/opt/data.bin", Decode("/opt/data.bin", "/", ""))

	path := filepath.Join("/", "Users", "Ann", "Documents", "report.pdf")
	assert.Equal(t, "{{Documents}}/report.pdf", Decode(path, "/", "Ann"))
}

func TestRoundTripSymbolicFirst(t *testing.T) {
	symbolics := []string{
		"{{Documents}}/report.pdf",
		"{{Desktop}}/shortcut.lnk",
		"{{AppDataRoaming}}/app/config.ini",
		"{{AppDataLocal}}/cache/blob",
		"{{UserProfile}}/notes.txt",
		"{{Pictures}}/trip/1.jpg",
		"{{ProgramData}}/svc/data.bin",
		"{{PublicProfile}}/shared.txt",
	}

	for _, symbolic := range symbolics {
		concrete, err := Encode(symbolic, "/vol", "Ann")
		require.NoError(t, err)
		assert.Equal(t, symbolic, Decode(concrete, "/vol", "Ann"), "round trip of %s", symbolic)
	}
}

func TestRoundTripConcreteFirst(t *testing.T) {
	concretes := []string{
		filepath.Join("/vol", "Users", "Ann", "Documents", "report.pdf"),
		filepath.Join("/vol", "Users", "Ann", "AppData", "Local", "cache", "blob"),
		filepath.Join("/vol", "Users", "Public", "shared.txt"),
		filepath.Join("/vol", "Program Files", "App", "app.exe"),
	}

	for _, concrete := range concretes {
		symbolic := Decode(concrete, "/vol", "Ann")
		back, err := Encode(symbolic, "/vol", "Ann")
		require.NoError(t, err)
		assert.Equal(t, concrete, back, "round trip of %s", concrete)
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "{{Documents}}", Join(Documents, ""))
	assert.Equal(t, "{{Documents}}/a/b", Join(Documents, "a/b"))
	assert.Equal(t, "{{Documents}}/a/b", Join(Documents, "/a/b/"))
}
