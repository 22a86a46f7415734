// Package folders maps symbolic folder identifiers to concrete directories on
// a mounted volume. Identifiers are a closed, enumerated set; user-scoped
// folders additionally take a user name. All resolution is pure and takes the
// volume root explicitly, so multiple volumes can be resolved side by side.
package folders

import (
	"fmt"
	"path/filepath"
	"sort"

	commonerrors "github.com/profileport/profileport/internal/errors"
)

// Scope classifies a folder as per-user or per-machine
type Scope int

const (
	// ScopeMachine folders resolve from the volume root alone
	ScopeMachine Scope = iota

	// ScopeUser folders require a user name and live under that user's profile
	ScopeUser
)

// ID is a symbolic folder identifier
type ID string

// Known folder identifiers
const (
	UserProfile    ID = "UserProfile"
	Documents      ID = "Documents"
	Desktop        ID = "Desktop"
	Downloads      ID = "Downloads"
	Pictures       ID = "Pictures"
	Music          ID = "Music"
	Videos         ID = "Videos"
	AppDataRoaming ID = "AppDataRoaming"
	AppDataLocal   ID = "AppDataLocal"
	PublicProfile  ID = "PublicProfile"
	ProgramFiles   ID = "ProgramFiles"
	ProgramData    ID = "ProgramData"
	SystemDrive    ID = "SystemDrive"
)

// userMarker stands in for the user name inside a path template
const userMarker = "\x00user\x00"

// Folder describes one catalog entry
type Folder struct {
	ID    ID
	Scope Scope

	// template holds path elements relative to the volume root; userMarker
	// elements are replaced by the user name at resolution time
	template []string
}

// catalog is the full known-folder table. Order is not significant here;
// decode precedence is by resolved path length, not table position.
var catalog = []Folder{
	{UserProfile, ScopeUser, []string{"Users", userMarker}},
	{Documents, ScopeUser, []string{"Users", userMarker, "Documents"}},
	{Desktop, ScopeUser, []string{"Users", userMarker, "Desktop"}},
	{Downloads, ScopeUser, []string{"Users", userMarker, "Downloads"}},
	{Pictures, ScopeUser, []string{"Users", userMarker, "Pictures"}},
	{Music, ScopeUser, []string{"Users", userMarker, "Music"}},
	{Videos, ScopeUser, []string{"Users", userMarker, "Videos"}},
	{AppDataRoaming, ScopeUser, []string{"Users", userMarker, "AppData", "Roaming"}},
	{AppDataLocal, ScopeUser, []string{"Users", userMarker, "AppData", "Local"}},
	{PublicProfile, ScopeMachine, []string{"Users", "Public"}},
	{ProgramFiles, ScopeMachine, []string{"Program Files"}},
	{ProgramData, ScopeMachine, []string{"ProgramData"}},
	{SystemDrive, ScopeMachine, nil},
}

// All returns the full catalog
func All() []Folder {
	out := make([]Folder, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for an identifier
func Lookup(id ID) (Folder, bool) {
	for _, f := range catalog {
		if f.ID == id {
			return f, true
		}
	}
	return Folder{}, false
}

// IsUserScoped reports whether the identifier names a per-user folder.
// Unknown identifiers are treated as machine-scoped ad-hoc folders.
func IsUserScoped(id ID) bool {
	f, ok := Lookup(id)
	return ok && f.Scope == ScopeUser
}

// Resolve maps a folder identifier to its concrete path on a volume. A
// user-scoped identifier with an empty user fails with ErrUnresolvableFolder.
// Unknown identifiers fall back to <volumeRoot>/<id>, which keeps ad-hoc
// tokens usable without catalog changes.
func Resolve(id ID, volumeRoot, user string) (string, error) {
	f, ok := Lookup(id)
	if !ok {
		return filepath.Join(volumeRoot, string(id)), nil
	}

	if f.Scope == ScopeUser && user == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrUnresolvableFolder, id)
	}

	elems := make([]string, 0, len(f.template)+1)
	elems = append(elems, volumeRoot)
	for _, e := range f.template {
		if e == userMarker {
			elems = append(elems, user)
		} else {
			elems = append(elems, e)
		}
	}
	return filepath.Join(elems...), nil
}

// resolved pairs an identifier with its concrete path for one (root, user)
type resolved struct {
	id   ID
	path string
}

// resolveAll resolves every catalog entry applicable to (volumeRoot, user),
// ordered most-specific (longest concrete path) first. User-scoped folders are
// only candidates when a user is supplied.
func resolveAll(volumeRoot, user string) []resolved {
	out := make([]resolved, 0, len(catalog))
	for _, f := range catalog {
		if f.Scope == ScopeUser && user == "" {
			continue
		}
		p, err := Resolve(f.ID, volumeRoot, user)
		if err != nil {
			continue
		}
		out = append(out, resolved{id: f.ID, path: p})
	}

	// Longest prefix wins, so AppDataRoaming beats UserProfile and everything
	// beats the SystemDrive catch-all
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].path) > len(out[j].path)
	})
	return out
}
