package folders

import (
	"path/filepath"
	"strings"
)

// Symbolic paths use a single leading token and forward slashes regardless of
// host OS: {{Documents}}/reports/q3.pdf. The token grammar is closed; the
// codec parses it structurally instead of doing substring substitution, so
// folders whose concrete paths prefix one another cannot corrupt each other.

const (
	tokenOpen  = "{{"
	tokenClose = "}}"
)

// Token renders the symbolic token for an identifier
func Token(id ID) string {
	return tokenOpen + string(id) + tokenClose
}

// Leading parses the leading token of a symbolic path, returning the folder
// identifier and the relative suffix (empty when the path is the folder
// itself). ok is false when the path carries no token.
func Leading(symbolic string) (id ID, suffix string, ok bool) {
	if !strings.HasPrefix(symbolic, tokenOpen) {
		return "", "", false
	}
	end := strings.Index(symbolic, tokenClose)
	if end < len(tokenOpen) {
		return "", "", false
	}
	name := symbolic[len(tokenOpen):end]
	if name == "" || strings.Contains(name, "/") {
		return "", "", false
	}

	rest := symbolic[end+len(tokenClose):]
	rest = strings.TrimPrefix(rest, "/")
	return ID(name), rest, true
}

// Join builds a symbolic path from an identifier and a relative suffix
func Join(id ID, suffix string) string {
	suffix = strings.Trim(filepath.ToSlash(suffix), "/")
	if suffix == "" {
		return Token(id)
	}
	return Token(id) + "/" + suffix
}

// Encode maps a symbolic path to a concrete path on a volume. Paths without a
// leading token pass through unchanged; they were never made portable and
// still name a concrete location. Resolution failures (user-scoped token,
// empty user) surface as ErrUnresolvableFolder.
func Encode(symbolic, volumeRoot, user string) (string, error) {
	id, suffix, ok := Leading(symbolic)
	if !ok {
		return symbolic, nil
	}

	base, err := Resolve(id, volumeRoot, user)
	if err != nil {
		return "", err
	}

	if suffix == "" {
		return base, nil
	}
	return filepath.Join(base, filepath.FromSlash(suffix)), nil
}

// Decode maps a concrete path back to a symbolic path. Folder prefixes are
// tried most-specific first; once a folder matches, shorter prefixes are not
// consulted. A path under no known folder is returned unchanged, a legitimate
// terminal case rather than an error. Any path under the volume root matches
// at least the SystemDrive catch-all, so only paths outside the root stay
// concrete.
func Decode(concrete, volumeRoot, user string) string {
	cleaned := filepath.Clean(concrete)

	for _, cand := range resolveAll(volumeRoot, user) {
		base := filepath.Clean(cand.path)
		if cleaned == base {
			return Token(cand.id)
		}
		// A base that is itself the filesystem root already ends in a
		// separator; appending another would match nothing
		prefix := base
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(cleaned, prefix) {
			rel := cleaned[len(prefix):]
			return Join(cand.id, rel)
		}
	}

	return concrete
}
