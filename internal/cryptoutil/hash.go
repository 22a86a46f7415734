// Package cryptoutil provides the content-digest primitive used for manifest
// integrity records
package cryptoutil

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	commonerrors "github.com/profileport/profileport/internal/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// HashAlgorithm represents supported hash algorithms
type HashAlgorithm string

const (
	// SHA256 algorithm (default; 256-bit reference strength)
	SHA256 HashAlgorithm = "sha256"

	// SHA512 algorithm
	SHA512 HashAlgorithm = "sha512"

	// BLAKE2b256 algorithm
	BLAKE2b256 HashAlgorithm = "blake2b256"

	// SHA3_256 algorithm
	SHA3_256 HashAlgorithm = "sha3-256"
)

// DefaultAlgorithm is used when no algorithm is configured
const DefaultAlgorithm = SHA256

// Hasher provides an interface for hashing operations
type Hasher interface {
	// Algorithm reports the algorithm this hasher computes
	Algorithm() HashAlgorithm

	// HashFile hashes the content of a file
	HashFile(path string) (string, error)

	// HashReader hashes data from a reader
	HashReader(reader io.Reader) (string, error)

	// VerifyFile checks if the provided hash matches the calculated hash for the file
	VerifyFile(path string, expectedHash string) (bool, error)
}

// hasherImpl implements the Hasher interface
type hasherImpl struct {
	algorithm HashAlgorithm
	newHash   func() hash.Hash
}

// NewHasher creates a new Hasher for the specified algorithm
func NewHasher(algorithm HashAlgorithm) (Hasher, error) {
	var newHashFunc func() hash.Hash

	switch strings.ToLower(string(algorithm)) {
	case string(SHA256):
		newHashFunc = sha256.New
	case string(SHA512):
		newHashFunc = sha512.New
	case string(BLAKE2b256):
		newHashFunc = func() hash.Hash {
			// New256 only errors when keyed; an unkeyed digest cannot fail
			h, _ := blake2b.New256(nil)
			return h
		}
	case string(SHA3_256):
		newHashFunc = sha3.New256
	default:
		return nil, fmt.Errorf("%w: unsupported hash algorithm '%s'", commonerrors.ErrInvalidHasher, algorithm)
	}

	return &hasherImpl{
		algorithm: algorithm,
		newHash:   newHashFunc,
	}, nil
}

// Algorithm reports the algorithm this hasher computes
func (h *hasherImpl) Algorithm() HashAlgorithm {
	return h.algorithm
}

// HashFile hashes the content of a file
func (h *hasherImpl) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", commonerrors.ErrFileNotFound, path)
		}
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return h.HashReader(file)
}

// HashReader hashes data from a reader
func (h *hasherImpl) HashReader(reader io.Reader) (string, error) {
	hasher := h.newHash()
	_, err := io.Copy(hasher, reader)
	if err != nil {
		return "", fmt.Errorf("hash operation failed: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifyFile checks if the provided hash matches the calculated hash for the file
func (h *hasherImpl) VerifyFile(path string, expectedHash string) (bool, error) {
	actualHash, err := h.HashFile(path)
	if err != nil {
		return false, err
	}

	return strings.EqualFold(actualHash, expectedHash), nil
}
