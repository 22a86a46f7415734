package errors

import (
	"errors"
)

var (
	// Folder Resolution Errors
	ErrUnresolvableFolder = errors.New("folder cannot be resolved without a user")

	// Manifest Errors
	ErrManifestMissing   = errors.New("manifest file not found")
	ErrManifestMalformed = errors.New("manifest file is malformed")

	// Staging Errors
	ErrStagingLayoutInvalid = errors.New("staged package layout is invalid")
	ErrInvalidArchive       = errors.New("archive file is corrupted or unsupported")

	// Restore Errors
	ErrInsufficientSpace    = errors.New("not enough disk space on the target volume")
	ErrIntegrityMismatch    = errors.New("staged content does not match the manifest")
	ErrConfirmationDeclined = errors.New("directory creation was not confirmed")

	// File Errors
	ErrFileNotFound   = errors.New("file not found")
	ErrFileReadError  = errors.New("error reading file")
	ErrFileWriteError = errors.New("error writing to file")

	// Hash Errors
	ErrInvalidHasher = errors.New("invalid hasher")
)
