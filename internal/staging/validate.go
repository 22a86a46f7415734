package staging

import (
	"fmt"

	"github.com/profileport/profileport/internal/cryptoutil"
	commonerrors "github.com/profileport/profileport/internal/errors"
	"github.com/profileport/profileport/internal/fsutil"
	"github.com/profileport/profileport/internal/logger"
	"github.com/profileport/profileport/internal/manifest"
)

// Status classifies one record's validation result
type Status string

const (
	StatusOK           Status = "ok"
	StatusMissing      Status = "missing"
	StatusSizeMismatch Status = "size_mismatch"
	StatusHashMismatch Status = "hash_mismatch"
)

// RecordResult pairs a record with its validation status
type RecordResult struct {
	Record manifest.Record
	Status Status
}

// Report aggregates per-record validation results
type Report struct {
	Results []RecordResult

	OK           int
	Missing      int
	SizeMismatch int
	HashMismatch int

	// Valid is true iff every record validated ok
	Valid bool
}

// Err returns ErrIntegrityMismatch describing the failure counts, or nil when
// the report is valid. Callers gating on verification should test this with
// errors.Is.
func (r *Report) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%w: %d missing, %d size, %d hash of %d records",
		commonerrors.ErrIntegrityMismatch, r.Missing, r.SizeMismatch, r.HashMismatch, len(r.Results))
}

// Validate recomputes size and content hash for every record under a staged
// root and compares against the manifest. Hash comparison only applies to
// records carrying a hash; size-only records validate by length alone. A
// record naming its own digest algorithm is verified with that algorithm, so
// packages travel between hosts with different configured defaults; hasher
// covers records that carry a hash but no algorithm. The staged tree is never
// modified.
func Validate(m *manifest.Manifest, stagedRoot string, hasher cryptoutil.Hasher) *Report {
	report := &Report{Valid: true}
	hashers := map[string]cryptoutil.Hasher{}
	if hasher != nil {
		hashers[string(hasher.Algorithm())] = hasher
	}

	for _, rec := range m.Records {
		status := validateRecord(rec, stagedRoot, hasher, hashers)
		report.Results = append(report.Results, RecordResult{Record: rec, Status: status})

		switch status {
		case StatusOK:
			report.OK++
		case StatusMissing:
			report.Missing++
		case StatusSizeMismatch:
			report.SizeMismatch++
		case StatusHashMismatch:
			report.HashMismatch++
		}
		if status != StatusOK {
			report.Valid = false
			logger.LogWarn("Record failed validation", map[string]interface{}{
				"path":   rec.Path,
				"status": string(status),
			})
		}
	}

	return report
}

func validateRecord(rec manifest.Record, stagedRoot string, fallback cryptoutil.Hasher, hashers map[string]cryptoutil.Hasher) Status {
	staged := FilePath(stagedRoot, rec.Path)

	info, err := fsutil.GetFileInfo(staged)
	if err != nil {
		return StatusMissing
	}

	if info.Size != rec.Size {
		return StatusSizeMismatch
	}

	if rec.Hash != "" {
		h := recordHasher(rec, fallback, hashers)
		if h == nil && rec.Algo != "" {
			// A named algorithm we cannot recompute is unverifiable content
			return StatusHashMismatch
		}
		if h != nil {
			match, err := h.VerifyFile(staged, rec.Hash)
			if err != nil || !match {
				return StatusHashMismatch
			}
		}
	}

	return StatusOK
}

// recordHasher picks the digest for one record: its own algorithm when named,
// the caller's hasher otherwise. Constructed hashers are cached across records.
func recordHasher(rec manifest.Record, fallback cryptoutil.Hasher, hashers map[string]cryptoutil.Hasher) cryptoutil.Hasher {
	if rec.Algo == "" {
		return fallback
	}
	if h, ok := hashers[rec.Algo]; ok {
		return h
	}
	h, err := cryptoutil.NewHasher(cryptoutil.HashAlgorithm(rec.Algo))
	if err != nil {
		logger.LogWarn("Record names an unsupported digest algorithm", map[string]interface{}{
			"path": rec.Path,
			"algo": rec.Algo,
		})
		hashers[rec.Algo] = nil
		return nil
	}
	hashers[rec.Algo] = h
	return h
}
