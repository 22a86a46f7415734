// Package restore reconciles a manifest against a target volume: every record
// is forward-resolved to a concrete destination and a per-record transfer
// decision is made. Per-record problems are skip outcomes, never batch
// failures; only structural errors abort a run.
package restore

import (
	"errors"
	"fmt"
	"path/filepath"

	commonerrors "github.com/profileport/profileport/internal/errors"
	"github.com/profileport/profileport/internal/folders"
	"github.com/profileport/profileport/internal/fsutil"
	"github.com/profileport/profileport/internal/logger"
	"github.com/profileport/profileport/internal/manifest"
	"github.com/profileport/profileport/internal/staging"
)

// Outcome is the per-record result of reconciliation
type Outcome string

const (
	OutcomeCopied               Outcome = "copied"
	OutcomeSkippedExisting      Outcome = "skipped-existing"
	OutcomeSkippedMissingSource Outcome = "skipped-missing-source"
	OutcomeSkippedNoConfirm     Outcome = "skipped-no-confirmation"
)

// DirPolicy decides how missing destination parent directories are handled
type DirPolicy int

const (
	// DirConfirm asks the Confirm callback before creating a directory
	DirConfirm DirPolicy = iota

	// DirAlwaysCreate creates missing directories without asking
	DirAlwaysCreate

	// DirNeverCreate skips records whose parent directory is missing
	DirNeverCreate
)

// ConfirmFunc is consulted under DirConfirm; returning false declines
type ConfirmFunc func(dir string) bool

// Options control one reconciliation run
type Options struct {
	// UserMap renames users on the way in; unmapped users pass through
	UserMap map[string]string

	// OnlyUser restricts the run to records owned by one user
	OnlyUser string

	// OnlyFolder restricts the run to records under one known folder,
	// matched against the symbolic path's leading token
	OnlyFolder string

	// Overwrite replaces existing destination files; it also implies
	// directory creation without confirmation
	Overwrite bool

	// DryRun reports hypothetical outcomes without touching the volume
	DryRun bool

	// Force proceeds past a failed free-space preflight with a warning
	Force bool

	DirPolicy DirPolicy
	Confirm   ConfirmFunc
}

// Result is one record's reconciliation outcome
type Result struct {
	Record      manifest.Record
	Outcome     Outcome
	Destination string
}

// Summary aggregates a run. Errors counts records that hit local faults
// outside the outcome set (unresolvable destination, copy failure); they are
// logged and never abort the batch.
type Summary struct {
	Results []Result

	Copied                int
	SkippedExisting       int
	SkippedMissingSource  int
	SkippedNoConfirmation int
	Errors                int

	// Considered is the record count after filtering; Total the manifest size
	Considered int
	Total      int
}

// destinationUser applies the user map to a record's owner
func (o Options) destinationUser(user string) string {
	if mapped, ok := o.UserMap[user]; ok {
		return mapped
	}
	return user
}

// selected applies the user and folder filters to one record
func (o Options) selected(rec manifest.Record) bool {
	if o.OnlyUser != "" && rec.User != o.OnlyUser {
		return false
	}
	if o.OnlyFolder != "" {
		id, ok := rec.Folder()
		if !ok || string(id) != o.OnlyFolder {
			return false
		}
	}
	return true
}

// Apply reconciles a manifest against a target volume root using content from
// a staged root. The staged layout is checked up front; a failed free-space
// preflight aborts with ErrInsufficientSpace unless forced. Re-running with
// identical inputs and Overwrite false is a no-op on prior successes.
func Apply(m *manifest.Manifest, stagedRoot, volumeRoot string, opts Options) (*Summary, error) {
	if err := staging.CheckLayout(stagedRoot); err != nil {
		return nil, err
	}

	summary := &Summary{Total: m.Len()}

	var filtered []manifest.Record
	for _, rec := range m.Records {
		if opts.selected(rec) {
			filtered = append(filtered, rec)
		}
	}
	summary.Considered = len(filtered)

	if err := preflightSpace(filtered, volumeRoot, opts); err != nil {
		return nil, err
	}

	for _, rec := range filtered {
		applyRecord(rec, stagedRoot, volumeRoot, opts, summary)
	}

	logger.LogInfo("Restore finished", map[string]interface{}{
		"copied":     summary.Copied,
		"skipped":    summary.SkippedExisting + summary.SkippedMissingSource + summary.SkippedNoConfirmation,
		"errors":     summary.Errors,
		"considered": summary.Considered,
		"total":      summary.Total,
		"dry_run":    opts.DryRun,
	})

	return summary, nil
}

// preflightSpace compares the filtered payload size to the target's free
// space. Dry runs never abort; forced runs proceed with a warning.
func preflightSpace(records []manifest.Record, volumeRoot string, opts Options) error {
	var required int64
	for _, rec := range records {
		required += rec.Size
	}

	if opts.DryRun {
		return nil
	}

	enough, err := fsutil.HasEnoughDiskSpace(volumeRoot, uint64(required))
	if err != nil {
		// A volume we cannot stat will fail loudly at copy time instead
		logger.LogWarn("Free-space check unavailable", map[string]interface{}{
			"volume": volumeRoot,
		})
		return nil
	}

	if !enough {
		if !opts.Force {
			return fmt.Errorf("%w: need %d bytes on %s", commonerrors.ErrInsufficientSpace, required, volumeRoot)
		}
		logger.LogWarn("Insufficient free space, proceeding because of force", map[string]interface{}{
			"volume":   volumeRoot,
			"required": required,
		})
	}

	return nil
}

// applyRecord runs the per-record decision ladder and appends the outcome
func applyRecord(rec manifest.Record, stagedRoot, volumeRoot string, opts Options, summary *Summary) {
	destUser := opts.destinationUser(rec.User)

	dest, err := folders.Encode(rec.Path, volumeRoot, destUser)
	if err != nil {
		logger.LogError("Record destination cannot be resolved", err, map[string]interface{}{
			"path": rec.Path,
			"user": destUser,
		})
		summary.Errors++
		return
	}

	source := staging.FilePath(stagedRoot, rec.Path)
	if !fsutil.FileExists(source) {
		record(summary, rec, OutcomeSkippedMissingSource, dest)
		return
	}

	parent := filepath.Dir(dest)
	if !fsutil.DirExists(parent) {
		if opts.DryRun {
			logger.LogInfo("Would create directory", map[string]interface{}{
				"dir": parent,
			})
		} else if err := ensureParent(parent, opts); err != nil {
			if errors.Is(err, commonerrors.ErrConfirmationDeclined) {
				record(summary, rec, OutcomeSkippedNoConfirm, dest)
				return
			}
			logger.LogError("Directory creation failed", err, map[string]interface{}{
				"dir": parent,
			})
			summary.Errors++
			return
		}
	}

	if fsutil.FileExists(dest) && !opts.Overwrite {
		record(summary, rec, OutcomeSkippedExisting, dest)
		return
	}

	if opts.DryRun {
		record(summary, rec, OutcomeCopied, dest)
		return
	}

	if err := fsutil.CopyFile(source, dest); err != nil {
		logger.LogError("Copy failed", err, map[string]interface{}{
			"source":      source,
			"destination": dest,
		})
		summary.Errors++
		return
	}

	record(summary, rec, OutcomeCopied, dest)
}

// ensureParent creates a missing destination directory according to policy.
// A declined or disallowed creation is ErrConfirmationDeclined; anything else
// is a creation fault.
func ensureParent(parent string, opts Options) error {
	switch {
	case opts.Overwrite || opts.DirPolicy == DirAlwaysCreate:
		// fall through to create
	case opts.DirPolicy == DirNeverCreate:
		return fmt.Errorf("%w: %s", commonerrors.ErrConfirmationDeclined, parent)
	default:
		if opts.Confirm == nil || !opts.Confirm(parent) {
			return fmt.Errorf("%w: %s", commonerrors.ErrConfirmationDeclined, parent)
		}
	}

	return fsutil.CreateDirIfNotExists(parent)
}

// record appends one result and bumps its counter
func record(summary *Summary, rec manifest.Record, outcome Outcome, dest string) {
	summary.Results = append(summary.Results, Result{Record: rec, Outcome: outcome, Destination: dest})

	switch outcome {
	case OutcomeCopied:
		summary.Copied++
	case OutcomeSkippedExisting:
		summary.SkippedExisting++
	case OutcomeSkippedMissingSource:
		summary.SkippedMissingSource++
	case OutcomeSkippedNoConfirm:
		summary.SkippedNoConfirmation++
	}

	logger.LogDebug("Record reconciled", map[string]interface{}{
		"path":        rec.Path,
		"outcome":     string(outcome),
		"destination": dest,
	})
}
