package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/profileport/profileport/internal/config"
	"github.com/profileport/profileport/internal/fsutil"
	"github.com/profileport/profileport/internal/manifest"
	"github.com/profileport/profileport/internal/restore"
	"github.com/profileport/profileport/internal/staging"
	"github.com/spf13/cobra"
)

var (
	restoreDest       string
	restoreOnlyUser   string
	restoreOnlyFolder string
	restoreUserMaps   []string
	restoreDryRun     bool
	restoreOverwrite  bool
	restoreForce      bool
	restoreYes        bool
	restoreVerifyOnly bool
	restoreSkipVerify bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore <package.tar|staged-dir>",
	Short: "Reconcile a package against a target volume",
	Long: `restore maps each manifest record to a concrete destination on the
target volume, applying user renaming and filters, and copies staged content
according to the overwrite policy. Per-file problems are skips, not failures;
the run summary reports every outcome.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stagedRoot, cleanup, err := resolveStagedRoot(args[0])
		if err != nil {
			return err
		}
		if cleanup != nil {
			defer cleanup()
		}

		if err := staging.CheckLayout(stagedRoot); err != nil {
			return err
		}

		m, err := manifest.Load(staging.ManifestPath(stagedRoot))
		if err != nil {
			return err
		}

		if !restoreSkipVerify || restoreVerifyOnly {
			hasher, err := newConfiguredHasher()
			if err != nil {
				return err
			}
			report := staging.Validate(m, stagedRoot, hasher)
			fmt.Printf("Verified %d records: %d ok, %d missing, %d size mismatch, %d hash mismatch\n",
				len(report.Results), report.OK, report.Missing, report.SizeMismatch, report.HashMismatch)
			if restoreVerifyOnly {
				return report.Err()
			}
			if !report.Valid {
				fmt.Println("Continuing despite verification mismatches; affected files may be skipped or restored as staged")
			}
		}

		userMap, err := parseUserMaps(restoreUserMaps)
		if err != nil {
			return err
		}

		opts := restore.Options{
			UserMap:    userMap,
			OnlyUser:   restoreOnlyUser,
			OnlyFolder: restoreOnlyFolder,
			Overwrite:  restoreOverwrite || config.Instance.Restore.Overwrite,
			DryRun:     restoreDryRun,
			Force:      restoreForce,
		}
		if restoreYes || config.Instance.Restore.AutoConfirm {
			opts.DirPolicy = restore.DirAlwaysCreate
		} else {
			opts.DirPolicy = restore.DirConfirm
			opts.Confirm = promptDirCreation
		}

		summary, err := restore.Apply(m, stagedRoot, restoreDest, opts)
		if err != nil {
			return err
		}

		printSummary(summary, restoreDryRun)
		return nil
	},
}

// resolveStagedRoot accepts either an already-extracted staged directory or a
// .tar package, which is extracted into scratch space for the run
func resolveStagedRoot(path string) (string, func(), error) {
	if fsutil.DirExists(path) {
		return path, nil, nil
	}

	if !fsutil.FileExists(path) {
		return "", nil, fmt.Errorf("package not found: %s", path)
	}

	stagedRoot, err := fsutil.CreateTempDirIn(config.Instance.Backup.TempDir, "restore-")
	if err != nil {
		return "", nil, fmt.Errorf("creating extraction directory: %w", err)
	}

	if err := staging.Extract(path, stagedRoot); err != nil {
		fsutil.DeleteDirRecursive(stagedRoot)
		return "", nil, err
	}

	return stagedRoot, func() { fsutil.DeleteDirRecursive(stagedRoot) }, nil
}

// parseUserMaps parses repeated origin:destination pairs
func parseUserMaps(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		origin, dest, ok := strings.Cut(pair, ":")
		if !ok || origin == "" || dest == "" {
			return nil, fmt.Errorf("invalid user mapping %q, expected origin:destination", pair)
		}
		out[origin] = dest
	}
	return out, nil
}

// promptDirCreation asks on the terminal before creating a directory
func promptDirCreation(dir string) bool {
	fmt.Printf("Create directory %s? [y/N]: ", dir)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.TrimSpace(strings.ToLower(line))
	return answer == "y" || answer == "yes"
}

// printSummary writes the user-facing copied/skipped/total totals
func printSummary(summary *restore.Summary, dryRun bool) {
	verb := "Restored"
	if dryRun {
		verb = "Would restore"
	}
	fmt.Printf("%s %d of %d considered records (%d total): %d existing, %d missing source, %d unconfirmed, %d errors\n",
		verb, summary.Copied, summary.Considered, summary.Total,
		summary.SkippedExisting, summary.SkippedMissingSource, summary.SkippedNoConfirmation, summary.Errors)
}

func init() {
	restoreCmd.Flags().StringVar(&restoreDest, "dest", "", "target volume root")
	restoreCmd.Flags().StringVar(&restoreOnlyUser, "user", "", "restore only records owned by this user")
	restoreCmd.Flags().StringVar(&restoreOnlyFolder, "folder", "", "restore only records under this known folder")
	restoreCmd.Flags().StringSliceVar(&restoreUserMaps, "map", nil, "rename a user, origin:destination (repeatable)")
	restoreCmd.Flags().BoolVar(&restoreDryRun, "dry-run", false, "report decisions without writing")
	restoreCmd.Flags().BoolVar(&restoreOverwrite, "overwrite", false, "replace existing destination files")
	restoreCmd.Flags().BoolVar(&restoreForce, "force", false, "proceed even when free space looks insufficient")
	restoreCmd.Flags().BoolVar(&restoreYes, "yes", false, "create missing directories without prompting")
	restoreCmd.Flags().BoolVar(&restoreVerifyOnly, "verify-only", false, "verify the package and stop")
	restoreCmd.Flags().BoolVar(&restoreSkipVerify, "skip-verify", false, "skip package verification")
	restoreCmd.MarkFlagRequired("dest")

	rootCmd.AddCommand(restoreCmd)
}
