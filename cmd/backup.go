package cmd

import (
	"fmt"
	"strings"

	"github.com/profileport/profileport/internal/config"
	"github.com/profileport/profileport/internal/cryptoutil"
	"github.com/profileport/profileport/internal/fsutil"
	"github.com/profileport/profileport/internal/logger"
	"github.com/profileport/profileport/internal/manifest"
	"github.com/profileport/profileport/internal/scan"
	"github.com/profileport/profileport/internal/staging"
	"github.com/profileport/profileport/internal/users"
	"github.com/spf13/cobra"
)

var (
	backupSource   string
	backupOutput   string
	backupUsers    []string
	backupSkipHash bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Catalog and package user files from a source volume",
	Long: `backup scans the selected users' profile trees on the source volume,
builds a manifest of symbolic paths with size, timestamp and content hash,
and materializes a staged package. With a .tar output the staged tree is
archived; otherwise it is left as a directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := backupUsers
		if len(names) == 0 {
			var err error
			names, err = users.List(backupSource)
			if err != nil {
				return fmt.Errorf("discovering users on %s: %w", backupSource, err)
			}
		}
		if len(names) == 0 {
			return fmt.Errorf("no user profiles found on %s", backupSource)
		}

		paths, err := scan.UserFiles(backupSource, names)
		if err != nil {
			return fmt.Errorf("scanning source volume: %w", err)
		}

		var hasher cryptoutil.Hasher
		if !backupSkipHash && !config.Instance.Backup.SkipHash {
			hasher, err = newConfiguredHasher()
			if err != nil {
				return err
			}
		}

		m := manifest.Build(paths, backupSource, users.Resolve, hasher)
		logger.LogInfo("Manifest built", map[string]interface{}{
			"records":     m.Len(),
			"total_bytes": m.TotalSize(),
			"users":       strings.Join(m.Users(), ","),
		})

		if strings.HasSuffix(backupOutput, ".tar") {
			stagedRoot, err := fsutil.CreateTempDirIn(config.Instance.Backup.TempDir, "staging-")
			if err != nil {
				return fmt.Errorf("creating staging directory: %w", err)
			}
			defer fsutil.DeleteDirRecursive(stagedRoot)

			if err := staging.Materialize(m, backupSource, stagedRoot); err != nil {
				return err
			}
			if err := staging.Package(stagedRoot, backupOutput); err != nil {
				return err
			}
		} else {
			if err := staging.Materialize(m, backupSource, backupOutput); err != nil {
				return err
			}
		}

		fmt.Printf("Packaged %d files (%d bytes) to %s\n", m.Len(), m.TotalSize(), backupOutput)
		return nil
	},
}

// newConfiguredHasher builds the digest primitive selected in configuration
func newConfiguredHasher() (cryptoutil.Hasher, error) {
	algorithm := cryptoutil.HashAlgorithm(config.Instance.Hash.Algorithm)
	if algorithm == "" {
		algorithm = cryptoutil.DefaultAlgorithm
	}
	return cryptoutil.NewHasher(algorithm)
}

func init() {
	backupCmd.Flags().StringVar(&backupSource, "source", "", "source volume root")
	backupCmd.Flags().StringVar(&backupOutput, "output", "", "output package (.tar) or staged directory")
	backupCmd.Flags().StringSliceVar(&backupUsers, "user", nil, "user to include (repeatable; default all)")
	backupCmd.Flags().BoolVar(&backupSkipHash, "skip-hash", false, "build a size-only manifest")
	backupCmd.MarkFlagRequired("source")
	backupCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(backupCmd)
}
