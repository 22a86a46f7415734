package cmd

import (
	"fmt"

	"github.com/profileport/profileport/internal/manifest"
	"github.com/profileport/profileport/internal/staging"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <package.tar|staged-dir>",
	Short: "Check staged content against its manifest",
	Args:  cobra.ExactArgs(1),
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

		hasher, err := newConfiguredHasher()
		if err != nil {
			return err
		}

		report := staging.Validate(m, stagedRoot, hasher)
		for _, result := range report.Results {
			if result.Status != staging.StatusOK {
				fmt.Printf("%-14s %s\n", result.Status, result.Record.Path)
			}
		}
		fmt.Printf("Verified %d records: %d ok, %d missing, %d size mismatch, %d hash mismatch\n",
			len(report.Results), report.OK, report.Missing, report.SizeMismatch, report.HashMismatch)

		return report.Err()
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
