package cmd

import (
	"fmt"

	"github.com/profileport/profileport/internal/manifest"
	"github.com/profileport/profileport/internal/staging"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <package.tar|staged-dir>",
	Short: "List the records in a package manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stagedRoot, cleanup, err := resolveStagedRoot(args[0])
		if err != nil {
			return err
		}
		if cleanup != nil {
			defer cleanup()
		}

		m, err := manifest.Load(staging.ManifestPath(stagedRoot))
		if err != nil {
			return err
		}

		for _, rec := range m.Records {
			user := rec.User
			if user == "" {
				user = "-"
			}
			fmt.Printf("%-12s %10d  %s  %s\n", user, rec.Size, rec.ModTime.Format("2006-01-02 15:04:05"), rec.Path)
		}
		fmt.Printf("%d records, %d bytes\n", m.Len(), m.TotalSize())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
