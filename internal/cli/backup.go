package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Charles8li/weekly-calendar/internal/ops"
)

func addBackup(topLevel *cobra.Command) {
	var out string
	backup := &cobra.Command{
		Use:   "backup",
		Short: "Archive the data directory as a .tar.gz snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join("backups", ops.ArchiveName(time.Now()))
			}
			if err := ops.Snapshot(app.Config.DataDir, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	backup.Flags().StringVarP(&out, "out", "o", "", "archive path (default backups/weekcal-<timestamp>.tar.gz)")

	restore := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Restore the data directory from a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			if err := ops.Restore(args[0], app.Config.DataDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s into %s\n", args[0], app.Config.DataDir)
			return nil
		},
	}

	topLevel.AddCommand(backup)
	topLevel.AddCommand(restore)
}
