package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Charles8li/weekly-calendar/internal/store"
)

func addApply(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the inbox batch once",
		Long: `Reads the inbox blob, applies every command envelope in order and
appends the per-command results to a timestamped outbox record. An inbox
whose content is unchanged since the last run is skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}

			report, err := app.Runner().Run(store.KeyInbox)
			if err != nil {
				return err
			}
			if report.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "inbox unchanged, nothing applied")
				return nil
			}

			ok := 0
			for _, res := range report.Results {
				if res.OK {
					ok++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d command(s), %d ok, results in %s\n",
				len(report.Results), ok, report.OutboxKey)
			for _, res := range report.Results {
				if !res.OK {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", res.For, res.Error)
				}
			}
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
