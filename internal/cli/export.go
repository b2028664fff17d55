package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Charles8li/weekly-calendar/internal/export"
	"github.com/Charles8li/weekly-calendar/internal/timeutil"
)

func addExport(topLevel *cobra.Command) {
	var (
		from string
		to   string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export blocks as an iCalendar (.ics) file",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}

			now := time.Now().In(app.Loc)
			fromT := timeutil.StartOfDay(now.AddDate(0, 0, -app.Config.Horizon.PastDays))
			toT := timeutil.StartOfDay(now.AddDate(0, 0, app.Config.Horizon.FutureDays+1))
			if from != "" {
				d, err := time.ParseInLocation(timeutil.DateLayout, from, app.Loc)
				if err != nil {
					return fmt.Errorf("invalid --from %q, want YYYY-MM-DD", from)
				}
				fromT = d
			}
			if to != "" {
				d, err := time.ParseInLocation(timeutil.DateLayout, to, app.Loc)
				if err != nil {
					return fmt.Errorf("invalid --to %q, want YYYY-MM-DD", to)
				}
				toT = d.AddDate(0, 0, 1) // inclusive end date
			}

			tasks, err := app.Repo.LoadTasks()
			if err != nil {
				return err
			}
			blocks, err := app.Repo.LoadBlocks()
			if err != nil {
				return err
			}

			ics := export.BuildBlocksICS(blocks, tasks, fromT, toT, now)
			if out == "" || out == "-" {
				fmt.Fprint(cmd.OutOrStdout(), ics)
				return nil
			}
			if err := os.WriteFile(out, []byte(ics), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date to export, YYYY-MM-DD (default: horizon start)")
	cmd.Flags().StringVar(&to, "to", "", "last date to export, inclusive (default: horizon end)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path, - for stdout")

	topLevel.AddCommand(cmd)
}
