package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Charles8li/weekly-calendar/internal/export"
	"github.com/Charles8li/weekly-calendar/internal/model"
	"github.com/Charles8li/weekly-calendar/internal/timeutil"
)

func addAgenda(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "agenda [date]",
		Short: "List the blocks of one day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}

			day := timeutil.DateOf(time.Now().In(app.Loc))
			if len(args) == 1 {
				if _, err := time.Parse(timeutil.DateLayout, args[0]); err != nil {
					return fmt.Errorf("invalid date %q, want YYYY-MM-DD", args[0])
				}
				day = args[0]
			}

			tasks, err := app.Repo.LoadTasks()
			if err != nil {
				return err
			}
			blocks, err := app.Repo.LoadBlocks()
			if err != nil {
				return err
			}

			titles := map[model.TaskID]string{}
			for _, t := range tasks {
				titles[t.ID] = t.Title
			}

			var today []model.Block
			for _, b := range blocks {
				if timeutil.DateOf(b.Start.In(app.Loc)) == day {
					today = append(today, b)
				}
			}
			sort.Slice(today, func(i, j int) bool { return today[i].Start.Before(today[j].Start) })

			fmt.Fprintln(cmd.OutOrStdout(), day)
			if len(today) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "  (no blocks)")
				return nil
			}
			for _, b := range today {
				marker := " "
				if b.InSeries() {
					marker = "↻"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s–%s %s %s  (%s)\n",
					statusGlyph(b.Status),
					b.Start.In(app.Loc).Format("15:04"),
					b.End.In(app.Loc).Format("15:04"),
					marker,
					export.BlockTitle(b, titles),
					b.ID,
				)
			}
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func statusGlyph(s model.BlockStatus) string {
	switch s {
	case model.StatusDone:
		return "✓"
	case model.StatusInProgress:
		return "▶"
	case model.StatusSkipped:
		return "–"
	default:
		return "·"
	}
}
