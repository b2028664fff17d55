package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Charles8li/weekly-calendar/internal/model"
	"github.com/Charles8li/weekly-calendar/internal/schedule"
)

func addComplete(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "complete <block-id>",
		Short: "Mark a block done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			blocks, err := app.Repo.LoadBlocks()
			if err != nil {
				return err
			}

			out, err := schedule.CompleteBlock(blocks, model.BlockID(args[0]))
			if err != nil {
				return fmt.Errorf("block %s: %w", args[0], err)
			}
			if err := app.Repo.SaveBlocks(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s done\n", args[0])
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command) {
	var series bool
	cmd := &cobra.Command{
		Use:   "delete <block-id>",
		Short: "Delete a block, or its whole series with --series",
		Long: `Deleting one occurrence of a recurring block records the date as an
exception so the recurrence pass does not regenerate it. --series removes
every occurrence sharing the block's series.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			blocks, err := app.Repo.LoadBlocks()
			if err != nil {
				return err
			}

			id := model.BlockID(args[0])
			var out []model.Block
			if series {
				b, ok := findBlock(blocks, id)
				if !ok {
					return fmt.Errorf("block %s: %w", id, schedule.ErrNotFound)
				}
				if !b.InSeries() {
					return fmt.Errorf("block %s is not part of a series", id)
				}
				out, err = schedule.DeleteSeries(blocks, b.Recurrence.ID)
			} else {
				out, err = schedule.DeleteOccurrence(blocks, id, app.Loc)
			}
			if err != nil {
				return fmt.Errorf("block %s: %w", id, err)
			}
			if err := app.Repo.SaveBlocks(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d block(s)\n", len(blocks)-len(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&series, "series", false, "delete every occurrence of the block's series")

	topLevel.AddCommand(cmd)
}
