package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Charles8li/weekly-calendar/internal/model"
	"github.com/Charles8li/weekly-calendar/internal/schedule"
	"github.com/Charles8li/weekly-calendar/internal/timeutil"
)

func addMove(topLevel *cobra.Command) {
	var (
		day      string
		start    string
		end      string
		policy   string
		snapless bool
	)
	cmd := &cobra.Command{
		Use:   "move <block-id>",
		Short: "Move a block, resolving conflicts with the configured policy",
		Long: `Proposes a new position for the block and resolves it against the other
blocks of the target day. Series membership propagates the shift to the
remaining occurrences that are not done.`,
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
			cur, ok := findBlock(blocks, id)
			if !ok {
				return fmt.Errorf("block %s not found", id)
			}

			startMin, err := parseClock(start)
			if err != nil {
				return err
			}
			if !snapless {
				startMin = timeutil.Snap(startMin, app.Config.SnapStepMinutes)
			}
			endMin := startMin + timeutil.DurationMinutes(cur.Start, cur.End)
			if end != "" {
				if endMin, err = parseClock(end); err != nil {
					return err
				}
			}
			if endMin <= startMin {
				return fmt.Errorf("end must be after start")
			}
			if day == "" {
				day = timeutil.DateOf(cur.Start.In(app.Loc))
			}

			pol := schedule.Policy(app.Config.Policy)
			if policy != "" {
				pol = schedule.Policy(policy)
			}

			proposal := schedule.Proposal{
				BlockID:  id,
				Day:      day,
				StartMin: startMin,
				EndMin:   endMin,
				Op:       schedule.OpMove,
			}
			return resolveAndCommit(cmd, app, blocks, proposal, pol)
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "target date YYYY-MM-DD (default: the block's current day)")
	cmd.Flags().StringVar(&start, "start", "", "new start, HH:MM")
	cmd.Flags().StringVar(&end, "end", "", "new end, HH:MM (default: keep duration)")
	cmd.Flags().StringVar(&policy, "policy", "", "override the configured conflict policy")
	cmd.Flags().BoolVar(&snapless, "no-snap", false, "do not snap the start to the configured step")
	_ = cmd.MarkFlagRequired("start")

	topLevel.AddCommand(cmd)
}

func addResize(topLevel *cobra.Command) {
	var (
		end    string
		policy string
	)
	cmd := &cobra.Command{
		Use:   "resize <block-id>",
		Short: "Change a block's end time, resolving conflicts with the configured policy",
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

			id := model.BlockID(args[0])
			cur, ok := findBlock(blocks, id)
			if !ok {
				return fmt.Errorf("block %s not found", id)
			}

			endMin, err := parseClock(end)
			if err != nil {
				return err
			}
			startMin := timeutil.MinutesSinceMidnight(cur.Start.In(app.Loc))
			if endMin <= startMin {
				return fmt.Errorf("end must be after start (%s)", cur.Start.In(app.Loc).Format("15:04"))
			}

			pol := schedule.Policy(app.Config.Policy)
			if policy != "" {
				pol = schedule.Policy(policy)
			}

			proposal := schedule.Proposal{
				BlockID:  id,
				Day:      timeutil.DateOf(cur.Start.In(app.Loc)),
				StartMin: startMin,
				EndMin:   endMin,
				Op:       schedule.OpResize,
			}
			return resolveAndCommit(cmd, app, blocks, proposal, pol)
		},
	}
	cmd.Flags().StringVar(&end, "end", "", "new end, HH:MM")
	cmd.Flags().StringVar(&policy, "policy", "", "override the configured conflict policy")
	_ = cmd.MarkFlagRequired("end")

	topLevel.AddCommand(cmd)
}

func resolveAndCommit(cmd *cobra.Command, app *App, blocks []model.Block, p schedule.Proposal, pol schedule.Policy) error {
	placement, notice := app.Resolver().Resolve(blocks, p, pol)
	if notice != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", notice.Code, notice.Message)
		return nil
	}

	out, err := schedule.CommitPlacement(blocks, p.BlockID, placement, p.Op, app.Loc)
	if err != nil {
		return err
	}
	if err := app.Repo.SaveBlocks(out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s → %s %s–%s\n",
		p.BlockID, placement.Day,
		clockString(placement.StartMin), clockString(placement.EndMin))
	return nil
}

func findBlock(blocks []model.Block, id model.BlockID) (model.Block, bool) {
	for _, b := range blocks {
		if b.ID == id {
			return b, true
		}
	}
	return model.Block{}, false
}

func clockString(min int) string {
	return time.Date(0, 1, 1, 0, min, 0, 0, time.UTC).Format("15:04")
}
