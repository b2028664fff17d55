package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Charles8li/weekly-calendar/internal/pipeline"
)

func addPoll(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll the inbox on the configured schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}

			poller := pipeline.NewPoller(app.Runner(), app.Config.Poll.Schedule, app.Log)
			if err := poller.Start(); err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			app.Log.Info("shutting down, waiting for in-flight batch")
			poller.Stop()
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
