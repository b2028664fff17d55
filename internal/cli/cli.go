// Package cli wires the calendar engine into a cobra command tree.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Charles8li/weekly-calendar/internal/config"
	"github.com/Charles8li/weekly-calendar/internal/pipeline"
	"github.com/Charles8li/weekly-calendar/internal/recurrence"
	"github.com/Charles8li/weekly-calendar/internal/schedule"
	"github.com/Charles8li/weekly-calendar/internal/store"
)

var (
	cfgPath string
	verbose bool
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "weekcal",
		Short:         "Personal weekly calendar: blocks, recurrence and a command inbox.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&cfgPath, "config", "weekcal.yaml", "path to the YAML config file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	addApply(cmd)
	addPoll(cmd)
	addAgenda(cmd)
	addMove(cmd)
	addResize(cmd)
	addComplete(cmd)
	addDelete(cmd)
	addExport(cmd)
	addBackup(cmd)
	return cmd
}

// App holds everything a subcommand needs, built once per invocation.
type App struct {
	Config *config.Config
	Log    *logrus.Logger
	Repo   *store.Repo
	Loc    *time.Location
}

func loadApp() (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	loc := time.Local
	engine := recurrence.NewEngine(cfg.Horizon.PastDays, cfg.Horizon.FutureDays, cfg.WeekStartWeekday(), loc)

	blobs, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	repo := store.NewRepo(blobs, engine, log)

	return &App{Config: cfg, Log: log, Repo: repo, Loc: loc}, nil
}

func (a *App) Resolver() *schedule.Resolver {
	return schedule.NewResolver(
		a.Config.SnapStepMinutes,
		a.Config.Waking.StartMinute,
		a.Config.Waking.EndMinute,
		a.Loc,
	)
}

func (a *App) Runner() *pipeline.Runner {
	return pipeline.NewRunner(a.Repo, pipeline.NewApplier(a.Loc), a.Log)
}

// parseClock parses "HH:MM" into a minute-of-day value.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value out of range: %q", s)
	}
	return h*60 + m, nil
}
