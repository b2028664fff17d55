package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Charles8li/weekly-calendar/internal/timeutil"
)

// Config is the top-level application configuration. It is loaded once and
// passed explicitly into the resolver and pipeline; the engine holds no
// ambient settings.
type Config struct {
	// DataDir is the blob-store directory for tasks, blocks, inbox and
	// outbox records.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// Policy is the default conflict-resolution policy for interactive
	// move/resize operations: allow, block, push or clip.
	Policy string `yaml:"policy" json:"policy"`

	// SnapStepMinutes is the drag-snap granularity and the minimum block
	// length the clip policy preserves.
	SnapStepMinutes int `yaml:"snap_step_minutes" json:"snap_step_minutes"`

	// WeekStart is "monday" (default) or "sunday". It decides week
	// boundaries for weekly recurrence intervals and agenda rendering.
	WeekStart string `yaml:"week_start" json:"week_start"`

	Horizon HorizonConfig `yaml:"horizon" json:"horizon"`
	Waking  WakingConfig  `yaml:"waking" json:"waking"`
	Poll    PollConfig    `yaml:"poll" json:"poll"`
}

// HorizonConfig bounds the rolling window recurrence materialization keeps
// populated, in days relative to now.
type HorizonConfig struct {
	PastDays   int `yaml:"past_days" json:"past_days"`
	FutureDays int `yaml:"future_days" json:"future_days"`
}

// WakingConfig narrows the day bounds the push policy may place blocks in.
// The defaults cover the whole day, [0, 1440).
type WakingConfig struct {
	StartMinute int `yaml:"start_minute" json:"start_minute"`
	EndMinute   int `yaml:"end_minute" json:"end_minute"`
}

type PollConfig struct {
	// Schedule is a robfig/cron spec, e.g. "@every 5s".
	Schedule string `yaml:"schedule" json:"schedule"`
}

func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Policy == "" {
		c.Policy = "block"
	}
	if c.SnapStepMinutes <= 0 {
		c.SnapStepMinutes = 5
	}
	if c.WeekStart == "" {
		c.WeekStart = "monday"
	}
	if c.Horizon.PastDays <= 0 {
		c.Horizon.PastDays = 7
	}
	if c.Horizon.FutureDays <= 0 {
		c.Horizon.FutureDays = 35
	}
	if c.Waking.EndMinute <= 0 || c.Waking.EndMinute > timeutil.DayMinutes {
		c.Waking.EndMinute = timeutil.DayMinutes
	}
	if c.Waking.StartMinute < 0 || c.Waking.StartMinute >= c.Waking.EndMinute {
		c.Waking.StartMinute = 0
	}
	if c.Poll.Schedule == "" {
		c.Poll.Schedule = "@every 5s"
	}
}

func (c *Config) Validate() error {
	switch c.Policy {
	case "allow", "block", "push", "clip":
	default:
		return fmt.Errorf("config: unknown policy %q", c.Policy)
	}
	return nil
}

// WeekStartWeekday resolves the configured week start.
func (c *Config) WeekStartWeekday() time.Weekday {
	return timeutil.WeekStartDay(c.WeekStart)
}

// Load reads the YAML config at path. A missing file yields the defaults so
// first runs need no setup.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
