package config

import (
	"os"
	"strconv"
)

// ApplyEnv overlays environment overrides onto c. Called after Load so a
// container deployment can steer the CLI without editing the config file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("WEEKCAL_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("WEEKCAL_POLICY"); v != "" {
		c.Policy = v
	}
	if v := os.Getenv("WEEKCAL_WEEK_START"); v != "" {
		c.WeekStart = v
	}
	if v := os.Getenv("WEEKCAL_POLL_SCHEDULE"); v != "" {
		c.Poll.Schedule = v
	}
	if v := getEnvInt("WEEKCAL_SNAP_STEP"); v > 0 {
		c.SnapStepMinutes = v
	}
	if v := getEnvInt("WEEKCAL_HORIZON_PAST_DAYS"); v > 0 {
		c.Horizon.PastDays = v
	}
	if v := getEnvInt("WEEKCAL_HORIZON_FUTURE_DAYS"); v > 0 {
		c.Horizon.FutureDays = v
	}
}

func getEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
