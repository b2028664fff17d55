package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, "block", c.Policy)
	assert.Equal(t, 5, c.SnapStepMinutes)
	assert.Equal(t, 7, c.Horizon.PastDays)
	assert.Equal(t, 35, c.Horizon.FutureDays)
	assert.Equal(t, 0, c.Waking.StartMinute)
	assert.Equal(t, 1440, c.Waking.EndMinute)
	assert.Equal(t, time.Monday, c.WeekStartWeekday())
	assert.NoError(t, c.Validate())
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "block", c.Policy)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "policy: push\nweek_start: sunday\nwaking:\n  start_minute: 420\n  end_minute: 1380\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "push", c.Policy)
	assert.Equal(t, time.Sunday, c.WeekStartWeekday())
	assert.Equal(t, 420, c.Waking.StartMinute)
	assert.Equal(t, 1380, c.Waking.EndMinute)
}

func TestLoad_BadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy: shuffle\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WEEKCAL_POLICY", "clip")
	t.Setenv("WEEKCAL_SNAP_STEP", "15")

	c := Default()
	c.ApplyEnv()

	assert.Equal(t, "clip", c.Policy)
	assert.Equal(t, 15, c.SnapStepMinutes)
}
