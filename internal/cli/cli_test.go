package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Charles8li/weekly-calendar/internal/model"
)

func TestParseClock(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{" 9:05 ", 545, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"noon", 0, false},
		{"12", 0, false},
	} {
		got, err := parseClock(tc.in)
		if tc.ok {
			assert.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got, tc.in)
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}

func TestClockString(t *testing.T) {
	assert.Equal(t, "09:30", clockString(570))
	assert.Equal(t, "00:00", clockString(0))
}

func TestStatusGlyph(t *testing.T) {
	assert.Equal(t, "✓", statusGlyph(model.StatusDone))
	assert.Equal(t, "·", statusGlyph(model.StatusPlanned))
}
