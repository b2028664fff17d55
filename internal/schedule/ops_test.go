package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charles8li/weekly-calendar/internal/model"
	"github.com/Charles8li/weekly-calendar/internal/timeutil"
)

func seriesMember(id, date string, startMin int, status model.BlockStatus) model.Block {
	start, _ := timeutil.AtMinute(date, startMin, time.UTC)
	return model.Block{
		ID:     model.BlockID(id),
		Start:  start,
		End:    start.Add(time.Hour),
		Status: status,
		Rev:    1,
		Recurrence: &model.BlockRecurrence{
			ID:          "series_a",
			Type:        model.RecurDaily,
			Interval:    1,
			StartDate:   "2024-01-01",
			StartMinute: startMin,
			Duration:    60,
		},
	}
}

func TestMoveBlock_PropagatesToNonDoneMembers(t *testing.T) {
	blocks := []model.Block{
		seriesMember("b1", "2024-01-01", 540, model.StatusPlanned),
		seriesMember("b2", "2024-01-02", 540, model.StatusPlanned),
		seriesMember("b3", "2024-01-03", 540, model.StatusDone),
	}

	newStart, _ := timeutil.AtMinute("2024-01-01", 570, time.UTC)
	out, err := MoveBlock(blocks, "b1", newStart, newStart.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 570, timeutil.MinutesSinceMidnight(out[0].Start))
	assert.Equal(t, 2, out[0].Rev)

	// Non-done sibling shifts by the same +30 minutes.
	assert.Equal(t, 570, timeutil.MinutesSinceMidnight(out[1].Start))
	assert.Equal(t, "2024-01-02", timeutil.DateOf(out[1].Start))
	assert.Equal(t, 2, out[1].Rev)

	// Done member stays historically accurate.
	assert.Equal(t, 540, timeutil.MinutesSinceMidnight(out[2].Start))
	assert.Equal(t, 1, out[2].Rev)
}

func TestMoveBlock_StandaloneBlockTouchesNothingElse(t *testing.T) {
	solo := model.Block{ID: "solo", Start: time.Now(), End: time.Now().Add(time.Hour), Rev: 1}
	other := seriesMember("b1", "2024-01-01", 540, model.StatusPlanned)
	blocks := []model.Block{solo, other}

	out, err := MoveBlock(blocks, "solo", solo.Start.Add(time.Hour), solo.End.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, out[1].Rev)
}

func TestResizeBlock_PropagatesDuration(t *testing.T) {
	blocks := []model.Block{
		seriesMember("b1", "2024-01-01", 540, model.StatusPlanned),
		seriesMember("b2", "2024-01-02", 540, model.StatusPlanned),
		seriesMember("b3", "2024-01-03", 540, model.StatusDone),
	}

	newEnd, _ := timeutil.AtMinute("2024-01-01", 630, time.UTC)
	out, err := ResizeBlock(blocks, "b1", newEnd)
	require.NoError(t, err)

	assert.Equal(t, 90, timeutil.DurationMinutes(out[0].Start, out[0].End))
	// Sibling keeps its own start, takes the new duration.
	assert.Equal(t, 540, timeutil.MinutesSinceMidnight(out[1].Start))
	assert.Equal(t, 90, timeutil.DurationMinutes(out[1].Start, out[1].End))
	// Done member untouched.
	assert.Equal(t, 60, timeutil.DurationMinutes(out[2].Start, out[2].End))
}

func TestDeleteOccurrence_RecordsException(t *testing.T) {
	blocks := []model.Block{
		seriesMember("b1", "2024-01-01", 540, model.StatusPlanned),
		seriesMember("b2", "2024-01-02", 540, model.StatusPlanned),
		seriesMember("b3", "2024-01-03", 540, model.StatusPlanned),
	}

	out, err := DeleteOccurrence(blocks, "b2", time.UTC)
	require.NoError(t, err)
	require.Len(t, out, 2)

	for _, b := range out {
		require.NotNil(t, b.Recurrence)
		assert.Equal(t, []string{"2024-01-02"}, b.Recurrence.Exceptions)
	}
}

func TestDeleteOccurrence_NonSeriesBlock(t *testing.T) {
	solo := model.Block{ID: "solo", Start: time.Now(), End: time.Now().Add(time.Hour)}
	out, err := DeleteOccurrence([]model.Block{solo}, "solo", time.UTC)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDeleteSeries_RemovesAllMembers(t *testing.T) {
	solo := model.Block{ID: "solo", Start: time.Now(), End: time.Now().Add(time.Hour)}
	blocks := []model.Block{
		seriesMember("b1", "2024-01-01", 540, model.StatusPlanned),
		solo,
		seriesMember("b2", "2024-01-02", 540, model.StatusDone),
	}

	out, err := DeleteSeries(blocks, "series_a")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, model.BlockID("solo"), out[0].ID)
}

func TestDeleteSeries_Unknown(t *testing.T) {
	_, err := DeleteSeries(nil, "series_zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteBlock(t *testing.T) {
	blocks := []model.Block{seriesMember("b1", "2024-01-01", 540, model.StatusPlanned)}
	out, err := CompleteBlock(blocks, "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, out[0].Status)
	assert.Equal(t, 2, out[0].Rev)
}

func TestOps_NotFound(t *testing.T) {
	_, err := MoveBlock(nil, "missing", time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ResizeBlock(nil, "missing", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = CompleteBlock(nil, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
