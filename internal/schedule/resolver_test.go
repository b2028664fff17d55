package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charles8li/weekly-calendar/internal/model"
	"github.com/Charles8li/weekly-calendar/internal/timeutil"
)

const day = "2024-01-15"

func blockAt(id string, startMin, endMin int) model.Block {
	start, _ := timeutil.AtMinute(day, startMin, time.UTC)
	end, _ := timeutil.AtMinute(day, endMin, time.UTC)
	return model.Block{
		ID:     model.BlockID(id),
		Start:  start,
		End:    end,
		Status: model.StatusPlanned,
		Rev:    1,
	}
}

func newTestResolver() *Resolver {
	return NewResolver(5, 0, timeutil.DayMinutes, time.UTC)
}

func TestResolve_NonConflictingAlwaysCommits(t *testing.T) {
	blocks := []model.Block{blockAt("b1", 540, 600)}
	p := Proposal{BlockID: "b2", Day: day, StartMin: 600, EndMin: 660, Op: OpMove}

	for _, policy := range []Policy{PolicyAllow, PolicyBlock, PolicyPush, PolicyClip} {
		pl, notice := newTestResolver().Resolve(blocks, p, policy)
		assert.Nil(t, notice, "policy %s", policy)
		assert.Equal(t, Placement{Day: day, StartMin: 600, EndMin: 660}, pl, "policy %s", policy)
	}
}

func TestResolve_AllowIgnoresOverlap(t *testing.T) {
	blocks := []model.Block{blockAt("b1", 540, 600)}
	p := Proposal{BlockID: "b2", Day: day, StartMin: 550, EndMin: 610, Op: OpMove}

	pl, notice := newTestResolver().Resolve(blocks, p, PolicyAllow)
	assert.Nil(t, notice)
	assert.Equal(t, 550, pl.StartMin)
}

func TestResolve_BlockSuppressesOnConflict(t *testing.T) {
	blocks := []model.Block{blockAt("b1", 540, 600)}
	p := Proposal{BlockID: "b2", Day: day, StartMin: 550, EndMin: 610, Op: OpMove}

	_, notice := newTestResolver().Resolve(blocks, p, PolicyBlock)
	require.NotNil(t, notice)
	assert.Equal(t, "conflict", notice.Code)
	assert.Equal(t, model.BlockID("b2"), notice.BlockID)
}

func TestResolve_PushFindsFirstGap(t *testing.T) {
	// 09:00-10:00 and 11:00-12:00 occupied; a 60-minute block proposed at
	// 09:30 must land at 10:00-11:00.
	blocks := []model.Block{
		blockAt("b1", 540, 600),
		blockAt("b2", 660, 720),
	}
	p := Proposal{BlockID: "b3", Day: day, StartMin: 570, EndMin: 630, Op: OpMove}

	pl, notice := newTestResolver().Resolve(blocks, p, PolicyPush)
	require.Nil(t, notice)
	assert.Equal(t, Placement{Day: day, StartMin: 600, EndMin: 660}, pl)
}

func TestResolve_PushNoGap(t *testing.T) {
	// One block occupying from 09:00 to end of day leaves no room.
	blocks := []model.Block{blockAt("b1", 540, 1440)}
	p := Proposal{BlockID: "b2", Day: day, StartMin: 550, EndMin: 610, Op: OpMove}

	_, notice := newTestResolver().Resolve(blocks, p, PolicyPush)
	require.NotNil(t, notice)
	assert.Equal(t, "no_gap", notice.Code)
}

func TestResolve_PushRespectsDayBounds(t *testing.T) {
	// Waking window ends at 10:00; the only gap after the proposal is past
	// the bound, so the push fails.
	r := NewResolver(5, 0, 600, time.UTC)
	blocks := []model.Block{blockAt("b1", 540, 600)}
	p := Proposal{BlockID: "b2", Day: day, StartMin: 550, EndMin: 610, Op: OpMove}

	_, notice := r.Resolve(blocks, p, PolicyPush)
	require.NotNil(t, notice)
	assert.Equal(t, "no_gap", notice.Code)
}

func TestResolve_PushOnResizeBehavesLikeBlock(t *testing.T) {
	blocks := []model.Block{blockAt("b1", 600, 660)}
	p := Proposal{BlockID: "b2", Day: day, StartMin: 540, EndMin: 630, Op: OpResize}

	_, notice := newTestResolver().Resolve(blocks, p, PolicyPush)
	require.NotNil(t, notice)
	assert.Equal(t, "conflict", notice.Code)
}

func TestResolve_ClipResizeTruncatesToSiblingStart(t *testing.T) {
	// Sibling starts at 10:00; resizing 09:00 -> 11:00 clips the end to 10:00.
	blocks := []model.Block{blockAt("b1", 600, 660)}
	p := Proposal{BlockID: "b2", Day: day, StartMin: 540, EndMin: 660, Op: OpResize}

	pl, notice := newTestResolver().Resolve(blocks, p, PolicyClip)
	require.Nil(t, notice)
	assert.Equal(t, Placement{Day: day, StartMin: 540, EndMin: 600}, pl)
}

func TestResolve_ClipMoveKeepsProposedStart(t *testing.T) {
	blocks := []model.Block{blockAt("b1", 620, 700)}
	p := Proposal{BlockID: "b2", Day: day, StartMin: 600, EndMin: 660, Op: OpMove}

	pl, notice := newTestResolver().Resolve(blocks, p, PolicyClip)
	require.Nil(t, notice)
	assert.Equal(t, Placement{Day: day, StartMin: 600, EndMin: 620}, pl)
}

func TestResolve_ClipHonorsMinimumGranularity(t *testing.T) {
	// Sibling starts 2 minutes after the proposal; the clipped block still
	// keeps one snap step of length.
	blocks := []model.Block{blockAt("b1", 542, 700)}
	p := Proposal{BlockID: "b2", Day: day, StartMin: 540, EndMin: 660, Op: OpMove}

	pl, notice := newTestResolver().Resolve(blocks, p, PolicyClip)
	require.Nil(t, notice)
	assert.Equal(t, 545, pl.EndMin)
}

func TestResolve_ClipWithoutLaterSiblingCommitsUnchanged(t *testing.T) {
	// The only overlap starts before the proposed start; there is no
	// boundary to truncate to.
	blocks := []model.Block{blockAt("b1", 500, 580)}
	p := Proposal{BlockID: "b2", Day: day, StartMin: 540, EndMin: 660, Op: OpMove}

	pl, notice := newTestResolver().Resolve(blocks, p, PolicyClip)
	require.Nil(t, notice)
	assert.Equal(t, Placement{Day: day, StartMin: 540, EndMin: 660}, pl)
}

func TestResolve_ExcludesSubjectBlock(t *testing.T) {
	// A block never conflicts with itself.
	blocks := []model.Block{blockAt("b1", 540, 600)}
	p := Proposal{BlockID: "b1", Day: day, StartMin: 550, EndMin: 610, Op: OpMove}

	_, notice := newTestResolver().Resolve(blocks, p, PolicyBlock)
	assert.Nil(t, notice)
}
