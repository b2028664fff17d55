package schedule

import (
	"errors"
	"time"

	"github.com/Charles8li/weekly-calendar/internal/model"
	"github.com/Charles8li/weekly-calendar/internal/timeutil"
)

var ErrNotFound = errors.New("block not found")

// CommitPlacement applies an accepted resolver placement to the block,
// converting minutes back to absolute timestamps.
func CommitPlacement(blocks []model.Block, id model.BlockID, pl Placement, op Op, loc *time.Location) ([]model.Block, error) {
	start, err := timeutil.AtMinute(pl.Day, pl.StartMin, loc)
	if err != nil {
		return blocks, err
	}
	end := start.Add(time.Duration(pl.EndMin-pl.StartMin) * time.Minute)
	if op == OpResize {
		return ResizeBlock(blocks, id, end)
	}
	return MoveBlock(blocks, id, start, end)
}

// MoveBlock sets new start/end times on the block. When the block belongs to
// a series and is not done, the start delta and the new duration propagate to
// every other non-done member; done members stay historically accurate.
func MoveBlock(blocks []model.Block, id model.BlockID, newStart, newEnd time.Time) ([]model.Block, error) {
	idx := indexOf(blocks, id)
	if idx < 0 {
		return blocks, ErrNotFound
	}
	out := append([]model.Block(nil), blocks...)
	b := &out[idx]

	delta := newStart.Sub(b.Start)
	duration := newEnd.Sub(newStart)

	b.Start = newStart
	b.End = newEnd
	b.Bump()

	if b.InSeries() && b.Status != model.StatusDone {
		sid := b.Recurrence.ID
		for i := range out {
			m := &out[i]
			if i == idx || !m.InSeries() || m.Recurrence.ID != sid || m.Status == model.StatusDone {
				continue
			}
			m.Start = m.Start.Add(delta)
			m.End = m.Start.Add(duration)
			m.Bump()
		}
	}
	return out, nil
}

// ResizeBlock sets a new end time, keeping the start. The new duration
// propagates to non-done series members at their own start times.
func ResizeBlock(blocks []model.Block, id model.BlockID, newEnd time.Time) ([]model.Block, error) {
	idx := indexOf(blocks, id)
	if idx < 0 {
		return blocks, ErrNotFound
	}
	out := append([]model.Block(nil), blocks...)
	b := &out[idx]

	b.End = newEnd
	b.Bump()
	duration := b.End.Sub(b.Start)

	if b.InSeries() && b.Status != model.StatusDone {
		sid := b.Recurrence.ID
		for i := range out {
			m := &out[i]
			if i == idx || !m.InSeries() || m.Recurrence.ID != sid || m.Status == model.StatusDone {
				continue
			}
			m.End = m.Start.Add(duration)
			m.Bump()
		}
	}
	return out, nil
}

// DeleteOccurrence removes one block. For a series member the occurrence's
// date is recorded into the shared rule's exceptions on every remaining
// member so the recurrence pass will not regenerate it.
func DeleteOccurrence(blocks []model.Block, id model.BlockID, loc *time.Location) ([]model.Block, error) {
	idx := indexOf(blocks, id)
	if idx < 0 {
		return blocks, ErrNotFound
	}
	victim := blocks[idx]

	out := make([]model.Block, 0, len(blocks)-1)
	out = append(out, blocks[:idx]...)
	out = append(out, blocks[idx+1:]...)

	if victim.InSeries() {
		if loc == nil {
			loc = time.Local
		}
		date := timeutil.DateOf(victim.Start.In(loc))
		sid := victim.Recurrence.ID
		for i := range out {
			m := &out[i]
			if !m.InSeries() || m.Recurrence.ID != sid {
				continue
			}
			m.Recurrence = m.Recurrence.Clone()
			m.Recurrence.AddException(date)
			m.Bump()
		}
	}
	return out, nil
}

// DeleteSeries removes every block sharing the series id.
func DeleteSeries(blocks []model.Block, sid model.SeriesID) ([]model.Block, error) {
	out := make([]model.Block, 0, len(blocks))
	removed := false
	for _, b := range blocks {
		if b.InSeries() && b.Recurrence.ID == sid {
			removed = true
			continue
		}
		out = append(out, b)
	}
	if !removed {
		return blocks, ErrNotFound
	}
	return out, nil
}

// CompleteBlock marks the block done.
func CompleteBlock(blocks []model.Block, id model.BlockID) ([]model.Block, error) {
	idx := indexOf(blocks, id)
	if idx < 0 {
		return blocks, ErrNotFound
	}
	out := append([]model.Block(nil), blocks...)
	out[idx].Status = model.StatusDone
	out[idx].Bump()
	return out, nil
}

func indexOf(blocks []model.Block, id model.BlockID) int {
	for i := range blocks {
		if blocks[i].ID == id {
			return i
		}
	}
	return -1
}
