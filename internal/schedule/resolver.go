// Package schedule resolves proposed block placements against their siblings
// and applies interactive move/resize/delete operations, including series
// propagation.
package schedule

import (
	"sort"
	"time"

	"github.com/Charles8li/weekly-calendar/internal/model"
	"github.com/Charles8li/weekly-calendar/internal/timeutil"
)

type Policy string

const (
	PolicyAllow Policy = "allow"
	PolicyBlock Policy = "block"
	PolicyPush  Policy = "push"
	PolicyClip  Policy = "clip"
)

type Op int

const (
	OpMove Op = iota
	OpResize
)

// Proposal is one candidate placement, as produced by a drag gesture or a
// form edit. Minutes are minute-of-day values on Day.
type Proposal struct {
	BlockID  model.BlockID
	Day      string // YYYY-MM-DD
	StartMin int
	EndMin   int
	Op       Op
}

// Placement is the committed position after policy resolution.
type Placement struct {
	Day      string
	StartMin int
	EndMin   int
}

// Notice reports an expected policy outcome, not a fault. The subject block
// is left unchanged when a notice is returned.
type Notice struct {
	Code    string // "conflict" or "no_gap"
	Message string
	BlockID model.BlockID
}

// Resolver applies one of the four conflict policies to a proposal. It is a
// pure function of (collection, proposal, policy); configuration is explicit.
type Resolver struct {
	// SnapStep is the minimum block length clip preserves.
	SnapStep int

	// DayStart/DayEnd are the virtual occupied sentinels for push,
	// [0, 1440) unless configuration narrows them to a waking window.
	DayStart int
	DayEnd   int

	Loc *time.Location
}

func NewResolver(snapStep, dayStart, dayEnd int, loc *time.Location) *Resolver {
	if snapStep <= 0 {
		snapStep = 5
	}
	if dayEnd <= dayStart {
		dayStart, dayEnd = 0, timeutil.DayMinutes
	}
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{SnapStep: snapStep, DayStart: dayStart, DayEnd: dayEnd, Loc: loc}
}

type span struct {
	start, end int
}

// Resolve returns the placement to commit, or a Notice when the policy
// suppresses the write. Non-conflicting proposals always commit as given.
func (r *Resolver) Resolve(blocks []model.Block, p Proposal, policy Policy) (Placement, *Notice) {
	accepted := Placement{Day: p.Day, StartMin: p.StartMin, EndMin: p.EndMin}
	if policy == PolicyAllow {
		return accepted, nil
	}

	sibs := r.daySiblings(blocks, p.Day, p.BlockID)
	conflict := false
	for _, s := range sibs {
		if timeutil.Overlaps(p.StartMin, p.EndMin, s.start, s.end) {
			conflict = true
			break
		}
	}
	if !conflict {
		return accepted, nil
	}

	switch policy {
	case PolicyPush:
		if p.Op == OpMove {
			return r.push(sibs, p)
		}
		// Push only applies to moves; a resize falls back to suppression.
		fallthrough
	case PolicyBlock:
		return accepted, &Notice{
			Code:    "conflict",
			Message: "placement overlaps an existing block",
			BlockID: p.BlockID,
		}
	case PolicyClip:
		return r.clip(sibs, p), nil
	default:
		return accepted, &Notice{
			Code:    "conflict",
			Message: "placement overlaps an existing block",
			BlockID: p.BlockID,
		}
	}
}

// push scans occupied spans in start order and takes the earliest gap of at
// least the proposed duration at or after the proposed start.
func (r *Resolver) push(sibs []span, p Proposal) (Placement, *Notice) {
	duration := p.EndMin - p.StartMin
	cursor := p.StartMin
	if cursor < r.DayStart {
		cursor = r.DayStart
	}

	for _, s := range sibs {
		if s.end <= cursor {
			continue
		}
		if s.start-cursor >= duration {
			break
		}
		cursor = s.end
	}

	if r.DayEnd-cursor >= duration {
		return Placement{Day: p.Day, StartMin: cursor, EndMin: cursor + duration}, nil
	}
	return Placement{}, &Notice{
		Code:    "no_gap",
		Message: "no gap large enough before end of day",
		BlockID: p.BlockID,
	}
}

// clip truncates the proposed end to the start of the nearest later-starting
// overlapping sibling, never shrinking below one snap step.
func (r *Resolver) clip(sibs []span, p Proposal) Placement {
	clipAt := p.EndMin
	for _, s := range sibs {
		if s.start > p.StartMin && s.start < clipAt &&
			timeutil.Overlaps(p.StartMin, p.EndMin, s.start, s.end) {
			clipAt = s.start
		}
	}
	minEnd := p.StartMin + r.SnapStep
	if clipAt < minEnd {
		clipAt = minEnd
	}
	return Placement{Day: p.Day, StartMin: p.StartMin, EndMin: clipAt}
}

// daySiblings collects the minute spans of every other block on day, sorted
// by start.
func (r *Resolver) daySiblings(blocks []model.Block, day string, exclude model.BlockID) []span {
	out := []span{}
	for i := range blocks {
		b := &blocks[i]
		if b.ID == exclude {
			continue
		}
		if timeutil.DateOf(b.Start.In(r.Loc)) != day {
			continue
		}
		start := timeutil.MinutesSinceMidnight(b.Start.In(r.Loc))
		out = append(out, span{
			start: start,
			end:   start + timeutil.DurationMinutes(b.Start, b.End),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}
