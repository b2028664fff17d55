// Package recurrence materializes recurring block series across a rolling
// horizon. The pass runs on every load of the block collection and is
// idempotent: materialization is keyed by date presence.
package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/Charles8li/weekly-calendar/internal/model"
	"github.com/Charles8li/weekly-calendar/internal/timeutil"
)

// Engine expands recurrence rules between now-PastDays and now+FutureDays.
type Engine struct {
	PastDays   int
	FutureDays int
	WeekStart  time.Weekday
	Loc        *time.Location

	// Now is swappable for tests.
	Now func() time.Time
}

func NewEngine(pastDays, futureDays int, weekStart time.Weekday, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		PastDays:   pastDays,
		FutureDays: futureDays,
		WeekStart:  weekStart,
		Loc:        loc,
		Now:        time.Now,
	}
}

// Materialize returns the block collection with every series populated across
// the horizon and members past their rule's until limit pruned. The second
// return reports whether anything changed; re-running against the output is a
// no-op.
func (e *Engine) Materialize(blocks []model.Block) ([]model.Block, bool) {
	now := e.Now().In(e.Loc)
	horizonStart := timeutil.StartOfDay(now).AddDate(0, 0, -e.PastDays)
	horizonEnd := timeutil.EndOfDay(now.AddDate(0, 0, e.FutureDays))

	members := map[model.SeriesID][]int{}
	order := []model.SeriesID{}
	for i := range blocks {
		if !blocks[i].InSeries() {
			continue
		}
		sid := blocks[i].Recurrence.ID
		if _, seen := members[sid]; !seen {
			order = append(order, sid)
		}
		members[sid] = append(members[sid], i)
	}

	out := append([]model.Block(nil), blocks...)
	mutated := false

	for _, sid := range order {
		idxs := members[sid]
		tmpl := out[idxs[0]]
		rec := tmpl.Recurrence

		set, err := buildSet(rec, e.Loc, e.WeekStart)
		if err != nil {
			// Unusable rule (bad anchor, unknown type): the series is
			// inert, not an error.
			continue
		}

		existing := map[string]bool{}
		for _, i := range idxs {
			existing[timeutil.DateOf(out[i].Start.In(e.Loc))] = true
		}

		dur := rec.Duration
		if dur <= 0 {
			dur = timeutil.DurationMinutes(tmpl.Start, tmpl.End)
		}

		for _, occ := range set.Between(horizonStart, horizonEnd, true) {
			occ = occ.In(e.Loc)
			date := timeutil.DateOf(occ)
			if existing[date] {
				continue
			}
			out = append(out, model.Block{
				ID:            model.NewBlockID(),
				TaskID:        tmpl.TaskID,
				Title:         cloneString(tmpl.Title),
				NotesOverride: cloneString(tmpl.NotesOverride),
				Start:         occ,
				End:           occ.Add(time.Duration(dur) * time.Minute),
				Status:        model.StatusPlanned,
				Rev:           1,
				Recurrence:    rec.Clone(),
			})
			existing[date] = true
			mutated = true
		}
	}

	if pruned, changed := e.prune(out); changed {
		return pruned, true
	}
	return out, mutated
}

// prune drops series members whose start falls strictly after their rule's
// until end-of-day.
func (e *Engine) prune(blocks []model.Block) ([]model.Block, bool) {
	out := blocks[:0:0]
	changed := false
	for _, b := range blocks {
		if b.InSeries() && b.Recurrence.Until != "" {
			u, err := time.ParseInLocation(timeutil.DateLayout, b.Recurrence.Until, e.Loc)
			if err == nil && b.Start.After(timeutil.EndOfDay(u)) {
				changed = true
				continue
			}
		}
		out = append(out, b)
	}
	return out, changed
}

var rruleDays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// buildSet compiles a BlockRecurrence into an rrule set with the anchor as
// DTSTART, the until limit inclusive to end-of-day, and one EXDATE per
// exception date at the series start minute.
func buildSet(rec *model.BlockRecurrence, loc *time.Location, weekStart time.Weekday) (*rrule.Set, error) {
	anchorDay, err := time.ParseInLocation(timeutil.DateLayout, rec.StartDate, loc)
	if err != nil {
		return nil, err
	}
	startMin := timeutil.Clamp(rec.StartMinute, 0, timeutil.DayMinutes-1)
	dtstart := anchorDay.Add(time.Duration(startMin) * time.Minute)

	interval := rec.Interval
	if interval < 1 {
		interval = 1
	}

	opt := rrule.ROption{
		Interval: interval,
		Dtstart:  dtstart,
		Wkst:     rruleDays[int(weekStart)%7],
	}

	switch rec.Type {
	case model.RecurDaily:
		opt.Freq = rrule.DAILY
	case model.RecurWeekly:
		opt.Freq = rrule.WEEKLY
		days := rec.DaysOfWeek
		if len(days) == 0 {
			days = []int{int(dtstart.Weekday())}
		}
		for _, d := range days {
			if d >= 0 && d < 7 {
				opt.Byweekday = append(opt.Byweekday, rruleDays[d])
			}
		}
		if len(opt.Byweekday) == 0 {
			return nil, fmt.Errorf("recurrence: no usable weekdays")
		}
	default:
		return nil, fmt.Errorf("recurrence: unknown type %q", rec.Type)
	}

	if rec.Until != "" {
		if u, err := time.ParseInLocation(timeutil.DateLayout, rec.Until, loc); err == nil {
			opt.Until = timeutil.EndOfDay(u)
		}
		// A malformed until is ignored rather than disabling the series;
		// only the anchor is load-bearing.
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, err
	}

	set := &rrule.Set{}
	set.RRule(r)
	for _, ex := range rec.Exceptions {
		d, err := time.ParseInLocation(timeutil.DateLayout, ex, loc)
		if err != nil {
			continue
		}
		set.ExDate(d.Add(time.Duration(startMin) * time.Minute))
	}
	return set, nil
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
