// Package export renders blocks as an iCalendar document.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/Charles8li/weekly-calendar/internal/model"
)

const icsStampLayout = "20060102T150405Z"

// BuildBlocksICS builds a VCALENDAR of every block whose start falls inside
// [from, to). One series contributes one VEVENT per materialized occurrence;
// the series anchor additionally carries an RRULE line so subscribing
// calendars can extend beyond the horizon.
func BuildBlocksICS(blocks []model.Block, tasks []model.Task, from, to, now time.Time) string {
	titles := map[model.TaskID]string{}
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//weekly-calendar//Block Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}

	ruleEmitted := map[model.SeriesID]bool{}
	for _, b := range blocks {
		if b.Start.Before(from) || !b.Start.Before(to) {
			continue
		}

		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+escapeICSText(fmt.Sprintf("%s@weekly-calendar", b.ID)),
			"DTSTAMP:"+now.UTC().Format(icsStampLayout),
			"SUMMARY:"+escapeICSText(BlockTitle(b, titles)),
			"DTSTART:"+b.Start.UTC().Format(icsStampLayout),
			"DTEND:"+b.End.UTC().Format(icsStampLayout),
			"STATUS:"+icsStatus(b.Status),
		)
		if b.NotesOverride != nil && *b.NotesOverride != "" {
			lines = append(lines, "DESCRIPTION:"+escapeICSText(*b.NotesOverride))
		}
		if b.InSeries() && !ruleEmitted[b.Recurrence.ID] {
			if rule := recurrenceRRULE(b.Recurrence); rule != "" {
				lines = append(lines, "RRULE:"+rule)
			}
			ruleEmitted[b.Recurrence.ID] = true
		}
		lines = append(lines, "END:VEVENT")
	}

	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

// BlockTitle resolves the display title: the block's own override, then the
// linked task's title, then "untitled" (dangling task references are
// tolerated).
func BlockTitle(b model.Block, taskTitles map[model.TaskID]string) string {
	if b.Title != nil && strings.TrimSpace(*b.Title) != "" {
		return strings.TrimSpace(*b.Title)
	}
	if b.TaskID != "" {
		if title, ok := taskTitles[b.TaskID]; ok && strings.TrimSpace(title) != "" {
			return strings.TrimSpace(title)
		}
	}
	return "untitled"
}

func icsStatus(s model.BlockStatus) string {
	switch s {
	case model.StatusDone:
		return "CONFIRMED"
	case model.StatusSkipped:
		return "CANCELLED"
	default:
		return "TENTATIVE"
	}
}

var icsByDay = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

func recurrenceRRULE(rec *model.BlockRecurrence) string {
	interval := rec.Interval
	if interval <= 0 {
		interval = 1
	}

	var freq string
	switch rec.Type {
	case model.RecurDaily:
		freq = "DAILY"
	case model.RecurWeekly:
		freq = "WEEKLY"
	default:
		return ""
	}

	rule := fmt.Sprintf("FREQ=%s;INTERVAL=%d", freq, interval)
	if rec.Type == model.RecurWeekly && len(rec.DaysOfWeek) > 0 {
		days := make([]string, 0, len(rec.DaysOfWeek))
		for _, d := range rec.DaysOfWeek {
			if d >= 0 && d < 7 {
				days = append(days, icsByDay[d])
			}
		}
		if len(days) > 0 {
			rule += ";BYDAY=" + strings.Join(days, ",")
		}
	}
	if rec.Until != "" {
		if u, err := time.Parse("2006-01-02", rec.Until); err == nil {
			rule += ";UNTIL=" + u.AddDate(0, 0, 1).UTC().Format(icsStampLayout)
		}
	}
	return rule
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
