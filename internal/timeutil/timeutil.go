// Package timeutil holds the minute-of-day arithmetic shared by the
// recurrence engine, the conflict resolver and the command pipeline.
// All functions are pure.
package timeutil

import (
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"

	// DayMinutes is the exclusive upper bound of a minute-of-day value.
	DayMinutes = 1440
)

// MinutesSinceMidnight returns t's time of day in whole minutes.
func MinutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// DurationMinutes returns the span from a to b rounded to whole minutes,
// never negative.
func DurationMinutes(a, b time.Time) int {
	mins := int(b.Sub(a).Round(time.Minute) / time.Minute)
	if mins < 0 {
		return 0
	}
	return mins
}

// Snap rounds mins to the nearest multiple of step, floored at zero.
// A step of zero or less leaves mins untouched.
func Snap(mins, step int) int {
	if step <= 0 {
		if mins < 0 {
			return 0
		}
		return mins
	}
	snapped := ((mins + step/2) / step) * step
	if snapped < 0 {
		return 0
	}
	return snapped
}

func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) share interior
// minutes. Touching boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	lo := aStart
	if bStart > lo {
		lo = bStart
	}
	hi := aEnd
	if bEnd < hi {
		hi = bEnd
	}
	return lo < hi
}

// AtMinute builds the absolute timestamp at local midnight of date plus
// minute, with minute clamped to [0, DayMinutes).
func AtMinute(date string, minute int, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, err
	}
	minute = Clamp(minute, 0, DayMinutes-1)
	return day.Add(time.Duration(minute) * time.Minute), nil
}

// DateOf formats t's calendar date.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable second of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Second)
}

// WeekStartDay maps a config week-start name to a weekday. Anything other
// than "sunday" means Monday.
func WeekStartDay(name string) time.Weekday {
	if strings.EqualFold(strings.TrimSpace(name), "sunday") {
		return time.Sunday
	}
	return time.Monday
}
