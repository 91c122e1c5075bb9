package core

import (
	"fmt"
	"time"
)

const (
	RangeAll       RangeToken = "all"
	RangeWeek      RangeToken = "week"
	RangeMonth     RangeToken = "month"
	RangeSixMonths RangeToken = "6months"
	RangeYear      RangeToken = "year"
)

type (
	// RangeToken is a named shorthand for a date window, resolved
	// against an injected reference instant.
	RangeToken string

	// Range is a closed date window. A zero Start means unbounded
	// past; a zero End means unbounded future.
	Range struct {
		Start time.Time
		End   time.Time
	}
)

func (t RangeToken) Valid() bool {
	switch t {
	case RangeAll, RangeWeek, RangeMonth, RangeSixMonths, RangeYear:
		return true
	}
	return false
}

// ResolveRange computes the window a token denotes, relative to now.
// The end bound is always now itself; now is a parameter so resolution
// stays deterministic and testable.
func ResolveRange(token RangeToken, now time.Time) (Range, error) {
	switch token {
	case RangeAll:
		return Range{End: now}, nil
	case RangeWeek:
		return Range{Start: WeekStart(now), End: now}, nil
	case RangeMonth:
		y, m, _ := now.Date()
		return Range{Start: time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), End: now}, nil
	case RangeSixMonths:
		return Range{Start: addMonthsClamped(now, -6), End: now}, nil
	case RangeYear:
		return Range{Start: addMonthsClamped(now, -12), End: now}, nil
	}
	return Range{}, fmt.Errorf("unknown range token: %q", token)
}

// Filter returns the records whose effective date falls inside r, both
// bounds inclusive. A zero Start means unbounded past; a zero End means
// unbounded future. The input slice is never modified.
func Filter(records []Record, r Range) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		eff := rec.EffectiveDate()
		if !r.Start.IsZero() && eff.Before(r.Start) {
			continue
		}
		if !r.End.IsZero() && eff.After(r.End) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// WeekStart returns the most recent Monday at local midnight. Sunday
// counts as the end of the week, not its start, so on a Sunday the
// week start is the Monday six days prior.
func WeekStart(t time.Time) time.Time {
	days := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		days = 6
	}
	y, m, d := t.AddDate(0, 0, -days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// addMonthsClamped shifts t by a number of calendar months, clamping
// the day to the last valid day of the target month. Unlike
// time.AddDate it never rolls into the following month: Mar 31 minus
// one month is Feb 28 (or 29), not Mar 2/3.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := y*12 + int(m) - 1 + months
	ty, tm := total/12, time.Month(total%12+1)
	if last := daysInMonth(ty, tm); d > last {
		d = last
	}
	h, min, sec := t.Clock()
	return time.Date(ty, tm, d, h, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
