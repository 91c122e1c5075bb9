package core

import (
	"math"
	"sort"
	"time"
)

// WeekBucket aggregates one Monday-aligned week: income and expense
// amounts are summed separately.
type WeekBucket struct {
	WeekStart time.Time
	Income    Money
	Expense   Money
}

// CategoryTotals sums amounts per category over expense records only.
// Categories without a matching record are omitted, not zero-filled.
// Records with an unrecognized kind count toward nothing.
func CategoryTotals(records []Record) map[string]Money {
	totals := make(map[string]Money)
	for _, r := range records {
		if r.Kind != Expense {
			continue
		}
		t := totals[r.Category]
		t.Cents += r.Amount.Cents
		totals[r.Category] = t
	}
	return totals
}

// WeeklyBuckets groups records by the Monday-aligned week containing
// their effective date. Buckets come out in ascending chronological
// order and are sparse: weeks without records are not emitted.
func WeeklyBuckets(records []Record) []WeekBucket {
	byWeek := make(map[int64]*WeekBucket)
	for _, r := range records {
		ws := WeekStart(r.EffectiveDate())
		key := ws.Unix()
		b, ok := byWeek[key]
		if !ok {
			b = &WeekBucket{WeekStart: ws}
			byWeek[key] = b
		}
		switch r.Kind {
		case Income:
			b.Income.Cents += r.Amount.Cents
		case Expense:
			b.Expense.Cents += r.Amount.Cents
		}
	}

	out := make([]WeekBucket, 0, len(byWeek))
	for _, b := range byWeek {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].WeekStart.Before(out[j].WeekStart)
	})
	return out
}

// Balance is total income minus total expenses. It can be negative.
func Balance(records []Record) Money {
	var cents int64
	for _, r := range records {
		switch r.Kind {
		case Income:
			cents += r.Amount.Cents
		case Expense:
			cents -= r.Amount.Cents
		}
	}
	return Money{Cents: cents}
}

// PercentageOfTotal converts category totals into each category's share
// of the overall total, rounded to one decimal. When the totals sum to
// zero every share is 0, never NaN.
func PercentageOfTotal(totals map[string]Money) map[string]float64 {
	var sum int64
	for _, m := range totals {
		sum += m.Cents
	}

	out := make(map[string]float64, len(totals))
	for cat, m := range totals {
		if sum == 0 {
			out[cat] = 0
			continue
		}
		pct := float64(m.Cents) / float64(sum) * 100
		out[cat] = math.Round(pct*10) / 10
	}
	return out
}
