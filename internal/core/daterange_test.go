package core

import (
	"testing"
	"time"
)

func TestWeekStart(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"wednesday",
			time.Date(2025, 4, 9, 15, 30, 0, 0, time.UTC), // Wed
			time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC),   // Mon
		},
		{
			"monday is its own week start",
			time.Date(2025, 4, 7, 0, 0, 1, 0, time.UTC),
			time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday belongs to the previous monday",
			time.Date(2025, 4, 13, 10, 0, 0, 0, time.UTC), // Sun
			time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC),   // Mon six days prior
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WeekStart(tc.in); !got.Equal(tc.want) {
				t.Fatalf("WeekStart(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestResolveRange(t *testing.T) {
	now := time.Date(2025, 4, 13, 18, 45, 0, 0, time.UTC) // a Sunday

	cases := []struct {
		token RangeToken
		start time.Time // zero means unbounded
	}{
		{RangeAll, time.Time{}},
		{RangeWeek, time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)},
		{RangeMonth, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		{RangeSixMonths, time.Date(2024, 10, 13, 18, 45, 0, 0, time.UTC)},
		{RangeYear, time.Date(2024, 4, 13, 18, 45, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(string(tc.token), func(t *testing.T) {
			r, err := ResolveRange(tc.token, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !r.End.Equal(now) {
				t.Fatalf("end should be now, got %v", r.End)
			}
			if tc.start.IsZero() != r.Start.IsZero() || (!tc.start.IsZero() && !r.Start.Equal(tc.start)) {
				t.Fatalf("start = %v, want %v", r.Start, tc.start)
			}
		})
	}

	if _, err := ResolveRange("fortnight", now); err == nil {
		t.Fatalf("expected error for unknown token")
	}
}

func TestResolveRangeMonthEndClamping(t *testing.T) {
	cases := []struct {
		name  string
		token RangeToken
		now   time.Time
		want  time.Time
	}{
		{
			"aug 31 minus six months clamps to feb 28",
			RangeSixMonths,
			time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC),
			time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC),
		},
		{
			"dec 31 minus six months clamps to jun 30",
			RangeSixMonths,
			time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			"leap feb 29 minus a year clamps to feb 28",
			RangeYear,
			time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC),
			time.Date(2023, 2, 28, 8, 0, 0, 0, time.UTC),
		},
		{
			"jan 31 minus six months keeps jul 31",
			RangeSixMonths,
			time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := ResolveRange(tc.token, tc.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !r.Start.Equal(tc.want) {
				t.Fatalf("start = %v, want %v", r.Start, tc.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 4, d, 12, 0, 0, 0, time.UTC) }
	recs := []Record{
		{Category: "Other", Kind: Expense, Amount: Money{Cents: 100}, CreatedAt: day(1)},
		{Category: "Other", Kind: Expense, Amount: Money{Cents: 200}, CreatedAt: day(10)},
		{Category: "Other", Kind: Income, Amount: Money{Cents: 300}, CustomDate: day(20), CreatedAt: day(25)},
	}

	r := Range{Start: day(5), End: day(20)}
	got := Filter(recs, r)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	// Bounds are inclusive on both ends.
	edge := Filter(recs, Range{Start: day(10), End: day(20)})
	if len(edge) != 2 {
		t.Fatalf("expected inclusive bounds to keep 2 records, got %d", len(edge))
	}

	// A custom date wins over createdAt when filtering.
	late := Filter(recs, Range{Start: day(21), End: day(30)})
	if len(late) != 0 {
		t.Fatalf("expected custom date to place the record outside the window, got %d", len(late))
	}

	// Unbounded past keeps everything up to end.
	all := Filter(recs, Range{End: day(30)})
	if len(all) != len(recs) {
		t.Fatalf("expected all records, got %d", len(all))
	}

	// Unbounded future keeps everything from start on.
	open := Filter(recs, Range{Start: day(5)})
	if len(open) != 2 {
		t.Fatalf("expected start-only range to keep 2 records, got %d", len(open))
	}

	// A zero range is unbounded on both ends.
	if got := Filter(recs, Range{}); len(got) != len(recs) {
		t.Fatalf("expected zero range to keep all records, got %d", len(got))
	}
}

func TestFilterIdempotent(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC) }
	recs := []Record{
		{Category: "Other", Kind: Expense, Amount: Money{Cents: 1}, CreatedAt: day(2)},
		{Category: "Other", Kind: Income, Amount: Money{Cents: 2}, CreatedAt: day(8)},
		{Category: "Other", Kind: Expense, Amount: Money{Cents: 3}, CreatedAt: day(15)},
	}
	r := Range{Start: day(5), End: day(20)}

	once := Filter(recs, r)
	twice := Filter(once, r)
	if len(once) != len(twice) {
		t.Fatalf("filter not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("filter not idempotent at %d: %+v vs %+v", i, once[i], twice[i])
		}
	}
}
