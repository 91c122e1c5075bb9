package core

import (
	"errors"
	"testing"
	"time"
)

var csvNow = time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)

func TestParseCSVWellFormed(t *testing.T) {
	contents := "Date,Category,Amount,Description\n" +
		"2025-04-01,Food & Dining,250,Dinner with friends\n" +
		"2025-04-03,Transportation,120,Bus fare\n" +
		"2025-04-05,Shopping,999,T-shirt\n"

	res, err := ParseCSV(contents, csvNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rejected) != 0 {
		t.Fatalf("expected no rejections, got %v", res.Rejected)
	}
	if len(res.Accepted) != 3 {
		t.Fatalf("expected 3 accepted, got %d", len(res.Accepted))
	}
	// Accepted order matches input row order.
	if res.Accepted[0].Category != "Food & Dining" || res.Accepted[2].Category != "Shopping" {
		t.Fatalf("input order not preserved: %+v", res.Accepted)
	}
	if res.Accepted[1].Amount.Cents != 12000 {
		t.Fatalf("expected 12000 cents, got %d", res.Accepted[1].Amount.Cents)
	}
	// CSV rows import as expenses with the row date as custom date.
	for _, rec := range res.Accepted {
		if rec.Kind != Expense {
			t.Fatalf("expected expense kind, got %q", rec.Kind)
		}
		if rec.CustomDate.IsZero() {
			t.Fatalf("expected custom date set for %+v", rec)
		}
	}
}

func TestParseCSVBatchIsolation(t *testing.T) {
	contents := "Date,Category,Amount,Description\n" +
		"2025-04-01,Food & Dining,250,a\n" +
		"2025-04-02,Transportation,120,b\n" +
		"2025-04-03,Shopping,oops,c\n" +
		"2025-04-04,Housing,400,d\n" +
		"2025-04-05,Other,10,e\n"

	res, err := ParseCSV(contents, csvNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Accepted) != 4 {
		t.Fatalf("expected 4 accepted, got %d", len(res.Accepted))
	}
	if len(res.Rejected) != 1 {
		t.Fatalf("expected 1 rejection, got %v", res.Rejected)
	}
	if res.Rejected[0].Row != 2 {
		t.Fatalf("expected rejected row index 2, got %d", res.Rejected[0].Row)
	}
	if !errors.Is(res.Rejected[0].Err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", res.Rejected[0].Err)
	}
}

func TestParseCSVHeaderAlwaysSkipped(t *testing.T) {
	// Even a header that looks like data is skipped.
	contents := "2025-04-01,Food & Dining,250,not a header really\n" +
		"2025-04-02,Other,10,row\n"

	res, err := ParseCSV(contents, csvNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Accepted) != 1 || res.Accepted[0].Category != "Other" {
		t.Fatalf("expected only the second line accepted, got %+v", res.Accepted)
	}
}

func TestParseCSVBlankRowsSkipped(t *testing.T) {
	contents := "Date,Category,Amount,Description\n" +
		"2025-04-01,Other,10,x\n" +
		",,,\n" +
		"\n" +
		"2025-04-02,Other,20,y\n" +
		",,,\n"

	res, err := ParseCSV(contents, csvNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Accepted) != 2 {
		t.Fatalf("expected 2 accepted, got %d", len(res.Accepted))
	}
	if len(res.Rejected) != 0 {
		t.Fatalf("blank rows must not count as rejected, got %v", res.Rejected)
	}
}

func TestParseCSVBlankRowsDoNotShiftIndices(t *testing.T) {
	contents := "Date,Category,Amount,Description\n" +
		"2025-04-01,Other,10,x\n" +
		",,,\n" +
		"2025-04-02,Other,oops,y\n"

	res, err := ParseCSV(contents, csvNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Accepted) != 1 {
		t.Fatalf("expected 1 accepted, got %d", len(res.Accepted))
	}
	if len(res.Rejected) != 1 {
		t.Fatalf("expected 1 rejection, got %v", res.Rejected)
	}
	// The bad row is the second data row; the interleaved blank row
	// does not consume an index.
	if res.Rejected[0].Row != 1 {
		t.Fatalf("expected rejected row index 1, got %d", res.Rejected[0].Row)
	}
}

func TestParseCSVShortAndBadRows(t *testing.T) {
	contents := "Date,Category,Amount,Description\n" +
		"2025-04-01,Food & Dining\n" + // missing amount column
		"bad-date,Other,10,x\n" +
		"2025-04-02,Nope,10,x\n"

	res, err := ParseCSV(contents, csvNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Accepted) != 0 {
		t.Fatalf("expected nothing accepted, got %+v", res.Accepted)
	}
	want := []struct {
		row int
		err error
	}{
		{0, ErrInvalidAmount},
		{1, ErrInvalidDate},
		{2, ErrInvalidCategory},
	}
	if len(res.Rejected) != len(want) {
		t.Fatalf("expected %d rejections, got %v", len(want), res.Rejected)
	}
	for i, w := range want {
		if res.Rejected[i].Row != w.row || !errors.Is(res.Rejected[i].Err, w.err) {
			t.Fatalf("rejection %d: expected row %d %v, got %+v", i, w.row, w.err, res.Rejected[i])
		}
	}
}

func TestParseCSVMalformedFile(t *testing.T) {
	// A bare quote aborts CSV framing entirely.
	contents := "Date,Category,Amount,Description\n" +
		"2025-04-01,\"Food & Dining,250,broken\n"

	_, err := ParseCSV(contents, csvNow)
	if !errors.Is(err, ErrMalformedFile) {
		t.Fatalf("expected ErrMalformedFile, got %v", err)
	}
}

func TestParseCSVEmptyInput(t *testing.T) {
	res, err := ParseCSV("", csvNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Accepted) != 0 || len(res.Rejected) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}
