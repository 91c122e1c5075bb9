package google

import (
	"testing"
	"time"

	"moneta/internal/core"
)

func TestParseRecordRow(t *testing.T) {
	tests := []struct {
		name   string
		cols   []string
		wantOK bool
		want   core.Record
	}{
		{
			name:   "valid expense row",
			cols:   []string{"7", "2025-03-10", "Food & Dining", "12.50", "expense", "lunch"},
			wantOK: true,
			want: core.Record{
				ID:          "7",
				Category:    "Food & Dining",
				Amount:      core.Money{Cents: 1250},
				Kind:        core.Expense,
				Description: "lunch",
				CreatedAt:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local),
			},
		},
		{
			name:   "income row without description",
			cols:   []string{"3", "2025-01-01", "Other", "1000", "income"},
			wantOK: true,
			want: core.Record{
				ID:        "3",
				Category:  "Other",
				Amount:    core.Money{Cents: 100000},
				Kind:      core.Income,
				CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
			},
		},
		{
			name:   "header row",
			cols:   []string{"ID", "Date", "Category", "Amount", "Kind", "Description"},
			wantOK: false,
		},
		{
			name:   "cleared row",
			cols:   []string{"", "", "", "", "", ""},
			wantOK: false,
		},
		{
			name:   "bad amount",
			cols:   []string{"9", "2025-03-10", "Shopping", "abc", "expense", ""},
			wantOK: false,
		},
		{
			name:   "bad kind",
			cols:   []string{"9", "2025-03-10", "Shopping", "5.00", "transfer", ""},
			wantOK: false,
		},
		{
			name:   "too few columns",
			cols:   []string{"9", "2025-03-10"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRecordRow(tt.cols)
			if ok != tt.wantOK {
				t.Fatalf("parseRecordRow() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.ID != tt.want.ID ||
				got.Category != tt.want.Category ||
				got.Amount != tt.want.Amount ||
				got.Kind != tt.want.Kind ||
				got.Description != tt.want.Description ||
				!got.CreatedAt.Equal(tt.want.CreatedAt) {
				t.Errorf("parseRecordRow() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRecordToRowRoundTrip(t *testing.T) {
	rec := core.Record{
		ID:          "12",
		Category:    "Transportation",
		Amount:      core.Money{Cents: 275},
		Kind:        core.Expense,
		Description: "bus ticket",
		CustomDate:  time.Date(2025, 4, 2, 0, 0, 0, 0, time.Local),
		CreatedAt:   time.Date(2025, 4, 5, 18, 0, 0, 0, time.Local),
	}

	row := recordToRow(rec)
	cols := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case string:
			cols[i] = x
		case float64:
			cols[i] = "2.75"
		}
	}

	got, ok := parseRecordRow(cols)
	if !ok {
		t.Fatal("parseRecordRow() failed on generated row")
	}
	if got.Amount != rec.Amount {
		t.Errorf("round-trip Amount = %v, want %v", got.Amount, rec.Amount)
	}
	// The sheet stores the effective date, which was the custom date
	if !got.EffectiveDate().Equal(rec.CustomDate) {
		t.Errorf("round-trip effective date = %v, want %v", got.EffectiveDate(), rec.CustomDate)
	}
}
