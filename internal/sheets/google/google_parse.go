package google

import (
	"time"

	"moneta/internal/core"
)

// Sheet layout: A=ID, B=Date, C=Category, D=Amount, E=Kind, F=Description.
const (
	colID = iota
	colDate
	colCategory
	colAmount
	colKind
	colDescription
)

const dateLayout = "2006-01-02"

func recordToRow(rec core.Record) []any {
	return []any{
		rec.ID,
		rec.EffectiveDate().Format(dateLayout),
		rec.Category,
		float64(rec.Amount.Cents) / 100.0,
		string(rec.Kind),
		rec.Description,
	}
}

// parseRecordRow converts one row of string columns back into a record.
// Header rows and cleared rows fail the date parse and report ok=false.
func parseRecordRow(cols []string) (core.Record, bool) {
	if len(cols) <= colKind || cols[colID] == "" {
		return core.Record{}, false
	}

	date, err := time.ParseInLocation(dateLayout, cols[colDate], time.Local)
	if err != nil {
		return core.Record{}, false
	}

	cents, err := core.ParseDecimalToCents(cols[colAmount])
	if err != nil {
		return core.Record{}, false
	}

	kind := core.Kind(cols[colKind])
	if !kind.Valid() {
		return core.Record{}, false
	}

	rec := core.Record{
		ID:        cols[colID],
		Category:  cols[colCategory],
		Amount:    core.Money{Cents: cents},
		Kind:      kind,
		CreatedAt: date,
	}
	if len(cols) > colDescription {
		rec.Description = cols[colDescription]
	}
	return rec, true
}
