package core

import (
	"strings"
	"time"
)

// RawEntry is un-validated input for a single entry, as it arrives from
// a submitted form or a CSV row. All fields are carried as text except
// CreatedAt, which callers that replay existing records may set.
type RawEntry struct {
	Category    string
	Amount      string
	Kind        string
	Description string
	CustomDate  string    // optional; empty means "use creation time"
	CreatedAt   time.Time // optional; zero means now
}

// dateLayouts are the calendar formats accepted for custom dates,
// tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02 Jan 2006",
}

// ParseDate parses a calendar date in any of the supported layouts.
// Date-only layouts produce local midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// Normalize validates a raw entry and produces the canonical record.
// Validation runs in a fixed order so callers always see the first
// failing field: category, amount, kind, custom date. The function is
// pure; now is injected so callers control the creation instant.
func Normalize(in RawEntry, now time.Time) (Record, error) {
	category := strings.TrimSpace(in.Category)
	if !ValidCategory(category) {
		return Record{}, ErrInvalidCategory
	}

	cents, err := ParseDecimalToCents(in.Amount)
	if err != nil {
		return Record{}, err
	}

	kind := Kind(strings.TrimSpace(in.Kind))
	if !kind.Valid() {
		return Record{}, ErrInvalidKind
	}

	var customDate time.Time
	if strings.TrimSpace(in.CustomDate) != "" {
		customDate, err = ParseDate(in.CustomDate)
		if err != nil {
			return Record{}, err
		}
	}

	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	return Record{
		Category:    category,
		Amount:      Money{Cents: cents},
		Kind:        kind,
		Description: strings.TrimSpace(in.Description),
		CustomDate:  customDate,
		CreatedAt:   createdAt,
	}, nil
}
