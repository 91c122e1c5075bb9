package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// CSV column layout for bulk imports. The header row is mandatory and
// its content ignored; the description column is kept for display only.
const (
	colDate = iota
	colCategory
	colAmount
	colDescription
	csvColumns
)

// RowError records why a single CSV data row was rejected. Row is the
// 0-based index among data rows, after the header; skipped blank rows
// do not count.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// ImportResult is the outcome of a batch import. Accepted preserves
// input row order; Rejected lists each failed row with its reason.
type ImportResult struct {
	Accepted []Record
	Rejected []RowError
}

// ParseCSV parses a whole CSV payload into canonical records. One
// malformed row never aborts the batch: each data row is normalized
// independently and failures are collected in Rejected. The batch as a
// whole fails only when the payload cannot be read as CSV at all, in
// which case the error wraps ErrMalformedFile.
func ParseCSV(contents string, now time.Time) (ImportResult, error) {
	r := csv.NewReader(strings.NewReader(contents))
	r.FieldsPerRecord = -1 // column count is validated per row
	r.TrimLeadingSpace = true

	// Header row: always skipped, content ignored.
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return ImportResult{}, nil
		}
		return ImportResult{}, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	var res ImportResult
	row := 0
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// The reader cannot recover its framing after a syntax
			// error, so the whole batch is rejected.
			return ImportResult{}, fmt.Errorf("%w: %v", ErrMalformedFile, err)
		}

		// Blank rows are skipped without consuming a row index, so the
		// indices in Rejected count data rows only.
		if blankRow(fields) {
			continue
		}

		rec, err := Normalize(RawEntry{
			CustomDate:  field(fields, colDate),
			Category:    field(fields, colCategory),
			Amount:      field(fields, colAmount),
			Description: field(fields, colDescription),
			Kind:        string(Expense),
		}, now)
		if err != nil {
			res.Rejected = append(res.Rejected, RowError{Row: row, Err: err})
			row++
			continue
		}
		res.Accepted = append(res.Accepted, rec)
		row++
	}

	return res, nil
}

// field returns the i-th column, treating missing columns as empty so
// that short rows fall through ordinary validation.
func field(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return fields[i]
}

func blankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
