// Package google stores records in a Google Sheets spreadsheet, one row
// per record, using service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"moneta/internal/core"
	ports "moneta/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	recordsSheet  string
}

var _ ports.Store = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (default "Records"); credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Records"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		recordsSheet:  sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// Append writes the record to the next empty row. When the record has no
// ID yet, the row number becomes its ID. Cleared rows are never reused,
// so row numbers stay stable.
func (c *Client) Append(ctx context.Context, rec core.Record) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.recordsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.recordsSheet, err)
	}

	nextRow := len(resp.Values) + 1
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("%d", nextRow)
	}

	dataRange := fmt.Sprintf("%s!A%d:F%d", c.recordsSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{recordToRow(rec)}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write row to sheet %s: %w", c.recordsSheet, err)
	}

	slog.InfoContext(ctx, "Record appended to sheet",
		"sheet", c.recordsSheet,
		"row", nextRow,
		"id", rec.ID)

	return rec.ID, nil
}

// List scans the records sheet and parses every data row. Rows that do
// not parse are skipped; listing is best-effort.
func (c *Client) List(ctx context.Context) ([]core.Record, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:F", c.recordsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	var out []core.Record
	for _, row := range resp.Values {
		rec, ok := parseRecordRow(toStrings(row))
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (core.Record, error) {
	_, row, err := c.findRow(ctx, id)
	if err != nil {
		return core.Record{}, err
	}

	rec, ok := parseRecordRow(row)
	if !ok {
		return core.Record{}, fmt.Errorf("row for record %s does not parse", id)
	}
	return rec, nil
}

// Replace overwrites the row holding id with the fields of rec.
func (c *Client) Replace(ctx context.Context, id string, rec core.Record) (core.Record, error) {
	if err := rec.Validate(); err != nil {
		return core.Record{}, fmt.Errorf("validation failed: %w", err)
	}

	rowNum, _, err := c.findRow(ctx, id)
	if err != nil {
		return core.Record{}, err
	}

	rec.ID = id
	dataRange := fmt.Sprintf("%s!A%d:F%d", c.recordsSheet, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{recordToRow(rec)}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return core.Record{}, fmt.Errorf("update row %d in sheet %s: %w", rowNum, c.recordsSheet, err)
	}

	return rec, nil
}

// Delete clears the row holding id. The row itself stays, keeping later
// row numbers stable.
func (c *Client) Delete(ctx context.Context, id string) error {
	rowNum, _, err := c.findRow(ctx, id)
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:F%d", c.recordsSheet, rowNum, rowNum)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row %d in sheet %s: %w", rowNum, c.recordsSheet, err)
	}

	slog.InfoContext(ctx, "Record row cleared", "sheet", c.recordsSheet, "row", rowNum, "id", id)
	return nil
}

// findRow locates the row whose ID column equals id and returns its
// 1-based row number and string columns.
func (c *Client) findRow(ctx context.Context, id string) (int, []string, error) {
	if c.svc == nil {
		return 0, nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:F", c.recordsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, nil, fmt.Errorf("read %s: %w", rng, err)
	}

	for i, row := range resp.Values {
		cols := toStrings(row)
		if len(cols) > 0 && cols[0] == id {
			return i + 1, cols, nil
		}
	}
	return 0, nil, core.ErrNotFound
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
