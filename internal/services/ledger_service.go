// Package services orchestrates record operations across the configured
// backend and the AMQP sync pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"moneta/internal/core"
	"moneta/internal/log"
	"moneta/internal/sheets"
)

// Publisher emits sync messages for the export worker. Nil disables
// publishing; records are then picked up by the periodic sweep only.
type Publisher interface {
	PublishRecordSync(ctx context.Context, id, version int64) error
	PublishRecordDelete(ctx context.Context, id int64) error
}

// ImportSummary reports the outcome of a CSV import: which rows became
// persisted records and which were rejected, by 0-based data-row index.
type ImportSummary struct {
	Accepted []core.Record
	Rejected []core.RowError
}

// Dashboard aggregates the records of one date range.
type Dashboard struct {
	Range          core.RangeToken
	Balance        core.Money
	IncomeTotal    core.Money
	ExpenseTotal   core.Money
	CategoryTotals map[string]core.Money
	CategoryShares map[string]float64
	Weekly         []core.WeekBucket
	EntryCount     int
}

// LedgerService coordinates normalization, persistence, and sync
// publication. Publish failures never fail the request; the record is
// already durable locally.
type LedgerService struct {
	store     sheets.Store
	publisher Publisher
	now       func() time.Time
}

func NewLedgerService(store sheets.Store, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateEntry normalizes the raw entry, persists it, and queues it for
// export.
func (s *LedgerService) CreateEntry(ctx context.Context, in core.RawEntry) (core.Record, error) {
	rec, err := core.Normalize(in, s.now())
	if err != nil {
		return core.Record{}, err
	}

	id, err := s.store.Append(ctx, rec)
	if err != nil {
		return core.Record{}, fmt.Errorf("save record: %w", err)
	}
	rec.ID = id

	s.publishSync(ctx, id, 1)
	return rec, nil
}

// ImportCSV parses the file contents, persists every accepted row, and
// reports rejected rows by index. A malformed file persists nothing.
func (s *LedgerService) ImportCSV(ctx context.Context, contents string) (ImportSummary, error) {
	result, err := core.ParseCSV(contents, s.now())
	if err != nil {
		return ImportSummary{}, err
	}

	summary := ImportSummary{Rejected: result.Rejected}
	for _, rec := range result.Accepted {
		id, err := s.store.Append(ctx, rec)
		if err != nil {
			return summary, fmt.Errorf("save imported record: %w", err)
		}
		rec.ID = id
		summary.Accepted = append(summary.Accepted, rec)

		s.publishSync(ctx, id, 1)
	}

	slog.InfoContext(ctx, "CSV import finished",
		log.FieldOperation, log.OpImport,
		log.FieldRowsAccepted, len(summary.Accepted),
		log.FieldRowsRejected, len(summary.Rejected))

	return summary, nil
}

// Entries returns the records whose effective date falls inside the
// given range token, most recent last.
func (s *LedgerService) Entries(ctx context.Context, token core.RangeToken) ([]core.Record, error) {
	r, err := core.ResolveRange(token, s.now())
	if err != nil {
		return nil, err
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	return core.Filter(records, r), nil
}

// UpdateEntry replaces the record's fields with the normalized raw
// entry. The stored creation time is preserved by the backend.
func (s *LedgerService) UpdateEntry(ctx context.Context, id string, in core.RawEntry) (core.Record, error) {
	rec, err := core.Normalize(in, s.now())
	if err != nil {
		return core.Record{}, err
	}

	updated, err := s.store.Replace(ctx, id, rec)
	if err != nil {
		return core.Record{}, err
	}

	// Version 0 means "latest"; the worker reloads the record anyway.
	s.publishSync(ctx, id, 0)
	return updated, nil
}

// DeleteEntry removes the record and queues the deletion for export.
func (s *LedgerService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if numID, err := strconv.ParseInt(id, 10, 64); err == nil {
		s.publishDelete(ctx, numID)
	}
	return nil
}

// Dashboard aggregates the records of the given range.
func (s *LedgerService) Dashboard(ctx context.Context, token core.RangeToken) (Dashboard, error) {
	records, err := s.Entries(ctx, token)
	if err != nil {
		return Dashboard{}, err
	}

	var income, expense int64
	for _, rec := range records {
		switch rec.Kind {
		case core.Income:
			income += rec.Amount.Cents
		case core.Expense:
			expense += rec.Amount.Cents
		}
	}

	totals := core.CategoryTotals(records)
	return Dashboard{
		Range:          token,
		Balance:        core.Balance(records),
		IncomeTotal:    core.Money{Cents: income},
		ExpenseTotal:   core.Money{Cents: expense},
		CategoryTotals: totals,
		CategoryShares: core.PercentageOfTotal(totals),
		Weekly:         core.WeeklyBuckets(records),
		EntryCount:     len(records),
	}, nil
}

func (s *LedgerService) publishSync(ctx context.Context, id string, version int64) {
	if s.publisher == nil {
		return
	}

	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		slog.WarnContext(ctx, "Record ID is not numeric, skipping sync message", "id", id)
		return
	}

	if err := s.publisher.PublishRecordSync(ctx, numID, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", numID, "error", err)
		// Record is saved locally; the periodic sweep will retry
	}
}

func (s *LedgerService) publishDelete(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishRecordDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
	}
}
