// Package worker exports locally stored records to the configured sheet,
// driven by AMQP messages with a periodic sweep as backup.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"moneta/internal/amqp"
	"moneta/internal/core"
	"moneta/internal/log"
	"moneta/internal/sheets"
	"moneta/internal/storage"
)

// RecordExporter is the sheet-side surface the worker writes to.
type RecordExporter interface {
	sheets.RecordWriter
	sheets.RecordReplacer
	sheets.RecordDeleter
}

// SyncWorker moves records from SQLite to the sheet and tracks the
// outcome in the records' sync status.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	exporter  RecordExporter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, exporter RecordExporter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	id := strconv.FormatInt(msg.ID, 10)
	rec, err := w.storage.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before the message was consumed; nothing to export
		slog.WarnContext(ctx, "Record gone before sync, skipping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	if err := w.exportRecord(ctx, msg.ID, rec); err != nil {
		return fmt.Errorf("export record: %w", err)
	}
	return nil
}

// HandleDeleteMessage clears the record's row in the sheet.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.RecordDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	id := strconv.FormatInt(msg.ID, 10)
	err := w.exporter.Delete(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// Never exported, so nothing to clear
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete record from sheet: %w", err)
	}

	slog.InfoContext(ctx, "Record removed from sheet", "id", msg.ID)
	return nil
}

// ProcessPendingRecords exports records that have not been synced yet.
// This is the backup path for lost AMQP messages.
func (w *SyncWorker) ProcessPendingRecords(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(pending))

	for _, p := range pending {
		rec, err := w.storage.Get(ctx, strconv.FormatInt(p.ID, 10))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get record", "id", p.ID, "error", err)
			if markErr := w.storage.MarkSyncError(ctx, p.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", markErr)
			}
			continue
		}

		if err := w.exportRecord(ctx, p.ID, rec); err != nil {
			fields := log.NewFields().WithOperation(log.OpSync).WithError(err)
			fields[log.FieldRecordID] = p.ID
			slog.ErrorContext(ctx, "Failed to export record", fields.ToSlice()...)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains pending records at worker startup, recovering
// from missed messages or downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending records for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending records on startup, processing...",
		"count", len(pending))

	synced := 0
	failed := 0
	for _, p := range pending {
		rec, err := w.storage.Get(ctx, strconv.FormatInt(p.ID, 10))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get record for startup sync",
				"id", p.ID, "error", err)
			if markErr := w.storage.MarkSyncError(ctx, p.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", markErr)
			}
			failed++
			continue
		}

		if err := w.exportRecord(ctx, p.ID, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to export record during startup",
				"id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

// RunPeriodicSweep processes pending records on a fixed interval until
// ctx is done.
func (w *SyncWorker) RunPeriodicSweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPendingRecords(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sweep failed", "error", err)
			}
		}
	}
}

// exportRecord writes the record to the sheet, replacing an existing row
// when one holds the same ID, and updates the sync status.
func (w *SyncWorker) exportRecord(ctx context.Context, id int64, rec core.Record) error {
	_, err := w.exporter.Replace(ctx, rec.ID, rec)
	if errors.Is(err, core.ErrNotFound) {
		_, err = w.exporter.Append(ctx, rec)
	}
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("write to sheet: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The export itself worked; log and move on
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	fields := log.NewFields().
		WithOperation(log.OpSync).
		WithRecord(rec.ID, rec.Category, string(rec.Kind), rec.Amount.Cents)
	slog.InfoContext(ctx, "Record synced", fields.ToSlice()...)

	return nil
}
