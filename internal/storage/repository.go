package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"moneta/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists ledger records in a local SQLite database and
// keeps a per-record sync status for the sheets export queue.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append stores a new record and returns its assigned ID.
func (r *SQLiteRepository) Append(ctx context.Context, rec core.Record) (string, error) {
	row, err := r.queries.CreateRecord(ctx, CreateRecordParams{
		Kind:        string(rec.Kind),
		Category:    rec.Category,
		AmountCents: rec.Amount.Cents,
		Description: rec.Description,
		CustomDate:  nullTime(rec.CustomDate),
		CreatedAt:   rec.CreatedAt.UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("create record: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", row.ID,
		"kind", row.Kind,
		"category", row.Category,
		"amount_cents", row.AmountCents)

	return strconv.FormatInt(row.ID, 10), nil
}

// List returns all non-deleted records in creation order.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Record, error) {
	rows, err := r.queries.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	records := make([]core.Record, len(rows))
	for i, row := range rows {
		records[i] = toCore(row)
	}
	return records, nil
}

// Get returns a single non-deleted record by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Record, error) {
	numID, err := parseID(id)
	if err != nil {
		return core.Record{}, err
	}

	row, err := r.queries.GetRecord(ctx, numID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, core.ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get record: %w", err)
	}
	return toCore(row), nil
}

// Replace swaps the stored fields of id for those of rec, bumping the
// version and re-queueing the record for sync.
func (r *SQLiteRepository) Replace(ctx context.Context, id string, rec core.Record) (core.Record, error) {
	numID, err := parseID(id)
	if err != nil {
		return core.Record{}, err
	}

	row, err := r.queries.ReplaceRecord(ctx, ReplaceRecordParams{
		ID:          numID,
		Kind:        string(rec.Kind),
		Category:    rec.Category,
		AmountCents: rec.Amount.Cents,
		Description: rec.Description,
		CustomDate:  nullTime(rec.CustomDate),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, core.ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("replace record: %w", err)
	}

	slog.InfoContext(ctx, "Record replaced", "id", row.ID, "version", row.Version)
	return toCore(row), nil
}

// Delete soft-deletes a record. Deleted records stay in the table for
// audit but disappear from lists and lookups.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	numID, err := parseID(id)
	if err != nil {
		return err
	}

	affected, err := r.queries.SoftDeleteRecord(ctx, numID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Record deleted", "id", numID)
	return nil
}

// PendingSyncRecord is the minimal payload queued for the sheets sync
// worker.
type PendingSyncRecord struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// GetPendingSync returns up to limit records awaiting export.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSyncRecord, error) {
	rows, err := r.queries.GetPendingSyncRecords(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync records: %w", err)
	}

	pending := make([]PendingSyncRecord, len(rows))
	for i, row := range rows {
		pending[i] = PendingSyncRecord{
			ID:        row.ID,
			Version:   row.Version,
			CreatedAt: row.CreatedAt,
		}
	}
	return pending, nil
}

// MarkSynced marks a record as successfully exported.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkRecordSynced(ctx, id); err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}
	slog.InfoContext(ctx, "Record marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a record as having failed export.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkRecordSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark record sync error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with sync error", "id", id)
	return nil
}

func parseID(id string) (int64, error) {
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, core.ErrNotFound
	}
	return numID, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func toCore(row RecordRow) core.Record {
	rec := core.Record{
		ID:          strconv.FormatInt(row.ID, 10),
		Category:    row.Category,
		Amount:      core.Money{Cents: row.AmountCents},
		Kind:        core.Kind(row.Kind),
		Description: row.Description,
		CreatedAt:   row.CreatedAt.Local(),
	}
	if row.CustomDate.Valid {
		rec.CustomDate = row.CustomDate.Time.Local()
	}
	return rec
}
