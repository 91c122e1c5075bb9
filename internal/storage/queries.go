package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the subset of *sql.DB / *sql.Tx the queries need.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries bundles the hand-written SQL for the records table.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Sync status values for the records table.
const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
	SyncStatusError   = "error"
)

// RecordRow mirrors one row of the records table.
type RecordRow struct {
	ID          int64
	Kind        string
	Category    string
	AmountCents int64
	Description string
	CustomDate  sql.NullTime
	CreatedAt   time.Time
	Deleted     bool
	SyncStatus  string
	Version     int64
}

const recordColumns = `id, kind, category, amount_cents, description, custom_date, created_at, deleted, sync_status, version`

func scanRecordRow(s interface{ Scan(...any) error }) (RecordRow, error) {
	var row RecordRow
	err := s.Scan(
		&row.ID,
		&row.Kind,
		&row.Category,
		&row.AmountCents,
		&row.Description,
		&row.CustomDate,
		&row.CreatedAt,
		&row.Deleted,
		&row.SyncStatus,
		&row.Version,
	)
	return row, err
}

type CreateRecordParams struct {
	Kind        string
	Category    string
	AmountCents int64
	Description string
	CustomDate  sql.NullTime
	CreatedAt   time.Time
}

const createRecord = `
INSERT INTO records (kind, category, amount_cents, description, custom_date, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + recordColumns

func (q *Queries) CreateRecord(ctx context.Context, arg CreateRecordParams) (RecordRow, error) {
	return scanRecordRow(q.db.QueryRowContext(ctx, createRecord,
		arg.Kind,
		arg.Category,
		arg.AmountCents,
		arg.Description,
		arg.CustomDate,
		arg.CreatedAt,
	))
}

const getRecord = `
SELECT ` + recordColumns + `
FROM records
WHERE id = ? AND deleted = 0`

func (q *Queries) GetRecord(ctx context.Context, id int64) (RecordRow, error) {
	return scanRecordRow(q.db.QueryRowContext(ctx, getRecord, id))
}

const listRecords = `
SELECT ` + recordColumns + `
FROM records
WHERE deleted = 0
ORDER BY created_at, id`

func (q *Queries) ListRecords(ctx context.Context) ([]RecordRow, error) {
	rows, err := q.db.QueryContext(ctx, listRecords)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecordRow
	for rows.Next() {
		row, err := scanRecordRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type ReplaceRecordParams struct {
	ID          int64
	Kind        string
	Category    string
	AmountCents int64
	Description string
	CustomDate  sql.NullTime
}

const replaceRecord = `
UPDATE records
SET kind = ?, category = ?, amount_cents = ?, description = ?, custom_date = ?,
    sync_status = 'pending', version = version + 1
WHERE id = ? AND deleted = 0
RETURNING ` + recordColumns

func (q *Queries) ReplaceRecord(ctx context.Context, arg ReplaceRecordParams) (RecordRow, error) {
	return scanRecordRow(q.db.QueryRowContext(ctx, replaceRecord,
		arg.Kind,
		arg.Category,
		arg.AmountCents,
		arg.Description,
		arg.CustomDate,
		arg.ID,
	))
}

const softDeleteRecord = `
UPDATE records
SET deleted = 1, version = version + 1
WHERE id = ? AND deleted = 0`

func (q *Queries) SoftDeleteRecord(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, softDeleteRecord, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getPendingSyncRecords = `
SELECT ` + recordColumns + `
FROM records
WHERE deleted = 0 AND sync_status = 'pending'
ORDER BY created_at, id
LIMIT ?`

func (q *Queries) GetPendingSyncRecords(ctx context.Context, limit int64) ([]RecordRow, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncRecords, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecordRow
	for rows.Next() {
		row, err := scanRecordRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

const markRecordSynced = `
UPDATE records SET sync_status = 'synced' WHERE id = ?`

func (q *Queries) MarkRecordSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markRecordSynced, id)
	return err
}

const markRecordSyncError = `
UPDATE records SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkRecordSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markRecordSyncError, id)
	return err
}
