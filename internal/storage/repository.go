// Package storage implements the record store on SQLite. Every read used by
// the derivation engine is a full per-owner snapshot; the engine re-folds
// from scratch on each change instead of maintaining running totals.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bolsillo/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db      *sql.DB
	changes *ChangeFeed
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

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		changes: NewChangeFeed(),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	r.changes.Close()
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Changes exposes the in-process change feed. Subscribers learn when an
// owner's record set changed and should be re-folded.
func (r *SQLiteRepository) Changes() *ChangeFeed {
	return r.changes
}

const recordColumns = `id, owner_id, direction, amount_cents, description, category, instrument, target_pocket_id, linked_transfer_id, created_at`

func scanRecord(row interface{ Scan(...any) error }) (core.Record, error) {
	var (
		rec        core.Record
		cents      int64
		category   string
		instrument string
		createdAt  time.Time
	)
	err := row.Scan(&rec.ID, &rec.OwnerID, (*string)(&rec.Direction), &cents, &rec.Description,
		&category, &instrument, &rec.TargetPocketID, &rec.LinkedTransferID, &createdAt)
	if err != nil {
		return core.Record{}, err
	}
	rec.Amount = core.Money{Cents: cents}
	rec.Category = core.ParseCategory(category)
	ref, err := core.ParseInstrumentRef(instrument)
	if err != nil {
		// A malformed stored reference degrades to absent rather than
		// poisoning the whole snapshot.
		ref = core.InstrumentRef{}
	}
	rec.Instrument = ref
	rec.CreatedAt = createdAt
	return rec, nil
}

// RecordsByOwner returns the full record snapshot for one owner.
func (r *SQLiteRepository) RecordsByOwner(ctx context.Context, ownerID string) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// GetRecord retrieves a single record by id.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id string) (core.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

const insertRecordSQL = `INSERT INTO records (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func recordArgs(rec core.Record) []any {
	return []any{
		rec.ID, rec.OwnerID, string(rec.Direction), rec.Amount.Cents, rec.Description,
		rec.Category.String(), rec.Instrument.String(), rec.TargetPocketID,
		rec.LinkedTransferID, rec.CreatedAt,
	}
}

// AppendRecord inserts one record and notifies subscribers.
func (r *SQLiteRepository) AppendRecord(ctx context.Context, rec core.Record) error {
	if _, err := r.db.ExecContext(ctx, insertRecordSQL, recordArgs(rec)...); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	slog.InfoContext(ctx, "Record saved",
		"record_id", rec.ID,
		"owner_id", rec.OwnerID,
		"direction", rec.Direction,
		"amount_cents", rec.Amount.Cents)
	r.changes.Publish(Change{OwnerID: rec.OwnerID, Kind: ChangeRecordCreated, RecordID: rec.ID})
	return nil
}

// AppendLinked writes both halves of a transfer in a single transaction.
// Either both records land or neither does; a failure after partial
// application is reported as core.ErrPartialWrite so callers can surface it.
func (r *SQLiteRepository) AppendLinked(ctx context.Context, pair core.TransferPair) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transfer batch: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertRecordSQL, recordArgs(pair.Out)...); err != nil {
		return fmt.Errorf("insert transfer expense half: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertRecordSQL, recordArgs(pair.In)...); err != nil {
		return fmt.Errorf("insert transfer income half: %w", err)
	}
	if err := tx.Commit(); err != nil {
		// The driver cannot tell us whether the commit was applied. Treat
		// it as a partial write so the caller warns the user instead of
		// retrying into a duplicate transfer.
		return fmt.Errorf("commit transfer batch: %w: %w", core.ErrPartialWrite, err)
	}
	slog.InfoContext(ctx, "Transfer saved",
		"out_record_id", pair.Out.ID,
		"in_record_id", pair.In.ID,
		"owner_id", pair.Out.OwnerID,
		"amount_cents", pair.Out.Amount.Cents)
	r.changes.Publish(Change{OwnerID: pair.Out.OwnerID, Kind: ChangeRecordCreated, RecordID: pair.Out.ID})
	r.changes.Publish(Change{OwnerID: pair.In.OwnerID, Kind: ChangeRecordCreated, RecordID: pair.In.ID})
	return nil
}

// ReplaceRecord edits a record in place (full replace).
func (r *SQLiteRepository) ReplaceRecord(ctx context.Context, rec core.Record) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET direction = ?, amount_cents = ?, description = ?, category = ?,
		 instrument = ?, target_pocket_id = ? WHERE id = ? AND owner_id = ?`,
		string(rec.Direction), rec.Amount.Cents, rec.Description, rec.Category.String(),
		rec.Instrument.String(), rec.TargetPocketID, rec.ID, rec.OwnerID)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %s: %w", rec.ID, ErrNotFound)
	}
	r.changes.Publish(Change{OwnerID: rec.OwnerID, Kind: ChangeRecordUpdated, RecordID: rec.ID})
	return nil
}

// DeleteRecord removes a record. No soft delete, no cascade.
func (r *SQLiteRepository) DeleteRecord(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	r.changes.Publish(Change{OwnerID: ownerID, Kind: ChangeRecordDeleted, RecordID: id})
	return nil
}
