package storage

import (
	"context"
	"fmt"

	"bolsillo/internal/core"
)

// Export states for the statement export worker. Records start pending and
// move to exported or error; the worker sweeps pending rows on startup as a
// backup for lost messages.
const (
	ExportPending  = "pending"
	ExportDone     = "exported"
	ExportErrState = "error"
)

func (r *SQLiteRepository) MarkExported(ctx context.Context, id, ref string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET export_state = ?, export_ref = ? WHERE id = ?`,
		ExportDone, ref, id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE records SET export_state = ? WHERE id = ?`, ExportErrState, id); err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	return nil
}

// PendingExport returns up to limit records not yet exported, oldest first.
func (r *SQLiteRepository) PendingExport(ctx context.Context, limit int) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE export_state = ? ORDER BY created_at, id LIMIT ?`,
		ExportPending, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending export: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
