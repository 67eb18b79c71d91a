// Package worker mirrors ledger records into the statement export sink.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bolsillo/internal/amqp"
	"bolsillo/internal/core"
	"bolsillo/internal/export"
	"bolsillo/internal/storage"
)

// RecordSource is the slice of the repository the export worker needs.
type RecordSource interface {
	GetRecord(ctx context.Context, id string) (core.Record, error)
	PendingExport(ctx context.Context, limit int) ([]core.Record, error)
	MarkExported(ctx context.Context, id, ref string) error
	MarkExportError(ctx context.Context, id string) error
}

// ExportWorker consumes record change messages and appends the referenced
// records to the statement sink. Messages carry ids only, so the worker
// always exports the stored state, never the message payload.
type ExportWorker struct {
	source    RecordSource
	writer    export.StatementWriter
	batchSize int
}

func NewExportWorker(source RecordSource, writer export.StatementWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		source:    source,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleChangeMessage processes one record change message from AMQP.
func (w *ExportWorker) HandleChangeMessage(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	if msg.Kind == "record.deleted" {
		// The statement is append-only; deletions stay in the ledger only.
		slog.InfoContext(ctx, "Skipping deleted record", "record_id", msg.RecordID)
		return nil
	}

	rec, err := w.source.GetRecord(ctx, msg.RecordID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between publish and consume. Nothing to export.
		slog.WarnContext(ctx, "Record gone before export", "record_id", msg.RecordID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	return w.exportRecord(ctx, rec)
}

// StartupSweep exports any records still pending. It recovers from missed
// messages or worker downtime and is safe to run repeatedly.
func (w *ExportWorker) StartupSweep(ctx context.Context) error {
	pending, err := w.source.PendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Processing pending records on startup", "count", len(pending))

	exported := 0
	failed := 0
	for _, rec := range pending {
		if err := w.exportRecord(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending record",
				"record_id", rec.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup sweep completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
	return nil
}

func (w *ExportWorker) exportRecord(ctx context.Context, rec core.Record) error {
	ref, err := w.writer.Append(ctx, rec)
	if err != nil {
		if markErr := w.source.MarkExportError(ctx, rec.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error",
				"record_id", rec.ID, "error", markErr)
		}
		return fmt.Errorf("append to statement: %w", err)
	}

	if err := w.source.MarkExported(ctx, rec.ID, ref); err != nil {
		// The export itself worked; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark as exported",
			"record_id", rec.ID, "error", err)
	}

	slog.InfoContext(ctx, "Record exported",
		"record_id", rec.ID,
		"owner_id", rec.OwnerID,
		"export_ref", ref,
		"amount_cents", rec.Amount.Cents)
	return nil
}
