package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"bolsillo/internal/amqp"
	"bolsillo/internal/core"
	"bolsillo/internal/export/memory"
	"bolsillo/internal/storage"
)

type fakeSource struct {
	records  map[string]core.Record
	exported map[string]string
	errored  map[string]bool
}

func newFakeSource(records ...core.Record) *fakeSource {
	f := &fakeSource{
		records:  make(map[string]core.Record),
		exported: make(map[string]string),
		errored:  make(map[string]bool),
	}
	for _, rec := range records {
		f.records[rec.ID] = rec
	}
	return f
}

func (f *fakeSource) GetRecord(_ context.Context, id string) (core.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return core.Record{}, storage.ErrNotFound
	}
	return rec, nil
}

func (f *fakeSource) PendingExport(_ context.Context, limit int) ([]core.Record, error) {
	var out []core.Record
	for id, rec := range f.records {
		if _, done := f.exported[id]; !done && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeSource) MarkExported(_ context.Context, id, ref string) error {
	f.exported[id] = ref
	return nil
}

func (f *fakeSource) MarkExportError(_ context.Context, id string) error {
	f.errored[id] = true
	return nil
}

func testRecord(id string) core.Record {
	return core.Record{
		ID:        id,
		OwnerID:   "owner",
		Direction: core.Expense,
		Amount:    core.Money{Cents: 1200},
		CreatedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestHandleChangeMessageExports(t *testing.T) {
	source := newFakeSource(testRecord("r1"))
	sink := memory.New()
	w := NewExportWorker(source, sink, 10)

	msg := amqp.NewRecordChangeMessage("r1", "owner", "record.created")
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleChangeMessage() error = %v", err)
	}

	if items := sink.Items(); len(items) != 1 || items[0].ID != "r1" {
		t.Errorf("sink items = %+v, want [r1]", items)
	}
	if source.exported["r1"] == "" {
		t.Error("record should be marked exported")
	}
}

func TestHandleChangeMessageSkipsDeleted(t *testing.T) {
	source := newFakeSource()
	sink := memory.New()
	w := NewExportWorker(source, sink, 10)

	msg := amqp.NewRecordChangeMessage("gone", "owner", "record.deleted")
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleChangeMessage() error = %v", err)
	}
	if len(sink.Items()) != 0 {
		t.Error("deleted records must not be exported")
	}
}

func TestHandleChangeMessageRecordGone(t *testing.T) {
	w := NewExportWorker(newFakeSource(), memory.New(), 10)

	msg := amqp.NewRecordChangeMessage("missing", "owner", "record.created")
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Errorf("HandleChangeMessage() error = %v, want nil for missing record", err)
	}
}

type failingWriter struct{}

func (failingWriter) Append(context.Context, core.Record) (string, error) {
	return "", errors.New("sink unavailable")
}

func TestHandleChangeMessageMarksError(t *testing.T) {
	source := newFakeSource(testRecord("r1"))
	w := NewExportWorker(source, failingWriter{}, 10)

	msg := amqp.NewRecordChangeMessage("r1", "owner", "record.created")
	if err := w.HandleChangeMessage(context.Background(), msg); err == nil {
		t.Fatal("HandleChangeMessage() should fail when the sink fails")
	}
	if !source.errored["r1"] {
		t.Error("record should be marked with export error")
	}
}

func TestStartupSweepExportsPending(t *testing.T) {
	source := newFakeSource(testRecord("r1"), testRecord("r2"))
	sink := memory.New()
	w := NewExportWorker(source, sink, 10)

	if err := w.StartupSweep(context.Background()); err != nil {
		t.Fatalf("StartupSweep() error = %v", err)
	}
	if len(sink.Items()) != 2 {
		t.Errorf("exported %d records, want 2", len(sink.Items()))
	}

	// Second sweep finds nothing left.
	if err := w.StartupSweep(context.Background()); err != nil {
		t.Fatalf("second StartupSweep() error = %v", err)
	}
	if len(sink.Items()) != 2 {
		t.Errorf("re-sweep re-exported records: %d items", len(sink.Items()))
	}
}
