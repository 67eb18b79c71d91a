// Package services orchestrates ledger operations across storage and AMQP.
// Services never compute amounts themselves: they load a snapshot, let the
// core fold or compose over it, and persist the result.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bolsillo/internal/amqp"
	"bolsillo/internal/core"
)

// Store is the slice of the repository the ledger service needs.
type Store interface {
	RecordsByOwner(ctx context.Context, ownerID string) ([]core.Record, error)
	GetRecord(ctx context.Context, id string) (core.Record, error)
	AppendRecord(ctx context.Context, rec core.Record) error
	AppendLinked(ctx context.Context, pair core.TransferPair) error
	ReplaceRecord(ctx context.Context, rec core.Record) error
	DeleteRecord(ctx context.Context, ownerID, id string) error

	PocketsByOwner(ctx context.Context, ownerID string) ([]core.Pocket, error)
	GetPocket(ctx context.Context, ownerID, id string) (core.Pocket, error)
	InstrumentsByOwner(ctx context.Context, ownerID string) ([]core.Instrument, error)
	GetInstrument(ctx context.Context, ownerID, id string) (core.Instrument, error)
}

// Publisher sends record change notifications. Publishing is best-effort:
// the record is already durable in SQLite when the message goes out.
type Publisher interface {
	PublishRecordChange(ctx context.Context, msg *amqp.RecordChangeMessage) error
}

type LedgerService struct {
	store     Store
	publisher Publisher
	now       func() time.Time
}

func NewLedgerService(store Store, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateRecord validates and persists one record, then notifies subscribers.
func (s *LedgerService) CreateRecord(ctx context.Context, rec core.Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if err := rec.Validate(); err != nil {
		return "", err
	}
	if err := s.store.AppendRecord(ctx, rec); err != nil {
		return "", fmt.Errorf("save record: %w", err)
	}
	s.publish(ctx, rec.ID, rec.OwnerID, "record.created")
	return rec.ID, nil
}

// ReplaceRecord overwrites an existing record after re-validation.
func (s *LedgerService) ReplaceRecord(ctx context.Context, rec core.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := s.store.ReplaceRecord(ctx, rec); err != nil {
		return fmt.Errorf("replace record: %w", err)
	}
	s.publish(ctx, rec.ID, rec.OwnerID, "record.updated")
	return nil
}

func (s *LedgerService) DeleteRecord(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteRecord(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.publish(ctx, id, ownerID, "record.deleted")
	return nil
}

// Transfer moves an amount between two pockets of the same owner by writing
// the linked record pair atomically.
func (s *LedgerService) Transfer(ctx context.Context, ownerID, fromPocketID, toPocketID string, amount core.Money, description string) (core.TransferPair, error) {
	from, err := s.store.GetPocket(ctx, ownerID, fromPocketID)
	if err != nil {
		return core.TransferPair{}, fmt.Errorf("load source pocket: %w", err)
	}
	to, err := s.store.GetPocket(ctx, ownerID, toPocketID)
	if err != nil {
		return core.TransferPair{}, fmt.Errorf("load destination pocket: %w", err)
	}

	records, lookup, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return core.TransferPair{}, err
	}

	pair, err := core.ComposeTransfer(from, to, amount, description, records, lookup, s.now())
	if err != nil {
		return core.TransferPair{}, err
	}
	if err := s.store.AppendLinked(ctx, pair); err != nil {
		return core.TransferPair{}, err
	}
	s.publish(ctx, pair.Out.ID, ownerID, "record.created")
	s.publish(ctx, pair.In.ID, ownerID, "record.created")

	slog.InfoContext(ctx, "Transfer completed",
		"owner_id", ownerID,
		"from_pocket", fromPocketID,
		"to_pocket", toPocketID,
		"amount_cents", amount.Cents)
	return pair, nil
}

// PayInstrument settles part of a credit instrument's pending amount.
func (s *LedgerService) PayInstrument(ctx context.Context, ownerID, instrumentID string, amount core.Money) (core.Record, error) {
	inst, err := s.store.GetInstrument(ctx, ownerID, instrumentID)
	if err != nil {
		return core.Record{}, fmt.Errorf("load instrument: %w", err)
	}
	records, err := s.store.RecordsByOwner(ctx, ownerID)
	if err != nil {
		return core.Record{}, fmt.Errorf("load records: %w", err)
	}

	rec, err := core.ComposePayment(inst, amount, records, s.now())
	if err != nil {
		return core.Record{}, err
	}
	if err := s.store.AppendRecord(ctx, rec); err != nil {
		return core.Record{}, fmt.Errorf("save payment: %w", err)
	}
	s.publish(ctx, rec.ID, ownerID, "record.created")

	slog.InfoContext(ctx, "Instrument payment recorded",
		"owner_id", ownerID,
		"instrument_id", instrumentID,
		"amount_cents", amount.Cents)
	return rec, nil
}

// PocketAmount pairs a pocket with its derived amount.
type PocketAmount struct {
	Pocket core.Pocket
	Amount core.Money
}

// InstrumentPending pairs an instrument with its derived pending amount.
type InstrumentPending struct {
	Instrument core.Instrument
	Pending    core.Money
	OverPaid   bool
}

// Overview is the full derived state for one owner: headline totals, every
// pocket's amount, the unassigned remainder, and per-instrument pendings.
type Overview struct {
	Totals     core.Summary
	Pockets    []PocketAmount
	Unassigned core.Money
	Pendings   []InstrumentPending
}

// Overview re-folds the owner's snapshot into the derived figures. Nothing
// here is read from storage directly; it all comes out of the fold.
func (s *LedgerService) Overview(ctx context.Context, ownerID string) (Overview, error) {
	records, err := s.store.RecordsByOwner(ctx, ownerID)
	if err != nil {
		return Overview{}, fmt.Errorf("load records: %w", err)
	}
	pockets, err := s.store.PocketsByOwner(ctx, ownerID)
	if err != nil {
		return Overview{}, fmt.Errorf("load pockets: %w", err)
	}
	instruments, err := s.store.InstrumentsByOwner(ctx, ownerID)
	if err != nil {
		return Overview{}, fmt.Errorf("load instruments: %w", err)
	}

	lookup := core.LookupFrom(instruments)
	known := make(map[string]bool, len(pockets))
	for _, p := range pockets {
		known[p.ID] = true
	}

	ov := Overview{
		Totals:     core.Totals(records, lookup),
		Unassigned: core.UnassignedAmount(records, func(id string) bool { return known[id] }, lookup),
	}
	for _, p := range pockets {
		ov.Pockets = append(ov.Pockets, PocketAmount{Pocket: p, Amount: core.AmountOf(p, records, lookup)})
	}
	for _, inst := range instruments {
		if inst.Kind != core.InstrumentCredit {
			continue
		}
		pending := core.PendingOf(inst.ID, records)
		ov.Pendings = append(ov.Pendings, InstrumentPending{
			Instrument: inst,
			Pending:    pending.Display(),
			OverPaid:   pending.OverPaid,
		})
	}
	return ov, nil
}

func (s *LedgerService) snapshot(ctx context.Context, ownerID string) ([]core.Record, core.InstrumentLookup, error) {
	records, err := s.store.RecordsByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("load records: %w", err)
	}
	instruments, err := s.store.InstrumentsByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("load instruments: %w", err)
	}
	return records, core.LookupFrom(instruments), nil
}

func (s *LedgerService) publish(ctx context.Context, recordID, ownerID, kind string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewRecordChangeMessage(recordID, ownerID, kind)
	if err := s.publisher.PublishRecordChange(ctx, msg); err != nil {
		// The record is already durable; the export worker catches up on
		// the next message for this owner.
		slog.ErrorContext(ctx, "Failed to publish record change",
			"record_id", recordID,
			"owner_id", ownerID,
			"error", err)
	}
}
