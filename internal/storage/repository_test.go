package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bolsillo/internal/core"
	"bolsillo/internal/split"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAppendAndSnapshotRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := core.Record{
		ID:         "r1",
		OwnerID:    "owner",
		Direction:  core.Expense,
		Amount:     core.Money{Cents: 1250},
		Category:   core.OtherCategory("groceries"),
		Instrument: core.DebitRef("deb1"),
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.AppendRecord(ctx, rec); err != nil {
		t.Fatalf("AppendRecord() error = %v", err)
	}

	records, err := repo.RecordsByOwner(ctx, "owner")
	if err != nil {
		t.Fatalf("RecordsByOwner() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	got := records[0]
	if got.Amount.Cents != 1250 {
		t.Errorf("amount = %d, want 1250", got.Amount.Cents)
	}
	if got.Category.String() != "groceries" {
		t.Errorf("category = %q, want groceries", got.Category.String())
	}
	if !got.Instrument.IsDebit() || got.Instrument.InstrumentID() != "deb1" {
		t.Errorf("instrument = %v, want debit:deb1", got.Instrument)
	}

	other, err := repo.RecordsByOwner(ctx, "someone-else")
	if err != nil {
		t.Fatalf("RecordsByOwner() error = %v", err)
	}
	if len(other) != 0 {
		t.Errorf("got %d records for other owner, want 0", len(other))
	}
}

func TestAppendLinkedWritesBothHalves(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	pair := core.TransferPair{
		Out: core.Record{
			ID: "out1", OwnerID: "owner", Direction: core.Expense,
			Amount: core.Money{Cents: 4000}, Category: core.TransferCategory(),
			LinkedTransferID: "in1", CreatedAt: now,
		},
		In: core.Record{
			ID: "in1", OwnerID: "owner", Direction: core.Income,
			Amount: core.Money{Cents: 4000}, Category: core.TransferCategory(),
			TargetPocketID: "savings", LinkedTransferID: "out1", CreatedAt: now,
		},
	}
	if err := repo.AppendLinked(ctx, pair); err != nil {
		t.Fatalf("AppendLinked() error = %v", err)
	}

	records, err := repo.RecordsByOwner(ctx, "owner")
	if err != nil {
		t.Fatalf("RecordsByOwner() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for _, rec := range records {
		if !rec.Category.IsTransfer() {
			t.Errorf("record %s category = %q, want transfer", rec.ID, rec.Category.String())
		}
		if rec.LinkedTransferID == "" {
			t.Errorf("record %s has no linked transfer id", rec.ID)
		}
	}
}

func TestDeleteRecordNotFound(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.DeleteRecord(context.Background(), "owner", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteRecord() error = %v, want ErrNotFound", err)
	}
}

func TestChangeFeedNotifiesOnAppend(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ch, cancel := repo.Changes().Subscribe()
	defer cancel()

	rec := core.Record{
		ID: "r1", OwnerID: "owner", Direction: core.Income,
		Amount: core.Money{Cents: 100}, CreatedAt: time.Now().UTC(),
	}
	if err := repo.AppendRecord(ctx, rec); err != nil {
		t.Fatalf("AppendRecord() error = %v", err)
	}

	select {
	case change := <-ch:
		if change.OwnerID != "owner" || change.Kind != ChangeRecordCreated {
			t.Errorf("change = %+v, want owner/record.created", change)
		}
	case <-time.After(time.Second):
		t.Fatal("no change received")
	}
}

func TestRoomAndExpenseRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	room := split.Room{ID: "room1", JoinCode: "ABC123", Name: "Trip", MemberIDs: []string{"alice", "bob"}}
	if err := repo.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	if err := repo.AddRoomMember(ctx, "room1", "carol"); err != nil {
		t.Fatalf("AddRoomMember() error = %v", err)
	}
	if err := repo.AddRoomMember(ctx, "room1", "carol"); !errors.Is(err, ErrDuplicateMember) {
		t.Errorf("duplicate AddRoomMember() error = %v, want ErrDuplicateMember", err)
	}

	got, err := repo.RoomByJoinCode(ctx, "ABC123")
	if err != nil {
		t.Fatalf("RoomByJoinCode() error = %v", err)
	}
	if len(got.MemberIDs) != 3 {
		t.Errorf("got %d members, want 3", len(got.MemberIDs))
	}

	expense := split.Expense{
		ID: "e1", RoomID: "room1", Amount: core.Money{Cents: 9000},
		PayerID: "alice", Shares: map[string]int{"alice": 1, "bob": 1, "carol": 1},
		CreatedByID: "alice", CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateSharedExpense(ctx, expense); err != nil {
		t.Fatalf("CreateSharedExpense() error = %v", err)
	}

	expenses, err := repo.ExpensesByRoom(ctx, "room1")
	if err != nil {
		t.Fatalf("ExpensesByRoom() error = %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("got %d expenses, want 1", len(expenses))
	}
	if len(expenses[0].Shares) != 3 {
		t.Errorf("got %d shares, want 3", len(expenses[0].Shares))
	}
	if expenses[0].Shares["bob"] != 1 {
		t.Errorf("bob share = %d, want 1", expenses[0].Shares["bob"])
	}
}
