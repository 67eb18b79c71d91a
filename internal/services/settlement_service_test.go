package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bolsillo/internal/core"
	"bolsillo/internal/split"
	"bolsillo/internal/storage"
)

type fakeRoomStore struct {
	rooms    map[string]split.Room
	expenses map[string][]split.Expense
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{
		rooms:    make(map[string]split.Room),
		expenses: make(map[string][]split.Expense),
	}
}

func (f *fakeRoomStore) CreateRoom(_ context.Context, room split.Room) error {
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeRoomStore) GetRoom(_ context.Context, id string) (split.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return split.Room{}, storage.ErrNotFound
	}
	return room, nil
}

func (f *fakeRoomStore) RoomByJoinCode(_ context.Context, code string) (split.Room, error) {
	for _, room := range f.rooms {
		if room.JoinCode == code {
			return room, nil
		}
	}
	return split.Room{}, storage.ErrNotFound
}

func (f *fakeRoomStore) RoomsByMember(_ context.Context, memberID string) ([]split.Room, error) {
	var out []split.Room
	for _, room := range f.rooms {
		for _, id := range room.MemberIDs {
			if id == memberID {
				out = append(out, room)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRoomStore) AddRoomMember(_ context.Context, roomID, memberID string) error {
	room, ok := f.rooms[roomID]
	if !ok {
		return storage.ErrNotFound
	}
	for _, id := range room.MemberIDs {
		if id == memberID {
			return storage.ErrDuplicateMember
		}
	}
	room.MemberIDs = append(room.MemberIDs, memberID)
	f.rooms[roomID] = room
	return nil
}

func (f *fakeRoomStore) CreateSharedExpense(_ context.Context, e split.Expense) error {
	f.expenses[e.RoomID] = append(f.expenses[e.RoomID], e)
	return nil
}

func (f *fakeRoomStore) ExpensesByRoom(_ context.Context, roomID string) ([]split.Expense, error) {
	return f.expenses[roomID], nil
}

func (f *fakeRoomStore) DeleteSharedExpense(_ context.Context, roomID, id string) error {
	list := f.expenses[roomID]
	for i, e := range list {
		if e.ID == id {
			f.expenses[roomID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func newTestSettlement(store *fakeRoomStore) *SettlementService {
	svc := NewSettlementService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateAndJoinRoom(t *testing.T) {
	store := newFakeRoomStore()
	svc := newTestSettlement(store)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, "Trip", "alice")
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	if room.JoinCode == "" {
		t.Error("CreateRoom() produced empty join code")
	}
	if len(room.MemberIDs) != 1 || room.MemberIDs[0] != "alice" {
		t.Errorf("members = %v, want [alice]", room.MemberIDs)
	}

	joined, err := svc.JoinRoom(ctx, room.JoinCode, "bob")
	if err != nil {
		t.Fatalf("JoinRoom() error = %v", err)
	}
	if len(joined.MemberIDs) != 2 {
		t.Errorf("members after join = %v, want 2", joined.MemberIDs)
	}

	if _, err := svc.JoinRoom(ctx, room.JoinCode, "bob"); !errors.Is(err, storage.ErrDuplicateMember) {
		t.Errorf("second JoinRoom() error = %v, want ErrDuplicateMember", err)
	}

	if _, err := svc.JoinRoom(ctx, "nope", "carol"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("JoinRoom() with bad code error = %v, want ErrNotFound", err)
	}
}

func TestCreateRoomRejectsEmptyName(t *testing.T) {
	svc := newTestSettlement(newFakeRoomStore())

	if _, err := svc.CreateRoom(context.Background(), "  ", "alice"); err == nil {
		t.Error("CreateRoom() should reject blank name")
	}
}

func TestAddExpenseDefaultsToAllMembers(t *testing.T) {
	store := newFakeRoomStore()
	store.rooms["room1"] = split.Room{ID: "room1", Name: "Trip", MemberIDs: []string{"alice", "bob", "carol"}}
	svc := newTestSettlement(store)

	e, err := svc.AddExpense(context.Background(), "room1", core.Money{Cents: 9000}, "alice", "alice", nil)
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	if len(e.Shares) != 3 {
		t.Fatalf("shares = %v, want all 3 members", e.Shares)
	}
	for member, weight := range e.Shares {
		if weight != 1 {
			t.Errorf("share[%s] = %d, want 1", member, weight)
		}
	}
}

func TestSettleDerivesBothViews(t *testing.T) {
	store := newFakeRoomStore()
	store.rooms["room1"] = split.Room{ID: "room1", Name: "Trip", MemberIDs: []string{"alice", "bob", "carol"}}
	svc := newTestSettlement(store)
	ctx := context.Background()

	if _, err := svc.AddExpense(ctx, "room1", core.Money{Cents: 90000}, "alice", "alice", nil); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	settlement, err := svc.Settle(ctx, "room1")
	if err != nil {
		t.Fatalf("Settle() error = %v", err)
	}

	if got := settlement.Positions["alice"].Cents; got != 60000 {
		t.Errorf("alice position = %d, want 60000", got)
	}
	if got := settlement.Positions["bob"].Cents; got != -30000 {
		t.Errorf("bob position = %d, want -30000", got)
	}

	if len(settlement.Debts) != 2 {
		t.Fatalf("debts = %v, want 2 entries", settlement.Debts)
	}
	for _, d := range settlement.Debts {
		if d.ToID != "alice" || d.Amount.Cents != 30000 {
			t.Errorf("debt = %+v, want 30000 toward alice", d)
		}
	}
}

func TestSettleDoesNotNetOppositeDebts(t *testing.T) {
	store := newFakeRoomStore()
	store.rooms["room1"] = split.Room{ID: "room1", Name: "Flat", MemberIDs: []string{"alice", "bob"}}
	svc := newTestSettlement(store)
	ctx := context.Background()

	if _, err := svc.AddExpense(ctx, "room1", core.Money{Cents: 30000}, "alice", "alice", nil); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	if _, err := svc.AddExpense(ctx, "room1", core.Money{Cents: 10000}, "bob", "bob", nil); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	settlement, err := svc.Settle(ctx, "room1")
	if err != nil {
		t.Fatalf("Settle() error = %v", err)
	}
	if len(settlement.Debts) != 2 {
		t.Fatalf("debts = %v, want both directions kept", settlement.Debts)
	}
}
