package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bolsillo/internal/core"
	"bolsillo/internal/split"
)

// RoomStore is the slice of the repository the settlement service needs.
type RoomStore interface {
	CreateRoom(ctx context.Context, room split.Room) error
	GetRoom(ctx context.Context, id string) (split.Room, error)
	RoomByJoinCode(ctx context.Context, code string) (split.Room, error)
	RoomsByMember(ctx context.Context, memberID string) ([]split.Room, error)
	AddRoomMember(ctx context.Context, roomID, memberID string) error
	CreateSharedExpense(ctx context.Context, e split.Expense) error
	ExpensesByRoom(ctx context.Context, roomID string) ([]split.Expense, error)
	DeleteSharedExpense(ctx context.Context, roomID, id string) error
}

type SettlementService struct {
	store RoomStore
	now   func() time.Time
}

func NewSettlementService(store RoomStore) *SettlementService {
	return &SettlementService{store: store, now: time.Now}
}

// CreateRoom opens a new shared room with the creator as first member.
func (s *SettlementService) CreateRoom(ctx context.Context, name, creatorID string) (split.Room, error) {
	room := split.Room{
		ID:        uuid.NewString(),
		JoinCode:  newJoinCode(),
		Name:      name,
		MemberIDs: []string{creatorID},
	}
	if err := room.Validate(); err != nil {
		return split.Room{}, err
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return split.Room{}, fmt.Errorf("create room: %w", err)
	}
	slog.InfoContext(ctx, "Room created", "room_id", room.ID, "name", room.Name)
	return room, nil
}

// JoinRoom adds a member via invitation code and returns the joined room.
func (s *SettlementService) JoinRoom(ctx context.Context, joinCode, memberID string) (split.Room, error) {
	room, err := s.store.RoomByJoinCode(ctx, joinCode)
	if err != nil {
		return split.Room{}, fmt.Errorf("resolve join code: %w", err)
	}
	if err := s.store.AddRoomMember(ctx, room.ID, memberID); err != nil {
		return split.Room{}, fmt.Errorf("join room: %w", err)
	}
	room.MemberIDs = append(room.MemberIDs, memberID)
	slog.InfoContext(ctx, "Member joined room", "room_id", room.ID)
	return room, nil
}

func (s *SettlementService) RoomsByMember(ctx context.Context, memberID string) ([]split.Room, error) {
	return s.store.RoomsByMember(ctx, memberID)
}

func (s *SettlementService) Room(ctx context.Context, roomID string) (split.Room, error) {
	return s.store.GetRoom(ctx, roomID)
}

func (s *SettlementService) Expenses(ctx context.Context, roomID string) ([]split.Expense, error) {
	return s.store.ExpensesByRoom(ctx, roomID)
}

// AddExpense records one shared expense. Participants default to every
// current room member with weight 1 when no explicit shares are given.
func (s *SettlementService) AddExpense(ctx context.Context, roomID string, amount core.Money, payerID, createdByID string, shares map[string]int) (split.Expense, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return split.Expense{}, fmt.Errorf("load room: %w", err)
	}
	if len(shares) == 0 {
		shares = make(map[string]int, len(room.MemberIDs))
		for _, id := range room.MemberIDs {
			shares[id] = 1
		}
	}

	e := split.Expense{
		ID:          uuid.NewString(),
		RoomID:      roomID,
		Amount:      amount,
		PayerID:     payerID,
		Shares:      shares,
		CreatedByID: createdByID,
		CreatedAt:   s.now(),
	}
	if err := e.Validate(); err != nil {
		return split.Expense{}, err
	}
	if err := s.store.CreateSharedExpense(ctx, e); err != nil {
		return split.Expense{}, fmt.Errorf("save shared expense: %w", err)
	}
	slog.InfoContext(ctx, "Shared expense recorded",
		"room_id", roomID,
		"expense_id", e.ID,
		"amount_cents", amount.Cents)
	return e, nil
}

func (s *SettlementService) DeleteExpense(ctx context.Context, roomID, expenseID string) error {
	return s.store.DeleteSharedExpense(ctx, roomID, expenseID)
}

// Settlement is both views over a room's expense set: signed net positions
// and directed pairwise debts. The two are derived independently; debts are
// never netted against flows in the opposite direction.
type Settlement struct {
	Positions map[string]core.Money
	Debts     []split.Debt
}

func (s *SettlementService) Settle(ctx context.Context, roomID string) (Settlement, error) {
	expenses, err := s.store.ExpensesByRoom(ctx, roomID)
	if err != nil {
		return Settlement{}, fmt.Errorf("load expenses: %w", err)
	}
	return Settlement{
		Positions: split.NetPositions(expenses),
		Debts:     split.PairwiseDebts(expenses),
	}, nil
}

// newJoinCode returns a short random invitation code.
func newJoinCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()[:8]
	}
	return hex.EncodeToString(b)
}
