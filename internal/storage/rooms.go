package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bolsillo/internal/core"
	"bolsillo/internal/split"
)

// ErrDuplicateMember is returned when a member joins a room twice.
var ErrDuplicateMember = errors.New("member already in room")

func (r *SQLiteRepository) CreateRoom(ctx context.Context, room split.Room) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create room: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rooms (id, join_code, name) VALUES (?, ?, ?)`,
		room.ID, room.JoinCode, room.Name); err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	for _, memberID := range room.MemberIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO room_members (room_id, member_id) VALUES (?, ?)`,
			room.ID, memberID); err != nil {
			return fmt.Errorf("insert room member: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create room: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) roomMembers(ctx context.Context, roomID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT member_id FROM room_members WHERE room_id = ? ORDER BY member_id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("query room members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan room member: %w", err)
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

func (r *SQLiteRepository) GetRoom(ctx context.Context, id string) (split.Room, error) {
	var room split.Room
	err := r.db.QueryRowContext(ctx,
		`SELECT id, join_code, name FROM rooms WHERE id = ?`, id).
		Scan(&room.ID, &room.JoinCode, &room.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return split.Room{}, fmt.Errorf("room %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return split.Room{}, fmt.Errorf("get room: %w", err)
	}
	room.MemberIDs, err = r.roomMembers(ctx, id)
	if err != nil {
		return split.Room{}, err
	}
	return room, nil
}

// RoomByJoinCode resolves an invitation code to its room.
func (r *SQLiteRepository) RoomByJoinCode(ctx context.Context, code string) (split.Room, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM rooms WHERE join_code = ?`, code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return split.Room{}, fmt.Errorf("join code %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return split.Room{}, fmt.Errorf("resolve join code: %w", err)
	}
	return r.GetRoom(ctx, id)
}

func (r *SQLiteRepository) RoomsByMember(ctx context.Context, memberID string) ([]split.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.join_code, r.name FROM rooms r
		 JOIN room_members m ON m.room_id = r.id
		 WHERE m.member_id = ? ORDER BY r.name`, memberID)
	if err != nil {
		return nil, fmt.Errorf("query rooms by member: %w", err)
	}
	defer rows.Close()

	var rooms []split.Room
	for rows.Next() {
		var room split.Room
		if err := rows.Scan(&room.ID, &room.JoinCode, &room.Name); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range rooms {
		rooms[i].MemberIDs, err = r.roomMembers(ctx, rooms[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

func (r *SQLiteRepository) AddRoomMember(ctx context.Context, roomID, memberID string) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO room_members (room_id, member_id) VALUES (?, ?)`, roomID, memberID)
	if err != nil {
		return fmt.Errorf("insert room member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("room %s member %s: %w", roomID, memberID, ErrDuplicateMember)
	}
	return nil
}

func (r *SQLiteRepository) CreateSharedExpense(ctx context.Context, e split.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create shared expense: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO shared_expenses (id, room_id, amount_cents, payer_id, created_by_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.RoomID, e.Amount.Cents, e.PayerID, e.CreatedByID, e.CreatedAt); err != nil {
		return fmt.Errorf("insert shared expense: %w", err)
	}
	for memberID, weight := range e.Shares {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expense_shares (expense_id, member_id, share_weight) VALUES (?, ?, ?)`,
			e.ID, memberID, weight); err != nil {
			return fmt.Errorf("insert expense share: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create shared expense: %w", err)
	}
	return nil
}

// ExpensesByRoom returns the full expense snapshot for one room, shares
// included. Settlement folds over this.
func (r *SQLiteRepository) ExpensesByRoom(ctx context.Context, roomID string) ([]split.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room_id, amount_cents, payer_id, created_by_id, created_at
		 FROM shared_expenses WHERE room_id = ? ORDER BY created_at, id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("query shared expenses: %w", err)
	}
	defer rows.Close()

	var expenses []split.Expense
	byID := make(map[string]int)
	for rows.Next() {
		var (
			e         split.Expense
			cents     int64
			createdAt time.Time
		)
		if err := rows.Scan(&e.ID, &e.RoomID, &cents, &e.PayerID, &e.CreatedByID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan shared expense: %w", err)
		}
		e.Amount = core.Money{Cents: cents}
		e.CreatedAt = createdAt
		e.Shares = make(map[string]int)
		byID[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	shareRows, err := r.db.QueryContext(ctx,
		`SELECT s.expense_id, s.member_id, s.share_weight
		 FROM expense_shares s
		 JOIN shared_expenses e ON e.id = s.expense_id
		 WHERE e.room_id = ?`, roomID)
	if err != nil {
		return nil, fmt.Errorf("query expense shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var (
			expenseID string
			memberID  string
			weight    int
		)
		if err := shareRows.Scan(&expenseID, &memberID, &weight); err != nil {
			return nil, fmt.Errorf("scan expense share: %w", err)
		}
		if i, ok := byID[expenseID]; ok {
			expenses[i].Shares[memberID] = weight
		}
	}
	return expenses, shareRows.Err()
}

func (r *SQLiteRepository) DeleteSharedExpense(ctx context.Context, roomID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete shared expense: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_shares WHERE expense_id = ?`, id); err != nil {
		return fmt.Errorf("delete expense shares: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM shared_expenses WHERE id = ? AND room_id = ?`, id, roomID)
	if err != nil {
		return fmt.Errorf("delete shared expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shared expense %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}
