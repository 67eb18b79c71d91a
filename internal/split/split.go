// Package split implements shared-room expense settlement: per-member net
// positions and pairwise who-owes-whom derivation over a room's expense set.
// Like the ledger core, everything is a pure fold over a snapshot.
package split

import (
	"errors"
	"strings"
	"time"

	"bolsillo/internal/core"
)

type (
	// Member is a room participant, resolved from the identity store.
	Member struct {
		ID          string
		DisplayName string
	}

	// Room groups members sharing expenses. JoinCode is handed out by the
	// invitation flow, which is outside this package.
	Room struct {
		ID        string
		JoinCode  string
		Name      string
		MemberIDs []string
	}

	// Expense is one shared purchase: the payer fronted the full amount and
	// every participant owes a share proportional to their weight.
	Expense struct {
		ID          string
		RoomID      string
		Amount      core.Money
		PayerID     string
		Shares      map[string]int // member id -> share weight, default 1
		CreatedByID string
		CreatedAt   time.Time
	}

	// Debt is one directed owed amount between two members.
	Debt struct {
		FromID string
		ToID   string
		Amount core.Money
	}
)

var (
	ErrNoParticipants = errors.New("expense has no participants")
	ErrInvalidShare   = errors.New("share weight must be a positive integer")
	ErrEmptyPayer     = errors.New("empty payer id")
)

func (r Room) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("empty room name")
	}
	return nil
}

func (e Expense) Validate() error {
	if e.Amount.Cents <= 0 {
		return core.ErrInvalidAmount
	}
	if strings.TrimSpace(e.PayerID) == "" {
		return ErrEmptyPayer
	}
	if len(e.Shares) == 0 {
		return ErrNoParticipants
	}
	for _, w := range e.Shares {
		if w <= 0 {
			return ErrInvalidShare
		}
	}
	return nil
}

// shareSum returns the total weight across participants.
func (e Expense) shareSum() int64 {
	var sum int64
	for _, w := range e.Shares {
		sum += int64(w)
	}
	return sum
}
