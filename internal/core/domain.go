package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  Direction = "income"
	Expense Direction = "expense"
)

const (
	PocketGeneral PocketKind = "general"
	PocketSavings PocketKind = "savings"
	PocketDebt    PocketKind = "debt"
	PocketFuture  PocketKind = "future"
)

const (
	InstrumentDebit  InstrumentKind = "debit"
	InstrumentCredit InstrumentKind = "credit"
)

type (
	Direction      string
	PocketKind     string
	InstrumentKind string

	// Record is a single money-movement event owned by one user.
	// Records are the only source of truth: every pocket amount and
	// instrument pending amount is derived by folding over them.
	Record struct {
		ID               string
		OwnerID          string
		Direction        Direction
		Amount           Money
		Description      string
		Category         Category
		Instrument       InstrumentRef
		TargetPocketID   string // empty means the implicit general pocket
		LinkedTransferID string // set on both halves of a transfer
		CreatedAt        time.Time
	}

	// Pocket is a named sub-total of a user's money. It never stores its
	// own amount; see AmountOf.
	Pocket struct {
		ID           string
		OwnerID      string
		Name         string
		Kind         PocketKind
		Goal         Money  // zero means no goal
		TargetPeriod string // only meaningful for PocketFuture
	}

	// Instrument is a debit or credit card used as a payment method.
	Instrument struct {
		ID          string
		OwnerID     string
		Issuer      string
		Kind        InstrumentKind
		Last4       string
		DisplayName string
		CreditLimit Money // only meaningful for InstrumentCredit
	}

	// RecurringRule is the stored shape of a scheduled record. There is no
	// executor; rules are persisted for interface compatibility only.
	RecurringRule struct {
		ID             string
		OwnerID        string
		Direction      Direction
		Amount         Money
		Category       Category
		Instrument     InstrumentRef
		Frequency      string
		DayOfMonth     int // 1..28
		IsActive       bool
		LastExecutedAt time.Time // zero when never executed
	}
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidDirection  = errors.New("invalid direction")
	ErrEmptyOwner        = errors.New("empty owner id")
	ErrSamePocket        = errors.New("source and destination pocket are the same")
	ErrInsufficientFunds = errors.New("insufficient funds in source pocket")
	ErrExceedsPending    = errors.New("payment exceeds pending amount")
	ErrNotCreditCard     = errors.New("instrument is not a credit card")
	ErrEmptyName         = errors.New("empty name")

	// ErrPartialWrite marks a multi-record operation that was not applied
	// atomically. Callers must surface it to the user instead of showing
	// totals that may be inconsistent.
	ErrPartialWrite = errors.New("partial write of linked records")
)

func (d Direction) Validate() error {
	switch d {
	case Income, Expense:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidDirection, string(d))
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if err := r.Direction.Validate(); err != nil {
		return err
	}
	if r.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p Pocket) Validate() error {
	if strings.TrimSpace(p.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	switch p.Kind {
	case PocketGeneral, PocketSavings, PocketDebt, PocketFuture:
	default:
		return fmt.Errorf("invalid pocket kind: %q", string(p.Kind))
	}
	if p.Kind != PocketFuture && p.TargetPeriod != "" {
		return errors.New("target period is only allowed for future pockets")
	}
	return nil
}

func (i Instrument) Validate() error {
	if strings.TrimSpace(i.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(i.DisplayName) == "" {
		return ErrEmptyName
	}
	switch i.Kind {
	case InstrumentDebit, InstrumentCredit:
	default:
		return fmt.Errorf("invalid instrument kind: %q", string(i.Kind))
	}
	if i.Kind != InstrumentCredit && i.CreditLimit.Cents != 0 {
		return errors.New("credit limit is only allowed for credit instruments")
	}
	return nil
}

func (rr RecurringRule) Validate() error {
	if strings.TrimSpace(rr.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if err := rr.Direction.Validate(); err != nil {
		return err
	}
	if rr.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if rr.DayOfMonth < 1 || rr.DayOfMonth > 28 {
		return fmt.Errorf("invalid day of month: %d (must be 1..28)", rr.DayOfMonth)
	}
	return nil
}
