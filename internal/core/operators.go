package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransferPair is the two linked records a transfer produces. Both halves
// must be written atomically; see ErrPartialWrite.
type TransferPair struct {
	Out Record // expense targeting the source pocket
	In  Record // income targeting the destination pocket
}

// ComposeTransfer builds the linked record pair moving amount between two
// pockets of the same owner. Preconditions, checked against the snapshot:
// distinct pockets, positive amount, and sufficient derived funds in the
// source pocket.
func ComposeTransfer(from, to Pocket, amount Money, description string, records []Record, lookup InstrumentLookup, now time.Time) (TransferPair, error) {
	if from.ID == to.ID {
		return TransferPair{}, ErrSamePocket
	}
	if amount.Cents <= 0 {
		return TransferPair{}, ErrInvalidAmount
	}
	if available := AmountOf(from, records, lookup); available.Cents < amount.Cents {
		return TransferPair{}, fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, available, amount)
	}

	outID := uuid.NewString()
	inID := uuid.NewString()
	base := Record{
		OwnerID:     from.OwnerID,
		Amount:      amount,
		Description: description,
		Category:    TransferCategory(),
		CreatedAt:   now,
	}
	out := base
	out.ID = outID
	out.Direction = Expense
	out.TargetPocketID = from.ID
	out.LinkedTransferID = inID

	in := base
	in.ID = inID
	in.Direction = Income
	in.TargetPocketID = to.ID
	in.LinkedTransferID = outID

	return TransferPair{Out: out, In: in}, nil
}

// ComposePayment builds the single expense record that settles part of a
// credit instrument's pending amount. The record is cash-settled: it counts
// against cash and reduces the instrument's pending amount at once.
func ComposePayment(inst Instrument, amount Money, records []Record, now time.Time) (Record, error) {
	if inst.Kind != InstrumentCredit {
		return Record{}, ErrNotCreditCard
	}
	if amount.Cents <= 0 {
		return Record{}, ErrInvalidAmount
	}
	pending := PendingOf(inst.ID, records)
	if amount.Cents > pending.Raw.Cents {
		return Record{}, fmt.Errorf("%w: pending %s, payment %s", ErrExceedsPending, pending.Raw, amount)
	}
	return Record{
		ID:         uuid.NewString(),
		OwnerID:    inst.OwnerID,
		Direction:  Expense,
		Amount:     amount,
		Category:   InstrumentPaymentCategory(),
		Instrument: CreditRef(inst.ID),
		CreatedAt:  now,
	}, nil
}
