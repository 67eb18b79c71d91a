package core

import (
	"errors"
	"testing"
	"time"
)

var now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestComposeTransfer(t *testing.T) {
	lookup := testLookup()
	general := Pocket{ID: "general", OwnerID: "u1", Name: "General", Kind: PocketGeneral}
	savings := Pocket{ID: "savings", OwnerID: "u1", Name: "Savings", Kind: PocketSavings}
	records := []Record{rec(Income, 100_000, "general")}

	pair, err := ComposeTransfer(general, savings, Money{Cents: 40_000}, "monthly saving", records, lookup, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two linked records, opposite direction, equal amount, cross-referenced.
	if pair.Out.Direction != Expense || pair.In.Direction != Income {
		t.Fatalf("wrong directions: %s / %s", pair.Out.Direction, pair.In.Direction)
	}
	if pair.Out.Amount != pair.In.Amount || pair.Out.Amount.Cents != 40_000 {
		t.Fatalf("amounts differ: %d / %d", pair.Out.Amount.Cents, pair.In.Amount.Cents)
	}
	if pair.Out.LinkedTransferID != pair.In.ID || pair.In.LinkedTransferID != pair.Out.ID {
		t.Fatalf("halves are not cross-linked")
	}
	if pair.Out.TargetPocketID != "general" || pair.In.TargetPocketID != "savings" {
		t.Fatalf("wrong pockets: %s / %s", pair.Out.TargetPocketID, pair.In.TargetPocketID)
	}
	if !pair.Out.Category.IsTransfer() || !pair.In.Category.IsTransfer() {
		t.Fatalf("transfer records must carry the transfer category")
	}

	// Folding the pair moves the value: general 60000, savings 40000.
	records = append(records, pair.Out, pair.In)
	if got := AmountOf(general, records, lookup).Cents; got != 60_000 {
		t.Fatalf("general: expected 60000, got %d", got)
	}
	if got := AmountOf(savings, records, lookup).Cents; got != 40_000 {
		t.Fatalf("savings: expected 40000, got %d", got)
	}
}

// Transfer neutrality: the sum of both pockets is unchanged for any valid
// transfer amount.
func TestTransferNeutrality(t *testing.T) {
	lookup := testLookup()
	from := Pocket{ID: "a", OwnerID: "u1", Name: "A", Kind: PocketGeneral}
	to := Pocket{ID: "b", OwnerID: "u1", Name: "B", Kind: PocketSavings}

	for _, amount := range []int64{1, 250, 13_337, 99_999, 100_000} {
		records := []Record{rec(Income, 100_000, "a"), rec(Income, 5_000, "b")}
		sumBefore := AmountOf(from, records, lookup).Cents + AmountOf(to, records, lookup).Cents

		pair, err := ComposeTransfer(from, to, Money{Cents: amount}, "", records, lookup, now)
		if err != nil {
			t.Fatalf("amount %d: unexpected error %v", amount, err)
		}
		records = append(records, pair.Out, pair.In)

		fromAfter := AmountOf(from, records, lookup).Cents
		toAfter := AmountOf(to, records, lookup).Cents
		if fromAfter+toAfter != sumBefore {
			t.Fatalf("amount %d: value not conserved (%d != %d)", amount, fromAfter+toAfter, sumBefore)
		}
		if fromAfter != 100_000-amount || toAfter != 5_000+amount {
			t.Fatalf("amount %d: expected %d/%d, got %d/%d", amount, 100_000-amount, 5_000+amount, fromAfter, toAfter)
		}
	}
}

func TestComposeTransferPreconditions(t *testing.T) {
	lookup := testLookup()
	a := Pocket{ID: "a", OwnerID: "u1", Name: "A", Kind: PocketGeneral}
	b := Pocket{ID: "b", OwnerID: "u1", Name: "B", Kind: PocketSavings}
	records := []Record{rec(Income, 1_000, "a")}

	cases := []struct {
		name    string
		from    Pocket
		to      Pocket
		amount  int64
		wantErr error
	}{
		{"same pocket", a, a, 100, ErrSamePocket},
		{"zero amount", a, b, 0, ErrInvalidAmount},
		{"negative amount", a, b, -5, ErrInvalidAmount},
		{"insufficient funds", a, b, 1_001, ErrInsufficientFunds},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComposeTransfer(tc.from, tc.to, Money{Cents: tc.amount}, "", records, lookup, now)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestComposePayment(t *testing.T) {
	card := Instrument{ID: "cc1", OwnerID: "u1", Kind: InstrumentCredit, DisplayName: "Gold"}
	records := []Record{
		rec(Expense, 50_000, "", withInstrument(CreditRef("cc1")), withCategory(OtherCategory("Groceries"))),
	}

	payment, err := ComposePayment(card, Money{Cents: 20_000}, records, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Direction != Expense || !payment.Category.IsInstrumentPayment() {
		t.Fatalf("payment record misshaped: %+v", payment)
	}
	if payment.Instrument.String() != "credit:cc1" {
		t.Fatalf("expected credit:cc1, got %s", payment.Instrument.String())
	}

	// Pending drops by exactly the payment; cash drops by the payment, not
	// the original purchase.
	records = append(records, payment)
	if got := PendingOf("cc1", records).Raw.Cents; got != 30_000 {
		t.Fatalf("expected pending 30000, got %d", got)
	}
	if got := Totals(records, testLookup()).Balance.Cents; got != -20_000 {
		t.Fatalf("expected balance -20000, got %d", got)
	}
}

func TestComposePaymentPreconditions(t *testing.T) {
	card := Instrument{ID: "cc1", OwnerID: "u1", Kind: InstrumentCredit, DisplayName: "Gold"}
	debit := Instrument{ID: "deb1", OwnerID: "u1", Kind: InstrumentDebit, DisplayName: "Blue"}
	records := []Record{
		rec(Expense, 10_000, "", withInstrument(CreditRef("cc1")), withCategory(OtherCategory("A"))),
	}

	if _, err := ComposePayment(debit, Money{Cents: 100}, records, now); !errors.Is(err, ErrNotCreditCard) {
		t.Fatalf("expected ErrNotCreditCard, got %v", err)
	}
	if _, err := ComposePayment(card, Money{Cents: 0}, records, now); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := ComposePayment(card, Money{Cents: 10_001}, records, now); !errors.Is(err, ErrExceedsPending) {
		t.Fatalf("expected ErrExceedsPending, got %v", err)
	}
	// Paying exactly the pending amount is allowed.
	if _, err := ComposePayment(card, Money{Cents: 10_000}, records, now); err != nil {
		t.Fatalf("full payment rejected: %v", err)
	}
}
