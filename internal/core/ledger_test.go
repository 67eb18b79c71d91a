package core

import (
	"testing"
	"time"
)

// Scenario: credit purchase defers, payment settles.
func TestPendingOfPurchaseThenPayment(t *testing.T) {
	lookup := testLookup()

	// Fresh card, one purchase.
	records := []Record{
		rec(Expense, 50_000, "", withInstrument(CreditRef("cc1")), withCategory(OtherCategory("Groceries"))),
	}
	p := PendingOf("cc1", records)
	if p.Raw.Cents != 50_000 || p.OverPaid {
		t.Fatalf("after purchase: expected pending 50000, got %+v", p)
	}
	// A deferred purchase leaves the cash balance untouched.
	if got := Totals(records, lookup).Balance.Cents; got != 0 {
		t.Fatalf("deferred purchase changed balance: %d", got)
	}

	// Pay 20000 against the card.
	records = append(records, Record{
		OwnerID:    "u1",
		Direction:  Expense,
		Amount:     Money{Cents: 20_000},
		Category:   InstrumentPaymentCategory(),
		Instrument: CreditRef("cc1"),
	})
	p = PendingOf("cc1", records)
	if p.Raw.Cents != 30_000 {
		t.Fatalf("after payment: expected pending 30000, got %d", p.Raw.Cents)
	}
	// The payment, not the purchase, is what hits cash.
	if got := Totals(records, lookup).Balance.Cents; got != -20_000 {
		t.Fatalf("expected balance -20000, got %d", got)
	}
}

func TestPendingOfIgnoresOtherInstruments(t *testing.T) {
	records := []Record{
		rec(Expense, 10_000, "", withInstrument(CreditRef("cc1")), withCategory(OtherCategory("A"))),
		rec(Expense, 99_000, "", withInstrument(CreditRef("cc2")), withCategory(OtherCategory("B"))),
		rec(Expense, 5_000, "", withInstrument(DebitRef("cc1"))), // debit ref, not this ledger
		rec(Income, 3_000, "", withInstrument(CreditRef("cc1"))), // income never accrues
	}
	if got := PendingOf("cc1", records).Raw.Cents; got != 10_000 {
		t.Fatalf("expected 10000, got %d", got)
	}
}

func TestPendingOfOverPayment(t *testing.T) {
	records := []Record{
		rec(Expense, 10_000, "", withInstrument(CreditRef("cc1")), withCategory(OtherCategory("A"))),
		rec(Expense, 15_000, "", withInstrument(CreditRef("cc1")), withCategory(InstrumentPaymentCategory())),
	}
	p := PendingOf("cc1", records)
	if !p.OverPaid {
		t.Fatalf("expected over-payment flag")
	}
	if p.Raw.Cents != -5_000 {
		t.Fatalf("expected raw -5000, got %d", p.Raw.Cents)
	}
	if p.Display().Cents != 0 {
		t.Fatalf("display value must clamp at zero, got %d", p.Display().Cents)
	}
}

// Deferred purchase neutrality: a credit purchase leaves every pocket's
// cash-affecting amount unchanged while increasing the card's pending amount.
func TestDeferredPurchaseNeutrality(t *testing.T) {
	lookup := testLookup()
	pocket := Pocket{ID: "p1", OwnerID: "u1", Name: "Main", Kind: PocketGeneral}
	records := []Record{rec(Income, 80_000, "p1")}

	before := AmountOf(pocket, records, lookup)
	beforePending := PendingOf("cc1", records)

	purchase := rec(Expense, 12_500, "p1", withInstrument(CreditRef("cc1")), withCategory(OtherCategory("Electronics")))
	purchase.CreatedAt = time.Now()
	records = append(records, purchase)

	if after := AmountOf(pocket, records, lookup); after != before {
		t.Fatalf("pocket amount changed: %d -> %d", before.Cents, after.Cents)
	}
	if after := PendingOf("cc1", records); after.Raw.Cents != beforePending.Raw.Cents+12_500 {
		t.Fatalf("pending expected +12500, got %d", after.Raw.Cents)
	}
}
