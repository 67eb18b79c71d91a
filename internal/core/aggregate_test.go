package core

import (
	"math/rand"
	"testing"
)

func rec(dir Direction, cents int64, pocket string, opts ...func(*Record)) Record {
	r := Record{
		OwnerID:        "u1",
		Direction:      dir,
		Amount:         Money{Cents: cents},
		TargetPocketID: pocket,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func withInstrument(ref InstrumentRef) func(*Record) {
	return func(r *Record) { r.Instrument = ref }
}

func withCategory(c Category) func(*Record) {
	return func(r *Record) { r.Category = c }
}

// Pocket conservation: for non-transfer records the derived amount is income
// minus classified expenses, by construction, for every kind except future.
func TestAmountOfConservation(t *testing.T) {
	lookup := testLookup()
	pocket := Pocket{ID: "p1", OwnerID: "u1", Name: "Main", Kind: PocketGeneral}
	records := []Record{
		rec(Income, 100_000, "p1"),
		rec(Expense, 30_000, "p1"),
		rec(Expense, 5_000, "p1", withInstrument(DebitRef("deb1"))),
		rec(Expense, 20_000, "p1", withInstrument(CreditRef("cc1")), withCategory(OtherCategory("Groceries"))), // deferred
		rec(Income, 7_000, "other"), // different pocket, ignored
	}
	got := AmountOf(pocket, records, lookup)
	want := int64(100_000 - 30_000 - 5_000)
	if got.Cents != want {
		t.Fatalf("expected %d, got %d", want, got.Cents)
	}
}

// The fold is order-independent: shuffling the snapshot never changes the
// result.
func TestAmountOfOrderIndependent(t *testing.T) {
	lookup := testLookup()
	pocket := Pocket{ID: "p1", OwnerID: "u1", Name: "Main", Kind: PocketGeneral}
	records := []Record{
		rec(Income, 100_000, "p1"),
		rec(Expense, 12_345, "p1"),
		rec(Expense, 678, "p1", withInstrument(CashRef())),
		rec(Income, 9_999, "p1"),
		rec(Expense, 50, "p1", withInstrument(CreditRef("cc1")), withCategory(OtherCategory("Coffee"))),
	}
	want := AmountOf(pocket, records, lookup).Cents

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Record(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := AmountOf(pocket, shuffled, lookup).Cents; got != want {
			t.Fatalf("iteration %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestAmountOfFuturePocket(t *testing.T) {
	pocket := Pocket{ID: "trip", OwnerID: "u1", Name: "Trip", Kind: PocketFuture, TargetPeriod: "2027-06"}
	records := []Record{
		// Future pockets accumulate planned spend, instrument ignored.
		rec(Expense, 40_000, "trip", withInstrument(CreditRef("cc1")), withCategory(OtherCategory("Flights"))),
		rec(Expense, 10_000, "trip"),
		rec(Income, 99_999, "trip"), // income does not contribute to planned spend
	}
	got := AmountOf(pocket, records, testLookup())
	if got.Cents != 50_000 {
		t.Fatalf("expected 50000, got %d", got.Cents)
	}
}

// Scenario: general pocket accrues income, then a cash expense.
func TestTotalsIncomeThenExpense(t *testing.T) {
	lookup := testLookup()
	records := []Record{rec(Income, 100_000, "")}
	if got := Totals(records, lookup).Balance.Cents; got != 100_000 {
		t.Fatalf("after income: expected 100000, got %d", got)
	}
	records = append(records, rec(Expense, 30_000, "", withInstrument(CashRef())))
	if got := Totals(records, lookup).Balance.Cents; got != 70_000 {
		t.Fatalf("after expense: expected 70000, got %d", got)
	}
}

func TestUnassignedAmountOrphanPocket(t *testing.T) {
	lookup := testLookup()
	known := func(id string) bool { return id == "p1" }
	records := []Record{
		rec(Income, 50_000, ""),        // no pocket
		rec(Income, 20_000, "deleted"), // orphan reference degrades to unassigned
		rec(Income, 10_000, "p1"),      // assigned, excluded
		rec(Expense, 5_000, "deleted"),
	}
	got := UnassignedAmount(records, known, lookup)
	if got.Cents != 65_000 {
		t.Fatalf("expected 65000, got %d", got.Cents)
	}
}
