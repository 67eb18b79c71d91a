package core

import "testing"

func testLookup() InstrumentLookup {
	return LookupFrom([]Instrument{
		{ID: "deb1", OwnerID: "u1", Kind: InstrumentDebit, DisplayName: "Debit"},
		{ID: "cc1", OwnerID: "u1", Kind: InstrumentCredit, DisplayName: "Gold"},
	})
}

func TestCountsAgainstCash(t *testing.T) {
	lookup := testLookup()
	cases := []struct {
		name string
		rec  Record
		want bool
	}{
		{
			"income always counts",
			Record{Direction: Income, Amount: Money{Cents: 100}, Instrument: CreditRef("cc1")},
			true,
		},
		{
			"cash expense counts",
			Record{Direction: Expense, Amount: Money{Cents: 100}, Instrument: CashRef()},
			true,
		},
		{
			"absent instrument counts",
			Record{Direction: Expense, Amount: Money{Cents: 100}},
			true,
		},
		{
			"debit counts",
			Record{Direction: Expense, Amount: Money{Cents: 100}, Instrument: DebitRef("deb1")},
			true,
		},
		{
			"credit purchase is deferred",
			Record{Direction: Expense, Amount: Money{Cents: 100}, Instrument: CreditRef("cc1"), Category: OtherCategory("Groceries")},
			false,
		},
		{
			"credit instrument payment counts",
			Record{Direction: Expense, Amount: Money{Cents: 100}, Instrument: CreditRef("cc1"), Category: InstrumentPaymentCategory()},
			true,
		},
		{
			"deleted instrument fails open",
			Record{Direction: Expense, Amount: Money{Cents: 100}, Instrument: CreditRef("gone"), Category: OtherCategory("Groceries")},
			true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CountsAgainstCash(tc.rec, lookup); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCountsAgainstCashNilLookup(t *testing.T) {
	rec := Record{Direction: Expense, Amount: Money{Cents: 100}, Instrument: CreditRef("cc1"), Category: OtherCategory("x")}
	if !CountsAgainstCash(rec, nil) {
		t.Fatalf("nil lookup should fail open")
	}
}
