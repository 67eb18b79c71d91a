package core

// Summary holds the headline figures derived over a full record snapshot.
type Summary struct {
	Income  Money
	Expense Money
	Balance Money
}

// AmountOf derives the current amount of a pocket from the record snapshot.
// The fold is order-independent: the result depends only on the record
// multiset, never on slice order, and is recomputed from scratch on every
// call so it cannot drift from the source records.
//
// Future pockets accumulate planned spend: every expense targeting them
// counts, regardless of instrument. All other kinds hold income minus
// cash-affecting expenses.
func AmountOf(p Pocket, records []Record, lookup InstrumentLookup) Money {
	var total int64
	for _, r := range records {
		if r.TargetPocketID != p.ID {
			continue
		}
		if p.Kind == PocketFuture {
			if r.Direction == Expense {
				total += r.Amount.Cents
			}
			continue
		}
		switch r.Direction {
		case Income:
			total += r.Amount.Cents
		case Expense:
			if CountsAgainstCash(r, lookup) {
				total -= r.Amount.Cents
			}
		}
	}
	return Money{Cents: total}
}

// UnassignedAmount derives the amount held outside any stored pocket.
// Records with no target pocket count here, and so do records whose target
// pocket was deleted (knownPocket returns false): an orphan reference
// degrades to unassigned instead of disappearing.
func UnassignedAmount(records []Record, knownPocket func(id string) bool, lookup InstrumentLookup) Money {
	var total int64
	for _, r := range records {
		if r.TargetPocketID != "" && knownPocket != nil && knownPocket(r.TargetPocketID) {
			continue
		}
		switch r.Direction {
		case Income:
			total += r.Amount.Cents
		case Expense:
			if CountsAgainstCash(r, lookup) {
				total -= r.Amount.Cents
			}
		}
	}
	return Money{Cents: total}
}

// Totals derives the headline income, expense and balance figures over all
// records regardless of pocket assignment. Only cash-affecting expenses
// contribute to the expense total.
func Totals(records []Record, lookup InstrumentLookup) Summary {
	var income, expense int64
	for _, r := range records {
		switch r.Direction {
		case Income:
			income += r.Amount.Cents
		case Expense:
			if CountsAgainstCash(r, lookup) {
				expense += r.Amount.Cents
			}
		}
	}
	return Summary{
		Income:  Money{Cents: income},
		Expense: Money{Cents: expense},
		Balance: Money{Cents: income - expense},
	}
}

// LookupFrom builds an InstrumentLookup over a snapshot of instruments.
func LookupFrom(instruments []Instrument) InstrumentLookup {
	byID := make(map[string]Instrument, len(instruments))
	for _, inst := range instruments {
		byID[inst.ID] = inst
	}
	return func(id string) (Instrument, bool) {
		inst, ok := byID[id]
		return inst, ok
	}
}
