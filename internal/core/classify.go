package core

// InstrumentLookup resolves an instrument id from the current snapshot.
// The second return reports whether the instrument still exists.
type InstrumentLookup func(id string) (Instrument, bool)

// CountsAgainstCash decides whether a record currently reduces available
// cash. The rules, in order:
//
//  1. Income always counts.
//  2. Cash or absent instrument counts.
//  3. Debit counts (treated as immediate cash-equivalent).
//  4. Credit counts only when the record is an instrument payment; an
//     ordinary credit purchase is deferred until its statement is paid.
//  5. A reference to a deleted instrument fails open and counts.
func CountsAgainstCash(r Record, lookup InstrumentLookup) bool {
	if r.Direction == Income {
		return true
	}
	ref := r.Instrument
	if ref.IsZero() || ref.IsCash() || ref.IsDebit() {
		return true
	}
	// Credit: fail open when the instrument no longer resolves.
	if lookup == nil {
		return true
	}
	inst, ok := lookup(ref.InstrumentID())
	if !ok || inst.Kind != InstrumentCredit {
		return true
	}
	return r.Category.IsInstrumentPayment()
}
