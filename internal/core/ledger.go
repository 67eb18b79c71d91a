package core

// Pending is the derived unpaid balance of a credit instrument.
type Pending struct {
	// Raw is purchases minus payments; it can go negative when recorded
	// payments exceed recorded purchases.
	Raw Money
	// OverPaid is set when Raw went negative.
	OverPaid bool
}

// Display clamps the pending amount at zero for presentation. Callers must
// still check OverPaid before rendering.
func (p Pending) Display() Money {
	if p.Raw.Cents < 0 {
		return Money{}
	}
	return p.Raw
}

// PendingOf derives the pending amount of a credit instrument: expense
// records tagged credit:<id> accrue as purchases, except instrument-payment
// records which reduce the total. Only meaningful for credit instruments.
func PendingOf(instrumentID string, records []Record) Pending {
	var total int64
	for _, r := range records {
		if r.Direction != Expense {
			continue
		}
		if !r.Instrument.IsCredit() || r.Instrument.InstrumentID() != instrumentID {
			continue
		}
		if r.Category.IsInstrumentPayment() {
			total -= r.Amount.Cents
		} else {
			total += r.Amount.Cents
		}
	}
	return Pending{Raw: Money{Cents: total}, OverPaid: total < 0}
}
