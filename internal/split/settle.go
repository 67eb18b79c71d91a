package split

import (
	"sort"

	"github.com/shopspring/decimal"

	"bolsillo/internal/core"
)

// epsilonCents filters out sub-cent noise from the pairwise accumulation:
// only debts above 0.01 currency units survive.
var epsilonCents = decimal.New(1, 0)

// NetPositions derives each member's net position over the expense set: the
// payer is credited the full amount, every participant is debited their
// weighted share. A member who both paid and participates receives both
// effects. Division and accumulation stay in exact decimals; rounding to
// cents happens only at the boundary.
func NetPositions(expenses []Expense) map[string]core.Money {
	acc := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		sum := e.shareSum()
		if sum <= 0 {
			continue
		}
		perShare := decimal.NewFromInt(e.Amount.Cents).Div(decimal.NewFromInt(sum))
		acc[e.PayerID] = acc[e.PayerID].Add(decimal.NewFromInt(e.Amount.Cents))
		for member, weight := range e.Shares {
			owed := perShare.Mul(decimal.NewFromInt(int64(weight)))
			acc[member] = acc[member].Sub(owed)
		}
	}
	out := make(map[string]core.Money, len(acc))
	for member, d := range acc {
		out[member] = core.Money{Cents: d.Round(0).IntPart()}
	}
	return out
}

// PairwiseDebts derives directed owed amounts per expense: every participant
// other than the payer accrues their weighted share toward the payer, keyed
// by the ordered pair. Pairs accumulate across expenses but are never netted
// against the reverse pair and never minimized into fewer payments — if A
// owes B from one expense and B owes A from another, both entries survive.
// Results are sorted by debtor then creditor for stable output.
func PairwiseDebts(expenses []Expense) []Debt {
	type pair struct{ from, to string }
	acc := make(map[pair]decimal.Decimal)
	for _, e := range expenses {
		sum := e.shareSum()
		if sum <= 0 {
			continue
		}
		perShare := decimal.NewFromInt(e.Amount.Cents).Div(decimal.NewFromInt(sum))
		for member, weight := range e.Shares {
			if member == e.PayerID {
				continue
			}
			key := pair{from: member, to: e.PayerID}
			owed := perShare.Mul(decimal.NewFromInt(int64(weight)))
			acc[key] = acc[key].Add(owed)
		}
	}

	debts := make([]Debt, 0, len(acc))
	for key, d := range acc {
		if !d.GreaterThan(epsilonCents) {
			continue
		}
		debts = append(debts, Debt{
			FromID: key.from,
			ToID:   key.to,
			Amount: core.Money{Cents: d.Round(0).IntPart()},
		})
	}
	sort.Slice(debts, func(i, j int) bool {
		if debts[i].FromID != debts[j].FromID {
			return debts[i].FromID < debts[j].FromID
		}
		return debts[i].ToID < debts[j].ToID
	})
	return debts
}

// PersonalShare returns a member's share of a single expense, rounded to
// cents at the boundary. Zero for non-participants.
func PersonalShare(e Expense, memberID string) core.Money {
	weight, ok := e.Shares[memberID]
	if !ok {
		return core.Money{}
	}
	sum := e.shareSum()
	if sum <= 0 {
		return core.Money{}
	}
	perShare := decimal.NewFromInt(e.Amount.Cents).Div(decimal.NewFromInt(sum))
	return core.Money{Cents: perShare.Mul(decimal.NewFromInt(int64(weight))).Round(0).IntPart()}
}
