package http

import (
	"net/http"

	"bolsillo/internal/services"
)

type transferPayload struct {
	FromPocketID string `json:"from_pocket_id"`
	ToPocketID   string `json:"to_pocket_id"`
	Amount       string `json:"amount"`
	Description  string `json:"description,omitempty"`
}

type transferResponse struct {
	Out recordResponse `json:"out"`
	In  recordResponse `json:"in"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var payload transferPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := s.ledger.Transfer(r.Context(), r.PathValue("owner"),
		payload.FromPocketID, payload.ToPocketID, amount, payload.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transferResponse{
		Out: toRecordResponse(pair.Out),
		In:  toRecordResponse(pair.In),
	})
}

type paymentPayload struct {
	Amount string `json:"amount"`
}

func (s *Server) handlePayInstrument(w http.ResponseWriter, r *http.Request) {
	var payload paymentPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rec, err := s.ledger.PayInstrument(r.Context(), r.PathValue("owner"), r.PathValue("id"), amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordResponse(rec))
}

type summaryResponse struct {
	Income     string              `json:"income"`
	Expense    string              `json:"expense"`
	Balance    string              `json:"balance"`
	Unassigned string              `json:"unassigned"`
	Pockets    []pocketAmountJSON  `json:"pockets"`
	Pendings   []pendingAmountJSON `json:"pendings"`
}

type pocketAmountJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Amount string `json:"amount"`
	Goal   string `json:"goal,omitempty"`
}

type pendingAmountJSON struct {
	InstrumentID string `json:"instrument_id"`
	DisplayName  string `json:"display_name"`
	Pending      string `json:"pending"`
	OverPaid     bool   `json:"over_paid,omitempty"`
}

func toSummaryResponse(ov services.Overview) summaryResponse {
	resp := summaryResponse{
		Income:     ov.Totals.Income.String(),
		Expense:    ov.Totals.Expense.String(),
		Balance:    ov.Totals.Balance.String(),
		Unassigned: ov.Unassigned.String(),
		Pockets:    make([]pocketAmountJSON, 0, len(ov.Pockets)),
		Pendings:   make([]pendingAmountJSON, 0, len(ov.Pendings)),
	}
	for _, pa := range ov.Pockets {
		entry := pocketAmountJSON{
			ID:     pa.Pocket.ID,
			Name:   pa.Pocket.Name,
			Kind:   string(pa.Pocket.Kind),
			Amount: pa.Amount.String(),
		}
		if pa.Pocket.Goal.Cents > 0 {
			entry.Goal = pa.Pocket.Goal.String()
		}
		resp.Pockets = append(resp.Pockets, entry)
	}
	for _, ip := range ov.Pendings {
		resp.Pendings = append(resp.Pendings, pendingAmountJSON{
			InstrumentID: ip.Instrument.ID,
			DisplayName:  ip.Instrument.DisplayName,
			Pending:      ip.Pending.String(),
			OverPaid:     ip.OverPaid,
		})
	}
	return resp
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ov, err := s.cachedOverview(r.Context(), r.PathValue("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(ov))
}
