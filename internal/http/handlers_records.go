package http

import (
	"net/http"
	"time"

	"bolsillo/internal/core"
	"bolsillo/internal/storage"
)

type recordPayload struct {
	Direction      string `json:"direction"`
	Amount         string `json:"amount"`
	Description    string `json:"description,omitempty"`
	Category       string `json:"category,omitempty"`
	Instrument     string `json:"instrument,omitempty"`
	TargetPocketID string `json:"target_pocket_id,omitempty"`
}

type recordResponse struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Direction        string    `json:"direction"`
	Amount           string    `json:"amount"`
	AmountCents      int64     `json:"amount_cents"`
	Description      string    `json:"description,omitempty"`
	Category         string    `json:"category,omitempty"`
	Instrument       string    `json:"instrument,omitempty"`
	TargetPocketID   string    `json:"target_pocket_id,omitempty"`
	LinkedTransferID string    `json:"linked_transfer_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toRecordResponse(rec core.Record) recordResponse {
	return recordResponse{
		ID:               rec.ID,
		OwnerID:          rec.OwnerID,
		Direction:        string(rec.Direction),
		Amount:           rec.Amount.String(),
		AmountCents:      rec.Amount.Cents,
		Description:      rec.Description,
		Category:         rec.Category.String(),
		Instrument:       rec.Instrument.String(),
		TargetPocketID:   rec.TargetPocketID,
		LinkedTransferID: rec.LinkedTransferID,
		CreatedAt:        rec.CreatedAt,
	}
}

func (s *Server) recordFromPayload(ownerID string, p recordPayload) (core.Record, error) {
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return core.Record{}, err
	}
	instrument := core.InstrumentRef{}
	if p.Instrument != "" {
		instrument, err = core.ParseInstrumentRef(p.Instrument)
		if err != nil {
			return core.Record{}, err
		}
	}
	return core.Record{
		OwnerID:        ownerID,
		Direction:      core.Direction(p.Direction),
		Amount:         amount,
		Description:    p.Description,
		Category:       core.ParseCategory(p.Category),
		Instrument:     instrument,
		TargetPocketID: p.TargetPocketID,
	}, nil
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var payload recordPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	rec, err := s.recordFromPayload(r.PathValue("owner"), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := s.ledger.CreateRecord(r.Context(), rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec.ID = id
	writeJSON(w, http.StatusCreated, toRecordResponse(rec))
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid month, expected YYYY-MM"})
			return
		}
	}

	records, err := s.catalog.RecordsByOwner(r.Context(), r.PathValue("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		if month != "" && rec.CreatedAt.Format("2006-01") != month {
			continue
		}
		out = append(out, toRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.GetRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rec.OwnerID != r.PathValue("owner") {
		writeError(w, r, storage.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (s *Server) handleReplaceRecord(w http.ResponseWriter, r *http.Request) {
	var payload recordPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	rec, err := s.recordFromPayload(r.PathValue("owner"), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec.ID = r.PathValue("id")

	if err := s.ledger.ReplaceRecord(r.Context(), rec); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteRecord(r.Context(), r.PathValue("owner"), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
