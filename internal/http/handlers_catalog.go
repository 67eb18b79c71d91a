package http

import (
	"net/http"

	"github.com/google/uuid"

	"bolsillo/internal/core"
)

type pocketPayload struct {
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	Goal         string `json:"goal,omitempty"`
	TargetPeriod string `json:"target_period,omitempty"`
}

type pocketResponse struct {
	ID           string `json:"id"`
	OwnerID      string `json:"owner_id"`
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	Goal         string `json:"goal,omitempty"`
	TargetPeriod string `json:"target_period,omitempty"`
}

func toPocketResponse(p core.Pocket) pocketResponse {
	resp := pocketResponse{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Name:         p.Name,
		Kind:         string(p.Kind),
		TargetPeriod: p.TargetPeriod,
	}
	if p.Goal.Cents > 0 {
		resp.Goal = p.Goal.String()
	}
	return resp
}

func pocketFromPayload(ownerID string, payload pocketPayload) (core.Pocket, error) {
	p := core.Pocket{
		OwnerID:      ownerID,
		Name:         payload.Name,
		Kind:         core.PocketKind(payload.Kind),
		TargetPeriod: payload.TargetPeriod,
	}
	if payload.Kind == "" {
		p.Kind = core.PocketGeneral
	}
	if payload.Goal != "" {
		goal, err := parseAmount(payload.Goal)
		if err != nil {
			return core.Pocket{}, err
		}
		p.Goal = goal
	}
	return p, p.Validate()
}

func (s *Server) handleCreatePocket(w http.ResponseWriter, r *http.Request) {
	var payload pocketPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	p, err := pocketFromPayload(r.PathValue("owner"), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p.ID = uuid.NewString()

	if err := s.catalog.CreatePocket(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPocketResponse(p))
}

func (s *Server) handleListPockets(w http.ResponseWriter, r *http.Request) {
	pockets, err := s.catalog.PocketsByOwner(r.Context(), r.PathValue("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]pocketResponse, 0, len(pockets))
	for _, p := range pockets {
		out = append(out, toPocketResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdatePocket(w http.ResponseWriter, r *http.Request) {
	var payload pocketPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	p, err := pocketFromPayload(r.PathValue("owner"), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p.ID = r.PathValue("id")

	if err := s.catalog.UpdatePocket(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPocketResponse(p))
}

func (s *Server) handleDeletePocket(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeletePocket(r.Context(), r.PathValue("owner"), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type instrumentPayload struct {
	Issuer      string `json:"issuer,omitempty"`
	Kind        string `json:"kind"`
	Last4       string `json:"last4,omitempty"`
	DisplayName string `json:"display_name"`
	CreditLimit string `json:"credit_limit,omitempty"`
}

type instrumentResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Issuer      string `json:"issuer,omitempty"`
	Kind        string `json:"kind"`
	Last4       string `json:"last4,omitempty"`
	DisplayName string `json:"display_name"`
	CreditLimit string `json:"credit_limit,omitempty"`
}

func toInstrumentResponse(in core.Instrument) instrumentResponse {
	resp := instrumentResponse{
		ID:          in.ID,
		OwnerID:     in.OwnerID,
		Issuer:      in.Issuer,
		Kind:        string(in.Kind),
		Last4:       in.Last4,
		DisplayName: in.DisplayName,
	}
	if in.CreditLimit.Cents > 0 {
		resp.CreditLimit = in.CreditLimit.String()
	}
	return resp
}

func (s *Server) handleCreateInstrument(w http.ResponseWriter, r *http.Request) {
	var payload instrumentPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	in := core.Instrument{
		ID:          uuid.NewString(),
		OwnerID:     r.PathValue("owner"),
		Issuer:      payload.Issuer,
		Kind:        core.InstrumentKind(payload.Kind),
		Last4:       payload.Last4,
		DisplayName: payload.DisplayName,
	}
	if payload.CreditLimit != "" {
		limit, err := parseAmount(payload.CreditLimit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in.CreditLimit = limit
	}
	if err := in.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.catalog.CreateInstrument(r.Context(), in); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInstrumentResponse(in))
}

func (s *Server) handleListInstruments(w http.ResponseWriter, r *http.Request) {
	instruments, err := s.catalog.InstrumentsByOwner(r.Context(), r.PathValue("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]instrumentResponse, 0, len(instruments))
	for _, in := range instruments {
		out = append(out, toInstrumentResponse(in))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteInstrument(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteInstrument(r.Context(), r.PathValue("owner"), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type rulePayload struct {
	Direction  string `json:"direction"`
	Amount     string `json:"amount"`
	Category   string `json:"category,omitempty"`
	Instrument string `json:"instrument,omitempty"`
	Frequency  string `json:"frequency,omitempty"`
	DayOfMonth int    `json:"day_of_month"`
	IsActive   *bool  `json:"is_active,omitempty"`
}

type ruleResponse struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	Direction  string `json:"direction"`
	Amount     string `json:"amount"`
	Category   string `json:"category,omitempty"`
	Instrument string `json:"instrument,omitempty"`
	Frequency  string `json:"frequency"`
	DayOfMonth int    `json:"day_of_month"`
	IsActive   bool   `json:"is_active"`
}

func toRuleResponse(rule core.RecurringRule) ruleResponse {
	return ruleResponse{
		ID:         rule.ID,
		OwnerID:    rule.OwnerID,
		Direction:  string(rule.Direction),
		Amount:     rule.Amount.String(),
		Category:   rule.Category.String(),
		Instrument: rule.Instrument.String(),
		Frequency:  rule.Frequency,
		DayOfMonth: rule.DayOfMonth,
		IsActive:   rule.IsActive,
	}
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var payload rulePayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	amount, err := parseAmount(payload.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	instrument := core.InstrumentRef{}
	if payload.Instrument != "" {
		instrument, err = core.ParseInstrumentRef(payload.Instrument)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	rule := core.RecurringRule{
		ID:         uuid.NewString(),
		OwnerID:    r.PathValue("owner"),
		Direction:  core.Direction(payload.Direction),
		Amount:     amount,
		Category:   core.ParseCategory(payload.Category),
		Instrument: instrument,
		Frequency:  payload.Frequency,
		DayOfMonth: payload.DayOfMonth,
		IsActive:   true,
	}
	if rule.Frequency == "" {
		rule.Frequency = "monthly"
	}
	if payload.IsActive != nil {
		rule.IsActive = *payload.IsActive
	}
	if err := rule.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.catalog.CreateRecurringRule(r.Context(), rule); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRuleResponse(rule))
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.catalog.RecurringRulesByOwner(r.Context(), r.PathValue("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]ruleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRuleResponse(rule))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteRecurringRule(r.Context(), r.PathValue("owner"), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
