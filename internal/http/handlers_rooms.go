package http

import (
	"net/http"
	"sort"
	"time"

	"bolsillo/internal/services"
	"bolsillo/internal/split"
)

type createRoomPayload struct {
	Name      string `json:"name"`
	CreatorID string `json:"creator_id"`
}

type joinRoomPayload struct {
	JoinCode string `json:"join_code"`
	MemberID string `json:"member_id"`
}

type roomResponse struct {
	ID       string   `json:"id"`
	JoinCode string   `json:"join_code"`
	Name     string   `json:"name"`
	Members  []string `json:"members"`
}

func toRoomResponse(room split.Room) roomResponse {
	return roomResponse{
		ID:       room.ID,
		JoinCode: room.JoinCode,
		Name:     room.Name,
		Members:  room.MemberIDs,
	}
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var payload createRoomPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	room, err := s.rooms.CreateRoom(r.Context(), payload.Name, payload.CreatorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomResponse(room))
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var payload joinRoomPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	room, err := s.rooms.JoinRoom(r.Context(), payload.JoinCode, payload.MemberID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.rooms.RoomsByMember(r.Context(), r.PathValue("member"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomResponse(room))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.Room(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

type expensePayload struct {
	Amount      string         `json:"amount"`
	PayerID     string         `json:"payer_id"`
	CreatedByID string         `json:"created_by_id,omitempty"`
	Shares      map[string]int `json:"shares,omitempty"`
}

type expenseResponse struct {
	ID          string         `json:"id"`
	RoomID      string         `json:"room_id"`
	Amount      string         `json:"amount"`
	AmountCents int64          `json:"amount_cents"`
	PayerID     string         `json:"payer_id"`
	Shares      map[string]int `json:"shares"`
	CreatedByID string         `json:"created_by_id"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toExpenseResponse(e split.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		RoomID:      e.RoomID,
		Amount:      e.Amount.String(),
		AmountCents: e.Amount.Cents,
		PayerID:     e.PayerID,
		Shares:      e.Shares,
		CreatedByID: e.CreatedByID,
		CreatedAt:   e.CreatedAt,
	}
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var payload expensePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	createdBy := payload.CreatedByID
	if createdBy == "" {
		createdBy = payload.PayerID
	}

	e, err := s.rooms.AddExpense(r.Context(), r.PathValue("id"), amount, payload.PayerID, createdBy, payload.Shares)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.rooms.Expenses(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.rooms.DeleteExpense(r.Context(), r.PathValue("id"), r.PathValue("expense")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type positionJSON struct {
	MemberID string `json:"member_id"`
	Amount   string `json:"amount"`
}

type debtJSON struct {
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
	Amount string `json:"amount"`
}

type settlementResponse struct {
	Positions []positionJSON `json:"positions"`
	Debts     []debtJSON     `json:"debts"`
}

func toSettlementResponse(st services.Settlement) settlementResponse {
	resp := settlementResponse{
		Positions: make([]positionJSON, 0, len(st.Positions)),
		Debts:     make([]debtJSON, 0, len(st.Debts)),
	}
	for member, amount := range st.Positions {
		resp.Positions = append(resp.Positions, positionJSON{MemberID: member, Amount: amount.String()})
	}
	sort.Slice(resp.Positions, func(i, j int) bool {
		return resp.Positions[i].MemberID < resp.Positions[j].MemberID
	})
	for _, d := range st.Debts {
		resp.Debts = append(resp.Debts, debtJSON{FromID: d.FromID, ToID: d.ToID, Amount: d.Amount.String()})
	}
	return resp
}

func (s *Server) handleSettlement(w http.ResponseWriter, r *http.Request) {
	st, err := s.rooms.Settle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(st))
}
