package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"bolsillo/internal/core"
	"bolsillo/internal/split"
	"bolsillo/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Partial writes get their
// own message because the stored state may be inconsistent.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicateMember):
		status = http.StatusConflict
	case errors.Is(err, core.ErrPartialWrite):
		slog.ErrorContext(r.Context(), "Partial write", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "transfer may be partially applied, verify your records: " + err.Error(),
		})
		return
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDirection),
		errors.Is(err, core.ErrEmptyOwner),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrSamePocket),
		errors.Is(err, core.ErrInsufficientFunds),
		errors.Is(err, core.ErrExceedsPending),
		errors.Is(err, core.ErrNotCreditCard),
		errors.Is(err, core.ErrInvalidInstrumentRef),
		errors.Is(err, split.ErrNoParticipants),
		errors.Is(err, split.ErrInvalidShare),
		errors.Is(err, split.ErrEmptyPayer):
		status = http.StatusUnprocessableEntity
	}

	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// parseAmount converts a decimal amount string ("12.34") into Money.
func parseAmount(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(s))
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}
