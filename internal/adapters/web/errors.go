package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gstbilling/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeCoreError maps core error kinds onto HTTP statuses:
// not found → 404, invalid argument → 400, invalid state → 422,
// conflict → 409, anything else → 500.
func writeCoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrInvalidArgument):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	case errors.Is(err, core.ErrInvalidState):
		writeError(w, r, err.Error(), "INVALID_STATE", http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrConflict):
		writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict)
	default:
		log.Printf("internal error: %v", err)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus writes a JSON response with an explicit status code.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
