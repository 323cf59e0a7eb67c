package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps service errors onto HTTP statuses: unknown ids
// are 404, storage failures 500, everything else is treated as a bad
// request.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrStorage):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	}
}
