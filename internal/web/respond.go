package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"notesd/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps the store taxonomy onto HTTP statuses. Anything outside the
// taxonomy is an internal error, logged with context and reported opaquely.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *store.ValidationError
	var nf *store.NotFoundError
	var ce *store.ConstraintError
	var be *store.StoreBusyError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Error()})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorBody{Error: nf.Error()})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, errorBody{Error: ce.Error()})
	case errors.As(err, &be):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: be.Error()})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &store.ValidationError{Msg: "invalid JSON body: " + err.Error()}
	}
	return nil
}
