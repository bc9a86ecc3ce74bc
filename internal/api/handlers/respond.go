package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akenfack/creditrisk/internal/engine"
)

// errorResponse is the failure envelope: a machine-readable kind plus a
// human-readable message.
type errorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, kind, message string) {
	respondJSON(w, status, errorResponse{Kind: kind, Error: message})
}

// respondEngineError maps the engine's failure taxonomy onto HTTP statuses.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, engine.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, engine.ErrSchemaMismatch):
		respondError(w, http.StatusInternalServerError, "schema_mismatch", err.Error())
	case errors.Is(err, engine.ErrPredictor):
		respondError(w, http.StatusInternalServerError, "predictor_error", err.Error())
	case errors.Is(err, engine.ErrExplainer):
		respondError(w, http.StatusInternalServerError, "explainer_error", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
