package handlers

import (
	"net/http"
	"strconv"

	"github.com/akenfack/creditrisk/internal/engine"
	"github.com/akenfack/creditrisk/pkg/logger"
)

// ExplainHandler serves the attribution endpoints
type ExplainHandler struct {
	engine *engine.Engine
	logger *logger.Logger
}

// NewExplainHandler creates a new explain handler
func NewExplainHandler(eng *engine.Engine, log *logger.Logger) *ExplainHandler {
	return &ExplainHandler{engine: eng, logger: log}
}

// GetLocal returns per-feature attribution for one client's prediction
// GET /api/explain/{id}
func (h *ExplainHandler) GetLocal(w http.ResponseWriter, r *http.Request) {
	clientID, ok := parseClientID(w, r)
	if !ok {
		return
	}

	result, err := h.engine.GetLocalExplanation(clientID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetGlobal returns ranked population-level feature importance
// GET /api/explain/global?sample_size=500&seed=42
func (h *ExplainHandler) GetGlobal(w http.ResponseWriter, r *http.Request) {
	sampleSize := 0 // engine applies the configured default
	if sizeStr := r.URL.Query().Get("sample_size"); sizeStr != "" {
		parsed, err := strconv.Atoi(sizeStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_argument", "invalid 'sample_size' parameter")
			return
		}
		sampleSize = parsed
	}

	seed := h.engine.GlobalExplainSeed()
	if seedStr := r.URL.Query().Get("seed"); seedStr != "" {
		parsed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_argument", "invalid 'seed' parameter")
			return
		}
		seed = parsed
	}

	result, err := h.engine.GetGlobalExplanation(sampleSize, seed)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
