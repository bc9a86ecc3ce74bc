package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/akenfack/creditrisk/internal/engine"
	"github.com/akenfack/creditrisk/pkg/logger"
)

// ClientHandler serves the client catalog endpoints
// ⭐ SSOT: 클라이언트 카탈로그 API 핸들러는 이 구조체에서만
type ClientHandler struct {
	engine     *engine.Engine
	sampleSize int
	sampleSeed int64
	logger     *logger.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(eng *engine.Engine, sampleSize int, sampleSeed int64, log *logger.Logger) *ClientHandler {
	return &ClientHandler{
		engine:     eng,
		sampleSize: sampleSize,
		sampleSeed: sampleSeed,
		logger:     log,
	}
}

// ListClients returns every client identifier
// GET /api/clients
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.ListClientIDs())
}

// ListFeatures returns the ordered feature catalog
// GET /api/features
func (h *ClientHandler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.ListFeatures())
}

// GetClient returns one client record
// GET /api/clients/{id}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := parseClientID(w, r)
	if !ok {
		return
	}

	record, err := h.engine.GetClient(clientID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// SampleClients returns a reproducible random sample of client records
// GET /api/clients/sample?n=1000&seed=42
func (h *ClientHandler) SampleClients(w http.ResponseWriter, r *http.Request) {
	n := h.sampleSize
	if nStr := r.URL.Query().Get("n"); nStr != "" {
		parsed, err := strconv.Atoi(nStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_argument", "invalid 'n' parameter")
			return
		}
		n = parsed
	}

	seed := h.sampleSeed
	if seedStr := r.URL.Query().Get("seed"); seedStr != "" {
		parsed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_argument", "invalid 'seed' parameter")
			return
		}
		seed = parsed
	}

	records, err := h.engine.SampleClients(n, seed)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// parseClientID extracts the {id} path variable.
func parseClientID(w http.ResponseWriter, r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	clientID, err := strconv.Atoi(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", "client id must be an integer")
		return 0, false
	}
	return clientID, true
}
