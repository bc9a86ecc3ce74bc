package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/akenfack/creditrisk/internal/audit"
	"github.com/akenfack/creditrisk/internal/engine"
	"github.com/akenfack/creditrisk/pkg/logger"
	"github.com/akenfack/creditrisk/pkg/redis"
)

// CreditHandler serves the decision endpoints
// ⭐ SSOT: 신용 판정 API 핸들러는 이 구조체에서만
type CreditHandler struct {
	engine   *engine.Engine
	cache    *redis.Cache
	cacheTTL time.Duration
	audit    *audit.Repository
	logger   *logger.Logger
}

// NewCreditHandler creates a new credit handler. cache and auditRepo may be
// nil when the respective backends are not configured.
func NewCreditHandler(eng *engine.Engine, cache *redis.Cache, cacheTTL time.Duration, auditRepo *audit.Repository, log *logger.Logger) *CreditHandler {
	return &CreditHandler{
		engine:   eng,
		cache:    cache,
		cacheTTL: cacheTTL,
		audit:    auditRepo,
		logger:   log,
	}
}

// GetPrediction returns the solvency decision for a client
// GET /api/credit/{id}
func (h *CreditHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID, ok := parseClientID(w, r)
	if !ok {
		return
	}

	// Read-through cache; decisions are pure functions of the frozen store
	// and model, so a cached entry is never stale within a process run.
	if h.cache != nil {
		var cached engine.Prediction
		found, err := h.cache.Get(ctx, redis.PredictionKey(clientID), &cached)
		if err != nil {
			h.logger.WithError(err).Warn("Prediction cache read failed")
		}
		if found {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	prediction, err := h.engine.GetPrediction(clientID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, redis.PredictionKey(clientID), prediction, h.cacheTTL); err != nil {
			h.logger.WithError(err).Warn("Prediction cache write failed")
		}
	}

	if h.audit != nil {
		if err := h.audit.Record(ctx, clientID, prediction.Prediction, prediction.Probability); err != nil {
			// The decision is still served; the trail gap is logged.
			h.logger.WithError(err).WithField("client_id", clientID).Error("Failed to record decision")
		}
	}

	respondJSON(w, http.StatusOK, prediction)
}

// GetNeighbors returns the clients most similar to the given one
// GET /api/credit/{id}/neighbors?k=10
func (h *CreditHandler) GetNeighbors(w http.ResponseWriter, r *http.Request) {
	clientID, ok := parseClientID(w, r)
	if !ok {
		return
	}

	k := 0 // engine applies the configured default
	if kStr := r.URL.Query().Get("k"); kStr != "" {
		parsed, err := strconv.Atoi(kStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_argument", "invalid 'k' parameter")
			return
		}
		k = parsed
	}

	neighbors, err := h.engine.NearestNeighbors(clientID, k)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, neighbors)
}
