package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/akenfack/creditrisk/internal/drift"
	"github.com/akenfack/creditrisk/internal/engine"
	"github.com/akenfack/creditrisk/pkg/logger"
)

// DriftHandler serves the drift report and its live feed
type DriftHandler struct {
	engine   *engine.Engine
	logger   *logger.Logger
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[*websocket.Conn]bool
}

// NewDriftHandler creates a new drift handler
func NewDriftHandler(eng *engine.Engine, log *logger.Logger) *DriftHandler {
	return &DriftHandler{
		engine: eng,
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		subscribers: make(map[*websocket.Conn]bool),
	}
}

// GetReport returns the latest drift report, computing one if none exists
// GET /api/drift
func (h *DriftHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.GetDriftReport()
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute drift report")
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// Live upgrades to a websocket that receives every recomputed drift report
// GET /api/drift/live
func (h *DriftHandler) Live(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.subscribers[conn] = true
	h.mu.Unlock()

	h.logger.WithField("remote", conn.RemoteAddr().String()).Debug("Drift feed subscriber connected")

	// Reader loop only detects close; subscribers never send payloads.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish pushes a report to every connected subscriber. Implements the
// scheduler job's Publisher.
func (h *DriftHandler) Publish(report *drift.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.subscribers {
		if err := conn.WriteJSON(report); err != nil {
			h.logger.WithError(err).Debug("Dropping drift feed subscriber")
			conn.Close()
			delete(h.subscribers, conn)
		}
	}
}

func (h *DriftHandler) drop(conn *websocket.Conn) {
	conn.Close()
	h.mu.Lock()
	delete(h.subscribers, conn)
	h.mu.Unlock()
}
