// Package api provides HTTP handlers for the resume filter REST API.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shahbaz-dev1/ai-resume-filter/internal/events"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/store"
)

// HealthHandler provides the health endpoint.
type HealthHandler struct {
	docs      store.DocumentStore
	bus       *events.Client
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(docs store.DocumentStore, bus *events.Client) *HealthHandler {
	return &HealthHandler{
		docs:      docs,
		bus:       bus,
		startTime: time.Now(),
	}
}

// Health returns the service health status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeStatus := "connected"
	documentCount, err := h.docs.Count(ctx)
	if err != nil {
		storeStatus = "disconnected"
	}

	busStatus := "disconnected"
	if h.bus != nil && h.bus.IsConnected() {
		busStatus = "connected"
	}

	resp := map[string]any{
		"status":         "healthy",
		"store":          storeStatus,
		"events":         busStatus,
		"document_count": documentCount,
		"uptime_seconds": int(time.Since(h.startTime).Seconds()),
	}

	if storeStatus == "disconnected" {
		resp["status"] = "degraded"
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
