package handler

import (
	"net/http"
	"time"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"status": "ready",
		"keys":   h.cache.Count(r.Context()),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
