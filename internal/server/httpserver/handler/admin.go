package handler

import (
	"net/http"
	"strconv"
	"time"
)

// handleStats handles GET /stats. ?shards=true adds per-shard detail.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	perShard, _ := strconv.ParseBool(r.URL.Query().Get("shards"))
	h.writeJSON(w, r, http.StatusOK, h.cache.Stats(r.Context(), perShard))
}

// handleRehash handles POST /admin/v1/rehash.
func (h *Handler) handleRehash(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	err := h.cache.Rehash(r.Context())
	if h.onRehash != nil {
		h.onRehash(err == nil)
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, RehashResponse{
		RehashCount: h.cache.Stats(r.Context(), false).Totals.RehashCount,
		DurationMs:  time.Since(start).Milliseconds(),
	})
}
