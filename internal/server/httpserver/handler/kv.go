package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/yndnr/hashguard/internal/core/domain"
)

// handleGet handles GET /get/{key}.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	value, err := h.cache.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, ValueResponse{Value: value})
}

// handleSet handles POST /set.
func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	var req SetRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.handleServiceError(w, r, domain.ErrValueTooLarge)
			return
		}
		if errors.Is(err, io.EOF) {
			h.handleServiceError(w, r, domain.ErrBadRequest.WithDetails("empty request body"))
			return
		}
		h.handleServiceError(w, r, domain.ErrBadRequest.WithDetails("invalid JSON body"))
		return
	}
	if req.Key == "" {
		h.handleServiceError(w, r, domain.ErrKeyRequired)
		return
	}
	if req.Value == nil {
		h.handleServiceError(w, r, domain.ErrValueRequired)
		return
	}

	if err := h.cache.Set(r.Context(), req.Key, *req.Value); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, SetResponse{Key: req.Key})
}

// handleDelete handles DELETE /delete/{key}.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Delete(r.Context(), r.PathValue("key")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, DeleteResponse{Deleted: true})
}
