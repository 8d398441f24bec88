package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/yndnr/hashguard/internal/core/domain"
	"github.com/yndnr/hashguard/internal/core/service"
	"github.com/yndnr/hashguard/internal/telemetry/logger"
)

// maxBodyBytes caps request bodies at the largest value plus JSON overhead.
const maxBodyBytes = 1 << 20

// RehashObserver is told the outcome of every operator rehash.
type RehashObserver func(ok bool)

// Handler serves the key/value, stats and health endpoints.
type Handler struct {
	cache    *service.CacheService
	onRehash RehashObserver
	mux      *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithRehashObserver sets a callback run after every operator rehash.
func WithRehashObserver(fn RehashObserver) Option {
	return func(h *Handler) { h.onRehash = fn }
}

// New creates a Handler over cache.
func New(cache *service.CacheService, opts ...Option) *Handler {
	h := &Handler{
		cache: cache,
		mux:   http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /get/{key}", h.handleGet)
	h.mux.HandleFunc("POST /set", h.handleSet)
	h.mux.HandleFunc("DELETE /delete/{key}", h.handleDelete)

	h.mux.HandleFunc("GET /stats", h.handleStats)
	h.mux.HandleFunc("POST /admin/v1/rehash", h.handleRehash)
}

// log returns the request logger installed by the middleware.
func (h *Handler) log(r *http.Request) logger.Logger {
	return logger.L(r.Context())
}

// writeJSON writes a JSON response with the standard envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		h.log(r).Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with the standard envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(NewErrorResponse(requestID, code, message, details))
}

// WriteDomainError writes err as an envelope with the status of its code.
// It is exported for middleware that rejects requests before routing.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err *domain.DomainError) {
	(&Handler{}).writeDomainError(w, r, err)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, de *domain.DomainError) {
	var details any
	if de.Details != "" {
		details = de.Details
	}
	h.writeError(w, r, ErrorCodeToHTTPStatus(de.Code), de.Code, de.Message, details)
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		if de.Cause != nil {
			h.log(r).Error("request failed", "code", de.Code, "error", de.Cause)
		}
		h.writeDomainError(w, r, de)
		return
	}

	h.log(r).Error("internal error", "error", err)
	h.writeDomainError(w, r, domain.ErrInternal)
}

// ErrorCodeToHTTPStatus maps an error code to an HTTP status by its
// trailing digits.
func ErrorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4030"), strings.HasSuffix(code, "-4031"):
		return http.StatusForbidden
	case strings.HasSuffix(code, "-5001"):
		return http.StatusServiceUnavailable
	case strings.Contains(code, "-ARG-"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// getRequestID returns the request ID set by the RequestID middleware.
func getRequestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}
