package httpserver

import (
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/hashguard/internal/core/domain"
	"github.com/yndnr/hashguard/internal/core/service"
	"github.com/yndnr/hashguard/internal/server/httpserver/handler"
	"github.com/yndnr/hashguard/internal/telemetry/logger"
	"github.com/yndnr/hashguard/internal/telemetry/metric"
)

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one listed runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// maxRequestIDLen bounds client-supplied request IDs.
const maxRequestIDLen = 64

// RequestID assigns a ULID request ID unless the client sent a usable
// X-Request-ID, and installs base as the request logger.
func RequestID(base logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if !validRequestID(requestID) {
				requestID = ulid.Make().String()
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = logger.WithLogger(ctx, base)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}

// Recover turns a panic into a 500 response.
func Recover(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Error("panic recovered",
						"request_id", logger.RequestIDFromContext(r.Context()),
						"error", err,
						"method", r.Method,
						"route", r.Pattern,
					)
					handler.WriteDomainError(w, r, domain.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Audit logs one line per request at a level chosen by status class.
// Paths are logged as their route pattern so keys never reach the log.
func Audit(trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			attrs := []any{
				"method", r.Method,
				"route", r.Pattern,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", clientIP(r, trustProxy),
			}

			log := logger.L(r.Context())
			switch {
			case wrapped.statusCode >= 500:
				log.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Info("request completed", attrs...)
			}
		})
	}
}

// RateLimit rejects clients that exhaust their token bucket.
func RateLimit(limiters *service.RateLimiterRegistry, reg *metric.Registry, trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.Allow(clientIP(r, trustProxy)) {
				if reg != nil {
					reg.IncRateLimited("http")
				}
				w.Header().Set("Retry-After", "1")
				handler.WriteDomainError(w, r, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Metrics records request count and latency per route.
func Metrics(reg *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			reg.RecordRequest("http", route, strconv.Itoa(wrapped.statusCode))
			reg.ObserveRequestDuration("http", route, time.Since(start).Seconds())
		})
	}
}

// NetworkACL admits only clients inside allow. An empty list admits
// loopback clients only.
func NetworkACL(allow []netip.Prefix, trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, err := netip.ParseAddr(clientIP(r, trustProxy))
			if err != nil || !allowed(ip.Unmap(), allow) {
				logger.L(r.Context()).Warn("request denied by network ACL",
					"client_ip", clientIP(r, trustProxy),
					"route", r.Pattern,
				)
				handler.WriteDomainError(w, r, domain.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowed(ip netip.Addr, allow []netip.Prefix) bool {
	if len(allow) == 0 {
		return ip.IsLoopback()
	}
	for _, p := range allow {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// clientIP returns the client address. Forwarding headers are honoured
// only when trustProxy is set, since they are client-controlled.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
