package httpserver

import (
	"net/http"
	"net/netip"

	"github.com/yndnr/hashguard/internal/core/service"
	"github.com/yndnr/hashguard/internal/server/httpserver/handler"
	"github.com/yndnr/hashguard/internal/telemetry/logger"
	"github.com/yndnr/hashguard/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Cache serves the key/value endpoints.
	Cache *service.CacheService

	// Logger for request logging.
	Logger logger.Logger

	// Metrics receives request metrics and serves MetricsPath. Nil
	// disables both.
	Metrics     *metric.Registry
	MetricsPath string

	// RateLimiter holds the per-client buckets. Nil disables limiting.
	RateLimiter *service.RateLimiterRegistry

	// AdminAllowList restricts admin endpoints. Empty allows loopback only.
	AdminAllowList []netip.Prefix

	// TrustProxy honours X-Forwarded-For and X-Real-IP.
	TrustProxy bool

	// EnableAudit enables one log line per request.
	EnableAudit bool

	// LocalSocket marks a router for the Unix socket listener, where file
	// permissions gate access. The admin ACL and rate limiting are skipped.
	LocalSocket bool
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:      logger.Default(),
		MetricsPath: "/metrics",
		EnableAudit: true,
	}
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	var opts []handler.Option
	if cfg.Metrics != nil {
		opts = append(opts, handler.WithRehashObserver(cfg.Metrics.RecordRehash))
	}
	h := handler.New(cfg.Cache, opts...)

	common := []Middleware{Recover(log), RequestID(log)}
	if cfg.Metrics != nil {
		common = append(common, Metrics(cfg.Metrics))
	}
	if cfg.EnableAudit {
		common = append(common, Audit(cfg.TrustProxy))
	}

	public := append([]Middleware(nil), common...)
	admin := append([]Middleware(nil), common...)
	if !cfg.LocalSocket {
		if cfg.RateLimiter != nil {
			public = append(public, RateLimit(cfg.RateLimiter, cfg.Metrics, cfg.TrustProxy))
		}
		admin = append(admin, NetworkACL(cfg.AdminAllowList, cfg.TrustProxy))
	}

	publicHandler := Chain(h, public...)
	adminHandler := Chain(h, admin...)
	probeHandler := Chain(h, Recover(log), RequestID(log))

	mux := http.NewServeMux()

	mux.Handle("GET /health", probeHandler)
	mux.Handle("GET /ready", probeHandler)

	mux.Handle("GET /get/{key}", publicHandler)
	mux.Handle("POST /set", publicHandler)
	mux.Handle("DELETE /delete/{key}", publicHandler)
	mux.Handle("GET /stats", publicHandler)

	mux.Handle("POST /admin/v1/rehash", adminHandler)

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, Chain(cfg.Metrics.Handler(), Recover(log)))
	}

	return mux
}
