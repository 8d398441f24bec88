package config

import (
	"time"

	"github.com/yndnr/hashguard/internal/core/domain"
	"github.com/yndnr/hashguard/pkg/cmap"
	"github.com/yndnr/hashguard/pkg/securemap"
)

// Default configuration values.
const (
	DefaultHTTPAddr  = "127.0.0.1:5080"
	DefaultRedisAddr = "127.0.0.1:6379"

	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultRedisIdle       = 5 * time.Minute
	DefaultRedisMaxConns   = 1024
	DefaultShutdownTimeout = 15 * time.Second

	DefaultDigest    = "sha256"
	DefaultRateLimit = 1000

	DefaultMetricsPath = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:         DefaultHTTPAddr,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
				IdleTimeout:  DefaultIdleTimeout,
			},
			Redis: RedisConfig{
				Enabled:     false,
				Addr:        DefaultRedisAddr,
				IdleTimeout: DefaultRedisIdle,
				MaxConns:    DefaultRedisMaxConns,
			},
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Map: MapSection{
			Shards:             cmap.DefaultShardCount,
			Capacity:           securemap.DefaultCapacity,
			MaxChainLength:     securemap.DefaultMaxChainLength,
			CollisionWindow:    securemap.DefaultCollisionWindow,
			MaxCollisionEvents: securemap.DefaultMaxCollisionEvents,
			ExpandThreshold:    securemap.DefaultExpandThreshold,
			Digest:             DefaultDigest,
		},
		Limits: domain.DefaultLimits(),
		Security: SecuritySection{
			RateLimit: DefaultRateLimit,
		},
		Metrics: MetricsSection{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
