package config

import (
	"time"

	"github.com/yndnr/hashguard/internal/core/domain"
)

// ServerConfig is the root configuration for hashguard-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Map      MapSection      `koanf:"map"`
	Limits   domain.Limits   `koanf:"limits"`
	Security SecuritySection `koanf:"security"`
	Metrics  MetricsSection  `koanf:"metrics"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	Redis RedisConfig `koanf:"redis"`
	Local LocalConfig `koanf:"local"`

	// ShutdownTimeout bounds graceful shutdown of all listeners.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// TLSClientCAFile, when set, requires client certificates signed by
	// one of the CAs in the file or directory.
	TLSClientCAFile string `koanf:"tls_client_ca_file"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// RedisConfig configures the Redis protocol server.
type RedisConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Addr        string        `koanf:"addr"`
	IdleTimeout time.Duration `koanf:"idle_timeout"`
	MaxConns    int           `koanf:"max_conns"`
}

// LocalConfig configures the Unix socket listener. An empty SocketPath
// disables it.
type LocalConfig struct {
	SocketPath string `koanf:"socket_path"`
}

// MapSection holds the store construction parameters.
type MapSection struct {
	// Shards is the number of independently seeded maps. Power of two.
	Shards int `koanf:"shards"`

	// Capacity is the initial bucket count of each shard.
	Capacity int `koanf:"capacity"`

	MaxChainLength     int           `koanf:"max_chain_length"`
	CollisionWindow    time.Duration `koanf:"collision_window"`
	MaxCollisionEvents int           `koanf:"max_collision_events"`
	ExpandThreshold    float64       `koanf:"expand_threshold"`

	// Digest selects the comparator digest: sha256 or blake2b.
	Digest string `koanf:"digest"`
}

// SecuritySection configures request admission.
type SecuritySection struct {
	// RateLimit is the per-client request rate per second. 0 disables.
	RateLimit int `koanf:"rate_limit"`

	// AdminAllowlist lists IPs or CIDRs allowed to call admin endpoints.
	// Empty allows loopback only.
	AdminAllowlist []string `koanf:"admin_allowlist"`

	// TrustProxy takes the client address from X-Forwarded-For or
	// X-Real-IP. Enable only behind a proxy that sets them.
	TrustProxy bool `koanf:"trust_proxy"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// LogSection configures logging.
type LogSection struct {
	Level   string `koanf:"level"`
	Format  string `koanf:"format"`
	NoColor bool   `koanf:"no_color"`
}
