package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strings"

	"github.com/yndnr/hashguard/internal/telemetry/logger"
	"github.com/yndnr/hashguard/pkg/securemap"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyMap(&cfg.Map),
		verifySecurity(&cfg.Security),
		verifyLog(&cfg.Log),
		verifyMetrics(&cfg.Metrics),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error
	if err := verifyAddr("server.http.addr", cfg.HTTP.Addr); err != nil {
		errs = append(errs, err)
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http.tls_cert_file and tls_key_file must be set together"))
	}
	if cfg.HTTP.TLSClientCAFile != "" && cfg.HTTP.TLSCertFile == "" {
		errs = append(errs, errors.New("server.http.tls_client_ca_file requires tls_cert_file"))
	}
	for _, f := range []string{cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile, cfg.HTTP.TLSClientCAFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			errs = append(errs, fmt.Errorf("server.http tls file: %w", err))
		}
	}

	if cfg.Redis.Enabled {
		if err := verifyAddr("server.redis.addr", cfg.Redis.Addr); err != nil {
			errs = append(errs, err)
		} else if cfg.Redis.Addr == cfg.HTTP.Addr {
			errs = append(errs, fmt.Errorf("server.redis.addr conflicts with server.http.addr (%s)", cfg.Redis.Addr))
		}
		if cfg.Redis.MaxConns < 0 {
			errs = append(errs, errors.New("server.redis.max_conns must not be negative"))
		}
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyAddr(name, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", name)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func verifyMap(cfg *MapSection) error {
	var errs []error
	if cfg.Shards <= 0 || cfg.Shards&(cfg.Shards-1) != 0 {
		errs = append(errs, fmt.Errorf("map.shards must be a positive power of two, got %d", cfg.Shards))
	}
	if cfg.Capacity < 0 {
		errs = append(errs, errors.New("map.capacity must not be negative"))
	}
	if cfg.MaxChainLength < 0 {
		errs = append(errs, errors.New("map.max_chain_length must not be negative"))
	}
	if cfg.CollisionWindow < 0 {
		errs = append(errs, errors.New("map.collision_window must not be negative"))
	}
	if cfg.MaxCollisionEvents < 0 {
		errs = append(errs, errors.New("map.max_collision_events must not be negative"))
	}
	if cfg.ExpandThreshold < 0 || cfg.ExpandThreshold > 1 {
		errs = append(errs, fmt.Errorf("map.expand_threshold must be in (0, 1], got %g", cfg.ExpandThreshold))
	}
	if securemap.DigestByName(cfg.Digest) == nil {
		errs = append(errs, fmt.Errorf("map.digest: unknown digest %q", cfg.Digest))
	}
	return errors.Join(errs...)
}

func verifySecurity(cfg *SecuritySection) error {
	var errs []error
	if cfg.RateLimit < 0 {
		errs = append(errs, errors.New("security.rate_limit must not be negative"))
	}
	for _, entry := range cfg.AdminAllowlist {
		if _, err := ParseAllowEntry(entry); err != nil {
			errs = append(errs, fmt.Errorf("security.admin_allowlist: %w", err))
		}
	}
	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if !logger.ValidLevel(cfg.Level) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", cfg.Level))
	}
	switch cfg.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", cfg.Format))
	}
	return errors.Join(errs...)
}

func verifyMetrics(cfg *MetricsSection) error {
	if cfg.Enabled && !strings.HasPrefix(cfg.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", cfg.Path)
	}
	return nil
}

// ParseAllowEntry parses an IP address or CIDR prefix.
func ParseAllowEntry(entry string) (netip.Prefix, error) {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		p, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Prefix{}, err
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, err
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}
