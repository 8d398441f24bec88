package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/hashguard/internal/core/service"
	"github.com/yndnr/hashguard/internal/infra/buildinfo"
	"github.com/yndnr/hashguard/internal/infra/confloader"
	"github.com/yndnr/hashguard/internal/infra/shutdown"
	"github.com/yndnr/hashguard/internal/infra/tlsroots"
	"github.com/yndnr/hashguard/internal/server/config"
	"github.com/yndnr/hashguard/internal/server/httpserver"
	"github.com/yndnr/hashguard/internal/server/localserver"
	"github.com/yndnr/hashguard/internal/server/redisserver"
	"github.com/yndnr/hashguard/internal/telemetry/logger"
	"github.com/yndnr/hashguard/internal/telemetry/metric"
	"github.com/yndnr/hashguard/pkg/cmap"
)

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			EnvVars: []string{"HASHGUARD_CONFIG"},
		},
		&cli.StringFlag{Name: "http-addr", Usage: "HTTP listen address"},
		&cli.StringFlag{Name: "redis-addr", Usage: "Redis protocol listen address; setting it enables the listener"},
		&cli.StringFlag{Name: "socket", Usage: "Unix socket path for local admin access"},
		&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn, error"},
	}
}

// flagOverrides maps the flags set on the command line to config keys.
func flagOverrides(c *cli.Context) map[string]any {
	values := map[string]any{}
	if c.IsSet("http-addr") {
		values["server.http.addr"] = c.String("http-addr")
	}
	if c.IsSet("redis-addr") {
		values["server.redis.addr"] = c.String("redis-addr")
		values["server.redis.enabled"] = true
	}
	if c.IsSet("socket") {
		values["server.local.socket_path"] = c.String("socket")
	}
	if c.IsSet("log-level") {
		values["log.level"] = c.String("log-level")
	}
	return values
}

// loadConfig merges defaults, the configuration file, HASHGUARD_ variables
// and command line flags, in increasing priority.
func loadConfig(path string, flags map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithFlags(flags)}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func serveAction(c *cli.Context) error {
	path := c.String("config")
	flags := flagOverrides(c)

	cfg, err := loadConfig(path, flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  os.Stderr,
		NoColor: cfg.Log.NoColor,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting hashguard-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", path)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	mapOpts, err := cfg.MapOptions(log.With("component", "securemap"))
	if err != nil {
		return err
	}
	store, err := cmap.NewWithShards[string](cfg.Map.Shards, cfg.MapConfig(), mapOpts...)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	cache := service.NewCacheService(store, cfg.Limits)

	var metrics *metric.Registry
	if cfg.Metrics.Enabled {
		metrics = metric.NewRegistry()
		metrics.MustRegister(metric.NewMapCollector(store))
	}

	var limiter *service.RateLimiterRegistry
	if cfg.Security.RateLimit > 0 {
		limiter = service.NewRateLimiterRegistry(cfg.Security.RateLimit)
	}

	allow := make([]netip.Prefix, 0, len(cfg.Security.AdminAllowlist))
	for _, entry := range cfg.Security.AdminAllowlist {
		p, err := config.ParseAllowEntry(entry)
		if err != nil {
			return err
		}
		allow = append(allow, p)
	}

	routerCfg := httpserver.DefaultRouterConfig()
	routerCfg.Cache = cache
	routerCfg.Logger = log
	routerCfg.Metrics = metrics
	routerCfg.MetricsPath = cfg.Metrics.Path
	routerCfg.RateLimiter = limiter
	routerCfg.AdminAllowList = allow
	routerCfg.TrustProxy = cfg.Security.TrustProxy

	httpCfg := cfg.Server.HTTP
	var certs *tlsroots.CertReloader
	var tlsCfg *tls.Config
	if httpCfg.TLSCertFile != "" {
		certs, err = tlsroots.NewCertReloader(httpCfg.TLSCertFile, httpCfg.TLSKeyFile,
			tlsroots.WithLogger(log.With("component", "tls")))
		if err != nil {
			return err
		}
		var clientCAs *x509.CertPool
		if httpCfg.TLSClientCAFile != "" {
			if clientCAs, err = tlsroots.LoadPool(httpCfg.TLSClientCAFile); err != nil {
				return err
			}
		}
		tlsCfg = tlsroots.ServerConfig(certs, clientCAs)
	}

	httpSrv := httpserver.New(httpserver.Config{
		Addr:         httpCfg.Addr,
		TLSConfig:    tlsCfg,
		ReadTimeout:  httpCfg.ReadTimeout,
		WriteTimeout: httpCfg.WriteTimeout,
		IdleTimeout:  httpCfg.IdleTimeout,
	}, httpserver.NewRouter(routerCfg))

	httpLn, err := net.Listen("tcp", httpCfg.Addr)
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}
	listeners := []net.Listener{httpLn}
	closeListeners := func() {
		for _, ln := range listeners {
			ln.Close()
		}
	}

	var (
		redisSrv *redisserver.Server
		redisLn  net.Listener
	)
	if cfg.Server.Redis.Enabled {
		redisSrv = redisserver.New(redisConfig(cfg), cache,
			redisserver.WithLogger(log.With("component", "redis")),
			redisserver.WithRateLimiter(limiter),
			redisserver.WithMetrics(metrics),
		)
		redisLn, err = net.Listen("tcp", cfg.Server.Redis.Addr)
		if err != nil {
			closeListeners()
			return fmt.Errorf("listen redis: %w", err)
		}
		listeners = append(listeners, redisLn)
	}

	var (
		localSrv *localserver.Server
		localLn  net.Listener
	)
	if socketPath := cfg.Server.Local.SocketPath; socketPath != "" {
		localCfg := *routerCfg
		localCfg.LocalSocket = true
		localSrv = localserver.New(socketPath, httpserver.NewRouter(&localCfg),
			localserver.WithLogger(log.With("component", "local")))
		localLn, err = localSrv.Listen()
		if err != nil {
			closeListeners()
			return err
		}
		listeners = append(listeners, localLn)
	}

	var watcher *confloader.Watcher
	if path != "" {
		watcher, err = confloader.NewWatcher(confloader.WithWatcherLogger(log))
		if err == nil {
			err = watcher.Watch(path)
		}
		if err != nil {
			closeListeners()
			return fmt.Errorf("watch config: %w", err)
		}
		watcher.OnChange(func(string) { reloadLogLevel(log, path, flags) })
	}

	g, gctx := errgroup.WithContext(c.Context)

	// Background loops run until the last shutdown hook cancels them.
	bgCtx, stopBackground := context.WithCancel(gctx)
	defer stopBackground()

	// Hooks run in reverse order of registration.
	sh := shutdown.NewHandler(cfg.Server.ShutdownTimeout)
	sh.SetLogger(log)
	sh.OnShutdownNamed("background", func(context.Context) error {
		stopBackground()
		return nil
	})
	if localSrv != nil {
		sh.OnShutdownNamed("local", localSrv.Shutdown)
	}
	if redisSrv != nil {
		sh.OnShutdownNamed("redis", redisSrv.Shutdown)
	}
	sh.OnShutdownNamed("http", httpSrv.Shutdown)

	g.Go(func() error {
		log.Info("http server listening", "address", httpLn.Addr().String(), "tls", tlsCfg != nil)
		return httpSrv.Serve(httpLn)
	})
	if redisSrv != nil {
		g.Go(func() error {
			if err := redisSrv.Serve(redisLn); !errors.Is(err, redisserver.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	if localSrv != nil {
		g.Go(func() error { return localSrv.Serve(localLn) })
	}
	if watcher != nil {
		g.Go(func() error { return watcher.Run(bgCtx) })
	}
	if certs != nil {
		g.Go(func() error { return certs.Run(bgCtx) })
	}
	g.Go(func() error { return sh.Run(gctx) })

	log.Info("server started, press Ctrl+C to stop")
	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// redisConfig derives the Redis listener settings. Bulk strings may exceed
// the value limit by a margin so oversized values are rejected by the
// store with a domain error rather than by the codec.
func redisConfig(cfg *config.ServerConfig) redisserver.Config {
	rc := redisserver.DefaultConfig()
	rc.Addr = cfg.Server.Redis.Addr
	rc.ReadTimeout = cfg.Server.HTTP.ReadTimeout
	rc.WriteTimeout = cfg.Server.HTTP.WriteTimeout
	rc.IdleTimeout = cfg.Server.Redis.IdleTimeout
	rc.MaxConns = cfg.Server.Redis.MaxConns

	bulk := 2 * max(cfg.Limits.MaxValueBytes, cfg.Limits.MaxKeyBytes)
	rc.Limits.MaxBulkLen = max(bulk, redisserver.DefaultMaxBulkLen)
	return rc
}

// reloadLogLevel applies log.level from the changed configuration file.
// Other settings need a restart.
func reloadLogLevel(log logger.Logger, path string, flags map[string]any) {
	cfg, err := loadConfig(path, flags)
	if err != nil {
		log.Warn("configuration reload rejected", "error", err)
		return
	}
	if cfg.Log.Level == logger.GetLevel() {
		return
	}
	logger.SetLevel(cfg.Log.Level)
	log.Info("log level changed", "level", cfg.Log.Level)
}
