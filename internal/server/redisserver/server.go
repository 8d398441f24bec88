package redisserver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/semaphore"

	"github.com/yndnr/hashguard/internal/core/domain"
	"github.com/yndnr/hashguard/internal/core/service"
	"github.com/yndnr/hashguard/internal/telemetry/logger"
	"github.com/yndnr/hashguard/internal/telemetry/metric"
)

// ErrServerClosed is returned by Serve after Shutdown has been called.
var ErrServerClosed = errors.New("redisserver: server closed")

const shutdownPollInterval = 50 * time.Millisecond

// Config holds the listener settings.
type Config struct {
	Addr string

	// ReadTimeout bounds reading one command once its first byte arrived.
	ReadTimeout time.Duration
	// WriteTimeout bounds flushing one reply.
	WriteTimeout time.Duration
	// IdleTimeout bounds the wait for the next command.
	IdleTimeout time.Duration

	// MaxConns caps concurrent clients. Zero means unlimited.
	MaxConns int

	Limits Limits
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:6379",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  5 * time.Minute,
		MaxConns:     1024,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	return c
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRateLimiter limits commands per client IP.
func WithRateLimiter(r *service.RateLimiterRegistry) Option {
	return func(s *Server) { s.limiter = r }
}

// WithMetrics records per-command metrics.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Server) { s.metrics = m }
}

// Server speaks RESP2 over TCP.
type Server struct {
	cfg     Config
	handler *CommandHandler
	logger  logger.Logger
	limiter *service.RateLimiterRegistry
	metrics *metric.Registry
	slots   *semaphore.Weighted

	baseCtx context.Context
	cancel  context.CancelFunc

	mu         sync.Mutex
	ln         net.Listener
	conns      map[*conn]struct{}
	inShutdown atomic.Bool
	wg         sync.WaitGroup
}

type conn struct {
	nc   net.Conn
	idle atomic.Bool
}

// New creates a Server backed by cache.
func New(cfg Config, cache *service.CacheService, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:     cfg.withDefaults(),
		logger:  logger.Default(),
		baseCtx: ctx,
		cancel:  cancel,
		conns:   make(map[*conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.MaxConns > 0 {
		s.slots = semaphore.NewWeighted(int64(s.cfg.MaxConns))
	}
	s.handler = NewCommandHandler(cache, s.metrics)
	return s
}

// ListenAndServe listens on the configured address and serves.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown. It returns nil after a
// graceful shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.inShutdown.Load() {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("redis server listening", "address", ln.Addr().String())

	var tempDelay time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if s.inShutdown.Load() {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				tempDelay = min(max(2*tempDelay, 5*time.Millisecond), time.Second)
				s.logger.Warn("redis accept error, retrying", "error", err, "delay", tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			return err
		}
		tempDelay = 0

		if s.slots != nil && !s.slots.TryAcquire(1) {
			s.logger.Warn("redis connection rejected, too many clients", "remote", nc.RemoteAddr().String())
			_ = nc.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			_, _ = io.WriteString(nc, "-ERR max number of clients reached\r\n")
			nc.Close()
			continue
		}

		c := &conn{nc: nc}
		if !s.track(c) {
			nc.Close()
			s.release()
			return nil
		}
		go func() {
			defer s.wg.Done()
			defer s.release()
			defer s.untrack(c)
			s.serveConn(c)
		}()
	}
}

func (s *Server) release() {
	if s.slots != nil {
		s.slots.Release(1)
	}
}

// track registers c and reserves a WaitGroup slot for its goroutine.
func (s *Server) track(c *conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inShutdown.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(c *conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	c.nc.Close()
}

// Shutdown stops accepting, closes idle connections and waits for active
// commands to finish. When ctx ends first the remaining connections are
// closed and ctx.Err is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.inShutdown.Store(true)
	var err error
	if s.ln != nil {
		if cerr := s.ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	ticker := time.NewTicker(shutdownPollInterval)
	defer ticker.Stop()
	for {
		s.closeConns(false)
		select {
		case <-done:
			s.cancel()
			return err
		case <-ctx.Done():
			s.cancel()
			s.closeConns(true)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Server) closeConns(force bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		if force || c.idle.Load() {
			c.nc.Close()
		}
	}
}

func (s *Server) serveConn(c *conn) {
	remote := c.nc.RemoteAddr().String()
	log := s.logger.With("conn_id", ulid.Make().String(), "remote", remote)
	ctx := logger.WithLogger(s.baseCtx, log)

	client := remote
	if host, _, err := net.SplitHostPort(remote); err == nil {
		client = host
	}

	r := NewReader(bufio.NewReader(c.nc), s.cfg.Limits)
	w := NewWriter(bufio.NewWriter(c.nc))
	log.Debug("redis client connected")

	for {
		c.idle.Store(true)
		if s.inShutdown.Load() {
			return
		}
		if err := c.nc.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
			return
		}
		if err := r.Peek(); err != nil {
			s.logReadError(log, err)
			return
		}
		c.idle.Store(false)

		if err := c.nc.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			return
		}
		args, err := r.ReadCommand()
		if err != nil {
			if errors.Is(err, ErrLimitExceeded) || errors.Is(err, ErrProtocol) {
				log.Warn("redis protocol violation", "error", err)
				w.Error("ERR " + err.Error())
				s.flush(c, w)
				return
			}
			s.logReadError(log, err)
			return
		}
		if len(args) == 0 {
			continue
		}

		quit := false
		if s.limiter != nil && !s.limiter.Allow(client) {
			if s.metrics != nil {
				s.metrics.IncRateLimited(transport)
			}
			w.Error(formatError(domain.ErrRateLimited))
		} else {
			quit = s.handler.Handle(ctx, w, args)
		}

		if err := s.flush(c, w); err != nil || quit {
			return
		}
	}
}

func (s *Server) flush(c *conn, w *Writer) error {
	if err := c.nc.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return err
	}
	return w.Flush()
}

func (s *Server) logReadError(log logger.Logger, err error) {
	var ne net.Error
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		log.Debug("redis client disconnected")
	case errors.As(err, &ne) && ne.Timeout():
		log.Debug("redis connection timed out")
	default:
		log.Debug("redis read error", "error", err)
	}
}
