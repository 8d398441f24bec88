package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yndnr/hashguard/internal/telemetry/logger"
)

// Hook releases one resource during shutdown.
type Hook func(context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Handler runs shutdown hooks.
type Handler struct {
	timeout time.Duration
	logger  logger.Logger

	mu    sync.Mutex
	hooks []namedHook

	once sync.Once
	err  error
	done chan struct{}
}

// NewHandler creates a shutdown handler whose hooks share timeout.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		logger:  logger.Default(),
		done:    make(chan struct{}),
	}
}

// SetLogger replaces the handler logger.
func (h *Handler) SetLogger(l logger.Logger) {
	h.logger = l
}

// OnShutdown registers a hook. Hooks are called in reverse order of
// registration.
func (h *Handler) OnShutdown(hook Hook) {
	h.OnShutdownNamed("", hook)
}

// OnShutdownNamed registers a hook with a name used in logs and errors.
func (h *Handler) OnShutdownNamed(name string, hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, namedHook{name: name, fn: hook})
}

// Wait blocks until SIGINT or SIGTERM, then runs the hooks.
func (h *Handler) Wait() error {
	return h.Run(context.Background())
}

// Run blocks until SIGINT, SIGTERM or the end of ctx, then runs the hooks.
// A context ending is a normal shutdown and is not reported as an error.
func (h *Handler) Run(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		h.logger.Info("shutdown requested")
	}
	return h.Shutdown()
}

// Shutdown runs the hooks once. Later calls return the first result.
func (h *Handler) Shutdown() error {
	h.once.Do(func() {
		h.err = h.runHooks()
		close(h.done)
	})
	return h.err
}

func (h *Handler) runHooks() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]namedHook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		hk := hooks[i]
		if err := hk.fn(ctx); err != nil {
			h.logger.Error("shutdown hook failed", "hook", hk.name, "error", err)
			if hk.name != "" {
				err = fmt.Errorf("%s: %w", hk.name, err)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
