package tlsroots

import (
	"context"
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"

	"github.com/yndnr/hashguard/internal/telemetry/logger"
)

// DefaultDebounce is how long the reloader waits after the last file event
// before loading the pair.
const DefaultDebounce = 500 * time.Millisecond

// CertReloader holds the current certificate of a cert/key file pair.
type CertReloader struct {
	certFile string
	keyFile  string
	debounce time.Duration
	clock    clockwork.Clock
	logger   logger.Logger

	mu   sync.RWMutex
	cert *tls.Certificate
}

// Option configures a CertReloader.
type Option func(*CertReloader)

// WithLogger sets the reloader logger.
func WithLogger(l logger.Logger) Option {
	return func(r *CertReloader) { r.logger = l }
}

// WithDebounce sets the quiet period after a file event.
func WithDebounce(d time.Duration) Option {
	return func(r *CertReloader) { r.debounce = d }
}

// WithClock replaces the clock driving the debounce timer.
func WithClock(c clockwork.Clock) Option {
	return func(r *CertReloader) { r.clock = c }
}

// NewCertReloader loads the pair and returns a reloader serving it.
func NewCertReloader(certFile, keyFile string, opts ...Option) (*CertReloader, error) {
	r := &CertReloader{
		certFile: certFile,
		keyFile:  keyFile,
		debounce: DefaultDebounce,
		clock:    clockwork.NewRealClock(),
		logger:   logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// GetCertificate returns the current certificate. It has the signature of
// tls.Config.GetCertificate.
func (r *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// Reload loads the pair from disk. On error the previous certificate stays
// in use.
func (r *CertReloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("tlsroots: load key pair: %w", err)
	}
	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()
	return nil
}

// Run watches the directories of the pair until ctx is done. Editors and
// secret managers often replace files by rename, so directories rather
// than files are watched. A burst of events results in one reload.
func (r *CertReloader) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	defer fw.Close()

	dirs := map[string]struct{}{
		filepath.Dir(r.certFile): {},
		filepath.Dir(r.keyFile):  {},
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("tlsroots: watch %s: %w", dir, err)
		}
	}
	r.logger.Info("certificate watcher started", "cert_file", r.certFile)

	names := map[string]struct{}{
		filepath.Clean(r.certFile): {},
		filepath.Clean(r.keyFile):  {},
	}
	var timer clockwork.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if _, ours := names[filepath.Clean(ev.Name)]; !ours {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = r.clock.AfterFunc(r.debounce, r.reloadLogged)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("certificate watcher error", "error", err)
		case <-ctx.Done():
			r.logger.Info("certificate watcher stopped")
			return nil
		}
	}
}

func (r *CertReloader) reloadLogged() {
	if err := r.Reload(); err != nil {
		r.logger.Error("certificate reload failed", "cert_file", r.certFile, "error", err)
		return
	}
	r.logger.Info("certificate reloaded", "cert_file", r.certFile)
}
