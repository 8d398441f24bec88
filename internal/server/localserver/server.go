package localserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/yndnr/hashguard/internal/telemetry/logger"
)

// DefaultSocketMode is the permission of the socket file.
const DefaultSocketMode fs.FileMode = 0o600

// Server serves an HTTP handler on a Unix domain socket.
type Server struct {
	path   string
	mode   fs.FileMode
	srv    *http.Server
	logger logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMode sets the socket file permission.
func WithMode(mode fs.FileMode) Option {
	return func(s *Server) { s.mode = mode }
}

// New creates a server for the socket at path.
func New(path string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		path:   path,
		mode:   DefaultSocketMode,
		logger: logger.Default(),
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Listen creates the socket. A stale socket left by an unclean exit is
// replaced; any other file at path is an error, as is a socket that still
// accepts connections.
func (s *Server) Listen() (net.Listener, error) {
	if err := s.removeStale(); err != nil {
		return nil, err
	}
	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return nil, fmt.Errorf("localserver: listen %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, s.mode); err != nil {
		ln.Close()
		return nil, fmt.Errorf("localserver: chmod %s: %w", s.path, err)
	}
	return ln, nil
}

func (s *Server) removeStale() error {
	fi, err := os.Lstat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("localserver: %w", err)
	}
	if fi.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("localserver: %s exists and is not a socket", s.path)
	}
	if c, err := net.DialTimeout("unix", s.path, time.Second); err == nil {
		c.Close()
		return fmt.Errorf("localserver: %s is in use", s.path)
	}
	s.logger.Warn("removing stale socket", "path", s.path)
	return os.Remove(s.path)
}

// Serve serves ln until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("local socket listening", "path", s.path)
	if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains open requests and removes the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
		err = errors.Join(err, rmErr)
	}
	return err
}
