// Package server is the HTTP command surface: it routes requests to the
// agent and renders every outcome as a JSON (or image) response.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/clawd-xsl/android-remote/internal/agent"
)

// Options configures a Server. Zero values select defaults.
type Options struct {
	Addr string
	// MaxConcurrent caps in-flight requests (default 4*GOMAXPROCS).
	MaxConcurrent int
	Logger        *slog.Logger
}

// Server serves the agent over HTTP.
type Server struct {
	agent   *agent.Agent
	logger  *slog.Logger
	handler http.Handler
	http    *http.Server
}

// New creates a Server for a.
func New(a *agent.Agent, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4 * runtime.GOMAXPROCS(0)
	}
	s := &Server{agent: a, logger: opts.Logger}
	s.handler = withMiddleware(s.routes(),
		requestLog(opts.Logger),
		recoverPanics(opts.Logger),
		limitConcurrency(opts.MaxConcurrent),
	)
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(opts.Logger.Handler(), slog.LevelWarn),
	}
	return s
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe listens on the configured address and serves until
// Shutdown. It returns nil after a clean shutdown.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve serves on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("command server listening", "addr", l.Addr().String())
	if err := s.http.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
