/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/stk5800/cliharness/pkg/cases"
	"github.com/stk5800/cliharness/pkg/history"
	"github.com/stk5800/cliharness/pkg/snapshotter"
	"github.com/stk5800/cliharness/pkg/state"
)

// Server exposes harness results and hive state over HTTP.
type Server struct {
	cfg     *Config
	name    string
	version string

	report      func() *cases.Report
	dataDoctor  *state.DataDoctor
	history     *history.Store
	snapshotter *snapshotter.HiveSnapshotter

	limiters *limiters

	mu    sync.RWMutex
	ready bool
}

// Option configures a Server.
type Option func(*Server)

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		s.cfg = cfg
	}
}

// WithName sets the name and version reported on the root route.
func WithName(name, version string) Option {
	return func(s *Server) {
		s.name, s.version = name, version
	}
}

// WithReport sets the source of the last completed run report.
func WithReport(fn func() *cases.Report) Option {
	return func(s *Server) {
		s.report = fn
	}
}

// WithDataDoctor serves the data-doctor cache on /v1/state.
func WithDataDoctor(dd *state.DataDoctor) Option {
	return func(s *Server) {
		s.dataDoctor = dd
	}
}

// WithHistory serves recorded case results on /v1/history.
func WithHistory(h *history.Store) Option {
	return func(s *Server) {
		s.history = h
	}
}

// WithSnapshotter collects live snapshots on /v1/snapshot.
func WithSnapshotter(sn *snapshotter.HiveSnapshotter) Option {
	return func(s *Server) {
		s.snapshotter = sn
	}
}

// New creates a server. It is not ready until SetReady(true).
func New(opts ...Option) *Server {
	s := &Server{cfg: DefaultConfig(), name: "cliharness"}
	for _, opt := range opts {
		opt(s)
	}
	s.limiters = newLimiters(s.cfg.RateLimit, s.cfg.RateLimitBurst)
	return s
}

// SetReady flips the readiness reported on /ready.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// SetHive attaches the hive-backed sources once the hive is discovered.
func (s *Server) SetHive(dd *state.DataDoctor, sn *snapshotter.HiveSnapshotter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataDoctor = dd
	s.snapshotter = sn
}

func (s *Server) hive() (*state.DataDoctor, *snapshotter.HiveSnapshotter) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataDoctor, s.snapshotter
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Run listens until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.SetReady(false)
	slog.Info("shutting down server", "timeout", s.cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
