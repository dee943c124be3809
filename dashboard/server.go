// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package dashboard

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/inteli/rssi-dashboard/internal/log"
	"github.com/inteli/rssi-dashboard/internal/options"
)

type (
	// Server serves the live view of a monitor over HTTP.
	Server struct {
		monitor  *Monitor
		metrics  *Metrics
		mux      *http.ServeMux
		upgrader websocket.Upgrader
		options  ServerOptions
		log      log.Logger

		mu      sync.Mutex
		closed  bool
		closing chan struct{}
		viewers sync.WaitGroup
	}

	// ServerOption represents a single server option.
	ServerOption interface{ server(*ServerOptions) }

	// ServerOptions are the resolved server options.
	ServerOptions struct {
		// WriteTimeout bounds every WebSocket write.
		WriteTimeout time.Duration
		// PingInterval is how often idle viewers are pinged.
		PingInterval time.Duration
		// ShutdownTimeout bounds the graceful shutdown in Serve.
		ShutdownTimeout time.Duration
		Metrics         *Metrics
		Logger          *slog.Logger
	}

	// WithWriteTimeout bounds every WebSocket write.
	WithWriteTimeout time.Duration

	// WithPingInterval sets how often idle viewers are pinged.
	WithPingInterval time.Duration

	// WithShutdownTimeout bounds the graceful shutdown in Serve.
	WithShutdownTimeout time.Duration
)

// Server defaults.
const (
	DefaultWriteTimeout    = 10 * time.Second
	DefaultPingInterval    = 30 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

//go:embed web/index.html
var indexHTML []byte

// NewServer creates the HTTP handler for the monitor's view.
func NewServer(monitor *Monitor, opt ...ServerOption) *Server {
	opts := ServerOptions{
		WriteTimeout:    DefaultWriteTimeout,
		PingInterval:    DefaultPingInterval,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
	opts.Apply(opt)
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}

	s := &Server{
		monitor: monitor,
		metrics: opts.Metrics,
		mux:     http.NewServeMux(),
		options: opts,
		log:     log.Wrap(opts.Logger),
		closing: make(chan struct{}),
	}

	s.mux.HandleFunc("GET /{$}", s.serveIndex)
	s.mux.HandleFunc("GET /api/snapshot", s.serveSnapshot)
	s.mux.HandleFunc("GET /ws", s.serveLive)
	s.mux.HandleFunc("GET /healthz", s.serveHealth)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is cancelled, then closes the live viewers
// and shuts down gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(lis) }()
	s.log.Info(ctx, "serving dashboard", slog.String("address", lis.Addr().String()))

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(
		context.WithoutCancel(ctx),
		s.options.ShutdownTimeout,
	)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close disconnects every live viewer and waits for them to finish.
// Hijacked WebSocket connections are not covered by http.Server.Shutdown.
func (s *Server) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.closing)
	}
	s.mu.Unlock()
	s.viewers.Wait()
}

// Registers a live viewer unless the server is closing.
func (s *Server) join() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.viewers.Add(1)
	return true
}

func (s *Server) serveIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(s.monitor.Snapshot()); err != nil {
		s.log.Err(r.Context(), err)
	}
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Apply resolves the provided list of options.
func (o *ServerOptions) Apply(
	opts []ServerOption,
	rest ...ServerOption,
) {
	for opt := range options.Apply[ServerOption](opts, rest...) {
		opt.server(o)
	}
}

func (o *ServerOptions) server(opt *ServerOptions) {
	if o != nil {
		*opt = *o
	}
}

func (o WithWriteTimeout) server(opt *ServerOptions) {
	opt.WriteTimeout = time.Duration(o)
}

func (o WithPingInterval) server(opt *ServerOptions) {
	opt.PingInterval = time.Duration(o)
}

func (o WithShutdownTimeout) server(opt *ServerOptions) {
	opt.ShutdownTimeout = time.Duration(o)
}
