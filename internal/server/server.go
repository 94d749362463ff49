// Package server provides the HTTP API for the assistant.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/sanad/internal/config"
	"go.uber.org/zap"
)

// Asker answers a question.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// PointCounter reports how many points the index holds.
type PointCounter interface {
	Count(ctx context.Context) (int, error)
}

// Server is the HTTP server for the ask API.
type Server struct {
	asker   Asker
	points  PointCounter
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	handler http.Handler
}

// NewServer creates a server. points may be nil, in which case /status omits the point count.
func NewServer(asker Asker, points PointCounter, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		asker:  asker,
		points: points,
		config: cfg,
		logger: logger,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/ask", s.handleAsk)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	return r
}

// Handler returns the router, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
