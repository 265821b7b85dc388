// Package server exposes the pipeline and the memory store over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xaenox/aura/internal/models"
	"github.com/xaenox/aura/internal/storage"
)

const (
	Version = "1.0.0"

	defaultBodyLimit = 10 << 20
	shutdownTimeout  = 15 * time.Second
)

// Processor runs one chat request through the pipeline.
type Processor interface {
	Process(ctx context.Context, req models.Request) (models.Response, error)
}

// Server holds the dependencies of the HTTP API.
type Server struct {
	router      *chi.Mux
	pipeline    Processor
	store       storage.Storage
	logger      *zap.Logger
	corsOrigins []string
	bodyLimit   int64
	limiter     *RateLimiter
}

// Option configures the Server.
type Option func(*Server)

// WithCORSOrigins sets allowed CORS origins ("*" allows any).
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithBodyLimit caps request bodies at n bytes.
func WithBodyLimit(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.bodyLimit = n
		}
	}
}

// WithRateLimit limits POST /process to rpm requests per minute per client.
// Zero disables limiting.
func WithRateLimit(rpm int) Option {
	return func(s *Server) {
		if rpm > 0 {
			s.limiter = NewRateLimiter(rpm)
		}
	}
}

func NewServer(pipeline Processor, store storage.Storage, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		pipeline:    pipeline,
		store:       store,
		logger:      logger,
		corsOrigins: []string{"*"},
		bodyLimit:   defaultBodyLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the chi router with all middleware and routes. Every route is
// served both at the root and under /api.
func (s *Server) Routes() http.Handler {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware(s.corsOrigins))
	r.Use(BodyLimitMiddleware(s.bodyLimit))

	s.mount(r)
	r.Route("/api", s.mount)
	return r
}

func (s *Server) mount(r chi.Router) {
	r.Get("/health", s.handleHealth)

	r.With(RateLimitMiddleware(s.limiter)).Post("/process", s.handleProcess)

	r.Route("/memory/{userId}", func(r chi.Router) {
		r.Get("/", s.handleGetMemory)
		r.Delete("/", s.handleClearMemory)
		r.Put("/preference", s.handleUpdatePreference)
		r.Delete("/preference/{key}", s.handleDeletePreference)
	})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("HTTP server started", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
