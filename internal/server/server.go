package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/dygy/codegroove/internal/scales"
	"github.com/dygy/codegroove/internal/strudel"
)

// Config holds server configuration
type Config struct {
	Port           int
	MaxSourceBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
	SessionTTL     time.Duration
	DrumKit        string
	Sentry         bool // wrap handlers with Sentry panic reporting
}

// DefaultConfig returns the server defaults
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		MaxSourceBytes: 1 << 20,
		RateLimitRPS:   20,
		RateLimitBurst: 40,
		SessionTTL:     10 * time.Minute,
		DrumKit:        string(strudel.DrumKitTR808),
	}
}

// Server is the HTTP server
type Server struct {
	config   Config
	router   *chi.Mux
	logger   *slog.Logger
	scales   *scales.Registry
	sessions *SessionManager
	limiter  *rate.Limiter
}

// New creates a new server. registry supplies the scales requests may name.
func New(cfg Config, registry *scales.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = scales.NewRegistry()
	}

	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		logger:   logger,
		scales:   registry,
		sessions: NewSessionManager(cfg.SessionTTL),
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the playback session registry.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.config.Sentry {
		// Repanics so Recoverer still answers 500
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(s.requestID)
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Get("/scales", s.handleScales)
	r.Get("/kits", s.handleKits)

	// API
	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Use(s.limitBody)

		r.Post("/compose", s.handleCompose)
		r.Post("/render/strudel", s.handleRenderStrudel)
		r.Post("/render/midi", s.handleRenderMIDI)

		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Delete("/sessions/{id}", s.handleDeleteSession)
	})
}

// Run starts the server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		<-ctx.Done()

		s.logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", slog.Any("error", err))
		}
		s.sessions.Close()
		close(done)
	}()

	s.logger.Info("server starting", slog.Int("port", s.config.Port))

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	return nil
}
