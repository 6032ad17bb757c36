// Package web exposes the conversion engine over HTTP.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/csv2cypher/internal/config"
	"github.com/JonMunkholm/csv2cypher/internal/handler"
	"github.com/JonMunkholm/csv2cypher/internal/history"
	"github.com/JonMunkholm/csv2cypher/internal/web/middleware"
)

// Server is the HTTP server for csv2cypher.
type Server struct {
	pipeline    *handler.Pipeline
	history     history.Store
	limiter     *handler.Limiter
	cfg         config.ServerConfig
	maxFileSize int64
	router      *chi.Mux
	server      *http.Server
	logger      *slog.Logger
}

// NewServer creates a Server. The pipeline should have no output directory:
// results are returned in responses, not written to disk.
func NewServer(pipeline *handler.Pipeline, store history.Store, cfg *config.Config, logger *slog.Logger) *Server {
	if store == nil {
		store = history.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		pipeline:    pipeline,
		history:     store,
		limiter:     handler.NewLimiter(cfg.Server.MaxConcurrent, 0),
		cfg:         cfg.Server,
		maxFileSize: cfg.Convert.MaxFileSize,
		router:      chi.NewRouter(),
		logger:      logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	if len(s.cfg.TrustedProxies) > 0 {
		s.router.Use(middleware.TrustedRealIP(s.cfg.TrustedProxies))
	}
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)

	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	s.router.Use(chimw.Timeout(timeout))
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.APIKeys))

		r.Post("/convert/knowledge-points", s.handleConvertKnowledgePoints)
		r.Post("/convert/prerequisites", s.handleConvertPrerequisites)
		r.Post("/convert/script", s.handleConvertScript)
		r.Get("/history", s.handleHistory)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	s.logger.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for running conversions.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.limiter.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
