// Package web exposes the judging service over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/adapters/history"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/diagnostics"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/logging"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

// Judge runs analyses.
type Judge interface {
	AnalyzeSingle(ctx context.Context, item core.Item, criteria string) core.Verdict
	AnalyzeMultiple(ctx context.Context, items []core.Item, criteria string) core.BatchResult
	JudgeCompetition(ctx context.Context, items []core.Item, criteria string) core.CompetitionResult
}

// Health reports component status.
type Health interface {
	Status() map[string]string
	Probe(ctx context.Context, timeout time.Duration) []service.ProbeResult
}

// History reads stored judgments.
type History interface {
	List(ctx context.Context, limit int) ([]history.Summary, error)
	Get(ctx context.Context, id string) (*history.Entry, error)
}

// Metrics reports analysis counters.
type Metrics interface {
	Snapshot() service.MetricsSnapshot
}

// HostMetrics samples host resources.
type HostMetrics interface {
	Collect(ctx context.Context) diagnostics.HostMetrics
}

// Server represents the HTTP server for the judging API.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	config     Config
	logger     *logging.Logger
	validate   *validator.Validate

	judge   Judge
	health  Health
	history History
	metrics Metrics
	host    HostMetrics
}

// Config holds the server configuration.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	MaxUploadBytes  int64
	ProbeTimeout    time.Duration
	Version         string
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8000,
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    15 * time.Minute,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		MaxUploadBytes:  50 << 20,
		ProbeTimeout:    10 * time.Second,
		Version:         "1.0.0",
	}
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithHistory enables the history endpoints.
func WithHistory(h History) ServerOption {
	return func(s *Server) {
		s.history = h
	}
}

// WithMetrics enables the metrics endpoint.
func WithMetrics(m Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithHostMetrics adds host resource usage to the metrics endpoint.
func WithHostMetrics(h HostMetrics) ServerOption {
	return func(s *Server) {
		s.host = h
	}
}

// New creates a new Server instance with the given configuration.
func New(cfg Config, judge Judge, health Health, logger *logging.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		config:   cfg,
		logger:   logger.With("component", "http"),
		validate: validator.New(),
		judge:    judge,
		health:   health,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router = s.setupRouter()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return s
}

// setupRouter configures the Chi router with middleware and routes.
func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	if len(s.config.CORSOrigins) > 0 {
		corsMiddleware := cors.New(cors.Options{
			AllowedOrigins:   s.config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		})
		r.Use(corsMiddleware.Handler)
	}

	r.Get("/", s.handleRoot)
	r.Get("/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	r.Get("/health/deep", s.handleDeepHealth)

	r.Route("/analyze", func(r chi.Router) {
		r.Post("/text", s.handleAnalyzeText)
		r.Post("/image", s.handleAnalyzeFile(core.ContentImage))
		r.Post("/audio", s.handleAnalyzeFile(core.ContentAudio))
		r.Post("/video", s.handleAnalyzeFile(core.ContentVideo))
		r.Post("/document", s.handleAnalyzeFile(core.ContentDocument))
		r.Post("/multiple", s.handleAnalyzeMultiple)
	})
	r.Post("/judge/competition", s.handleCompetition)

	if s.history != nil {
		r.Get("/history", s.handleHistoryList)
		r.Get("/history/{id}", s.handleHistoryGet)
	}
	if s.metrics != nil {
		r.Get("/metrics", s.handleMetrics)
	}

	return r
}

// loggingMiddleware logs HTTP requests and puts the request ID in the
// context for downstream loggers.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		reqID := middleware.GetReqID(r.Context())
		r = r.WithContext(logging.ContextWithRequestID(r.Context(), reqID))

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", reqID,
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// Start starts the HTTP server in a non-blocking manner. Listen errors are
// sent on the returned channel.
func (s *Server) Start() <-chan error {
	s.logger.Info("starting http server", "addr", s.httpServer.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")

	shutdownCtx := ctx
	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
