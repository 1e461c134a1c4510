package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spigell/ats-screener/internal/metrics"
	"github.com/spigell/ats-screener/internal/screening"
	"go.uber.org/zap"
)

const (
	DefaultListen = ":8000"

	gracefulShutdownTimeout = 5 * time.Second
	serviceName             = "ats-screener"
)

// Evaluator screens a batch of resume URLs.
type Evaluator interface {
	Evaluate(ctx context.Context, urls []string) ([]screening.Result, error)
}

type Config struct {
	Listen         string
	AllowedOrigins []string
	// Registry receives the HTTP collectors and is served on /metrics. Nil disables both.
	Registry *prometheus.Registry
}

type Server struct {
	cfg       Config
	evaluator Evaluator
	logger    *zap.Logger
	metrics   *metrics.Middleware
}

func New(cfg Config, evaluator Evaluator, logger *zap.Logger) *Server {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{cfg: cfg, evaluator: evaluator, logger: logger.Named("http")}
	if cfg.Registry != nil {
		s.metrics = metrics.NewMiddleware(serviceName, cfg.Registry)
	}

	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	if s.metrics != nil {
		router.Use(s.metrics.Handler)
	}

	if len(s.cfg.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}))
	}

	router.Use(
		requestID,
		requestLogger(s.logger),
		middleware.Recoverer,
	)

	router.Get("/", s.health)
	router.Get("/health", s.health)
	router.Post("/evaluate-resumes/", s.evaluateResumes)
	router.Post("/evaluate-resumes", s.evaluateResumes)

	if s.cfg.Registry != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{}))
	}

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Listen, err)
	}

	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("shutdown signal received", zap.Error(ctx.Err()))
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
	}()

	s.logger.Info("listening", zap.String("address", listener.Addr().String()))
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
