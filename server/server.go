// Package server exposes the generation pipeline over HTTP: itinerary
// creation as a server-sent event stream, follow-up routing, the
// version history, and operational endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/tripweave/tripweave/config"
	"github.com/tripweave/tripweave/feedback"
	"github.com/tripweave/tripweave/pipeline"
	"github.com/tripweave/tripweave/session"
)

// Server holds the HTTP surface and the live session table.
type Server struct {
	cfg        config.ServerConfig
	pipe       *pipeline.Pipeline
	classifier *feedback.Classifier
	generator  session.TextGenerator
	registry   *prometheus.Registry
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session.Session

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithPrometheusRegistry sets the registry served at /metrics.
func WithPrometheusRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// New builds a Server around the pipeline and its follow-up router.
func New(cfg config.ServerConfig, pipe *pipeline.Pipeline, classifier *feedback.Classifier, generator session.TextGenerator, opts ...Option) *Server {
	s := &Server{
		cfg:        cfg,
		pipe:       pipe,
		classifier: classifier,
		generator:  generator,
		registry:   prometheus.NewRegistry(),
		logger:     slog.Default(),
		sessions:   make(map[string]*session.Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the full middleware stack: CORS, logging, rate-limited
// routes.
func (s *Server) Handler() http.Handler {
	limiter := newRateLimiter(s.cfg.RequestsPerMinute)

	router := httprouter.New()
	router.GET("/health", s.handleHealth)
	router.Handler(http.MethodGet, "/metrics",
		promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	router.POST("/api/trips", limiter.middleware(s.handleCreateTrip))
	router.GET("/api/sessions/:id", s.handleGetSession)
	router.GET("/api/sessions/:id/document", s.handleDocument)
	router.POST("/api/sessions/:id/followup", limiter.middleware(s.handleFollowUp))
	router.POST("/api/sessions/:id/days/:day/edit", limiter.middleware(s.handleEditDay))
	router.GET("/api/sessions/:id/versions", s.handleVersions)
	router.GET("/api/sessions/:id/versions/:older/diff/:newer", s.handleDiff)
	router.POST("/api/sessions/:id/versions/:version/restore", s.handleRestore)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)

	return s.loggingMiddleware(corsHandler)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start))
	})
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "addr", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// lookupSession returns the session for id, or nil.
func (s *Server) lookupSession(id string) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *Server) addSession(sess *session.Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
}
