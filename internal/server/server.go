// Package server exposes analyses over HTTP.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-structure/internal/config"
	"github.com/rxtech-lab/argo-structure/internal/logger"
	"github.com/rxtech-lab/argo-structure/internal/metrics"
	"github.com/rxtech-lab/argo-structure/internal/service"
)

// Server serves the structure API.
type Server struct {
	analyzer  *service.Analyzer
	watchlist []config.Index
	metrics   *metrics.Metrics
	log       *logger.Logger

	router     *mux.Router
	httpServer *http.Server
	listener   net.Listener
}

// New builds the server and its routes. metrics may be nil, in which case
// /metrics is not mounted.
func New(addr string, analyzer *service.Analyzer, watchlist []config.Index, m *metrics.Metrics, log *logger.Logger) *Server {
	s := &Server{
		analyzer:  analyzer,
		watchlist: watchlist,
		metrics:   m,
		log:       log.Named("server"),
		router:    mux.NewRouter(),
	}

	s.routes()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/indices", s.handleIndices).Methods(http.MethodGet)
	api.HandleFunc("/indices/{ticker}/structure", s.handleStructure).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}

	s.listener = listener
	s.log.Info("http server listening", zap.String("addr", listener.Addr().String()))

	if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Addr returns the bound address once Start has been called.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.httpServer.Addr
	}

	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(started)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
