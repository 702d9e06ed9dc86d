package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"usdt-perp-symbols/internal/infrastructure/logging"
	"usdt-perp-symbols/internal/infrastructure/metrics"
	"usdt-perp-symbols/internal/infrastructure/web/handlers"
	"usdt-perp-symbols/internal/infrastructure/web/middleware"
)

// Server encapsulates HTTP server configuration
type Server struct {
	httpServer *http.Server
	port       int
}

// NewRouter wires the symbols API routes. Extra middlewares run after
// tracing and metrics.
func NewRouter(symbolsHandler *handlers.SymbolsHandler, healthHandler *handlers.HealthHandler, extra ...mux.MiddlewareFunc) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestTracingMiddleware)
	router.Use(metrics.HTTPMetricsMiddleware)
	router.Use(extra...)

	router.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/symbols", symbolsHandler.GetSymbols).Methods(http.MethodGet)

	return router
}

// NewServer creates a new server instance
func NewServer(handler http.Handler, port int) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		port: port,
	}
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	logging.GetLogger().WithFields(logrus.Fields{
		"port": s.port,
		"endpoints": []string{
			fmt.Sprintf("GET http://localhost:%d/health", s.port),
			fmt.Sprintf("GET http://localhost:%d/api/v1/symbols", s.port),
			fmt.Sprintf("GET http://localhost:%d/metrics", s.port),
		},
	}).Info("HTTP server starting")

	return s.httpServer.ListenAndServe()
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop(ctx context.Context) error {
	logging.WithContext(ctx).WithField("port", s.port).Info("Stopping HTTP server gracefully")

	return s.httpServer.Shutdown(ctx)
}

// GetPort returns the configured port
func (s *Server) GetPort() int {
	return s.port
}
