// Package server exposes the query pipeline over HTTP for the university
// assistant frontends.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ptit-ai/unirag/internal/types"
)

// Answerer runs one query through the routing pipeline.
type Answerer interface {
	Answer(ctx context.Context, query types.Query) (*types.QueryResult, error)
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// ConfigFromTypes builds a ServerConfig from the service configuration.
func ConfigFromTypes(cfg *types.Config) *ServerConfig {
	return &ServerConfig{
		Host:            cfg.ServerHost,
		Port:            cfg.ServerPort,
		ReadTimeout:     cfg.ServerReadTimeout,
		WriteTimeout:    cfg.ServerWriteTimeout,
		IdleTimeout:     cfg.ServerIdleTimeout,
		ShutdownTimeout: cfg.ServerShutdownTimeout,
	}
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:            "localhost",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    120 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server serves the query API.
type Server struct {
	config       *ServerConfig
	answerer     Answerer
	httpServer   *http.Server
	logger       *log.Logger
	shutdownOnce sync.Once
}

// NewServer creates a query API server.
func NewServer(serverConfig *ServerConfig, answerer Answerer, logger *log.Logger) (*Server, error) {
	if serverConfig == nil {
		serverConfig = DefaultServerConfig()
	}
	if answerer == nil {
		return nil, fmt.Errorf("answerer is required")
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[server] ", log.LstdFlags)
	}

	return &Server{
		config:   serverConfig,
		answerer: answerer,
		logger:   logger,
	}, nil
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.loggingMiddleware(mux),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting query API server at http://%s:%d", s.config.Host, s.config.Port)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		return s.shutdown()
	case err := <-errChan:
		return err
	}
}

// shutdown performs graceful shutdown
func (s *Server) shutdown() error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}
	})
	return shutdownErr
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/query", s.handleQuery)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/stats", s.handleStats)

	return mux
}

// loggingMiddleware tags each request with an ID and logs method, path,
// status, and latency.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		s.logger.Printf("%s %s %d %v request_id=%s",
			r.Method, r.URL.Path, recorder.status, time.Since(start), requestID)
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
