// Package api serves the resolved going report over HTTP.
//
// Routes:
//
//	GET /api/going  going report envelope (CORS open, edge-cacheable)
//	GET /healthz    liveness probe
//	GET /metrics    Prometheus exposition
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/pfrederiksen/cheltenham-going/internal/cache"
	"github.com/pfrederiksen/cheltenham-going/internal/logger"
	"github.com/pfrederiksen/cheltenham-going/internal/metrics"
	"github.com/pfrederiksen/cheltenham-going/internal/resolver"
)

// ShutdownTimeout bounds the graceful drain on shutdown
const ShutdownTimeout = 10 * time.Second

// Resolver produces a going result per call
type Resolver interface {
	Resolve(ctx context.Context) *resolver.Result
}

// Server is the HTTP surface of the going service
type Server struct {
	resolver Resolver
	cache    *cache.Cache
	now      func() time.Time

	freshTTL time.Duration
	staleTTL time.Duration
	cached   bool

	handler    http.Handler
	httpServer *http.Server
}

// Option configures a Server
type Option func(*Server)

// WithCache serves results from an in-process stale-while-revalidate cache
func WithCache(freshTTL, staleTTL time.Duration) Option {
	return func(s *Server) {
		s.cached = true
		s.freshTTL = freshTTL
		s.staleTTL = staleTTL
	}
}

// WithClock overrides the clock used for response timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a server listening on addr
func New(addr string, res Resolver, opts ...Option) *Server {
	s := &Server{
		resolver: res,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cached {
		s.cache = cache.New(s.resolve, s.freshTTL, s.staleTTL)
	}

	s.handler = s.routes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		// Leaves room for three sequential source fetches
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler, including CORS and middleware
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()
	router.Use(requestID, instrument, s.recoverPanics)

	router.HandleFunc("/api/going", s.handleGoing).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	})
	return c.Handler(router)
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", logger.Fields{"addr": s.httpServer.Addr})
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	logger.Info("HTTP server shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// lookup returns the current result, through the cache when enabled
func (s *Server) lookup(ctx context.Context) (*resolver.Result, error) {
	if s.cache == nil {
		return s.resolve(ctx)
	}

	result, status, err := s.cache.Get(ctx)
	logger.Debug("Going cache lookup", logger.Fields{
		"result":     status,
		"request_id": RequestID(ctx),
	})
	return result, err
}

// resolve runs one resolution, converting a panic into an error so that it
// can cross the cache's background revalidation safely
func (s *Server) resolve(ctx context.Context) (result *resolver.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("resolver panicked: %v", p)
		}
	}()

	result = s.resolver.Resolve(ctx)
	if result == nil {
		return nil, errors.New("resolver returned no result")
	}
	if result.Err != nil {
		return nil, result.Err
	}
	return result, nil
}
