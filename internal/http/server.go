// Package http exposes the latest forecast of the worker as a small
// read-only JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"scadenze/internal/middleware/ratelimit"
	"scadenze/internal/middleware/trace"
	"scadenze/internal/services"
)

// ForecastSource is what the API reads from. *worker.ForecastWorker implements it.
type ForecastSource interface {
	Last() (services.Result, bool)
	Trigger()
}

type Server struct {
	http.Server
	source      ForecastSource
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, source ForecastSource) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		source:      source,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:      trace.NewMiddleware(ratelimit.ClientIP),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/v1/upcoming", s.handleUpcoming)
	mux.HandleFunc("POST /api/v1/refresh", s.handleRefresh)

	s.Handler = s.tracer.Middleware(s.rateLimiter.Middleware(ratelimit.ClientIP)(mux))
	return s
}

// Shutdown gracefully shuts down the server and the rate limiter
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
