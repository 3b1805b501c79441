// Package server exposes the recovered organization structure over a
// small JSON HTTP API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-michi/michi"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/time/rate"

	"github.com/orgvault/orgvault/server/middleware"
)

const (
	maxHeaderBytes    = 1 << 20
	readTimeout       = 30 * time.Second
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 30 * time.Second
	defaultRateLimit  = time.Second / 5
	defaultRateBurst  = 20
)

// Server wraps an http.Server with the router and middleware chain.
// h2c lets HTTP/2 clients connect without TLS on local deployments.
type Server struct {
	Router *michi.Router
	Server *http.Server

	middleware []func(http.Handler) http.Handler
	limiter    *middleware.RateLimiter
	logger     *slog.Logger
}

// NewServer builds a Server with the default middleware stack:
// recovery, request logging, CORS and per-client rate limiting.
func NewServer(logger *slog.Logger) *Server {
	router := michi.NewRouter()
	s := &Server{
		Router: router,
		Server: &http.Server{
			Handler:           h2c.NewHandler(router, &http2.Server{}),
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
			MaxHeaderBytes:    maxHeaderBytes,
		},
		logger: logger,
	}
	limiter := middleware.NewRateLimiter(logger, middleware.IPAddressKeyFunc,
		rate.Every(defaultRateLimit), defaultRateBurst)
	s.limiter = limiter
	s.Use(
		middleware.Recovery(logger),
		middleware.WithLogger(logger),
		middleware.WithCORS(),
		limiter.Limit,
	)
	return s
}

// Use appends middleware and rebuilds the handler chain. The first
// middleware added is the outermost.
func (s *Server) Use(mw ...func(http.Handler) http.Handler) {
	s.middleware = append(s.middleware, mw...)
	var handler http.Handler = h2c.NewHandler(s.Router, &http2.Server{})
	for i := len(s.middleware) - 1; i >= 0; i-- {
		handler = s.middleware[i](handler)
	}
	s.Server.Handler = handler
}

// ServeHTTP implements http.Handler, mainly for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Server.Handler.ServeHTTP(w, r)
}

// ListenAndServe starts serving on addr and blocks until the server
// stops.
func (s *Server) ListenAndServe(addr string) error {
	s.Server.Addr = addr
	s.logger.Info("listening", "addr", addr)
	return s.Server.ListenAndServe()
}

// Shutdown gracefully stops the server and its rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Debug("shutting down server")
	s.limiter.Close()
	return s.Server.Shutdown(ctx)
}
