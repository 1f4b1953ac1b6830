// Package server exposes the insight facade over HTTP.
//
// Routes:
//
//	PUT    /dataset/{id}/{kind}  add a dataset from a JSON record array
//	DELETE /dataset/{id}         remove a dataset
//	GET    /datasets             list datasets
//	POST   /query                evaluate a query
//	GET    /echo/{msg}           liveness check
//	GET    /metrics              Prometheus metrics
//
// Successful responses are {"result": ...}; failures are {"error": "..."}.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/insight/internal/insight"
	"github.com/roach88/insight/internal/metrics"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 64 << 20

// Config holds configuration for the server.
type Config struct {
	Facade       *insight.Facade
	Addr         string
	Logger       *slog.Logger
	MaxBodyBytes int64
}

// Server is the insight HTTP server.
type Server struct {
	facade       *insight.Facade
	addr         string
	logger       *slog.Logger
	maxBodyBytes int64
}

// New creates a server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Server{
		facade:       cfg.Facade,
		addr:         cfg.Addr,
		logger:       logger,
		maxBodyBytes: maxBody,
	}
}

// Handler returns the router with every route registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Recoverer,
		instrument,
	)

	r.Put("/dataset/{id}/{kind}", s.handleAddDataset)
	r.Delete("/dataset/{id}", s.handleRemoveDataset)
	r.Get("/datasets", s.handleListDatasets)
	r.Post("/query", s.handleQuery)
	r.Get("/echo/{msg}", s.handleEcho)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Serve starts the server and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", "addr", ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// instrument records request counts and latency per route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RequestTotal.WithLabelValues(r.Method, route, fmt.Sprint(status)).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
