package observe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds graceful HTTP shutdown once the run context is
// cancelled.
const shutdownTimeout = 5 * time.Second

// Server is the observability HTTP listener. It serves the Prometheus
// /metrics endpoint plus any routes registered at construction time, with
// every request passing through [Middleware].
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer builds the listener for addr. The register callbacks can add
// further routes to the mux, typically the health endpoints.
func NewServer(addr string, m *Metrics, register ...func(*http.ServeMux)) *Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	for _, reg := range register {
		reg(mux)
	}

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:         addr,
			Handler:      Middleware(m)(mux),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handler returns the root handler, including middleware. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is cancelled, then shuts the listener down gracefully.
// Returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("metrics listener started", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("observe: serve %q: %w", s.addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(shutCtx)
	})

	return g.Wait()
}
