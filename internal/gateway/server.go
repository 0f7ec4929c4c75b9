// Package gateway exposes the agent over HTTP. Each request gets a fresh
// agent, so conversation state never leaks between callers.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"folio/internal/agent"
)

// Asker is the slice of the agent the gateway needs.
type Asker interface {
	Ask(ctx context.Context, query string) (*agent.Result, error)
}

// AgentFactory builds a per-request agent. maxIterations below 1 means
// "use the configured default".
type AgentFactory func(maxIterations int) Asker

type Server struct {
	newAgent AgentFactory
	router   chi.Router
}

func NewServer(newAgent AgentFactory, authToken string) *Server {
	s := &Server{
		newAgent: newAgent,
		router:   chi.NewRouter(),
	}

	s.router.Use(middleware.Recoverer)
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Group(func(r chi.Router) {
		if authToken != "" {
			r.Use(InternalAuth(authToken))
		}
		r.Post("/portfolio/ask", s.handleAsk)
	})

	return s
}

// Handler returns the root handler, wrapped for tracing.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "gateway")
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("gateway listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("gateway shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("gateway server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
