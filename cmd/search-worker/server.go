// cmd/search-worker/server.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sustainatrend-search/internal/common/camunda"
	"sustainatrend-search/internal/common/database"
	"sustainatrend-search/internal/common/logger"
)

const readyTimeout = 3 * time.Second

type probeServer struct {
	deps   []database.Pinger
	logger logger.Logger
	now    func() time.Time
}

func newProbeServer(log logger.Logger, deps ...database.Pinger) *probeServer {
	return &probeServer{deps: deps, logger: log, now: time.Now}
}

// routes serves the liveness, readiness and Prometheus endpoints.
func (s *probeServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *probeServer) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

func (s *probeServer) ready(w http.ResponseWriter, r *http.Request) {
	failures := database.CheckAll(r.Context(), readyTimeout, s.deps...)
	if len(failures) == 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ready",
			"time":   s.now().UTC().Format(time.RFC3339),
		})
		return
	}

	reasons := make(map[string]string, len(failures))
	for name, err := range failures {
		reasons[name] = err.Error()
	}
	s.logger.Warn("readiness check failed", map[string]interface{}{
		"requestId": chiMiddleware.GetReqID(r.Context()),
		"failures":  reasons,
	})
	writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
		"status":   "not ready",
		"failures": reasons,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// zeebePinger lets the readiness probe ask the broker for its topology.
type zeebePinger struct {
	client *camunda.Client
}

func (p zeebePinger) Name() string { return "zeebe" }

func (p zeebePinger) Ping(ctx context.Context) error {
	return p.client.HealthCheck(ctx)
}
