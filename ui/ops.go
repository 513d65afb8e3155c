package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"statdash/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// NewOpsRouter serves /healthz, /metrics and /debug/pprof on a separate listener
func NewOpsRouter(m *metrics.Metrics, checks map[string]HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result["status"] = "degraded"
				result[name] = err.Error()
			} else {
				result[name] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(result)
	})
	r.Handle("/metrics", m.Handler())
	r.Mount("/debug", middleware.Profiler())

	return r
}
