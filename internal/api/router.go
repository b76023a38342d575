package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each component probe.
const healthCheckTimeout = 3 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	if s.metrics != nil && s.metricsCfg.Enabled {
		r.Handle(s.metricsPath(), s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.Route("/edges", func(r chi.Router) {
			r.Get("/", s.handleListEdges)

			r.Route("/{edge}", func(r chi.Router) {
				r.Get("/", s.handleGetEdge)
				r.Put("/timezone", s.handleSetTimezone)
				r.Get("/availability", s.handleAvailability)

				r.Get("/history", s.handleHistory)
				r.Get("/energy", s.handleEnergyTotal)
				r.Get("/energy/periods", s.handleEnergyPerPeriod)
				r.Get("/baseline", s.handleBaseline)
			})
		})
	})

	return r
}

func (s *Server) metricsPath() string {
	if s.metricsCfg.Path == "" {
		return "/metrics"
	}
	return s.metricsCfg.Path
}

// handleHealth probes every registered component. Any failure turns the
// response into 503 "degraded" so orchestrators stop routing queries.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]string, len(s.checks))
	status, code := "ok", http.StatusOK

	for _, c := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := c.Check(ctx)
		cancel()

		if err != nil {
			components[c.Name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		components[c.Name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	})
}
