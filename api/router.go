// Package api exposes the HTTP surface (spec C10) over the orchestrator:
// POST /visibility/search, POST /opportunity/search, GET /satellites, and
// GET /search/{id}, plus /metrics for Prometheus scraping.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/kaosnet/visibility/metrics"
	"github.com/kaosnet/visibility/orchestrator"
)

// NewRouter builds the chi router wiring orch's pipeline behind the narrow
// middleware stack the teacher pack uses: request id, real ip, structured
// logging, panic recovery, a request timeout, and a permissive-but-explicit
// CORS policy.
func NewRouter(orch *orchestrator.Orchestrator, log *logrus.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	h := &handlers{orch: orch, log: log, metrics: m}

	r.Post("/visibility/search", h.searchVisibility)
	r.Post("/opportunity/search", h.searchOpportunity)
	r.Get("/satellites", h.listSatellites)
	r.Get("/search/{id}", h.getSearch)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "unknown route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(logrus.Fields{
				"request_id": chimiddleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"duration":   time.Since(start).String(),
			}).Info("request handled")
		})
	}
}
