// Package metrics defines the Prometheus instrumentation wrapped around the
// orchestrator's pipeline stages (spec C14).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/histogram the orchestrator and HTTP layer
// update. Constructed once at startup and passed down explicitly, never
// accessed through a package-level singleton.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	ViewConeErrors  prometheus.Counter
	FinderErrors    prometheus.Counter
	RequestDuration *prometheus.HistogramVec
	DayRetainedFrac prometheus.Histogram
}

// New registers and returns a fresh Metrics set against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "visibility_requests_total",
			Help: "Total visibility/opportunity search requests by endpoint and outcome status.",
		}, []string{"endpoint", "status"}),

		ViewConeErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "visibility_viewcone_errors_total",
			Help: "Viewing-cone reducer failures recovered by treating the day as fully possibly-visible.",
		}),

		FinderErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "visibility_finder_errors_total",
			Help: "Fatal adaptive Hermite finder consistency errors.",
		}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "visibility_request_duration_seconds",
			Help:    "End-to-end request handling time by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		DayRetainedFrac: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "visibility_day_windows_reduced",
			Help:    "Fraction of a day's POI retained after the viewing-cone reducer.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
}
