// Package metrics defines the Prometheus collectors for upstream calls and
// search outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream service labels.
const (
	ServiceGeocode  = "geocode"
	ServicePlaces   = "places"
	ServicePrice    = "price"
	ServiceImage    = "image"
	ServicePriceHit = "price_cache"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing,
// so packages can be used without a registry.
type Metrics struct {
	UpstreamCalls  *prometheus.CounterVec
	Searches       *prometheus.CounterVec
	SearchDuration prometheus.Histogram
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UpstreamCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "price_scout_upstream_calls_total",
				Help: "Upstream calls by service and outcome.",
			},
			[]string{"service", "outcome"},
		),
		Searches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "price_scout_searches_total",
				Help: "Searches by terminal state.",
			},
			[]string{"state"},
		),
		SearchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "price_scout_search_duration_seconds",
				Help:    "Wall time of a search from validation to terminal state.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
		),
	}
}

// Upstream counts one call to service with the given outcome.
func (m *Metrics) Upstream(service, outcome string) {
	if m == nil {
		return
	}
	m.UpstreamCalls.WithLabelValues(service, outcome).Inc()
}

// Search records a finished search.
func (m *Metrics) Search(state string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(state).Inc()
	m.SearchDuration.Observe(elapsed.Seconds())
}
