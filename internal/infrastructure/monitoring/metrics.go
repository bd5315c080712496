// Package monitoring provides Prometheus metrics and OpenTelemetry tracing
// for the client core
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes
const (
	OutcomeSuccess    = "success"
	OutcomeError      = "error"
	OutcomeValidation = "validation"
	OutcomeStale      = "stale"
)

// Metrics holds the Prometheus collectors of the client core
type Metrics struct {
	registry *prometheus.Registry

	// Search metrics
	searchesTotal   *prometheus.CounterVec
	searchDuration  prometheus.Histogram
	recipesReturned prometheus.Histogram

	// HTTP client metrics
	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec

	// Store metrics
	selectionSize prometheus.Gauge
	stepFallbacks prometheus.Counter
}

// NewMetrics creates the collectors on a dedicated registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		searchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_searches_total",
				Help: "Total number of recipe searches by outcome",
			},
			[]string{"outcome"},
		),
		searchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pantry_search_duration_seconds",
				Help:    "Recipe search duration in seconds",
				Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 60},
			},
		),
		recipesReturned: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pantry_search_recipes_returned",
				Help:    "Number of recipes returned per successful search",
				Buckets: prometheus.LinearBuckets(0, 1, 8),
			},
		),
		apiRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		apiRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pantry_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		selectionSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pantry_selected_ingredients",
				Help: "Number of currently selected ingredients",
			},
		),
		stepFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pantry_step_decode_fallbacks_total",
				Help: "Recipe steps kept as raw text because they could not be decoded",
			},
		),
	}
}

// RecordSearch records a finished search
func (m *Metrics) RecordSearch(outcome string, duration time.Duration, recipes int) {
	if m == nil {
		return
	}
	m.searchesTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess || outcome == OutcomeError {
		m.searchDuration.Observe(duration.Seconds())
	}
	if outcome == OutcomeSuccess {
		m.recipesReturned.Observe(float64(recipes))
	}
}

// RecordAPIRequest records an outbound API call. status 0 means the call
// never got a response.
func (m *Metrics) RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.apiRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.apiRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// SetSelectionSize records the size of the ingredient selection
func (m *Metrics) SetSelectionSize(n int) {
	if m == nil {
		return
	}
	m.selectionSize.Set(float64(n))
}

// RecordStepFallbacks counts steps kept as raw text
func (m *Metrics) RecordStepFallbacks(n int) {
	if m == nil || n == 0 {
		return
	}
	m.stepFallbacks.Add(float64(n))
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
