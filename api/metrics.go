package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters. Each Metrics registers into its own
// registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	entriesUpserted *prometheus.CounterVec
	requestsCreated *prometheus.CounterVec
	decisions       *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		entriesUpserted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "timesheet_entries_upserted_total",
			Help: "Time entries written, by source",
		}, []string{"source"}),
		requestsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "timesheet_timeoff_requests_created_total",
			Help: "Time-off requests created, by category",
		}, []string{"category"}),
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "timesheet_timeoff_decisions_total",
			Help: "Approve/reject attempts, by outcome",
		}, []string{"decision", "result"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "timesheet_http_request_duration_seconds",
			Help:    "HTTP request latency, by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument records request latency labelled with the matched chi route.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
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
		m.requestDuration.
			WithLabelValues(r.Method, route, http.StatusText(status)).
			Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) entryUpserted(source string) {
	m.entriesUpserted.WithLabelValues(source).Inc()
}

func (m *Metrics) requestCreated(category string) {
	m.requestsCreated.WithLabelValues(category).Inc()
}

func (m *Metrics) decided(decision, result string) {
	m.decisions.WithLabelValues(decision, result).Inc()
}
