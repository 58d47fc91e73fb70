// Package metrics holds the Prometheus collectors for the HTTP layer and
// summary generation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Summary outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Metrics groups the collectors registered by New.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	summaries *prometheus.CounterVec
}

// New registers every collector on a fresh registry. count, when not
// nil, backs the students_stored gauge.
func New(count func() float64) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "students_api",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "students_api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "students_api",
			Name:      "summaries_total",
			Help:      "Summary generation attempts by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.requests, m.latency, m.summaries)
	if count != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "students_api",
			Name:      "students_stored",
			Help:      "Number of student records currently stored.",
		}, count))
	}

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveSummary counts one summary attempt.
func (m *Metrics) ObserveSummary(outcome string) {
	m.summaries.WithLabelValues(outcome).Inc()
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument wraps next so each request is counted under route.
// route is the mux pattern, not the raw path, to keep label cardinality
// bounded.
func (m *Metrics) Instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
	}
}
