// Package metrics provides Prometheus metrics for the textlab API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine operation labels.
const (
	OpParse         = "parse"
	OpCitation      = "citation"
	OpReferenceList = "reference_list"
	OpValidate      = "validate"
)

// Metrics holds the collectors of one server instance on its own registry,
// so several instances can coexist in tests.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	EngineOpsTotal   *prometheus.CounterVec
	FindingsTotal    *prometheus.CounterVec
	ReferencesParsed prometheus.Counter
}

// New creates and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textlab_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "textlab_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "textlab_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		EngineOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textlab_engine_operations_total",
				Help: "Total number of citation engine operations",
			},
			[]string{"operation"},
		),
		FindingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textlab_validation_findings_total",
				Help: "Total number of coherence findings reported",
			},
			[]string{"kind"},
		),
		ReferencesParsed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "textlab_references_parsed_total",
				Help: "Total number of raw references parsed",
			},
		),
	}
}

// RecordHTTPRequest records a finished HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordEngineOp counts one engine operation.
func (m *Metrics) RecordEngineOp(op string) {
	m.EngineOpsTotal.WithLabelValues(op).Inc()
	if op == OpParse {
		m.ReferencesParsed.Inc()
	}
}

// RecordFindings adds the per-kind counts of a validation run.
func (m *Metrics) RecordFindings(missingReferences, unusedReferences, imperfectMatches int) {
	m.FindingsTotal.WithLabelValues("citation_without_reference").Add(float64(missingReferences))
	m.FindingsTotal.WithLabelValues("reference_without_citation").Add(float64(unusedReferences))
	m.FindingsTotal.WithLabelValues("imperfect_match").Add(float64(imperfectMatches))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
