// Package metrics holds the Prometheus collectors shared by the completer, loader and server.
//
// Every Metrics value owns a private registry so tests and multiple completers never collide
// on the default registerer. All methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wordrank"

// Query outcomes used as the "outcome" label.
const (
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeInvalid = "invalid"
)

// Loader line results used as the "result" label.
const (
	LineAccepted = "accepted"
	LineSkipped  = "skipped"
)

// Metrics groups the collectors registered on one registry.
type Metrics struct {
	registry      *prometheus.Registry
	queries       *prometheus.CounterVec
	queryDuration prometheus.Histogram
	queryResults  prometheus.Histogram
	indexWords    prometheus.Gauge
	loaderLines   *prometheus.CounterVec
	requests      *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Prefix queries by outcome.",
		}, []string{"outcome"}),
		queryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Time spent answering a prefix query.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}),
		queryResults: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_results",
			Help:      "Number of entries returned per query.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		indexWords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_words",
			Help:      "Distinct words currently held by the index.",
		}),
		loaderLines: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loader_lines_total",
			Help:      "Vocabulary lines read by the loader.",
		}, []string{"result"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ipc_requests_total",
			Help:      "IPC requests by action and response code.",
		}, []string{"action", "code"}),
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveQuery records one answered query.
func (m *Metrics) ObserveQuery(outcome string, elapsed time.Duration, results int) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(outcome).Inc()
	if outcome == OutcomeInvalid {
		return
	}
	m.queryDuration.Observe(elapsed.Seconds())
	m.queryResults.Observe(float64(results))
}

// SetIndexWords updates the index size gauge.
func (m *Metrics) SetIndexWords(n int) {
	if m == nil {
		return
	}
	m.indexWords.Set(float64(n))
}

// AddLoaderLines counts loader lines for the given result label.
func (m *Metrics) AddLoaderLines(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.loaderLines.WithLabelValues(result).Add(float64(n))
}

// ObserveRequest counts one IPC request.
func (m *Metrics) ObserveRequest(action string, code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(action, codeLabel(code)).Inc()
}

func codeLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}
