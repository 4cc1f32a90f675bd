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

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	transitionsTotal    *prometheus.CounterVec
	documentsStored     prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claims_http_requests_total",
				Help: "HTTP requests served, by route template and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "claims_http_request_duration_seconds",
				Help:    "HTTP request latency by route template.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		transitionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claims_transitions_total",
				Help: "Workflow transitions attempted, by action and result.",
			},
			[]string{"action", "result"},
		),
		documentsStored: f.NewCounter(prometheus.CounterOpts{
			Name: "claims_documents_stored_total",
			Help: "Documents attached to claims.",
		}),
	}
}

func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordTransition counts one workflow action. result is "ok" or an error code.
func (m *Metrics) RecordTransition(action, result string) {
	m.transitionsTotal.WithLabelValues(action, result).Inc()
}

func (m *Metrics) RecordDocuments(n int) {
	m.documentsStored.Add(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
