// Package metrics holds the Prometheus collectors shared by the API and web
// binaries. Collectors are registered on the Registerer passed to New so
// tests can use an isolated registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	// HTTPRequests counts requests by method, route and status.
	HTTPRequests *prometheus.CounterVec
	// HTTPDuration tracks request latency by method and route.
	HTTPDuration *prometheus.HistogramVec
	// ReportEvents counts report mutations (create, update, delete) by result.
	ReportEvents *prometheus.CounterVec
	// ImageOps counts image store calls (put, delete) by result.
	ImageOps *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "foodreport_http_requests_total",
			Help: "Total HTTP requests handled.",
		}, []string{"service", "method", "path", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "foodreport_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),
		ReportEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "foodreport_report_events_total",
			Help: "Report lifecycle events.",
		}, []string{"event", "result"}),
		ImageOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "foodreport_image_store_ops_total",
			Help: "Image store operations.",
		}, []string{"op", "result"}),
		gatherer: reg,
	}
}

// NewDefault registers the collectors on a fresh registry that also carries
// the Go runtime and process collectors.
func NewDefault() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(reg)
}

// Handler serves the registry at GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ReportEvent is safe on a nil *Metrics.
func (m *Metrics) ReportEvent(event string, err error) {
	if m == nil {
		return
	}
	m.ReportEvents.WithLabelValues(event, result(err)).Inc()
}

// ImageOp is safe on a nil *Metrics.
func (m *Metrics) ImageOp(op string, err error) {
	if m == nil {
		return
	}
	m.ImageOps.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
