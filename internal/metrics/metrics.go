// Package metrics exposes the catalogue's Prometheus collectors.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds collectors on an isolated registry, so tests can build
// as many instances as they like.
type Metrics struct {
	Registry *prometheus.Registry

	CommitsTotal         *prometheus.CounterVec
	ProxyRequestsTotal   *prometheus.CounterVec
	ProxyDurationSeconds *prometheus.HistogramVec
	QueriesTotal         *prometheus.CounterVec
	Entries              *prometheus.GaugeVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,
		CommitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalogue_commits_total",
				Help: "Entry commits attempted against the content repository.",
			},
			[]string{"type", "result"},
		),
		ProxyRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalogue_proxy_requests_total",
				Help: "Upstream lookups made on behalf of the add form.",
			},
			[]string{"source", "result"},
		),
		ProxyDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalogue_proxy_duration_seconds",
				Help:    "Latency of upstream lookups.",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 9), // 50ms to ~13s
			},
			[]string{"source"},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalogue_queries_total",
				Help: "Catalogue listing requests by kind and response format.",
			},
			[]string{"kind", "format"},
		),
		Entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalogue_entries",
				Help: "Entries loaded at startup, by type.",
			},
			[]string{"type"},
		),
	}

	reg.MustRegister(
		m.CommitsTotal,
		m.ProxyRequestsTotal,
		m.ProxyDurationSeconds,
		m.QueriesTotal,
		m.Entries,
	)
	return m
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, http.ErrHandlerTimeout), isTimeout(err):
		return "timeout"
	default:
		return "error"
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// ObserveProxy matches the proxy observer signature.
func (m *Metrics) ObserveProxy(source string, took time.Duration, err error) {
	m.ProxyRequestsTotal.WithLabelValues(source, result(err)).Inc()
	m.ProxyDurationSeconds.WithLabelValues(source).Observe(took.Seconds())
}

func (m *Metrics) ObserveCommit(entryType string, err error) {
	m.CommitsTotal.WithLabelValues(entryType, result(err)).Inc()
}

func (m *Metrics) ObserveQuery(kind, format string) {
	m.QueriesTotal.WithLabelValues(kind, format).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
