package http

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors exposed by the server.
type Metrics struct {
	registry *prometheus.Registry

	Queries  *prometheus.CounterVec
	Requests *prometheus.HistogramVec
	Reloads  *prometheus.CounterVec
}

// NewMetrics creates the server's collectors on a private registry, keeping
// tests and embedded servers isolated from the global one.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_queries_total",
				Help: "Total number of routing queries answered",
			},
			[]string{"query"},
		),
		Requests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "espalier_request_duration_seconds",
				Help: "Duration of HTTP requests",
			},
			[]string{"route"},
		),
		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_reloads_total",
				Help: "Total number of workflow reloads",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(m.Queries, m.Requests, m.Reloads)
	return m
}

// Observer returns a callback that feeds the query counter. Pass it to
// engines via espalier.WithQueryObserver.
func (m *Metrics) Observer() func(query string) {
	return func(query string) {
		m.Queries.WithLabelValues(query).Inc()
	}
}

// Gatherer exposes the underlying registry for serving /metrics.
func (m *Metrics) Gatherer() *prometheus.Registry {
	return m.registry
}
