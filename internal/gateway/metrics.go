package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks gateway traffic for the /metrics endpoint.
type Metrics struct {
	registry        *prometheus.Registry
	proxiedRequests *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
	rejectedBodies  prometheus.Counter
	upstreamErrors  *prometheus.CounterVec
}

// NewMetrics creates the gateway metric set on its own registry so tests can
// build isolated instances.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		proxiedRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wavegate",
			Name:      "proxied_requests_total",
			Help:      "Requests forwarded to the transcription upstream, by method and status code.",
		}, []string{"method", "code"}),
		upstreamLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wavegate",
			Name:      "upstream_latency_seconds",
			Help:      "Latency of upstream responses.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		rejectedBodies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wavegate",
			Name:      "rejected_oversized_bodies_total",
			Help:      "Requests rejected for exceeding the upload body limit.",
		}),
		upstreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wavegate",
			Name:      "upstream_errors_total",
			Help:      "Failed forwards to the upstream, by error kind.",
		}, []string{"kind"}),
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveProxied records a completed forward.
func (m *Metrics) ObserveProxied(method, code string, seconds float64) {
	m.proxiedRequests.WithLabelValues(method, code).Inc()
	m.upstreamLatency.Observe(seconds)
}

// ObserveRejectedBody records an upload refused for size.
func (m *Metrics) ObserveRejectedBody() {
	m.rejectedBodies.Inc()
}

// ObserveUpstreamError records a forward that never produced a response.
func (m *Metrics) ObserveUpstreamError(kind string) {
	m.upstreamErrors.WithLabelValues(kind).Inc()
}
