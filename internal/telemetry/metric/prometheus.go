package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hashguard"

// Registry holds all application metrics on a private prometheus.Registry.
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     *prometheus.CounterVec
	RehashRequests  *prometheus.CounterVec
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// NewRegistry creates a registry with runtime and process collectors plus
// the request metrics.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests handled, by transport, operation and status.",
		}, []string{"transport", "op", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request latency, by transport and operation.",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"transport", "op"}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter, by transport.",
		}, []string{"transport"}),
		RehashRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rehash_requests_total",
			Help:      "Operator rehash requests, by result.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RequestsTotal,
		r.RequestDuration,
		r.RateLimited,
		r.RehashRequests,
	)
	return r
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Gatherer returns the underlying gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordRequest counts one request.
func (r *Registry) RecordRequest(transport, op, status string) {
	r.RequestsTotal.WithLabelValues(transport, op, status).Inc()
}

// ObserveRequestDuration records the latency of one request in seconds.
func (r *Registry) ObserveRequestDuration(transport, op string, seconds float64) {
	r.RequestDuration.WithLabelValues(transport, op).Observe(seconds)
}

// IncRateLimited counts one rejected request.
func (r *Registry) IncRateLimited(transport string) {
	r.RateLimited.WithLabelValues(transport).Inc()
}

// RecordRehash counts one rehash request.
func (r *Registry) RecordRehash(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.RehashRequests.WithLabelValues(result).Inc()
}

// Handler returns the /metrics handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Handler returns the /metrics handler of the global registry.
func Handler() http.Handler {
	return Global().Handler()
}
