package server

import "github.com/prometheus/client_golang/prometheus"

// metrics carries the server's prometheus collectors on a private registry
// so multiple servers can coexist in one process.
type metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     prometheus.Counter
	proxiedRequests prometheus.Counter
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()

	m := &metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zedex_requests_total",
			Help: "Number of mirror requests handled, by endpoint.",
		}, []string{"endpoint"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zedex_cache_hits_total",
			Help: "Number of requests served from the local cache, by resolution strategy.",
		}, []string{"strategy"}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zedex_cache_misses_total",
			Help: "Number of requests with no servable local artifact.",
		}),
		proxiedRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zedex_proxied_requests_total",
			Help: "Number of requests forwarded to the upstream.",
		}),
	}

	registry.MustRegister(m.requestsTotal, m.cacheHits, m.cacheMisses, m.proxiedRequests)
	return m
}
