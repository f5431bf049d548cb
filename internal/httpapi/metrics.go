package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector tracks API operation counts and latencies.
type Collector struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  prometheus.Histogram
}

// NewCollector registers the API metrics on a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wibecur_api_requests_total",
			Help: "API requests by route and status code.",
		}, []string{"route", "status"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wibecur_api_request_seconds",
			Help:    "API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(c.requests, c.latency)
	return c
}

// Handler exposes the registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Record counts one served request.
func (c *Collector) Record(route string, status int, elapsed time.Duration) {
	c.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.latency.Observe(elapsed.Seconds())
}

// Middleware instruments a handler subtree.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		c.Record(r.Method+" "+r.URL.Path, sw.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
