package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aura_hr"

// Collectors owns a private registry so tests can build as many as they like.
type Collectors struct {
	Registry *prometheus.Registry

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	syncFetches       *prometheus.CounterVec
}

func New() *Collectors {
	c := &Collectors{
		Registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "users",
			Name:      "operations_total",
			Help:      "User data-access operations by outcome.",
		}, []string{"operation", "outcome"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "users",
			Name:      "operation_duration_seconds",
			Help:      "Latency of user data-access operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		syncFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "userview",
			Name:      "fetches_total",
			Help:      "Listing fetches issued by view synchronizers, by result.",
		}, []string{"result"}),
	}

	c.Registry.MustRegister(
		c.operations,
		c.operationDuration,
		c.httpRequests,
		c.httpDuration,
		c.syncFetches,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveOperation records one data-access call.
func (c *Collectors) ObserveOperation(op, outcome string, elapsed time.Duration) {
	c.operations.WithLabelValues(op, outcome).Inc()
	c.operationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (c *Collectors) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveFetch counts a synchronizer fetch; result is ok, error or stale.
func (c *Collectors) ObserveFetch(result string) {
	c.syncFetches.WithLabelValues(result).Inc()
}

// WriteTextfile dumps the registry in the node exporter textfile format, for
// short-lived processes that are never scraped.
func (c *Collectors) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.Registry)
}

func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry})
}
