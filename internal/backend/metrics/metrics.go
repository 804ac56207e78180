package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "picundo"

// Collectors groups the Prometheus collectors of a single service instance.
// A nil *Collectors is valid and records nothing.
type Collectors struct {
	registry          *prometheus.Registry
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	fetchedBytes      *prometheus.CounterVec
	fetchDuration     *prometheus.HistogramVec
}

// NewCollectors creates the collectors on a fresh registry.
func NewCollectors() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "controller_operations_total",
			Help:      "Controller operations by command, operation and result.",
		}, []string{"command", "operation", "result"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "controller_operation_duration_seconds",
			Help:      "Duration of controller operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command", "operation"}),
		fetchedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_bytes_total",
			Help:      "Bytes retrieved by fetch commands.",
		}, []string{"command"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of single URL fetches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}
	c.registry.MustRegister(c.operations, c.operationDuration, c.fetchedBytes, c.fetchDuration)
	return c
}

// ObserveOperation records one execute/undo/redo call.
func (c *Collectors) ObserveOperation(command, operation string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	c.operations.WithLabelValues(command, operation, result).Inc()
	c.operationDuration.WithLabelValues(command, operation).Observe(duration.Seconds())
}

// ObserveFetch records one completed URL fetch.
func (c *Collectors) ObserveFetch(command string, size int, duration time.Duration) {
	if c == nil {
		return
	}
	c.fetchedBytes.WithLabelValues(command).Add(float64(size))
	c.fetchDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
