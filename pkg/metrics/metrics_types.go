package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Layout Metrics
	LayoutComputationsTotal *prometheus.CounterVec
	LayoutDuration          prometheus.Histogram
	LayoutStars             prometheus.Histogram
	LayoutPlacementsTotal   *prometheus.CounterVec
	LayoutCacheHitsTotal    prometheus.Counter
	LayoutCacheMissesTotal  prometheus.Counter
	LayoutCacheEntries      prometheus.Gauge

	// Habit Metrics
	HabitsActive            prometheus.Gauge
	HabitsArchived          prometheus.Gauge
	HabitCompletionsTotal   *prometheus.CounterVec
	HabitMutationsTotal     *prometheus.CounterVec
	SessionReshufflesTotal  prometheus.Counter
	StorageOperationsTotal  *prometheus.CounterVec
	StorageOperationLatency *prometheus.HistogramVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initHTTPMetrics()
	r.initLayoutMetrics()
	r.initHabitMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
