package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLayoutMetrics() {
	r.LayoutComputationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "starry_layout_computations_total",
			Help: "Layout requests, labelled by whether the cache answered",
		},
		[]string{"source"},
	)

	r.LayoutDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "starry_layout_duration_seconds",
			Help:    "Time spent computing a fresh layout",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	r.LayoutStars = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "starry_layout_stars",
			Help:    "Number of stars per computed layout",
			Buckets: []float64{1, 2, 4, 6, 10, 16, 32, 64},
		},
	)

	r.LayoutPlacementsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "starry_layout_placements_total",
			Help: "Star placements by the stage that accepted them",
		},
		[]string{"kind"},
	)

	r.LayoutCacheHitsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "starry_layout_cache_hits_total",
			Help: "Layout cache hits",
		},
	)

	r.LayoutCacheMissesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "starry_layout_cache_misses_total",
			Help: "Layout cache misses",
		},
	)

	r.LayoutCacheEntries = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "starry_layout_cache_entries",
			Help: "Layouts currently held in the cache",
		},
	)
}
