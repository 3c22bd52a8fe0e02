package metrics

import (
	"time"
)

// Placement stage labels for LayoutPlacementsTotal
const (
	PlacementClustered = "clustered"
	PlacementUniform   = "uniform"
	PlacementForced    = "forced"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLayoutCached records a layout request answered from the cache
func (r *Registry) RecordLayoutCached() {
	r.LayoutComputationsTotal.WithLabelValues("cache").Inc()
	r.LayoutCacheHitsTotal.Inc()
}

// RecordLayoutComputed records a freshly computed layout and how its stars were placed
func (r *Registry) RecordLayoutComputed(stars int, duration time.Duration, clustered, uniform, forced int) {
	r.LayoutComputationsTotal.WithLabelValues("computed").Inc()
	r.LayoutCacheMissesTotal.Inc()
	r.LayoutDuration.Observe(duration.Seconds())
	r.LayoutStars.Observe(float64(stars))

	r.LayoutPlacementsTotal.WithLabelValues(PlacementClustered).Add(float64(clustered))
	r.LayoutPlacementsTotal.WithLabelValues(PlacementUniform).Add(float64(uniform))
	r.LayoutPlacementsTotal.WithLabelValues(PlacementForced).Add(float64(forced))
}

// SetLayoutCacheSize reports how many layouts the cache currently holds
func (r *Registry) SetLayoutCacheSize(n int) {
	r.LayoutCacheEntries.Set(float64(n))
}

// SetHabitCounts updates the active and archived habit gauges
func (r *Registry) SetHabitCounts(active, archived int) {
	r.HabitsActive.Set(float64(active))
	r.HabitsArchived.Set(float64(archived))
}

// RecordToggle counts a habit toggle by its resulting state
func (r *Registry) RecordToggle(completed bool) {
	state := "cleared"
	if completed {
		state = "completed"
	}
	r.HabitCompletionsTotal.WithLabelValues(state).Inc()
}

// RecordHabitMutation counts an add, update, archive or delete
func (r *Registry) RecordHabitMutation(operation string) {
	r.HabitMutationsTotal.WithLabelValues(operation).Inc()
}

// RecordReshuffle counts a session seed change
func (r *Registry) RecordReshuffle() {
	r.SessionReshufflesTotal.Inc()
}

// RecordStorageOperation records a storage operation against a backend
func (r *Registry) RecordStorageOperation(backend, operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.StorageOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	r.StorageOperationLatency.WithLabelValues(backend, operation).Observe(duration.Seconds())
}
