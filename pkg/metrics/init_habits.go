package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initHabitMetrics() {
	r.HabitsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "starry_habits_active",
			Help: "Habits currently shown in the constellation",
		},
	)

	r.HabitsArchived = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "starry_habits_archived",
			Help: "Habits that have been archived",
		},
	)

	r.HabitCompletionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "starry_habit_toggles_total",
			Help: "Habit toggles by resulting state",
		},
		[]string{"state"},
	)

	r.HabitMutationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "starry_habit_mutations_total",
			Help: "Habit list changes by operation",
		},
		[]string{"operation"},
	)

	r.SessionReshufflesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "starry_session_reshuffles_total",
			Help: "Number of times the session seed was redrawn",
		},
	)

	r.StorageOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "starry_storage_operations_total",
			Help: "Total number of storage operations",
		},
		[]string{"backend", "operation", "status"},
	)

	r.StorageOperationLatency = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starry_storage_operation_duration_seconds",
			Help:    "Storage operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"backend", "operation"},
	)
}
