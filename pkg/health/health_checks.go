package health

import (
	"context"
	"time"
)

// SimpleCheck always reports healthy
func SimpleCheck(name string) CheckFunc {
	return func(context.Context) Check {
		return Check{Name: name, Status: StatusHealthy}
	}
}

// StorageCheck probes the habit store. A ping slower than slow is degraded.
func StorageCheck(backend string, ping func(ctx context.Context) error, slow time.Duration) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{
			Name:    "storage",
			Details: map[string]any{"backend": backend},
		}

		start := time.Now()
		err := ping(ctx)
		elapsed := time.Since(start)
		check.Details["ping_ms"] = elapsed.Milliseconds()

		switch {
		case err != nil:
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		case slow > 0 && elapsed > slow:
			check.Status = StatusDegraded
			check.Message = "Slow storage response"
		default:
			check.Status = StatusHealthy
			check.Message = "Connected"
		}
		return check
	}
}

// LayoutCacheCheck reports cache occupancy and hit rate. It never fails.
func LayoutCacheCheck(stats func() (size int, hits, misses int64)) CheckFunc {
	return func(context.Context) Check {
		size, hits, misses := stats()
		rate := 0.0
		if total := hits + misses; total > 0 {
			rate = float64(hits) / float64(total)
		}
		return Check{
			Name:   "layout_cache",
			Status: StatusHealthy,
			Details: map[string]any{
				"entries":  size,
				"hits":     hits,
				"misses":   misses,
				"hit_rate": rate,
			},
		}
	}
}

// MemoryCheck reports degraded when allocated memory exceeds 90% of what
// the runtime obtained from the OS.
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func(context.Context) Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()
		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		if sys > 0 && float64(alloc)/float64(sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}
		return check
	}
}
