package visualization

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func distance(a, b Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func farEnough(candidate Position, placed []Position, minDist float64) bool {
	for _, p := range placed {
		if distance(candidate, p) < minDist {
			return false
		}
	}
	return true
}

// SortedIDs returns a sorted copy of ids with duplicates removed
func SortedIDs(ids []string) []string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	out := sorted[:0]
	for i, id := range sorted {
		if i > 0 && id == sorted[i-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}
