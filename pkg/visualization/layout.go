package visualization

import (
	"math"
	"strconv"
	"strings"
)

// Layout defaults. The coordinate space is 0-100 on both axes with 8% padding,
// so every position lies in [8, 92].
const (
	DefaultSize            = 100.0
	DefaultPadding         = 0.08
	DefaultMinClusters     = 2
	DefaultMaxClusters     = 5
	DefaultMinSpread       = 10.0
	DefaultMaxSpread       = 22.0
	DefaultClusterAttempts = 70
	DefaultUniformAttempts = 140
	DefaultRadiusExponent  = 0.7
)

var defaultLayout = NewConstellationLayout(nil)

// ComputeLayout places ids with the default constellation layout.
// The result is aligned index-for-index with ids.
func ComputeLayout(ids []string, seed int64) []Position {
	return defaultLayout.ComputeLayout(ids, seed)
}

// ConstellationLayout scatters items around a handful of seeded clusters
// while keeping a minimum distance between them.
//
// Positions depend only on the set of identifiers and the seed. The caller's
// ordering of ids affects nothing but the order of the returned slice.
type ConstellationLayout struct {
	config LayoutConfig
}

// NewConstellationLayout creates a constellation layout. A nil config uses
// the defaults.
func NewConstellationLayout(config *LayoutConfig) *ConstellationLayout {
	var cfg LayoutConfig
	if config != nil {
		cfg = *config
	}
	if cfg.Size == 0 {
		cfg.Size = DefaultSize
	}
	if cfg.Padding == 0 {
		cfg.Padding = DefaultPadding
	}
	if cfg.MinClusters == 0 {
		cfg.MinClusters = DefaultMinClusters
	}
	if cfg.MaxClusters == 0 {
		cfg.MaxClusters = DefaultMaxClusters
	}
	if cfg.MaxClusters < cfg.MinClusters {
		cfg.MaxClusters = cfg.MinClusters
	}
	if cfg.MinSpread == 0 {
		cfg.MinSpread = DefaultMinSpread
	}
	if cfg.MaxSpread == 0 {
		cfg.MaxSpread = DefaultMaxSpread
	}
	if cfg.ClusterAttempts == 0 {
		cfg.ClusterAttempts = DefaultClusterAttempts
	}
	if cfg.UniformAttempts == 0 {
		cfg.UniformAttempts = DefaultUniformAttempts
	}
	if cfg.RadiusExponent == 0 {
		cfg.RadiusExponent = DefaultRadiusExponent
	}
	return &ConstellationLayout{config: cfg}
}

// Config returns the effective configuration
func (cl *ConstellationLayout) Config() LayoutConfig {
	return cl.config
}

// Bounds returns the inclusive coordinate range shared by both axes
func (cl *ConstellationLayout) Bounds() (lo, hi float64) {
	pad := cl.config.Size * cl.config.Padding
	return pad, cl.config.Size - pad
}

// Center returns the middle of the coordinate space
func (cl *ConstellationLayout) Center() Position {
	return Position{X: cl.config.Size / 2, Y: cl.config.Size / 2}
}

// ComputeLayout returns positions aligned index-for-index with ids
func (cl *ConstellationLayout) ComputeLayout(ids []string, seed int64) []Position {
	positions, _ := cl.ComputeLayoutWithStats(ids, seed)
	return positions
}

// ComputeLayoutWithStats computes positions and reports how each item was placed
func (cl *ConstellationLayout) ComputeLayoutWithStats(ids []string, seed int64) ([]Position, PlacementStats) {
	if len(ids) == 0 {
		return []Position{}, PlacementStats{}
	}

	sorted := SortedIDs(ids)
	seedStr := strconv.FormatInt(seed, 10)
	globalSeed := HashString(strings.Join(sorted, "|") + ":" + seedStr)

	clusters := cl.generateClusters(NewMulberry32(globalSeed))
	minDist := MinDistance(len(sorted))
	stats := PlacementStats{Clusters: len(clusters)}

	placed := make([]Position, 0, len(sorted))
	byID := make(map[string]Position, len(sorted))

	// Placement runs in sorted order so collision avoidance never depends
	// on how the caller ordered ids.
	for _, id := range sorted {
		itemSeed := HashString(id + seedStr)
		c := clusters[itemSeed%uint32(len(clusters))]
		rng := NewMulberry32(itemSeed ^ globalSeed)

		pos := cl.place(rng, c, placed, minDist, &stats)
		placed = append(placed, pos)
		byID[id] = pos
	}

	out := make([]Position, len(ids))
	for i, id := range ids {
		pos, ok := byID[id]
		if !ok {
			pos = cl.Center()
		}
		out[i] = pos
	}
	return out, stats
}

// generateClusters draws between MinClusters and MaxClusters cluster targets
func (cl *ConstellationLayout) generateClusters(rng *Mulberry32) []cluster {
	lo, hi := cl.Bounds()
	span := float64(cl.config.MaxClusters - cl.config.MinClusters)

	count := int(math.Round(float64(cl.config.MinClusters) + span*rng.Float64()))
	count = clamp(count, cl.config.MinClusters, cl.config.MaxClusters)

	clusters := make([]cluster, count)
	for i := range clusters {
		x := rng.Range(lo, hi)
		y := rng.Range(lo, hi)
		clusters[i] = cluster{
			center: Position{X: x, Y: y},
			spread: rng.Range(cl.config.MinSpread, cl.config.MaxSpread),
		}
	}
	return clusters
}

// place finds a position for one item: cluster-biased candidates first,
// then uniform candidates, then a forced spot near the cluster center.
func (cl *ConstellationLayout) place(rng *Mulberry32, c cluster, placed []Position, minDist float64, stats *PlacementStats) Position {
	lo, hi := cl.Bounds()

	for attempt := 0; attempt < cl.config.ClusterAttempts; attempt++ {
		angle := rng.Float64() * 2 * math.Pi
		radius := math.Pow(rng.Float64(), cl.config.RadiusExponent) * c.spread
		candidate := Position{
			X: clamp(c.center.X+math.Cos(angle)*radius, lo, hi),
			Y: clamp(c.center.Y+math.Sin(angle)*radius, lo, hi),
		}
		if farEnough(candidate, placed, minDist) {
			stats.Clustered++
			return candidate
		}
	}

	for attempt := 0; attempt < cl.config.UniformAttempts; attempt++ {
		candidate := Position{
			X: rng.Range(lo, hi),
			Y: rng.Range(lo, hi),
		}
		if farEnough(candidate, placed, minDist) {
			stats.Uniform++
			return candidate
		}
	}

	// Too crowded; give up on spacing rather than leave the item unplaced.
	stats.Forced++
	half := c.spread / 2
	return Position{
		X: clamp(c.center.X+(rng.Float64()*2-1)*half, lo, hi),
		Y: clamp(c.center.Y+(rng.Float64()*2-1)*half, lo, hi),
	}
}

// MinDistance returns the spacing enforced between items for a layout of n items
func MinDistance(n int) float64 {
	switch {
	case n <= 6:
		return 16
	case n <= 10:
		return 14
	case n <= 16:
		return 12
	default:
		return 10
	}
}
