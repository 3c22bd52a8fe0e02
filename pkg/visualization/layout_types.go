package visualization

// Position represents a 2D coordinate in the normalized 0-100 space
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge connects two positions by index. A is always less than B.
type Edge struct {
	A int `json:"a"`
	B int `json:"b"`
}

// cluster is a transient placement target; it never outlives one layout call
type cluster struct {
	center Position
	spread float64
}

// LayoutConfig configures the constellation layout.
// Zero fields are replaced with defaults by NewConstellationLayout.
type LayoutConfig struct {
	Size    float64 // Side of the square coordinate space
	Padding float64 // Padding as a fraction of Size on every side

	MinClusters int
	MaxClusters int
	MinSpread   float64
	MaxSpread   float64

	ClusterAttempts int // Cluster-biased candidates per item
	UniformAttempts int // Uniform candidates per item after cluster attempts fail
	RadiusExponent  float64
}

// PlacementStats counts how items were placed during one layout call
type PlacementStats struct {
	Clustered int `json:"clustered"`
	Uniform   int `json:"uniform"`
	Forced    int `json:"forced"`
	Clusters  int `json:"clusters"`
}

// Total returns the number of placed items
func (s PlacementStats) Total() int {
	return s.Clustered + s.Uniform + s.Forced
}
