package visualization

import "sort"

// NeighborCount returns how many nearest neighbors each of n items links to
func NeighborCount(n int) int {
	if n <= 6 {
		return 2
	}
	return 1
}

// ComputeEdges links every position to its nearest neighbors.
//
// Each item contributes edges to its K closest peers (K from NeighborCount),
// ties broken by index. Edges are undirected and returned once each, in the
// order they were first discovered.
func ComputeEdges(points []Position) []Edge {
	n := len(points)
	if n <= 1 {
		return []Edge{}
	}

	k := NeighborCount(n)
	if k > n-1 {
		k = n - 1
	}

	edges := make([]Edge, 0, n*k)
	seen := make(map[Edge]bool, n*k)

	type neighbor struct {
		index int
		dist  float64
	}

	for i, p := range points {
		neighbors := make([]neighbor, 0, n-1)
		for j, q := range points {
			if j == i {
				continue
			}
			neighbors = append(neighbors, neighbor{index: j, dist: distance(p, q)})
		}
		sort.SliceStable(neighbors, func(a, b int) bool {
			return neighbors[a].dist < neighbors[b].dist
		})

		for _, nb := range neighbors[:k] {
			e := newEdge(i, nb.index)
			if seen[e] {
				continue
			}
			seen[e] = true
			edges = append(edges, e)
		}
	}

	return edges
}

func newEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}
