package search

import "gonum.org/v1/gonum/floats"

// Metric selects the distance function used by the density clustering.
// The vectors are sparse term weights dense-encoded as float slices; with
// tf-idf weights, cosine distance is scale-invariant and is the default.
// Euclidean is available for callers who want magnitude to matter.
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
)

// distanceFunc returns the pairwise distance function for the metric.
// Unknown metrics fall back to cosine.
func (m Metric) distanceFunc() func(a, b []float64) float64 {
	if m == MetricEuclidean {
		return func(a, b []float64) float64 {
			return floats.Distance(a, b, 2)
		}
	}
	return func(a, b []float64) float64 {
		return 1 - cosineSimilarity(a, b)
	}
}

// noiseLabel marks points not assigned to any dense region.
const noiseLabel = -1

// dbscan runs density-based clustering over the points and returns a
// cluster label per point, noiseLabel for noise. A point's neighborhood
// includes the point itself, so minPts=2 requires at least one true
// neighbor within eps. Labels are assigned in scan order, so the result is
// stable for a given input.
func dbscan(points [][]float64, eps float64, minPts int, dist func(a, b []float64) float64) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = noiseLabel
	}
	visited := make([]bool, len(points))

	neighborsOf := func(i int) []int {
		var neighbors []int
		for j := range points {
			if dist(points[i], points[j]) <= eps {
				neighbors = append(neighbors, j)
			}
		}
		return neighbors
	}

	clusterID := 0
	for i := range points {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := neighborsOf(i)
		if len(neighbors) < minPts {
			continue // noise, unless later absorbed by a cluster
		}

		labels[i] = clusterID
		// Expand the cluster breadth-first from the seed's neighborhood.
		for k := 0; k < len(neighbors); k++ {
			j := neighbors[k]
			if labels[j] == noiseLabel {
				labels[j] = clusterID
			}
			if visited[j] {
				continue
			}
			visited[j] = true

			jNeighbors := neighborsOf(j)
			if len(jNeighbors) >= minPts {
				neighbors = append(neighbors, jNeighbors...)
			}
		}
		clusterID++
	}

	return labels
}
