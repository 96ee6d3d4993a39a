package analysis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

// KMeans is a fitted k-means model reduced to its centroids.
type KMeans struct {
	centroids [][]float64
}

// NewKMeans builds a model from K centroids of equal dimensionality.
func NewKMeans(centroids [][]float64) (*KMeans, error) {
	if len(centroids) == 0 {
		return nil, errors.New("analysis: model has no centroids")
	}
	dims := len(centroids[0])
	if dims == 0 {
		return nil, errors.New("analysis: centroid 0 is empty")
	}

	m := &KMeans{centroids: make([][]float64, len(centroids))}
	for i, c := range centroids {
		if len(c) != dims {
			return nil, fmt.Errorf("analysis: centroid %d has %d values, want %d", i, len(c), dims)
		}
		for j, v := range c {
			if !isFinite(v) {
				return nil, fmt.Errorf("analysis: centroid %d value %d is not finite", i, j)
			}
		}
		m.centroids[i] = append([]float64(nil), c...)
	}
	return m, nil
}

func (m *KMeans) K() int    { return len(m.centroids) }
func (m *KMeans) Dims() int { return len(m.centroids[0]) }

// Centroids returns a copy of the cluster centers.
func (m *KMeans) Centroids() [][]float64 {
	out := make([][]float64, len(m.centroids))
	for i, c := range m.centroids {
		out[i] = append([]float64(nil), c...)
	}
	return out
}

// Predict returns the index of the nearest centroid under Euclidean distance.
// Ties go to the lowest index.
func (m *KMeans) Predict(x []float64) (int, error) {
	if len(x) != m.Dims() {
		return 0, fmt.Errorf("%w: got %d values, want %d", domain.ErrShapeMismatch, len(x), m.Dims())
	}

	best := 0
	bestDist := floats.Distance(x, m.centroids[0], 2)
	for i := 1; i < len(m.centroids); i++ {
		if d := floats.Distance(x, m.centroids[i], 2); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}
