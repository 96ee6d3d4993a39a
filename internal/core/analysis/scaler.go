// Package analysis holds the numeric core: the fitted scaler and clustering
// model, cluster-quality indices, PCA projection and distribution summaries.
// Everything here is a pure function of its inputs.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
	"github.com/ewilliams-labs/soundclusters/internal/core/ports"
)

var (
	_ ports.Scaler       = (*StandardScaler)(nil)
	_ ports.ClusterModel = (*KMeans)(nil)
)

// StandardScaler applies (x - mean) / scale with parameters bound at fit time.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// NewStandardScaler validates fitted parameters. A zero scale entry means the
// feature had no variance at fit time and is treated as 1.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, errors.New("analysis: scaler has no parameters")
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("analysis: scaler mean has %d values, scale has %d", len(mean), len(scale))
	}

	s := &StandardScaler{
		mean:  make([]float64, len(mean)),
		scale: make([]float64, len(scale)),
	}
	for i := range mean {
		if !isFinite(mean[i]) || !isFinite(scale[i]) {
			return nil, fmt.Errorf("analysis: scaler parameter %d is not finite", i)
		}
		s.mean[i] = mean[i]
		s.scale[i] = scale[i]
		if s.scale[i] == 0 {
			s.scale[i] = 1
		}
	}
	return s, nil
}

func (s *StandardScaler) Dims() int { return len(s.mean) }

// Transform standardizes x. It never refits.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, fmt.Errorf("%w: got %d values, want %d", domain.ErrShapeMismatch, len(x), len(s.mean))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		if !isFinite(v) {
			return nil, fmt.Errorf("analysis: value %d is not finite", i)
		}
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
