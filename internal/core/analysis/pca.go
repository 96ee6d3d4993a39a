package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

// Project2D projects the rows of x onto their first two principal components.
// Columns are centered but not scaled. Each component's sign is fixed so its
// largest-magnitude loading is positive, which makes repeated runs agree.
func Project2D(x [][]float64) ([][2]float64, [2]float64, error) {
	var ratio [2]float64

	n := len(x)
	if n < 2 {
		return nil, ratio, fmt.Errorf("%w: PCA needs at least 2 rows, got %d", domain.ErrInsufficientRows, n)
	}
	d := len(x[0])
	if d < 2 {
		return nil, ratio, fmt.Errorf("%w: PCA needs at least 2 features, got %d", domain.ErrShapeMismatch, d)
	}

	data := mat.NewDense(n, d, nil)
	for i, row := range x {
		if len(row) != d {
			return nil, ratio, fmt.Errorf("%w: row %d has %d values, want %d", domain.ErrShapeMismatch, i, len(row), d)
		}
		data.SetRow(i, row)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, ratio, errors.New("analysis: principal components decomposition failed")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)
	if total := floats.Sum(vars); total > 0 {
		ratio[0] = vars[0] / total
		ratio[1] = vars[1] / total
	}

	centered := mat.NewDense(n, d, nil)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, data)
		mean := stat.Mean(col, nil)
		floats.AddConst(-mean, col)
		centered.SetCol(j, col)
	}

	var scores mat.Dense
	scores.Mul(centered, vecs.Slice(0, d, 0, 2))

	var sign [2]float64
	for k := 0; k < 2; k++ {
		sign[k] = 1
		best := 0.0
		for r := 0; r < d; r++ {
			if v := vecs.At(r, k); math.Abs(v) > math.Abs(best) {
				best = v
			}
		}
		if best < 0 {
			sign[k] = -1
		}
	}

	points := make([][2]float64, n)
	for i := range points {
		points[i] = [2]float64{sign[0] * scores.At(i, 0), sign[1] * scores.At(i, 1)}
	}
	return points, ratio, nil
}
