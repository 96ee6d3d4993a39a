package analysis

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

// grouping maps arbitrary cluster labels onto dense indices.
type grouping struct {
	ids   []int       // ascending cluster ids
	index map[int]int // cluster id -> position in ids
	sizes []int
	of    []int // row -> dense cluster index
}

// groupLabels validates that at least two clusters exist and each has at
// least two rows; both indices are undefined otherwise.
func groupLabels(x [][]float64, labels []int) (*grouping, error) {
	if len(x) != len(labels) {
		return nil, fmt.Errorf("analysis: %d rows but %d labels", len(x), len(labels))
	}

	g := &grouping{index: make(map[int]int), of: make([]int, len(labels))}
	for _, l := range labels {
		if _, ok := g.index[l]; !ok {
			g.index[l] = -1
			g.ids = append(g.ids, l)
		}
	}
	sort.Ints(g.ids)
	for i, id := range g.ids {
		g.index[id] = i
	}
	g.sizes = make([]int, len(g.ids))
	for row, l := range labels {
		k := g.index[l]
		g.of[row] = k
		g.sizes[k]++
	}

	if len(g.ids) < 2 {
		return nil, fmt.Errorf("%w: %d distinct cluster label(s), need at least 2", domain.ErrInsufficientClusters, len(g.ids))
	}
	for k, n := range g.sizes {
		if n < 2 {
			return nil, fmt.Errorf("%w: cluster %d has %d row(s), need at least 2", domain.ErrInsufficientClusters, g.ids[k], n)
		}
	}
	return g, nil
}

// Evaluate computes both cluster-quality indices over the raw feature matrix.
func Evaluate(x [][]float64, labels []int) (domain.Evaluation, error) {
	g, err := groupLabels(x, labels)
	if err != nil {
		return domain.Evaluation{}, err
	}
	return domain.Evaluation{
		Silhouette:    silhouette(x, g),
		DaviesBouldin: daviesBouldin(x, g),
		Rows:          len(x),
		Clusters:      len(g.ids),
	}, nil
}

// Silhouette returns the mean silhouette coefficient under Euclidean distance.
func Silhouette(x [][]float64, labels []int) (float64, error) {
	g, err := groupLabels(x, labels)
	if err != nil {
		return 0, err
	}
	return silhouette(x, g), nil
}

// DaviesBouldin returns the Davies–Bouldin index under Euclidean distance.
func DaviesBouldin(x [][]float64, labels []int) (float64, error) {
	g, err := groupLabels(x, labels)
	if err != nil {
		return 0, err
	}
	return daviesBouldin(x, g), nil
}

// silhouette is O(N²) in distance evaluations; each pair is computed once.
func silhouette(x [][]float64, g *grouping) float64 {
	n, k := len(x), len(g.ids)

	// sums[i*k+c] is the total distance from row i to every row of cluster c.
	sums := make([]float64, n*k)
	for i := 0; i < n; i++ {
		ci := g.of[i]
		for j := i + 1; j < n; j++ {
			d := floats.Distance(x[i], x[j], 2)
			sums[i*k+g.of[j]] += d
			sums[j*k+ci] += d
		}
	}

	var total float64
	for i := 0; i < n; i++ {
		own := g.of[i]
		a := sums[i*k+own] / float64(g.sizes[own]-1)

		b := -1.0
		for c := 0; c < k; c++ {
			if c == own {
				continue
			}
			mean := sums[i*k+c] / float64(g.sizes[c])
			if b < 0 || mean < b {
				b = mean
			}
		}

		denom := a
		if b > denom {
			denom = b
		}
		if denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(n)
}

func daviesBouldin(x [][]float64, g *grouping) float64 {
	k, dims := len(g.ids), len(x[0])

	centroids := make([][]float64, k)
	for c := range centroids {
		centroids[c] = make([]float64, dims)
	}
	for row, v := range x {
		floats.Add(centroids[g.of[row]], v)
	}
	for c := range centroids {
		floats.Scale(1/float64(g.sizes[c]), centroids[c])
	}

	scatter := make([]float64, k)
	for row, v := range x {
		c := g.of[row]
		scatter[c] += floats.Distance(v, centroids[c], 2)
	}
	for c := range scatter {
		scatter[c] /= float64(g.sizes[c])
	}

	var total float64
	for i := 0; i < k; i++ {
		worst := 0.0
		for j := 0; j < k; j++ {
			if i == j {
				continue
			}
			sep := floats.Distance(centroids[i], centroids[j], 2)
			// Coincident centroids count as infinitely far apart, i.e. ratio 0.
			if sep == 0 {
				continue
			}
			if r := (scatter[i] + scatter[j]) / sep; r > worst {
				worst = r
			}
		}
		total += worst
	}
	return total / float64(k)
}
