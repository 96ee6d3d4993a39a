package analysis

import (
	"math"
	"sort"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

// FiveNumber summarizes values with min, quartiles and max.
// Quartiles interpolate linearly between order statistics, the convention box
// plots use. An empty input yields a zero Summary.
func FiveNumber(values []float64) domain.Summary {
	if len(values) == 0 {
		return domain.Summary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return domain.Summary{
		Count:  len(sorted),
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

// quantile uses h = (n-1)p on sorted data. gonum's stat.Quantile only offers
// the empirical and (n·p) interpolation kinds, which disagree with box plots.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

// GroupSummaries summarizes one feature column per cluster, ascending cluster id.
func GroupSummaries(values []float64, labels []int) []domain.ClusterSummary {
	groups := make(map[int][]float64)
	for i, l := range labels {
		groups[l] = append(groups[l], values[i])
	}

	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]domain.ClusterSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.ClusterSummary{Cluster: id, Summary: FiveNumber(groups[id])})
	}
	return out
}
