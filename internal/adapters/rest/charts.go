package rest

import (
	"fmt"
	"html/template"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

const (
	chartWidth  = "900px"
	chartHeight = "520px"
)

// chartSnippet is a chart rendered for embedding into a page: the container
// element and the script that initializes it.
type chartSnippet struct {
	Element template.HTML
	Script  template.HTML
}

func clusterName(id int) string { return fmt.Sprintf("Cluster %d", id) }

// projectionChart draws one scatter series per cluster so each gets its own
// color and legend entry.
func projectionChart(p domain.Projection) chartSnippet {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: "pca", Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Clusters in 2D (PCA)",
			Subtitle: fmt.Sprintf("explained variance: PC1 %.1f%%, PC2 %.1f%%", 100*p.ExplainedVariance[0], 100*p.ExplainedVariance[1]),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "PC1"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "PC2"}),
	)

	byCluster := make(map[int][]opts.ScatterData)
	for _, pt := range p.Points {
		byCluster[pt.Cluster] = append(byCluster[pt.Cluster], opts.ScatterData{Value: []interface{}{pt.X, pt.Y}})
	}
	ids := make([]int, 0, len(byCluster))
	for id := range byCluster {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		scatter.AddSeries(clusterName(id), byCluster[id])
	}

	s := scatter.RenderSnippet()
	return chartSnippet{Element: template.HTML(s.Element), Script: template.HTML(s.Script)}
}

// distributionChart draws a box per cluster from the five-number summaries.
func distributionChart(d domain.FeatureDistribution) chartSnippet {
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: "distribution", Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s by cluster", d.Feature.Label())}),
		charts.WithYAxisOpts(opts.YAxis{Name: d.Feature.Label()}),
	)

	names := make([]string, 0, len(d.Clusters))
	data := make([]opts.BoxPlotData, 0, len(d.Clusters))
	for _, c := range d.Clusters {
		names = append(names, clusterName(c.Cluster))
		s := c.Summary
		data = append(data, opts.BoxPlotData{Value: []float64{s.Min, s.Q1, s.Median, s.Q3, s.Max}})
	}
	box.SetXAxis(names).AddSeries(d.Feature.Label(), data)

	s := box.RenderSnippet()
	return chartSnippet{Element: template.HTML(s.Element), Script: template.HTML(s.Script)}
}

// profileFeatures are the unit-interval features, comparable on one axis.
var profileFeatures = []domain.FeatureName{
	domain.FeatureDanceability,
	domain.FeatureEnergy,
	domain.FeatureSpeechiness,
	domain.FeatureAcousticness,
	domain.FeatureInstrumentalness,
	domain.FeatureLiveness,
	domain.FeatureValence,
}

// profileChart draws grouped bars of the mean unit-interval features per cluster.
func profileChart(profiles []domain.ClusterProfile) chartSnippet {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: "insights", Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Mean features per cluster"}),
	)

	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, clusterName(p.Cluster))
	}
	bar.SetXAxis(names)
	for _, f := range profileFeatures {
		data := make([]opts.BarData, 0, len(profiles))
		for _, p := range profiles {
			v, _ := p.Mean.Value(f)
			data = append(data, opts.BarData{Value: v})
		}
		bar.AddSeries(f.Label(), data)
	}

	s := bar.RenderSnippet()
	return chartSnippet{Element: template.HTML(s.Element), Script: template.HTML(s.Script)}
}
