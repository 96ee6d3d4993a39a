package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ewilliams-labs/soundclusters/internal/core/analysis"
	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
	"github.com/ewilliams-labs/soundclusters/internal/core/ports"
)

const (
	defaultSampleRows = 8
	defaultMoodRows   = 5
)

// Dashboard coordinates every view over the loaded artifacts.
type Dashboard struct {
	art      *Artifacts
	catalog  ports.TrackCatalog
	features ports.AudioFeatureProvider
	moods    ports.MoodInterpreter

	sampleRows int
	moodRows   int
	memo       *memo
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithCatalog serves tabular views from a catalog instead of the in-memory dataset.
func WithCatalog(c ports.TrackCatalog) Option {
	return func(d *Dashboard) { d.catalog = c }
}

// WithFeatureProvider enables classifying real tracks.
func WithFeatureProvider(p ports.AudioFeatureProvider) Option {
	return func(d *Dashboard) { d.features = p }
}

// WithMoodInterpreter enables free-text mood requests.
func WithMoodInterpreter(m ports.MoodInterpreter) Option {
	return func(d *Dashboard) { d.moods = m }
}

// WithSampleRows sets how many rows the overview shows.
func WithSampleRows(n int) Option {
	return func(d *Dashboard) {
		if n > 0 {
			d.sampleRows = n
		}
	}
}

// WithMoodRows sets how many tracks a recommendation lists.
func WithMoodRows(n int) Option {
	return func(d *Dashboard) {
		if n > 0 {
			d.moodRows = n
		}
	}
}

// WithMemoization toggles caching of the expensive views.
func WithMemoization(enabled bool) Option {
	return func(d *Dashboard) { d.memo.enabled = enabled }
}

// NewDashboard constructs a Dashboard. Memoization is on by default.
func NewDashboard(art *Artifacts, opts ...Option) (*Dashboard, error) {
	if art == nil {
		return nil, errors.New("service: artifacts are required")
	}
	d := &Dashboard{
		art:        art,
		sampleRows: defaultSampleRows,
		moodRows:   defaultMoodRows,
		memo:       newMemo(true, art.Fingerprint),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Artifacts returns the shared read-only state.
func (d *Dashboard) Artifacts() *Artifacts { return d.art }

// Overview summarizes the dataset and returns its first rows.
func (d *Dashboard) Overview(ctx context.Context) (domain.Overview, error) {
	ds := d.art.Dataset
	out := domain.Overview{
		TotalTracks:  ds.Len(),
		FeatureCount: domain.FeatureCount,
		ClusterCount: len(ds.ClusterIDs()),
	}

	if d.catalog == nil {
		out.Sample = ds.Head(d.sampleRows)
		return out, nil
	}
	sample, err := d.catalog.Sample(ctx, d.sampleRows)
	if err != nil {
		return domain.Overview{}, fmt.Errorf("service: failed to load sample rows: %w", err)
	}
	out.Sample = sample
	return out, nil
}

// Evaluate computes the silhouette and Davies–Bouldin indices over the raw matrix.
func (d *Dashboard) Evaluate(ctx context.Context) (domain.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Evaluation{}, err
	}
	return memoized(d.memo, "evaluation", func() (domain.Evaluation, error) {
		ev, err := analysis.Evaluate(d.art.Dataset.Matrix(), d.art.Dataset.Labels())
		if err != nil {
			return domain.Evaluation{}, fmt.Errorf("service: evaluation undefined: %w", err)
		}
		return ev, nil
	})
}

// Project returns the dataset projected onto its first two principal components.
func (d *Dashboard) Project(ctx context.Context) (domain.Projection, error) {
	if err := ctx.Err(); err != nil {
		return domain.Projection{}, err
	}
	return memoized(d.memo, "projection", func() (domain.Projection, error) {
		coords, ratio, err := analysis.Project2D(d.art.Dataset.Matrix())
		if err != nil {
			return domain.Projection{}, fmt.Errorf("service: projection failed: %w", err)
		}
		labels := d.art.Dataset.Labels()
		points := make([]domain.ProjectedPoint, len(coords))
		for i, c := range coords {
			points[i] = domain.ProjectedPoint{X: c[0], Y: c[1], Cluster: labels[i]}
		}
		return domain.Projection{Points: points, ExplainedVariance: ratio}, nil
	})
}

// Distribution summarizes one feature per cluster.
func (d *Dashboard) Distribution(ctx context.Context, feature string) (domain.FeatureDistribution, error) {
	name, err := domain.ParseFeature(feature)
	if err != nil {
		return domain.FeatureDistribution{}, fmt.Errorf("service: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.FeatureDistribution{}, err
	}
	return memoized(d.memo, "distribution/"+string(name), func() (domain.FeatureDistribution, error) {
		ds := d.art.Dataset
		values := make([]float64, ds.Len())
		for i := 0; i < ds.Len(); i++ {
			v, err := ds.At(i).Features.Value(name)
			if err != nil {
				return domain.FeatureDistribution{}, fmt.Errorf("service: %w", err)
			}
			values[i] = v
		}
		return domain.FeatureDistribution{
			Feature:  name,
			Clusters: analysis.GroupSummaries(values, ds.Labels()),
		}, nil
	})
}

// Recommend maps a mood onto its cluster and lists the first tracks in it.
func (d *Dashboard) Recommend(ctx context.Context, mood string) (domain.Recommendation, error) {
	m, err := domain.ParseMood(mood)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("service: %w", err)
	}
	cluster, err := m.Cluster()
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("service: %w", err)
	}

	var tracks []domain.Track
	if d.catalog != nil {
		tracks, err = d.catalog.ByCluster(ctx, cluster, d.moodRows)
		if err != nil {
			return domain.Recommendation{}, fmt.Errorf("service: failed to load cluster %d: %w", cluster, err)
		}
	} else {
		tracks = d.art.Dataset.InCluster(cluster, d.moodRows)
	}
	if tracks == nil {
		tracks = []domain.Track{}
	}

	return domain.Recommendation{Mood: m, Label: m.Label(), Cluster: cluster, Tracks: tracks}, nil
}

// Track looks a dataset row up by id.
func (d *Dashboard) Track(ctx context.Context, id string) (domain.Track, error) {
	if d.catalog != nil {
		t, err := d.catalog.Track(ctx, id)
		if err != nil {
			return domain.Track{}, fmt.Errorf("service: track %q: %w", id, err)
		}
		return t, nil
	}
	if t, ok := d.art.Dataset.Lookup(id); ok {
		return t, nil
	}
	return domain.Track{}, fmt.Errorf("service: track %q: %w", id, domain.ErrNotFound)
}

// InterpretMood resolves a free-text request to a mood, then recommends from it.
func (d *Dashboard) InterpretMood(ctx context.Context, message string) (domain.Recommendation, error) {
	if d.moods == nil {
		return domain.Recommendation{}, fmt.Errorf("service: mood interpreter: %w", domain.ErrNotConfigured)
	}
	m, err := d.moods.InterpretMood(ctx, message)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("service: failed to interpret mood: %w", err)
	}
	return d.Recommend(ctx, string(m))
}

// Predict scales a raw feature vector and assigns it to the nearest centroid.
func (d *Dashboard) Predict(ctx context.Context, vector []float64) (int, error) {
	if len(vector) != domain.FeatureCount {
		return 0, fmt.Errorf("service: got %d features, want %d: %w", len(vector), domain.FeatureCount, domain.ErrShapeMismatch)
	}
	for i, v := range vector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("service: %s is not finite: %w", domain.FeatureNames[i], domain.ErrOutOfRange)
		}
	}

	scaled, err := d.art.Scaler.Transform(vector)
	if err != nil {
		return 0, fmt.Errorf("service: scaling failed: %w", err)
	}
	cluster, err := d.art.Model.Predict(scaled)
	if err != nil {
		return 0, fmt.Errorf("service: model failed: %w", err)
	}
	return cluster, nil
}

// PredictFeatures classifies a hypothetical track entered through the sliders.
func (d *Dashboard) PredictFeatures(ctx context.Context, features domain.AudioFeatures) (domain.Prediction, error) {
	if err := domain.CheckBounds(features); err != nil {
		return domain.Prediction{}, fmt.Errorf("service: %w", err)
	}
	cluster, err := d.Predict(ctx, features.Vector())
	if err != nil {
		return domain.Prediction{}, err
	}
	return domain.Prediction{
		Track:   domain.Track{Features: features, Cluster: cluster},
		Cluster: cluster,
	}, nil
}

// PredictSpotifyTrack fetches a real track's features and classifies it.
// Slider bounds are not enforced since real tracks can fall outside them.
func (d *Dashboard) PredictSpotifyTrack(ctx context.Context, lookup ports.TrackLookup) (domain.Prediction, error) {
	if d.features == nil {
		return domain.Prediction{}, fmt.Errorf("service: feature provider: %w", domain.ErrNotConfigured)
	}
	if err := lookup.Validate(); err != nil {
		return domain.Prediction{}, fmt.Errorf("service: %w", err)
	}
	track, err := d.features.GetTrackFeatures(ctx, lookup)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("service: failed to fetch track: %w", err)
	}
	cluster, err := d.Predict(ctx, track.Features.Vector())
	if err != nil {
		return domain.Prediction{}, err
	}
	track.Cluster = cluster
	return domain.Prediction{Track: track, Cluster: cluster}, nil
}

// Insights returns per-cluster size and mean features, ascending cluster id.
func (d *Dashboard) Insights(ctx context.Context) ([]domain.ClusterProfile, error) {
	return memoized(d.memo, "insights", func() ([]domain.ClusterProfile, error) {
		var (
			profiles []domain.ClusterProfile
			err      error
		)
		if d.catalog != nil {
			profiles, err = d.catalog.ClusterProfiles(ctx)
			if err != nil {
				return nil, fmt.Errorf("service: failed to load cluster profiles: %w", err)
			}
		} else {
			profiles = d.profilesFromDataset()
		}
		for i := range profiles {
			profiles[i].Description = domain.DescribeCluster(profiles[i].Cluster)
		}
		return profiles, nil
	})
}

func (d *Dashboard) profilesFromDataset() []domain.ClusterProfile {
	ds := d.art.Dataset
	sizes := ds.ClusterSizes()
	sums := make(map[int][]float64, len(sizes))
	for i := 0; i < ds.Len(); i++ {
		t := ds.At(i)
		if sums[t.Cluster] == nil {
			sums[t.Cluster] = make([]float64, domain.FeatureCount)
		}
		floats.Add(sums[t.Cluster], t.Features.Vector())
	}

	out := make([]domain.ClusterProfile, 0, len(sizes))
	for _, id := range ds.ClusterIDs() {
		mean := sums[id]
		floats.Scale(1/float64(sizes[id]), mean)
		features, _ := domain.FeaturesFromVector(mean)
		out = append(out, domain.ClusterProfile{Cluster: id, Size: sizes[id], Mean: features})
	}
	return out
}

// Warm precomputes the memoized result behind a view. Views without an
// expensive computation are a no-op.
func (d *Dashboard) Warm(ctx context.Context, view domain.ViewID, feature domain.FeatureName) error {
	var err error
	switch view {
	case domain.ViewEvaluation:
		_, err = d.Evaluate(ctx)
	case domain.ViewPCA:
		_, err = d.Project(ctx)
	case domain.ViewFeatures:
		_, err = d.Distribution(ctx, string(feature))
	case domain.ViewInsights:
		_, err = d.Insights(ctx)
	}
	return err
}

// Cached reports how many results the memo holds.
func (d *Dashboard) Cached() int { return d.memo.len() }
