package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/soundclusters/internal/config"
	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
	"github.com/ewilliams-labs/soundclusters/internal/core/ports"
)

var testdata = filepath.Join("..", "adapters", "artifacts", "testdata")

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Artifacts.Dataset = filepath.Join(testdata, "tracks.csv")
	cfg.Artifacts.Scaler = filepath.Join(testdata, "scaler.yaml")
	cfg.Artifacts.Model = filepath.Join(testdata, "model.yaml")
	cfg.Storage.Driver = config.DriverMemory
	return cfg
}

func TestEvaluate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, evaluate(context.Background(), testConfig(), true, &out))

	var report evaluationReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 10, report.Tracks)
	assert.Equal(t, map[int]int{0: 3, 1: 4, 2: 3}, report.ClusterSizes)
	assert.Greater(t, report.Silhouette, 0.5, "the fixture clusters are well separated")
	assert.Less(t, report.Silhouette, 1.0)
	assert.Greater(t, report.DaviesBouldin, 0.0)

	out.Reset()
	require.NoError(t, evaluate(context.Background(), testConfig(), false, &out))
	assert.Contains(t, out.String(), "cluster 1:       4 tracks")
	assert.Contains(t, out.String(), "silhouette:")
}

func TestPredict(t *testing.T) {
	party := []float64{0.74, 0.82, -5.5, 0.08, 0.06, 0.02, 0.17, 0.8, 144, 203000}

	tests := []struct {
		name     string
		features []float64
		lookup   ports.TrackLookup
		want     string
		wantErr  error
	}{
		{name: "defaults", want: "cluster: 0\nprofile: Chill / Acoustic / Low Energy\n"},
		{name: "features", features: party, want: "cluster: 1\nprofile: Party / High Energy / Fast Tempo\n"},
		{name: "wrong length", features: party[:9], wantErr: domain.ErrShapeMismatch},
		{name: "out of range", features: append([]float64{2}, party[1:]...), wantErr: domain.ErrOutOfRange},
		{name: "spotify not configured", lookup: ports.TrackLookup{ID: "abc"}, wantErr: domain.ErrNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := predict(context.Background(), testConfig(), tt.features, tt.lookup, &out)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestBuildDashboard_Catalog(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.Path = filepath.Join(t.TempDir(), "catalog.db")

	svc, closer, err := buildDashboard(context.Background(), cfg)
	require.NoError(t, err)
	defer closer()

	track, err := svc.Track(context.Background(), "trk05")
	require.NoError(t, err)
	assert.Equal(t, "Jump the Line", track.Title)

	_, err = svc.InterpretMood(context.Background(), "anything")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestBuildDashboard_MissingArtifacts(t *testing.T) {
	cfg := testConfig()
	cfg.Artifacts.Model = filepath.Join(t.TempDir(), "missing.yaml")

	_, closer, err := buildDashboard(context.Background(), cfg)
	assert.Error(t, err)
	assert.NoError(t, closer())
}

func TestRootCommand_Evaluate(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"evaluate", "--json", "--log", "warn",
		"--dataset", filepath.Join(testdata, "tracks.csv"),
		"--scaler", filepath.Join(testdata, "scaler.yaml"),
		"--model", filepath.Join(testdata, "model.yaml"),
	})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"tracks": 10`)
}
