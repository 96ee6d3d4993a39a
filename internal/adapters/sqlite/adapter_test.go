package sqlite

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

func seedTracks() []domain.Track {
	return []domain.Track{
		{ID: "t0", Title: "Quiet", Artist: "A", Cluster: 0, Features: domain.AudioFeatures{Energy: 0.2, Tempo: 90, DurationMs: 240000}},
		{ID: "t1", Title: "Loud", Artist: "B", Cluster: 1, Features: domain.AudioFeatures{Energy: 0.9, Tempo: 140, DurationMs: 200000}},
		{ID: "t2", Title: "Soft", Artist: "C", Cluster: 0, Features: domain.AudioFeatures{Energy: 0.4, Tempo: 100, DurationMs: 260000}},
		{ID: "t3", Title: "Party", Artist: "D", Cluster: 1, Features: domain.AudioFeatures{Energy: 0.7, Tempo: 130, DurationMs: 210000}},
		{ID: "t4", Title: "Talk", Cluster: 2, Features: domain.AudioFeatures{Speechiness: 0.5, Tempo: 110, DurationMs: 180000}},
	}
}

func newLoadedAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	if err := a.Load(context.Background(), seedTracks()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return a
}

func TestAdapter_Load(t *testing.T) {
	a := newLoadedAdapter(t)
	ctx := context.Background()

	n, err := a.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 rows, got %d", n)
	}

	// Loading again replaces, never appends.
	if err := a.Load(ctx, seedTracks()[:2]); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n, _ := a.Count(ctx); n != 2 {
		t.Fatalf("expected 2 rows after reload, got %d", n)
	}
}

func TestAdapter_Sample(t *testing.T) {
	a := newLoadedAdapter(t)

	tests := []struct {
		name    string
		limit   int
		wantIDs []string
	}{
		{name: "first rows in dataset order", limit: 3, wantIDs: []string{"t0", "t1", "t2"}},
		{name: "limit beyond size", limit: 50, wantIDs: []string{"t0", "t1", "t2", "t3", "t4"}},
		{name: "zero", limit: 0, wantIDs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Sample(context.Background(), tt.limit)
			if err != nil {
				t.Fatalf("sample: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d rows, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Fatalf("row %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestAdapter_ByCluster(t *testing.T) {
	a := newLoadedAdapter(t)

	tests := []struct {
		name    string
		cluster int
		limit   int
		wantIDs []string
	}{
		{name: "all rows", cluster: 0, limit: 0, wantIDs: []string{"t0", "t2"}},
		{name: "limited", cluster: 1, limit: 1, wantIDs: []string{"t1"}},
		{name: "empty cluster", cluster: 7, limit: 5, wantIDs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.ByCluster(context.Background(), tt.cluster, tt.limit)
			if err != nil {
				t.Fatalf("by cluster: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d rows, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id || got[i].Cluster != tt.cluster {
					t.Fatalf("row %d: expected %s in cluster %d, got %+v", i, id, tt.cluster, got[i])
				}
			}
		})
	}
}

func TestAdapter_Track(t *testing.T) {
	a := newLoadedAdapter(t)

	got, err := a.Track(context.Background(), "t4")
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	want := seedTracks()[4]
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if _, err := a.Track(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdapter_ClusterProfiles(t *testing.T) {
	a := newLoadedAdapter(t)

	got, err := a.ClusterProfiles(context.Background())
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 clusters, got %d", len(got))
	}

	tests := []struct {
		cluster    int
		size       int
		wantEnergy float64
		wantTempo  float64
	}{
		{cluster: 0, size: 2, wantEnergy: 0.3, wantTempo: 95},
		{cluster: 1, size: 2, wantEnergy: 0.8, wantTempo: 135},
		{cluster: 2, size: 1, wantEnergy: 0, wantTempo: 110},
	}
	for i, tt := range tests {
		p := got[i]
		if p.Cluster != tt.cluster || p.Size != tt.size {
			t.Fatalf("profile %d: expected cluster %d size %d, got %+v", i, tt.cluster, tt.size, p)
		}
		if math.Abs(p.Mean.Energy-tt.wantEnergy) > 1e-9 || math.Abs(p.Mean.Tempo-tt.wantTempo) > 1e-9 {
			t.Fatalf("profile %d: unexpected means %+v", i, p.Mean)
		}
	}
}

func TestAdapter_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	a, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if err := a.Load(context.Background(), seedTracks()); err != nil {
		t.Fatalf("load: %v", err)
	}
	a.Close()

	reopened, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if n, err := reopened.Count(context.Background()); err != nil || n != 5 {
		t.Fatalf("expected 5 persisted rows, got %d (err %v)", n, err)
	}
}
