package domain

import (
	"errors"
	"fmt"
	"sort"
)

// Track represents one clustered track row.
type Track struct {
	ID       string        `json:"id"`
	Title    string        `json:"title,omitempty"`
	Artist   string        `json:"artist,omitempty"`
	Features AudioFeatures `json:"features"`
	Cluster  int           `json:"cluster"`
}

// Dataset is the ordered, read-only collection of clustered tracks.
// It is built once at startup and never mutated afterwards.
type Dataset struct {
	tracks   []Track
	matrix   [][]float64
	labels   []int
	clusters []int
	byID     map[string]int
}

// NewDataset copies tracks into an immutable Dataset.
func NewDataset(tracks []Track) (*Dataset, error) {
	if len(tracks) == 0 {
		return nil, errors.New("domain: dataset has no rows")
	}

	d := &Dataset{
		tracks: make([]Track, len(tracks)),
		matrix: make([][]float64, len(tracks)),
		labels: make([]int, len(tracks)),
		byID:   make(map[string]int, len(tracks)),
	}
	copy(d.tracks, tracks)

	seen := make(map[int]struct{})
	for i, t := range d.tracks {
		if t.Cluster < 0 {
			return nil, fmt.Errorf("domain: row %d has negative cluster %d", i, t.Cluster)
		}
		d.matrix[i] = t.Features.Vector()
		d.labels[i] = t.Cluster
		if _, dup := d.byID[t.ID]; !dup {
			d.byID[t.ID] = i
		}
		if _, ok := seen[t.Cluster]; !ok {
			seen[t.Cluster] = struct{}{}
			d.clusters = append(d.clusters, t.Cluster)
		}
	}
	sort.Ints(d.clusters)

	return d, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.tracks) }

// At returns row i.
func (d *Dataset) At(i int) Track { return d.tracks[i] }

// Lookup finds a row by id. With duplicate ids the first row wins.
func (d *Dataset) Lookup(id string) (Track, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Track{}, false
	}
	return d.tracks[i], true
}

// Tracks returns a copy of all rows in dataset order.
func (d *Dataset) Tracks() []Track {
	out := make([]Track, len(d.tracks))
	copy(out, d.tracks)
	return out
}

// Head returns up to n rows from the start of the dataset.
func (d *Dataset) Head(n int) []Track {
	if n > len(d.tracks) {
		n = len(d.tracks)
	}
	if n < 0 {
		n = 0
	}
	out := make([]Track, n)
	copy(out, d.tracks[:n])
	return out
}

// Matrix returns the raw N×10 feature matrix. Callers must not modify it.
func (d *Dataset) Matrix() [][]float64 { return d.matrix }

// Labels returns the cluster label of every row. Callers must not modify it.
func (d *Dataset) Labels() []int { return d.labels }

// ClusterIDs returns the distinct labels in ascending order.
func (d *Dataset) ClusterIDs() []int {
	out := make([]int, len(d.clusters))
	copy(out, d.clusters)
	return out
}

// ClusterSizes counts rows per label.
func (d *Dataset) ClusterSizes() map[int]int {
	sizes := make(map[int]int, len(d.clusters))
	for _, l := range d.labels {
		sizes[l]++
	}
	return sizes
}

// InCluster returns up to limit rows with the given label, in dataset order.
// A non-positive limit returns every matching row.
func (d *Dataset) InCluster(cluster, limit int) []Track {
	var out []Track
	for _, t := range d.tracks {
		if t.Cluster != cluster {
			continue
		}
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
