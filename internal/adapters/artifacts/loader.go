// Package artifacts loads the clustered dataset and the fitted scaler and
// model from disk.
package artifacts

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ewilliams-labs/soundclusters/internal/core/analysis"
	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
	"github.com/ewilliams-labs/soundclusters/internal/core/services"
)

// Paths locates the three artifact files.
type Paths struct {
	Dataset string `yaml:"dataset"`
	Scaler  string `yaml:"scaler"`
	Model   string `yaml:"model"`
}

// Columns names the dataset's metadata columns. ID, Title and Artist are
// optional; Cluster is required.
type Columns struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Artist  string `yaml:"artist"`
	Cluster string `yaml:"cluster"`
}

// DefaultColumns matches the exported clustering dataset.
func DefaultColumns() Columns {
	return Columns{ID: "id_songs", Title: "name_song", Artist: "name_artists", Cluster: "Cluster"}
}

// trackNamespace scopes derived track ids.
var trackNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ewilliams-labs/soundclusters/tracks"))

type scalerFile struct {
	Features []string  `yaml:"features"`
	Mean     []float64 `yaml:"mean"`
	Scale    []float64 `yaml:"scale"`
}

type modelFile struct {
	Features  []string    `yaml:"features"`
	Centroids [][]float64 `yaml:"centroids"`
}

// Load reads and validates all three artifacts. Any failure is fatal to the caller.
func Load(p Paths, cols Columns) (*services.Artifacts, error) {
	hash := sha256.New()
	read := func(kind, path string) ([]byte, error) {
		if path == "" {
			return nil, fmt.Errorf("artifacts: %s path is empty", kind)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("artifacts: failed to read %s: %w", kind, err)
		}
		fmt.Fprintf(hash, "%s:%d:", kind, len(b))
		hash.Write(b)
		return b, nil
	}

	datasetBytes, err := read("dataset", p.Dataset)
	if err != nil {
		return nil, err
	}
	scalerBytes, err := read("scaler", p.Scaler)
	if err != nil {
		return nil, err
	}
	modelBytes, err := read("model", p.Model)
	if err != nil {
		return nil, err
	}

	ds, err := LoadDataset(bytes.NewReader(datasetBytes), cols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Dataset, err)
	}
	scaler, err := LoadScaler(bytes.NewReader(scalerBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Scaler, err)
	}
	model, err := LoadModel(bytes.NewReader(modelBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Model, err)
	}

	fingerprint := hex.EncodeToString(hash.Sum(nil))
	art, err := services.NewArtifacts(ds, scaler, model, fingerprint)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"rows":        ds.Len(),
		"clusters":    len(ds.ClusterIDs()),
		"k":           model.K(),
		"fingerprint": fingerprint[:12],
	}).Info("artifacts loaded")
	return art, nil
}

// LoadDataset parses a CSV with a header row. Every feature column and the
// cluster column must be present; other columns are ignored.
func LoadDataset(r io.Reader, cols Columns) (*domain.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("artifacts: dataset is empty")
		}
		return nil, fmt.Errorf("artifacts: failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[strings.ToLower(h)] = i
	}
	lookup := func(name string) (int, bool) {
		if name == "" {
			return -1, false
		}
		i, ok := index[strings.ToLower(name)]
		return i, ok
	}

	var featureCols [domain.FeatureCount]int
	for k, f := range domain.FeatureNames {
		i, ok := lookup(string(f))
		if !ok {
			return nil, fmt.Errorf("artifacts: dataset is missing feature column %q", f)
		}
		featureCols[k] = i
	}
	clusterCol, ok := lookup(cols.Cluster)
	if !ok {
		return nil, fmt.Errorf("artifacts: dataset is missing cluster column %q", cols.Cluster)
	}
	idCol, hasID := lookup(cols.ID)
	titleCol, hasTitle := lookup(cols.Title)
	artistCol, hasArtist := lookup(cols.Artist)

	var tracks []domain.Track
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("artifacts: %w", err)
		}
		line, _ := cr.FieldPos(0)

		vec := make([]float64, domain.FeatureCount)
		for k, col := range featureCols {
			v, err := parseFinite(record[col])
			if err != nil {
				return nil, fmt.Errorf("artifacts: line %d: %s: %w", line, domain.FeatureNames[k], err)
			}
			vec[k] = v
		}
		cluster, err := parseLabel(record[clusterCol])
		if err != nil {
			return nil, fmt.Errorf("artifacts: line %d: %s: %w", line, cols.Cluster, err)
		}
		features, _ := domain.FeaturesFromVector(vec)

		t := domain.Track{Features: features, Cluster: cluster}
		if hasID {
			t.ID = strings.TrimSpace(record[idCol])
		}
		if t.ID == "" {
			t.ID = derivedID(len(tracks), vec)
		}
		if hasTitle {
			t.Title = strings.TrimSpace(record[titleCol])
		}
		if hasArtist {
			t.Artist = cleanArtists(record[artistCol])
		}
		tracks = append(tracks, t)
	}

	if len(tracks) == 0 {
		return nil, errors.New("artifacts: dataset has a header but no rows")
	}
	return domain.NewDataset(tracks)
}

// LoadScaler decodes a YAML (or JSON) standard scaler.
func LoadScaler(r io.Reader) (*analysis.StandardScaler, error) {
	var doc scalerFile
	if err := decode(r, &doc); err != nil {
		return nil, fmt.Errorf("artifacts: invalid scaler: %w", err)
	}
	if err := checkFeatureOrder(doc.Features); err != nil {
		return nil, err
	}
	return analysis.NewStandardScaler(doc.Mean, doc.Scale)
}

// LoadModel decodes a YAML (or JSON) list of centroids.
func LoadModel(r io.Reader) (*analysis.KMeans, error) {
	var doc modelFile
	if err := decode(r, &doc); err != nil {
		return nil, fmt.Errorf("artifacts: invalid model: %w", err)
	}
	if err := checkFeatureOrder(doc.Features); err != nil {
		return nil, err
	}
	return analysis.NewKMeans(doc.Centroids)
}

func decode(r io.Reader, v any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("document is empty")
		}
		return err
	}
	return nil
}

// checkFeatureOrder verifies an artifact's recorded column order, when it has one.
func checkFeatureOrder(features []string) error {
	if len(features) == 0 {
		return nil
	}
	if len(features) != domain.FeatureCount {
		return fmt.Errorf("artifacts: fitted on %d features, want %d: %w", len(features), domain.FeatureCount, domain.ErrShapeMismatch)
	}
	for i, f := range features {
		if domain.FeatureName(strings.ToLower(f)) != domain.FeatureNames[i] {
			return fmt.Errorf("artifacts: feature %d is %q, want %q: %w", i, f, domain.FeatureNames[i], domain.ErrShapeMismatch)
		}
	}
	return nil
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", s)
	}
	return v, nil
}

// parseLabel accepts integral values written as floats, e.g. "2.0".
func parseLabel(s string) (int, error) {
	v, err := parseFinite(s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || v < 0 {
		return 0, fmt.Errorf("label %q is not a non-negative integer", s)
	}
	return int(v), nil
}

// cleanArtists turns a serialized list like "['A', 'B']" into "A, B".
func cleanArtists(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return s
	}
	parts := strings.Split(strings.Trim(s, "[]"), ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func derivedID(row int, vec []float64) string {
	key := strconv.Itoa(row) + ":" + strings.Trim(fmt.Sprint(vec), "[]")
	return uuid.NewSHA1(trackNamespace, []byte(key)).String()
}
