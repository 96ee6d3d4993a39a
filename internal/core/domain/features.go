package domain

import (
	"fmt"
	"math"
	"strings"
)

// FeatureName identifies one acoustic feature column.
type FeatureName string

const (
	FeatureDanceability     FeatureName = "danceability"
	FeatureEnergy           FeatureName = "energy"
	FeatureLoudness         FeatureName = "loudness"
	FeatureSpeechiness      FeatureName = "speechiness"
	FeatureAcousticness     FeatureName = "acousticness"
	FeatureInstrumentalness FeatureName = "instrumentalness"
	FeatureLiveness         FeatureName = "liveness"
	FeatureValence          FeatureName = "valence"
	FeatureTempo            FeatureName = "tempo"
	FeatureDurationMs       FeatureName = "duration_ms"
)

// FeatureCount is the dimensionality the scaler and model were fitted on.
const FeatureCount = 10

// FeatureNames is the column order the scaler and model expect.
// Changing it silently breaks every prediction.
var FeatureNames = [FeatureCount]FeatureName{
	FeatureDanceability,
	FeatureEnergy,
	FeatureLoudness,
	FeatureSpeechiness,
	FeatureAcousticness,
	FeatureInstrumentalness,
	FeatureLiveness,
	FeatureValence,
	FeatureTempo,
	FeatureDurationMs,
}

// ParseFeature resolves a feature name, case-insensitively.
func ParseFeature(name string) (FeatureName, error) {
	want := FeatureName(strings.ToLower(strings.TrimSpace(name)))
	for _, f := range FeatureNames {
		if f == want {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFeature, name)
}

// Index is the feature's position in model column order, or -1.
func (f FeatureName) Index() int {
	for i, n := range FeatureNames {
		if n == f {
			return i
		}
	}
	return -1
}

// Label is the human readable feature name used by the views.
func (f FeatureName) Label() string {
	switch f {
	case FeatureDurationMs:
		return "Duration (ms)"
	case "":
		return ""
	default:
		s := string(f)
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

// AudioFeatures holds the ten acoustic features of a track.
type AudioFeatures struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Loudness         float64 `json:"loudness"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	DurationMs       float64 `json:"duration_ms"`
}

// Vector returns the features in FeatureNames order.
func (a AudioFeatures) Vector() []float64 {
	return []float64{
		a.Danceability,
		a.Energy,
		a.Loudness,
		a.Speechiness,
		a.Acousticness,
		a.Instrumentalness,
		a.Liveness,
		a.Valence,
		a.Tempo,
		a.DurationMs,
	}
}

// FeaturesFromVector is the inverse of Vector.
func FeaturesFromVector(v []float64) (AudioFeatures, error) {
	if len(v) != FeatureCount {
		return AudioFeatures{}, fmt.Errorf("%w: got %d values, want %d", ErrShapeMismatch, len(v), FeatureCount)
	}
	return AudioFeatures{
		Danceability:     v[0],
		Energy:           v[1],
		Loudness:         v[2],
		Speechiness:      v[3],
		Acousticness:     v[4],
		Instrumentalness: v[5],
		Liveness:         v[6],
		Valence:          v[7],
		Tempo:            v[8],
		DurationMs:       v[9],
	}, nil
}

// Value returns a single feature by name.
func (a AudioFeatures) Value(name FeatureName) (float64, error) {
	v := a.Vector()
	for i, f := range FeatureNames {
		if f == name {
			return v[i], nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
}

// Range is a closed interval accepted for a feature input.
type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Step    float64 `json:"step"`
}

// FeatureBounds are the input ranges offered for a hypothetical track.
var FeatureBounds = map[FeatureName]Range{
	FeatureDanceability:     {Min: 0, Max: 1, Default: 0.5, Step: 0.01},
	FeatureEnergy:           {Min: 0, Max: 1, Default: 0.5, Step: 0.01},
	FeatureLoudness:         {Min: -60, Max: 0, Default: -20, Step: 0.1},
	FeatureSpeechiness:      {Min: 0, Max: 1, Default: 0.1, Step: 0.01},
	FeatureAcousticness:     {Min: 0, Max: 1, Default: 0.5, Step: 0.01},
	FeatureInstrumentalness: {Min: 0, Max: 1, Default: 0, Step: 0.01},
	FeatureLiveness:         {Min: 0, Max: 1, Default: 0.2, Step: 0.01},
	FeatureValence:          {Min: 0, Max: 1, Default: 0.5, Step: 0.01},
	FeatureTempo:            {Min: 50, Max: 200, Default: 120, Step: 0.5},
	FeatureDurationMs:       {Min: 60000, Max: 400000, Default: 200000, Step: 1000},
}

// DefaultFeatures returns the initial input values.
func DefaultFeatures() AudioFeatures {
	v := make([]float64, FeatureCount)
	for i, f := range FeatureNames {
		v[i] = FeatureBounds[f].Default
	}
	a, _ := FeaturesFromVector(v)
	return a
}

// FeatureRangeError reports an input outside its allowed range.
type FeatureRangeError struct {
	Feature FeatureName
	Value   float64
	Range   Range
}

func (e *FeatureRangeError) Error() string {
	return fmt.Sprintf("%s=%g outside [%g, %g]", e.Feature, e.Value, e.Range.Min, e.Range.Max)
}

func (e *FeatureRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// CheckBounds rejects non-finite values and values outside FeatureBounds.
func CheckBounds(a AudioFeatures) error {
	v := a.Vector()
	for i, f := range FeatureNames {
		r := FeatureBounds[f]
		if math.IsNaN(v[i]) || v[i] < r.Min || v[i] > r.Max {
			return &FeatureRangeError{Feature: f, Value: v[i], Range: r}
		}
	}
	return nil
}
