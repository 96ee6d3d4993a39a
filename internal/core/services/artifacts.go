package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
	"github.com/ewilliams-labs/soundclusters/internal/core/ports"
)

// logger is swapped in tests.
var logger logrus.FieldLogger = logrus.StandardLogger()

// Artifacts is the read-only state every dashboard operation works from.
// It is built once at startup and shared by all requests without locking.
type Artifacts struct {
	Dataset *domain.Dataset
	Scaler  ports.Scaler
	Model   ports.ClusterModel
	// Fingerprint identifies the artifact files; memo keys are scoped by it.
	Fingerprint string
}

// NewArtifacts checks that the dataset, scaler and model agree with each other.
func NewArtifacts(ds *domain.Dataset, scaler ports.Scaler, model ports.ClusterModel, fingerprint string) (*Artifacts, error) {
	if ds == nil || scaler == nil || model == nil {
		return nil, errors.New("service: dataset, scaler and model are all required")
	}
	if scaler.Dims() != domain.FeatureCount {
		return nil, fmt.Errorf("service: scaler expects %d features, want %d: %w", scaler.Dims(), domain.FeatureCount, domain.ErrShapeMismatch)
	}
	if model.Dims() != domain.FeatureCount {
		return nil, fmt.Errorf("service: model expects %d features, want %d: %w", model.Dims(), domain.FeatureCount, domain.ErrShapeMismatch)
	}

	k := model.K()
	for _, id := range ds.ClusterIDs() {
		if id >= k {
			return nil, fmt.Errorf("service: dataset label %d outside model range [0, %d)", id, k)
		}
	}

	art := &Artifacts{Dataset: ds, Scaler: scaler, Model: model, Fingerprint: fingerprint}
	for _, m := range art.EmptyMoods() {
		c, _ := m.Cluster()
		logger.WithFields(logrus.Fields{"mood": m, "cluster": c}).
			Warn("mood maps to a cluster with no rows in the dataset; its recommendations will be empty")
	}
	return art, nil
}

// EmptyMoods lists the moods whose cluster has no rows, in offer order.
func (a *Artifacts) EmptyMoods() []domain.Mood {
	sizes := a.Dataset.ClusterSizes()
	var out []domain.Mood
	for _, m := range domain.Moods {
		if c, _ := m.Cluster(); sizes[c] == 0 {
			out = append(out, m)
		}
	}
	return out
}
