package ports

import (
	"context"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

// TrackCatalog serves the tabular views over the clustered dataset.
type TrackCatalog interface {
	// Load replaces the catalog contents with tracks, keeping their order.
	Load(ctx context.Context, tracks []domain.Track) error
	Count(ctx context.Context) (int, error)
	Sample(ctx context.Context, limit int) ([]domain.Track, error)
	ByCluster(ctx context.Context, cluster int, limit int) ([]domain.Track, error)
	// Track returns domain.ErrNotFound for an unknown id.
	Track(ctx context.Context, id string) (domain.Track, error)
	ClusterProfiles(ctx context.Context) ([]domain.ClusterProfile, error)
}
