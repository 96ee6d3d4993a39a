package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ewilliams-labs/soundclusters/internal/adapters/artifacts"
	"github.com/ewilliams-labs/soundclusters/internal/adapters/ollama"
	"github.com/ewilliams-labs/soundclusters/internal/adapters/spotify"
	"github.com/ewilliams-labs/soundclusters/internal/adapters/sqlite"
	"github.com/ewilliams-labs/soundclusters/internal/config"
	"github.com/ewilliams-labs/soundclusters/internal/core/services"
)

// buildDashboard loads the artifacts and wires every configured adapter into
// a Dashboard. The returned closer releases the catalog.
func buildDashboard(ctx context.Context, cfg config.Config) (*services.Dashboard, func() error, error) {
	closer := func() error { return nil }

	art, err := artifacts.Load(cfg.Artifacts.Paths, cfg.Artifacts.Columns)
	if err != nil {
		return nil, closer, err
	}

	opts := []services.Option{
		services.WithSampleRows(cfg.Dashboard.SampleRows),
		services.WithMoodRows(cfg.Dashboard.MoodRows),
		services.WithMemoization(cfg.Dashboard.Memoize),
	}

	var storagePath string
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		storagePath = cfg.Storage.Path
	case config.DriverMemory:
		storagePath = ":memory:"
	case config.DriverNone:
	default:
		return nil, closer, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
	if storagePath != "" {
		catalog, err := sqlite.NewAdapter(storagePath)
		if err != nil {
			return nil, closer, fmt.Errorf("failed to initialize catalog: %w", err)
		}
		closer = catalog.Close
		if err := catalog.Load(ctx, art.Dataset.Tracks()); err != nil {
			_ = catalog.Close()
			return nil, func() error { return nil }, fmt.Errorf("failed to ingest dataset: %w", err)
		}
		opts = append(opts, services.WithCatalog(catalog))
		logrus.WithFields(logrus.Fields{"driver": cfg.Storage.Driver, "path": storagePath}).Info("track catalog ready")
	}

	if cfg.Spotify.Enabled() {
		opts = append(opts, services.WithFeatureProvider(spotify.NewClientCredentials(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			BaseURL:      cfg.Spotify.BaseURL,
			TokenURL:     cfg.Spotify.TokenURL,
			MaxRetries:   cfg.Spotify.MaxRetries,
			RetryBackoff: cfg.Spotify.RetryBackoff,
		})))
		logrus.Info("spotify feature provider enabled")
	}

	if cfg.Ollama.Enabled() {
		opts = append(opts, services.WithMoodInterpreter(ollama.NewClient(cfg.Ollama.Host, cfg.Ollama.Model)))
		logrus.WithField("host", cfg.Ollama.Host).Info("ollama mood interpreter enabled")
	}

	svc, err := services.NewDashboard(art, opts...)
	if err != nil {
		_ = closer()
		return nil, func() error { return nil }, err
	}
	return svc, closer, nil
}
