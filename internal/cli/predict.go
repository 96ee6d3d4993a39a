package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/soundclusters/internal/config"
	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
	"github.com/ewilliams-labs/soundclusters/internal/core/ports"
)

var (
	predictFeatures []float64 // Ten raw feature values in model column order
	spotifyID       string    // Classify a Spotify track by id
	spotifyTitle    string    // Classify a Spotify track found by title
	spotifyArtist   string    // Narrows the title search
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Assign a hypothetical or Spotify track to a cluster",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd, os.Getenv)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		features := predictFeatures
		if !cmd.Flags().Changed("features") {
			features = nil
		}
		lookup := ports.TrackLookup{ID: spotifyID, Title: spotifyTitle, Artist: spotifyArtist}
		if err := predict(cmd.Context(), cfg, features, lookup, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Prediction failed: %v", err)
		}
	},
}

// predict classifies either a Spotify lookup or raw features. With neither,
// the default slider values are classified.
func predict(ctx context.Context, cfg config.Config, features []float64, lookup ports.TrackLookup, out io.Writer) error {
	cfg.Storage.Driver = config.DriverNone
	svc, closeCatalog, err := buildDashboard(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCatalog()

	var prediction domain.Prediction
	switch {
	case lookup != (ports.TrackLookup{}):
		prediction, err = svc.PredictSpotifyTrack(ctx, lookup)
	case features != nil:
		var a domain.AudioFeatures
		a, err = domain.FeaturesFromVector(features)
		if err != nil {
			return err
		}
		prediction, err = svc.PredictFeatures(ctx, a)
	default:
		prediction, err = svc.PredictFeatures(ctx, domain.DefaultFeatures())
	}
	if err != nil {
		return err
	}

	if t := prediction.Track; t.Title != "" {
		fmt.Fprintf(out, "track:   %s - %s\n", t.Artist, t.Title)
	}
	fmt.Fprintf(out, "cluster: %d\n", prediction.Cluster)
	if desc := domain.DescribeCluster(prediction.Cluster); desc != "" {
		fmt.Fprintf(out, "profile: %s\n", desc)
	}
	return nil
}

func init() {
	predictCmd.Flags().Float64SliceVar(&predictFeatures, "features", nil, "Comma-separated feature values: "+featureList())
	predictCmd.Flags().StringVar(&spotifyID, "spotify-id", "", "Spotify track id")
	predictCmd.Flags().StringVar(&spotifyTitle, "title", "", "Spotify track title")
	predictCmd.Flags().StringVar(&spotifyArtist, "artist", "", "Spotify artist name")
}

func featureList() string {
	s := ""
	for i, f := range domain.FeatureNames {
		if i > 0 {
			s += ","
		}
		s += string(f)
	}
	return s
}
