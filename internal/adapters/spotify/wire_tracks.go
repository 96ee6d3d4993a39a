package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
	"github.com/ewilliams-labs/soundclusters/internal/core/ports"
)

func (c *Client) getTrack(ctx context.Context, id string) (spotifyTrack, error) {
	resp, err := c.get(ctx, "/tracks/"+url.PathEscape(id), nil)
	if err != nil {
		return spotifyTrack{}, fmt.Errorf("spotify adapter: track request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return spotifyTrack{}, fmt.Errorf("spotify adapter: track %q: %w", id, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return spotifyTrack{}, fmt.Errorf("spotify adapter: track status %d", resp.StatusCode)
	}

	var track spotifyTrack
	if err := json.NewDecoder(resp.Body).Decode(&track); err != nil {
		return spotifyTrack{}, fmt.Errorf("spotify adapter: track decode error: %w", err)
	}
	return track, nil
}

// getAudioFeatures never invents values: an unavailable or all-zero payload is
// reported as ports.ErrFeaturesUnavailable.
func (c *Client) getAudioFeatures(ctx context.Context, id string) (spotifyAudioFeatures, error) {
	resp, err := c.get(ctx, "/audio-features/"+url.PathEscape(id), nil)
	if err != nil {
		return spotifyAudioFeatures{}, fmt.Errorf("spotify adapter: features request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound:
		logrus.WithFields(logrus.Fields{"track": id, "status": resp.StatusCode}).Warn("spotify adapter: audio features not available")
		return spotifyAudioFeatures{}, fmt.Errorf("spotify adapter: track %q: %w", id, ports.ErrFeaturesUnavailable)
	case resp.StatusCode != http.StatusOK:
		return spotifyAudioFeatures{}, fmt.Errorf("spotify adapter: features status %d", resp.StatusCode)
	}

	var features spotifyAudioFeatures
	if err := json.NewDecoder(resp.Body).Decode(&features); err != nil {
		return spotifyAudioFeatures{}, fmt.Errorf("spotify adapter: features decode error: %w", err)
	}
	if allFeaturesZero(features) {
		return spotifyAudioFeatures{}, fmt.Errorf("spotify adapter: track %q returned empty features: %w", id, ports.ErrFeaturesUnavailable)
	}
	return features, nil
}
