package ports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

var (
	// ErrNoConfidentMatch indicates search results did not meet the confidence threshold.
	ErrNoConfidentMatch = errors.New("no confident match")
	// ErrInvalidLookup means neither an id nor a title was given.
	ErrInvalidLookup = errors.New("track lookup needs a spotify_id or a title")
	// ErrFeaturesUnavailable means the provider returned no usable audio features.
	ErrFeaturesUnavailable = errors.New("audio features unavailable")
)

// NoConfidentMatchError provides context for a failed track match.
type NoConfidentMatchError struct {
	Title  string
	Artist string
}

func (e NoConfidentMatchError) Error() string {
	if e.Title == "" && e.Artist == "" {
		return ErrNoConfidentMatch.Error()
	}
	return fmt.Sprintf("no confident match found for title %q artist %q", e.Title, e.Artist)
}

func (e NoConfidentMatchError) Is(target error) bool {
	return target == ErrNoConfidentMatch
}

// TrackLookup identifies a track either by provider id or by metadata.
type TrackLookup struct {
	ID     string `json:"spotify_id,omitempty"`
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
}

// Validate rejects an empty lookup.
func (l TrackLookup) Validate() error {
	if strings.TrimSpace(l.ID) == "" && strings.TrimSpace(l.Title) == "" {
		return ErrInvalidLookup
	}
	return nil
}

// AudioFeatureProvider resolves a real track and its ten acoustic features.
type AudioFeatureProvider interface {
	GetTrackFeatures(ctx context.Context, lookup TrackLookup) (domain.Track, error)
}
