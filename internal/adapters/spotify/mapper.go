package spotify

import (
	"strings"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

// mapTrackToDomain converts a raw Spotify track and its audio features to a domain track.
func mapTrackToDomain(st spotifyTrack, features spotifyAudioFeatures) domain.Track {
	artistNames := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artistNames = append(artistNames, a.Name)
	}

	// The features payload carries its own duration; fall back to the track's.
	duration := features.DurationMs
	if duration == 0 {
		duration = st.DurationMs
	}

	return domain.Track{
		ID:     st.ID,
		Title:  st.Name,
		Artist: strings.Join(artistNames, ", "),
		Features: domain.AudioFeatures{
			Danceability:     features.Danceability,
			Energy:           features.Energy,
			Loudness:         features.Loudness,
			Speechiness:      features.Speechiness,
			Acousticness:     features.Acousticness,
			Instrumentalness: features.Instrumentalness,
			Liveness:         features.Liveness,
			Valence:          features.Valence,
			Tempo:            features.Tempo,
			DurationMs:       float64(duration),
		},
	}
}

func allFeaturesZero(f spotifyAudioFeatures) bool {
	return f.Danceability == 0 &&
		f.Energy == 0 &&
		f.Loudness == 0 &&
		f.Speechiness == 0 &&
		f.Acousticness == 0 &&
		f.Instrumentalness == 0 &&
		f.Liveness == 0 &&
		f.Valence == 0 &&
		f.Tempo == 0
}
