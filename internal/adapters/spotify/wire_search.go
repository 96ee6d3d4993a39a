package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ewilliams-labs/soundclusters/internal/core/ports"
)

const searchLimit = 5

// searchQuery builds the field-filtered q parameter. Normalization keeps
// release qualifiers out of the filter, falling back to the raw input when
// nothing else is left.
func searchQuery(title string, artist string) string {
	q := "track:" + fallbackIfEmpty(normalizeSearchInput(title), title)
	if artist != "" {
		q += " artist:" + fallbackIfEmpty(normalizeSearchInput(artist), artist)
	}
	return q
}

// searchTrack returns the best-scoring candidate above the match thresholds.
func (c *Client) searchTrack(ctx context.Context, title string, artist string) (spotifyTrack, error) {
	q := searchQuery(title, artist)
	logrus.WithField("q", q).Debug("spotify adapter: search request")

	resp, err := c.get(ctx, "/search", url.Values{
		"q":     {q},
		"type":  {"track"},
		"limit": {strconv.Itoa(searchLimit)},
	})
	if err != nil {
		return spotifyTrack{}, fmt.Errorf("spotify adapter: search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return spotifyTrack{}, fmt.Errorf("spotify adapter: search status %d", resp.StatusCode)
	}

	var body spotifySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return spotifyTrack{}, fmt.Errorf("spotify adapter: search decode error: %w", err)
	}

	items := body.Tracks.Items
	if len(items) > searchLimit {
		items = items[:searchLimit]
	}

	match := newMatchQuery(title, artist)
	bestScore := 0.0
	bestIndex := -1
	for i, candidate := range items {
		score, ok := match.score(candidate)
		logrus.WithFields(logrus.Fields{
			"candidate": candidate.Name,
			"artists":   joinArtistNames(candidate),
			"score":     fmt.Sprintf("%.2f", score),
			"accepted":  ok,
		}).Debug("spotify adapter: match candidate")
		if ok && score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	if bestIndex == -1 {
		return spotifyTrack{}, fmt.Errorf("spotify adapter: %w", ports.NoConfidentMatchError{Title: title, Artist: artist})
	}
	return items[bestIndex], nil
}
