// Package spotify resolves real tracks and their audio features from the
// Spotify Web API.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
	"github.com/ewilliams-labs/soundclusters/internal/core/ports"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	defaultTimeout  = 10 * time.Second
)

// Config holds the app credentials, endpoints and retry policy. Zero values
// fall back to the package defaults.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string
	MaxRetries   int
	RetryBackoff time.Duration
	Timeout      time.Duration
}

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      retryPolicy
}

// Option customizes a Client.
type Option func(*Client)

// WithRetry sets how many attempts a request gets and the first backoff,
// which doubles on each further attempt.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retry = newRetryPolicy(attempts, backoff)
	}
}

// compile-time interface assertion
var _ ports.AudioFeatureProvider = (*Client)(nil)

// NewClient constructs a client around an already authorized http.Client.
func NewClient(httpClient *http.Client, baseURL string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		retry:      newRetryPolicy(0, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientCredentials authorizes with the client credentials flow. Tokens are
// fetched lazily on the first request and refreshed when they expire.
func NewClientCredentials(ctx context.Context, cfg Config) *Client {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}
	// The token endpoint is called with the same timeout as the API.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	httpClient := cc.Client(ctx)
	httpClient.Timeout = timeout

	return NewClient(httpClient, baseURL, WithRetry(cfg.MaxRetries, cfg.RetryBackoff))
}

// GetTrackFeatures resolves a track by id, or by title and artist, and
// attaches its ten audio features.
func (c *Client) GetTrackFeatures(ctx context.Context, lookup ports.TrackLookup) (domain.Track, error) {
	if err := lookup.Validate(); err != nil {
		return domain.Track{}, err
	}

	var (
		track spotifyTrack
		err   error
	)
	if lookup.ID != "" {
		track, err = c.getTrack(ctx, lookup.ID)
	} else {
		track, err = c.searchTrack(ctx, lookup.Title, lookup.Artist)
	}
	if err != nil {
		return domain.Track{}, err
	}

	features, err := c.getAudioFeatures(ctx, track.ID)
	if err != nil {
		return domain.Track{}, err
	}
	return mapTrackToDomain(track, features), nil
}
