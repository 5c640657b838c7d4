package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/behruzmistry/genrebendpro/internal/shared"
)

// 1. Constants and types
const (
	defaultBaseURL      = "http://ws.audioscrobbler.com/2.0/"
	defaultTimeout      = 15 * time.Second
	defaultRateLimit    = 250 * time.Millisecond // Last.fm allows ~5 requests per second per key
	defaultBurstLimit   = 4
	defaultMaxRetries   = 3
	defaultInitialDelay = 1 * time.Second
	defaultMaxDelay     = 30 * time.Second
	similarTracksLimit  = 5
)

// Config holds configuration for the Last.fm API client
type Config struct {
	BaseURL      string        `json:"base_url"`
	APIKey       string        `json:"api_key"`
	Timeout      time.Duration `json:"timeout"`
	MaxRetries   int           `json:"max_retries"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	RateLimit    time.Duration `json:"rate_limit"`
	BurstLimit   int           `json:"burst_limit"`
	Debug        bool          `json:"debug"`
}

// Client represents a Last.fm API client
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *rate.Limiter
}

// 2. Constructor and configuration

// DefaultConfig returns sensible defaults for the Last.fm API client
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:      defaultBaseURL,
		APIKey:       apiKey,
		Timeout:      defaultTimeout,
		MaxRetries:   defaultMaxRetries,
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
		RateLimit:    defaultRateLimit,
		BurstLimit:   defaultBurstLimit,
	}
}

// NewClient creates a new Last.fm API client with default configuration
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(DefaultConfig(apiKey))
}

// NewClientWithConfig creates a new Last.fm API client with custom configuration
func NewClientWithConfig(config Config) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: config.Timeout},
		config:      config,
		rateLimiter: rate.NewLimiter(rate.Every(config.RateLimit), config.BurstLimit),
	}
}

// GetConfig returns the current client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// 3. Core HTTP methods (private)

// get makes a single rate-limited GET request to the Last.fm API
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	params.Set("api_key", c.config.APIKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, "GET", c.config.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", shared.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, &shared.HTTPError{
				StatusCode: http.StatusGatewayTimeout,
				Status:     "Gateway Timeout",
				Message:    err.Error(),
			}
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := shared.TruncateString(string(body), 200)
		return nil, &shared.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    message,
		}
	}

	return body, nil
}

// getWithRetry makes a GET request with retry logic
func (c *Client) getWithRetry(ctx context.Context, params url.Values) ([]byte, error) {
	var result []byte
	var err error

	retryErr := shared.RetryWithBackoffForHTTPWithDebug(
		c.config.MaxRetries,
		c.config.InitialDelay,
		c.config.MaxDelay,
		func() error {
			result, err = c.get(ctx, params)
			return err
		},
		c.config.Debug,
	)

	if retryErr != nil {
		return nil, retryErr
	}
	return result, nil
}

// 4. Public API methods

// GetTrackInfo fetches track metadata including top tags and play count
func (c *Client) GetTrackInfo(ctx context.Context, artist, title string) (*TrackInfo, error) {
	if artist == "" || title == "" {
		return nil, fmt.Errorf("artist and title cannot be empty")
	}

	params := url.Values{}
	params.Set("method", "track.getInfo")
	params.Set("artist", artist)
	params.Set("track", title)

	body, err := c.getWithRetry(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch track info for %s - %s: %w", artist, title, err)
	}

	var result struct {
		Track *TrackInfo `json:"track"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal track info: %w", err)
	}

	if result.Track == nil || result.Track.Name == "" {
		return nil, nil // not found is a normal outcome
	}
	return result.Track, nil
}

// GetArtistInfo fetches artist metadata including tags
func (c *Client) GetArtistInfo(ctx context.Context, artist string) (*ArtistInfo, error) {
	if artist == "" {
		return nil, fmt.Errorf("artist cannot be empty")
	}

	params := url.Values{}
	params.Set("method", "artist.getInfo")
	params.Set("artist", artist)

	body, err := c.getWithRetry(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artist info for %s: %w", artist, err)
	}

	var result struct {
		Artist *ArtistInfo `json:"artist"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artist info: %w", err)
	}
	return result.Artist, nil
}

// GetSimilarTracks fetches up to similarTracksLimit similar tracks
func (c *Client) GetSimilarTracks(ctx context.Context, artist, title string) ([]SimilarTrack, error) {
	if artist == "" || title == "" {
		return nil, fmt.Errorf("artist and title cannot be empty")
	}

	params := url.Values{}
	params.Set("method", "track.getSimilar")
	params.Set("artist", artist)
	params.Set("track", title)
	params.Set("limit", fmt.Sprintf("%d", similarTracksLimit))

	body, err := c.getWithRetry(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch similar tracks for %s - %s: %w", artist, title, err)
	}

	var result struct {
		SimilarTracks struct {
			Track []SimilarTrack `json:"track"`
		} `json:"similartracks"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal similar tracks: %w", err)
	}

	tracks := result.SimilarTracks.Track
	if len(tracks) > similarTracksLimit {
		tracks = tracks[:similarTracksLimit]
	}
	return tracks, nil
}
