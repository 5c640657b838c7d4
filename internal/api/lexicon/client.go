package lexicon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/behruzmistry/genrebendpro/internal/shared"
)

// 1. Constants and types
const (
	defaultBaseURL    = "http://localhost:48624"
	defaultAPIVersion = "v1"
	defaultTimeout    = 30 * time.Second
	defaultPageSize   = 100
)

// Config holds configuration for the Lexicon API client
type Config struct {
	BaseURL    string        `json:"base_url"`
	APIVersion string        `json:"api_version"`
	Timeout    time.Duration `json:"timeout"`
	PageSize   int           `json:"page_size"`
	Debug      bool          `json:"debug"`
}

// Client talks to the Lexicon library API. Unlike the research sources this
// dependency is load-bearing: any failure surfaces as ErrLibraryUnavailable
// and aborts the run.
type Client struct {
	httpClient *http.Client
	config     Config
}

// 2. Constructor and configuration

// DefaultConfig returns sensible defaults for the Lexicon API client
func DefaultConfig() Config {
	return Config{
		BaseURL:    defaultBaseURL,
		APIVersion: defaultAPIVersion,
		Timeout:    defaultTimeout,
		PageSize:   defaultPageSize,
	}
}

// NewClient creates a new Lexicon API client
func NewClient(baseURL, apiVersion string) *Client {
	config := DefaultConfig()
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if apiVersion != "" {
		config.APIVersion = apiVersion
	}
	return NewClientWithConfig(config)
}

// NewClientWithConfig creates a new Lexicon API client with custom configuration
func NewClientWithConfig(config Config) *Client {
	if config.PageSize <= 0 {
		config.PageSize = defaultPageSize
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
}

// GetConfig returns the current client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// 3. Core HTTP methods (private)

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.config.BaseURL, c.config.APIVersion, path)
}

// request executes a JSON request against the Lexicon API. Every transport
// or server failure is wrapped in ErrLibraryUnavailable.
func (c *Client) request(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLibraryUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", shared.ErrLibraryUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		message := shared.TruncateString(string(raw), 200)
		return nil, fmt.Errorf("%w: HTTP %d: %s", shared.ErrLibraryUnavailable, resp.StatusCode, message)
	}

	return raw, nil
}

// 4. Public API methods

// Status checks that the Lexicon API is reachable
func (c *Client) Status(ctx context.Context) error {
	_, err := c.request(ctx, http.MethodGet, "status", nil)
	return err
}

// ListTracks fetches one page of tracks from the library
func (c *Client) ListTracks(ctx context.Context, limit, offset int) ([]shared.Track, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	body, err := c.request(ctx, http.MethodGet, "tracks?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Tracks []shared.Track `json:"tracks"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tracks: %w", err)
	}
	return result.Tracks, nil
}

// ListAllTracks fetches every track in the library, paginating until the
// server returns a short page.
func (c *Client) ListAllTracks(ctx context.Context) ([]shared.Track, error) {
	var all []shared.Track
	offset := 0

	for {
		page, err := c.ListTracks(ctx, c.config.PageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		offset += c.config.PageSize
		if len(page) < c.config.PageSize {
			break
		}
	}
	return all, nil
}

// ListPlaylists fetches the playlist taxonomy snapshot
func (c *Client) ListPlaylists(ctx context.Context) ([]shared.Playlist, error) {
	body, err := c.request(ctx, http.MethodGet, "playlists", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Playlists []shared.Playlist `json:"playlists"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal playlists: %w", err)
	}
	return result.Playlists, nil
}

// UpdateTrackGenre sets the genre label of a track
func (c *Client) UpdateTrackGenre(ctx context.Context, trackID, genre string) error {
	payload := map[string]string{"genre": genre}
	_, err := c.request(ctx, http.MethodPut, "tracks/"+url.PathEscape(trackID), payload)
	return err
}

// AddToPlaylist adds a track to a playlist
func (c *Client) AddToPlaylist(ctx context.Context, playlistID, trackID string) error {
	payload := map[string]string{"trackId": trackID}
	_, err := c.request(ctx, http.MethodPost, "playlists/"+url.PathEscape(playlistID)+"/tracks", payload)
	return err
}

// GetPlaylistTracks returns the IDs of the tracks already in a playlist
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistID string) ([]string, error) {
	body, err := c.request(ctx, http.MethodGet, "playlists/"+url.PathEscape(playlistID)+"/tracks", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Tracks []struct {
			ID string `json:"id"`
		} `json:"tracks"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal playlist tracks: %w", err)
	}

	ids := make([]string, 0, len(result.Tracks))
	for _, t := range result.Tracks {
		ids = append(ids, t.ID)
	}
	return ids, nil
}
