package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/behruzmistry/genrebendpro/internal/shared"
)

// 1. Constants and types
const (
	defaultBaseURL      = "https://musicbrainz.org/ws/2/"
	defaultUserAgent    = "GenreBend-Pro/1.0 ( https://github.com/behruzmistry/genrebendpro )"
	defaultTimeout      = 30 * time.Second
	defaultRateLimit    = 1100 * time.Millisecond // MusicBrainz allows 1 request per second for anonymous clients
	defaultBurstLimit   = 1
	defaultMaxRetries   = 3
	defaultInitialDelay = 2 * time.Second
	defaultMaxDelay     = 60 * time.Second
	searchLimit         = 5
	matchThreshold      = 0.6
)

// Config holds configuration for MusicBrainz API client
type Config struct {
	BaseURL      string        `json:"base_url"`
	UserAgent    string        `json:"user_agent"`
	Timeout      time.Duration `json:"timeout"`
	MaxRetries   int           `json:"max_retries"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	RateLimit    time.Duration `json:"rate_limit"`
	BurstLimit   int           `json:"burst_limit"`
	Debug        bool          `json:"debug"`
}

// Client represents a MusicBrainz API client
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *rate.Limiter
}

// 2. Constructor and configuration

// DefaultConfig returns sensible defaults for MusicBrainz API client
func DefaultConfig() Config {
	return Config{
		BaseURL:      defaultBaseURL,
		UserAgent:    defaultUserAgent,
		Timeout:      defaultTimeout,
		MaxRetries:   defaultMaxRetries,
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
		RateLimit:    defaultRateLimit,
		BurstLimit:   defaultBurstLimit,
	}
}

// NewClient creates a new MusicBrainz API client with default configuration
func NewClient(userAgent string) *Client {
	config := DefaultConfig()
	if userAgent != "" {
		config.UserAgent = userAgent
	}
	return NewClientWithConfig(config)
}

// NewClientWithConfig creates a new MusicBrainz API client with custom configuration
func NewClientWithConfig(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:      config,
		rateLimiter: rate.NewLimiter(rate.Every(config.RateLimit), config.BurstLimit),
	}
}

// GetConfig returns the current client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// 3. Core HTTP methods (private)

// makeRequest creates and executes an HTTP request with proper headers
func (c *Client) makeRequest(ctx context.Context, path string) (*http.Response, error) {
	reqURL, err := url.Parse(c.config.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// get makes a single GET request to the MusicBrainz API
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.makeRequest(ctx, path)
	if err != nil {
		// Handle network timeouts
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
func (c *Client) getWithRetry(ctx context.Context, path string) ([]byte, error) {
	var result []byte
	var err error

	retryErr := shared.RetryWithBackoffForHTTPWithDebug(
		c.config.MaxRetries,
		c.config.InitialDelay,
		c.config.MaxDelay,
		func() error {
			result, err = c.get(ctx, path)
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

// SearchRecording searches recordings by artist and title and returns the
// best-matching one together with its genre tags. A nil result without an
// error means nothing matched well enough.
func (c *Client) SearchRecording(ctx context.Context, artist, title string) (*Recording, error) {
	if artist == "" || title == "" {
		return nil, fmt.Errorf("artist and title cannot be empty")
	}

	query := fmt.Sprintf("artist:\"%s\" AND recording:\"%s\"", artist, title)
	path := fmt.Sprintf("recording?query=%s&limit=%d", url.QueryEscape(query), searchLimit)

	body, err := c.getWithRetry(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to search recording: %w", err)
	}

	var searchResult struct {
		Recordings []Recording `json:"recordings"`
	}
	if err := json.Unmarshal(body, &searchResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recording search result: %w", err)
	}

	best, score := bestMatch(artist, title, searchResult.Recordings)
	if best == nil || score < matchThreshold {
		return nil, nil
	}
	best.MatchScore = score
	return best, nil
}

// 5. Helper/utility functions

// bestMatch scores candidates by word overlap of title and artist credit,
// weighting artist higher than title, and returns the best one.
func bestMatch(artist, title string, recordings []Recording) (*Recording, float64) {
	var best *Recording
	bestScore := 0.0

	for i := range recordings {
		rec := &recordings[i]
		titleScore := wordOverlap(title, rec.Title)
		artistScore := wordOverlap(artist, rec.ArtistCreditPhrase())
		score := titleScore*0.4 + artistScore*0.6

		if score > bestScore {
			bestScore = score
			best = rec
		}
	}
	return best, bestScore
}

// wordOverlap computes Jaccard similarity over lowercase word sets
func wordOverlap(a, b string) float64 {
	wordsA := fieldsSet(a)
	wordsB := fieldsSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	return float64(intersection) / float64(union)
}

func fieldsSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}

// Data types

// Artist represents a MusicBrainz artist
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ArtistCredit represents artist credit information
type ArtistCredit struct {
	Name   string `json:"name"`
	Artist Artist `json:"artist"`
}

// Tag represents a MusicBrainz genre tag with vote count
type Tag struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}

// Recording represents a MusicBrainz recording (track)
type Recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	Tags         []Tag          `json:"tags"`
	Length       int            `json:"length"` // Duration in milliseconds
	MatchScore   float64        `json:"-"`
}

// ArtistCreditPhrase joins the artist credits into a display string
func (r *Recording) ArtistCreditPhrase() string {
	names := make([]string, 0, len(r.ArtistCredit))
	for _, ac := range r.ArtistCredit {
		name := ac.Name
		if name == "" {
			name = ac.Artist.Name
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, " ")
}

// TagNames returns the recording's tag names, highest vote count first
func (r *Recording) TagNames() []string {
	tags := make([]Tag, len(r.Tags))
	copy(tags, r.Tags)
	for i := 0; i < len(tags); i++ {
		for j := i + 1; j < len(tags); j++ {
			if tags[j].Count > tags[i].Count {
				tags[i], tags[j] = tags[j], tags[i]
			}
		}
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}
