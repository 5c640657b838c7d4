package acoustic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/behruzmistry/genrebendpro/internal/shared"
)

// 1. Constants and types
const (
	defaultTimeout      = 60 * time.Second // feature extraction decodes audio, allow it time
	defaultRateLimit    = 200 * time.Millisecond
	defaultBurstLimit   = 2
	defaultMaxRetries   = 2
	defaultInitialDelay = 1 * time.Second
	defaultMaxDelay     = 15 * time.Second
)

// Features is the spectral/timbral summary returned by the extraction
// service. Values are raw; the classifier normalizes them before comparing
// against genre centroids.
type Features struct {
	SpectralCentroid  float64 `json:"spectralCentroid"`
	SpectralRolloff   float64 `json:"spectralRolloff"`
	SpectralBandwidth float64 `json:"spectralBandwidth"`
	ZeroCrossingRate  float64 `json:"zeroCrossingRate"`
	Tempo             float64 `json:"tempo"`
	Energy            float64 `json:"energy"`
	HarmonicRatio     float64 `json:"harmonicRatio"`
	Loudness          float64 `json:"loudness"`
}

// Config holds configuration for the acoustic feature extraction client
type Config struct {
	BaseURL      string        `json:"base_url"`
	Timeout      time.Duration `json:"timeout"`
	MaxRetries   int           `json:"max_retries"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	RateLimit    time.Duration `json:"rate_limit"`
	BurstLimit   int           `json:"burst_limit"`
	Debug        bool          `json:"debug"`
}

// Client talks to the acoustic feature extraction service. An unreachable or
// unconfigured service degrades classification to the textual channel only;
// it never fails a track.
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *rate.Limiter
}

// 2. Constructor and configuration

// DefaultConfig returns sensible defaults for the extraction client
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		Timeout:      defaultTimeout,
		MaxRetries:   defaultMaxRetries,
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
		RateLimit:    defaultRateLimit,
		BurstLimit:   defaultBurstLimit,
	}
}

// NewClient creates a new extraction client. An empty baseURL yields a
// disabled client whose Extract always reports unavailable.
func NewClient(baseURL string) *Client {
	return NewClientWithConfig(DefaultConfig(baseURL))
}

// NewClientWithConfig creates a new extraction client with custom configuration
func NewClientWithConfig(config Config) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: config.Timeout},
		config:      config,
		rateLimiter: rate.NewLimiter(rate.Every(config.RateLimit), config.BurstLimit),
	}
}

// Enabled reports whether an extraction endpoint is configured
func (c *Client) Enabled() bool {
	return c.config.BaseURL != ""
}

// 3. Public API

// Extract requests acoustic features for an audio file reference. A nil
// result without an error means features are unavailable (missing file,
// unsupported format, disabled service). That is a normal outcome, not a failure.
func (c *Client) Extract(ctx context.Context, fileRef string) (*Features, error) {
	if !c.Enabled() || fileRef == "" {
		return nil, nil
	}

	var features *Features
	err := shared.RetryWithBackoffForHTTPWithDebug(
		c.config.MaxRetries,
		c.config.InitialDelay,
		c.config.MaxDelay,
		func() error {
			var extractErr error
			features, extractErr = c.extract(ctx, fileRef)
			return extractErr
		},
		c.config.Debug,
	)
	if err != nil {
		// Exhausted retries degrade to no acoustic evidence.
		return nil, nil
	}
	return features, nil
}

func (c *Client) extract(ctx context.Context, fileRef string) (*Features, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	payload, err := json.Marshal(map[string]string{"filePath": fileRef})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extract request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/extract", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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

	// Missing file or unsupported format: unavailable, not an error.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnsupportedMediaType {
		return nil, nil
	}

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

	var result struct {
		Features *Features `json:"features"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal features: %w", err)
	}
	return result.Features, nil
}
