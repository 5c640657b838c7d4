package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	RequestTimeout = 30 * time.Second
	UserAgent      = "GenreBend-Pro/1.0"
)

// Weights configures the evidence fusion of the genre classifier. Text and
// acoustic weights must sum to 1 when both channels are present; the remix
// blend weight is applied on top with proportional rescaling.
type Weights struct {
	Text       float64 `json:"text"`
	Acoustic   float64 `json:"acoustic"`
	RemixBlend float64 `json:"remix_blend"`
}

// GetDefaultWeights returns the default fusion weights
func GetDefaultWeights() Weights {
	return Weights{
		Text:       0.6,
		Acoustic:   0.4,
		RemixBlend: 0.2,
	}
}

// Configuration structure
type Config struct {
	LexiconURL           string  `json:"LexiconURL"`
	LexiconAPIVersion    string  `json:"LexiconAPIVersion"`
	LastfmAPIKey         string  `json:"LastfmAPIKey"`
	MusicBrainzUserAgent string  `json:"MusicBrainzUserAgent"`
	SpotifyClientID      string  `json:"SpotifyClientID"`
	SpotifyClientSecret  string  `json:"SpotifyClientSecret"`
	AcousticURL          string  `json:"AcousticURL"`
	BatchSize            int     `json:"BatchSize"`
	BatchDelaySeconds    float64 `json:"BatchDelaySeconds"`
	Parallelism          int     `json:"Parallelism"`
	MaxRetries           int     `json:"MaxRetries"`
	ConfidenceThreshold  float64 `json:"ConfidenceThreshold"`
	SkipConfidence       float64 `json:"SkipConfidence"` // tracks already tagged above this are not re-researched
	Fusion               Weights `json:"fusion"`
}

// ApplyDefaultWeights fills in the fusion weights when the config carries
// none. A config that sets any weight is taken at face value, so an explicit
// acoustic 0 disables that channel instead of falling back to the default.
func (cfg *Config) ApplyDefaultWeights() {
	if cfg.Fusion == (Weights{}) {
		cfg.Fusion = GetDefaultWeights()
	}
}

// GetDefaultConfig returns sensible defaults for a fresh installation
func GetDefaultConfig() *Config {
	cfg := &Config{
		LexiconURL:           "http://localhost:48624",
		LexiconAPIVersion:    "v1",
		MusicBrainzUserAgent: UserAgent,
		BatchSize:            50,
		BatchDelaySeconds:    1.0,
		Parallelism:          3,
		MaxRetries:           3,
		ConfidenceThreshold:  0.7,
		SkipConfidence:       0.8,
	}
	cfg.ApplyDefaultWeights()
	return cfg
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// SaveConfig saves configuration to a JSON file
func SaveConfig(filePath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnvOverrides layers environment variables over the loaded config.
// A .env file in the working directory is honored when present, matching
// the variable names the research APIs document.
func (cfg *Config) ApplyEnvOverrides() {
	_ = godotenv.Load() // missing .env is fine

	if v := os.Getenv("LEXICON_API_URL"); v != "" {
		cfg.LexiconURL = v
	}
	if v := os.Getenv("LEXICON_API_VERSION"); v != "" {
		cfg.LexiconAPIVersion = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		cfg.LastfmAPIKey = v
	}
	if v := os.Getenv("MUSICBRAINZ_USER_AGENT"); v != "" {
		cfg.MusicBrainzUserAgent = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		cfg.SpotifyClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		cfg.SpotifyClientSecret = v
	}
	if v := os.Getenv("ACOUSTIC_API_URL"); v != "" {
		cfg.AcousticURL = v
	}
	if v := os.Getenv("BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("RETRY_DELAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.BatchDelaySeconds = f
		}
	}
	if v := os.Getenv("CONFIDENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.ConfidenceThreshold = f
		}
	}
}

// Validate checks that the load-bearing configuration is present
func (cfg *Config) Validate() error {
	if cfg.LexiconURL == "" {
		return fmt.Errorf("Lexicon API URL is required")
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in [0,1]")
	}
	return nil
}
