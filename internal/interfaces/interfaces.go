package interfaces

import (
	"context"

	"github.com/behruzmistry/genrebendpro/internal/api/acoustic"
	"github.com/behruzmistry/genrebendpro/internal/classify"
	"github.com/behruzmistry/genrebendpro/internal/config"
	"github.com/behruzmistry/genrebendpro/internal/playlist"
	"github.com/behruzmistry/genrebendpro/internal/remix"
	"github.com/behruzmistry/genrebendpro/internal/research"
	"github.com/behruzmistry/genrebendpro/internal/shared"
	"github.com/behruzmistry/genrebendpro/internal/taxonomy"
)

// LibraryService defines the interface for the library management API.
// The library is load-bearing: failures abort the run.
type LibraryService interface {
	// Status checks that the library endpoint is reachable
	Status(ctx context.Context) error

	// ListTracks retrieves one page of library tracks
	ListTracks(ctx context.Context, limit, offset int) ([]shared.Track, error)

	// ListAllTracks retrieves the full library, paginating internally
	ListAllTracks(ctx context.Context) ([]shared.Track, error)

	// ListPlaylists retrieves the playlist taxonomy snapshot
	ListPlaylists(ctx context.Context) ([]shared.Playlist, error)

	// UpdateTrackGenre writes the resolved genre back to the library
	UpdateTrackGenre(ctx context.Context, trackID, genre string) error

	// AddToPlaylist adds a track to a playlist
	AddToPlaylist(ctx context.Context, playlistID, trackID string) error

	// GetPlaylistTracks returns the IDs of the tracks already in a playlist
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]string, error)
}

// ResearchService defines the interface for multi-source metadata research
type ResearchService interface {
	// Research queries all configured sources and merges their evidence
	Research(ctx context.Context, artist, title string) *research.Result
}

// RemixService defines the interface for remix detection
type RemixService interface {
	// Detect decides remix status and resolves the original when possible
	Detect(ctx context.Context, track shared.Track, result *research.Result) remix.Detection
}

// ClassifierService defines the interface for genre classification
type ClassifierService interface {
	// Classify ranks genre candidates from research and acoustic evidence
	Classify(result *research.Result, detection remix.Detection, features *acoustic.Features) []classify.Candidate
}

// MatcherService defines the interface for playlist matching
type MatcherService interface {
	// Match finds the best playlist for a genre and remix status
	Match(genre taxonomy.Genre, status remix.Status, track shared.Track) (*playlist.Match, error)
}

// AcousticService defines the interface for the acoustic feature collaborator
type AcousticService interface {
	// Enabled reports whether the collaborator is configured
	Enabled() bool

	// Extract returns the feature vector for a file reference, or nil when
	// features are unavailable
	Extract(ctx context.Context, fileRef string) (*acoustic.Features, error)
}

// ConfigService defines the interface for configuration management
type ConfigService interface {
	// LoadConfig loads configuration from file
	LoadConfig(configFile string) (*config.Config, error)

	// SaveConfig saves configuration to file
	SaveConfig(configFile string, config *config.Config) error

	// ValidateConfig validates configuration settings
	ValidateConfig(config *config.Config) error

	// GetDefaultConfig returns a default configuration
	GetDefaultConfig() *config.Config

	// EnsureConfigExists creates a default config file if it doesn't exist
	EnsureConfigExists(configFile string) error
}

// LoggerService defines the interface for logging operations
type LoggerService interface {
	// Info logs an informational message
	Info(message string, args ...interface{})

	// Warning logs a warning message
	Warning(message string, args ...interface{})

	// Error logs an error message
	Error(message string, args ...interface{})

	// Debug logs a debug message
	Debug(message string, args ...interface{})

	// Success logs a success message
	Success(message string, args ...interface{})

	// SetDebugMode enables or disables debug logging
	SetDebugMode(enabled bool)
}
