package services

import (
	"context"
	"fmt"

	"github.com/behruzmistry/genrebendpro/internal/api/acoustic"
	"github.com/behruzmistry/genrebendpro/internal/api/lastfm"
	"github.com/behruzmistry/genrebendpro/internal/api/lexicon"
	"github.com/behruzmistry/genrebendpro/internal/api/musicbrainz"
	"github.com/behruzmistry/genrebendpro/internal/api/spotify"
	"github.com/behruzmistry/genrebendpro/internal/classify"
	"github.com/behruzmistry/genrebendpro/internal/config"
	"github.com/behruzmistry/genrebendpro/internal/interfaces"
	"github.com/behruzmistry/genrebendpro/internal/remix"
	"github.com/behruzmistry/genrebendpro/internal/research"
	"github.com/behruzmistry/genrebendpro/internal/shared"
)

// ServiceContainer holds all application services
type ServiceContainer struct {
	Config     interfaces.ConfigService
	Library    interfaces.LibraryService
	Research   interfaces.ResearchService
	Remix      interfaces.RemixService
	Classifier interfaces.ClassifierService
	Acoustic   interfaces.AcousticService
	Logger     interfaces.LoggerService
	Spotify    *spotify.SpotifyClient
}

// NewServiceContainer creates a new service container with all services initialized.
// Research sources are registered in priority order; sources without
// credentials are left out rather than failing at query time.
func NewServiceContainer(cfg *config.Config) *ServiceContainer {
	// Create logger first as other services may need it
	logger := NewConsoleLogger()

	// Create library client
	library := lexicon.NewClient(cfg.LexiconURL, cfg.LexiconAPIVersion)

	// Register research sources in priority order
	var sources []research.Source
	if cfg.LastfmAPIKey != "" {
		sources = append(sources, research.NewLastfmSource(lastfm.NewClient(cfg.LastfmAPIKey)))
	}
	sources = append(sources, research.NewMusicBrainzSource(musicbrainz.NewClient(cfg.MusicBrainzUserAgent)))

	spotifyClient := spotify.NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	if spotifyClient.Enabled() {
		sources = append(sources, research.NewSpotifySource(spotifyClient))
	}

	aggregator := research.NewAggregator(sources...)

	// Create remix detector on top of the aggregator
	detector := remix.NewDetector(aggregator)

	// Create classifier with the configured fusion weights
	cfg.ApplyDefaultWeights()
	classifier := classify.NewClassifier(cfg.Fusion)

	// Create acoustic feature client (optional collaborator)
	acousticClient := acoustic.NewClient(cfg.AcousticURL)

	return &ServiceContainer{
		Config:     NewConfigService(),
		Library:    library,
		Research:   aggregator,
		Remix:      detector,
		Classifier: classifier,
		Acoustic:   acousticClient,
		Logger:     logger,
		Spotify:    spotifyClient,
	}
}

// Authenticate opens sessions with the sources that need one. Spotify is
// optional: a failed authentication degrades research, it does not abort.
func (sc *ServiceContainer) Authenticate(ctx context.Context) {
	if sc.Spotify != nil && sc.Spotify.Enabled() {
		if err := sc.Spotify.Authenticate(ctx); err != nil {
			sc.Logger.Warning("Spotify authentication failed, continuing without it: %v", err)
		}
	}
}

// ConfigService implementation
type ConfigService struct{}

func NewConfigService() *ConfigService {
	return &ConfigService{}
}

func (cs *ConfigService) LoadConfig(configFile string) (*config.Config, error) {
	cfg := &config.Config{}
	return cfg, config.LoadConfig(configFile, cfg)
}

func (cs *ConfigService) SaveConfig(configFile string, cfg *config.Config) error {
	return config.SaveConfig(configFile, cfg)
}

func (cs *ConfigService) ValidateConfig(cfg *config.Config) error {
	if cfg.LexiconURL == "" {
		return fmt.Errorf("library URL is required")
	}
	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be between 0 and 1")
	}
	return cfg.Validate()
}

func (cs *ConfigService) GetDefaultConfig() *config.Config {
	return config.GetDefaultConfig()
}

func (cs *ConfigService) EnsureConfigExists(configFile string) error {
	if !shared.FileExists(configFile) {
		return cs.SaveConfig(configFile, cs.GetDefaultConfig())
	}
	return nil
}

// ConsoleLogger implementation
type ConsoleLogger struct {
	debugMode bool
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{debugMode: false}
}

func (cl *ConsoleLogger) Info(message string, args ...interface{}) {
	shared.ColorInfo.Printf(message+"\n", args...)
}

func (cl *ConsoleLogger) Warning(message string, args ...interface{}) {
	shared.ColorWarning.Printf("⚠️ "+message+"\n", args...)
}

func (cl *ConsoleLogger) Error(message string, args ...interface{}) {
	shared.ColorError.Printf("❌ "+message+"\n", args...)
}

func (cl *ConsoleLogger) Debug(message string, args ...interface{}) {
	if cl.debugMode {
		fmt.Printf("🐛 DEBUG: "+message+"\n", args...)
	}
}

func (cl *ConsoleLogger) Success(message string, args ...interface{}) {
	shared.ColorSuccess.Printf("✅ "+message+"\n", args...)
}

func (cl *ConsoleLogger) SetDebugMode(enabled bool) {
	cl.debugMode = enabled
}
