package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/behruzmistry/genrebendpro/internal/config"
	"github.com/behruzmistry/genrebendpro/internal/services"
	"github.com/behruzmistry/genrebendpro/internal/shared"
)

const toolVersion = "1.0.0"

// NewRootCommand creates the root command with all subcommands attached
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "genrebend",
		Version: toolVersion,
		Short:   "Resolve and classify genres for your Lexicon library.",
		Long: fmt.Sprintf(`GenreBend (v%s)

Researches each track across Last.fm, MusicBrainz and Spotify, detects
remixes, fuses textual and acoustic evidence into a confidence-scored
genre, and files the track into the matching playlist. Writes go through
the Lexicon library API and only happen above the confidence threshold.`, toolVersion),
	}

	cmd.PersistentFlags().String("config", "config.json", "Path to the configuration file")
	cmd.PersistentFlags().String("library-url", "", "Lexicon API URL (overrides config)")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(NewOrganizeCommand())
	cmd.AddCommand(NewAnalyzeCommand())
	cmd.AddCommand(NewConfigCommand())

	return cmd
}

// initConfigAndServices loads (or bootstraps) the configuration and builds
// the service container. First run walks the user through the two settings
// that matter; everything else keeps its default.
func initConfigAndServices(cmd *cobra.Command) (*config.Config, *services.ServiceContainer) {
	shared.InitializeColors()

	configFile, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg := config.GetDefaultConfig()

	if !shared.FileExists(configFile) {
		shared.ColorInfo.Println("✨ Welcome to GenreBend! Let's set up your configuration.")

		cfg.LexiconURL = shared.GetUserInput(fmt.Sprintf("Enter Lexicon API URL (e.g., %s)", cfg.LexiconURL), cfg.LexiconURL)
		cfg.LastfmAPIKey = shared.GetUserInput("Enter Last.fm API key (leave empty to skip Last.fm)", "")

		thresholdStr := shared.GetUserInput("Enter confidence threshold", strconv.FormatFloat(cfg.ConfidenceThreshold, 'f', 2, 64))
		if t, err := strconv.ParseFloat(thresholdStr, 64); err == nil && t >= 0 && t <= 1 {
			cfg.ConfidenceThreshold = t
		} else {
			shared.ColorWarning.Printf("⚠️ Invalid threshold '%s', using default %.2f.\n", thresholdStr, cfg.ConfidenceThreshold)
		}

		if err := config.SaveConfig(configFile, cfg); err != nil {
			shared.ColorError.Printf("❌ Failed to save initial config: %v\n", err)
		} else {
			shared.ColorSuccess.Println("✅ Configuration saved to", configFile)
		}
	} else {
		if err := config.LoadConfig(configFile, cfg); err != nil {
			shared.ColorError.Printf("❌ Failed to load config from %s: %v\n", configFile, err)
		} else if debug {
			shared.ColorInfo.Println("✅ Loaded configuration from", configFile)
		}
	}

	// Environment variables and flags override the config file
	cfg.ApplyEnvOverrides()
	if libraryURL, _ := cmd.Flags().GetString("library-url"); libraryURL != "" {
		cfg.LexiconURL = libraryURL
	}

	container := services.NewServiceContainer(cfg)
	container.Logger.SetDebugMode(debug)
	return cfg, container
}
