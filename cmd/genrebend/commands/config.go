package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/behruzmistry/genrebendpro/internal/shared"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the active configuration and check collaborator status.",
		RunE:  runConfigCommand,
	}
	return cmd
}

func runConfigCommand(cmd *cobra.Command, args []string) error {
	cfg, container := initConfigAndServices(cmd)

	shared.ColorInfo.Println("🎛  Active configuration:")
	shared.ColorInfo.Printf("   Library URL:          %s\n", cfg.LexiconURL)
	shared.ColorInfo.Printf("   Confidence threshold: %.2f\n", cfg.ConfidenceThreshold)
	shared.ColorInfo.Printf("   Skip confidence:      %.2f\n", cfg.SkipConfidence)
	shared.ColorInfo.Printf("   Batch size:           %d (delay %.1fs, parallelism %d)\n",
		cfg.BatchSize, cfg.BatchDelaySeconds, cfg.Parallelism)
	shared.ColorInfo.Printf("   Fusion weights:       text %.1f / acoustic %.1f / remix blend %.1f\n",
		cfg.Fusion.Text, cfg.Fusion.Acoustic, cfg.Fusion.RemixBlend)

	if cfg.LastfmAPIKey != "" {
		shared.ColorSuccess.Println("✅ Last.fm configured")
	} else {
		shared.ColorWarning.Println("⚠️ Last.fm not configured (set LASTFM_API_KEY)")
	}
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		shared.ColorSuccess.Println("✅ Spotify configured")
	} else {
		shared.ColorWarning.Println("⚠️ Spotify not configured (set SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET)")
	}
	if container.Acoustic.Enabled() {
		shared.ColorSuccess.Println("✅ Acoustic feature service configured")
	} else {
		shared.ColorWarning.Println("⚠️ Acoustic feature service not configured (set ACOUSTIC_API_URL)")
	}

	if err := container.Library.Status(context.Background()); err != nil {
		shared.ColorError.Printf("❌ Library unreachable: %v\n", err)
	} else {
		shared.ColorSuccess.Println("✅ Library reachable")
	}
	return nil
}
