package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/behruzmistry/genrebendpro/internal/pipeline"
	"github.com/behruzmistry/genrebendpro/internal/playlist"
	"github.com/behruzmistry/genrebendpro/internal/remix"
	"github.com/behruzmistry/genrebendpro/internal/services"
	"github.com/behruzmistry/genrebendpro/internal/shared"
	"github.com/behruzmistry/genrebendpro/internal/taxonomy"
)

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [\"Artist - Title\"]",
		Short: "Show the evidence and candidates for tracks without writing anything.",
		Long: `Runs the research, remix detection and classification stages and prints
the full candidate breakdown per track. With no argument the whole
library is analyzed; with an "Artist - Title" argument only that track.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyzeCommand,
	}

	cmd.Flags().Int("limit", 0, "Only analyze the first N tracks")
	cmd.Flags().Int("top", 3, "Number of candidates to show per track")

	return cmd
}

func runAnalyzeCommand(cmd *cobra.Command, args []string) error {
	cfg, container := initConfigAndServices(cmd)

	limit, _ := cmd.Flags().GetInt("limit")
	top, _ := cmd.Flags().GetInt("top")

	ctx := context.Background()
	container.Authenticate(ctx)

	var tracks []shared.Track
	if len(args) == 1 {
		artist, title, ok := splitArtistTitle(args[0])
		if !ok {
			return fmt.Errorf("expected \"Artist - Title\", got %q", args[0])
		}
		tracks = []shared.Track{{Title: title, Artist: artist}}
	} else {
		var err error
		tracks, err = container.Library.ListAllTracks(ctx)
		if err != nil {
			return err
		}
		if limit > 0 && limit < len(tracks) {
			tracks = tracks[:limit]
		}
	}

	// single ad hoc tracks bypass the library snapshot
	if len(args) == 1 {
		analyzeOne(ctx, container, tracks[0], top)
		return nil
	}

	orchestrator := pipeline.NewOrchestrator(cfg, container.Library, container.Research,
		container.Remix, container.Classifier, container.Acoustic, container.Logger)
	orchestrator.SetMode(pipeline.ModeAnalyze)

	decisions, summary, err := orchestrator.Run(ctx, tracks)
	if err != nil {
		return err
	}
	for _, d := range decisions {
		printAnalysis(d, top)
	}
	printSummary(summary, pipeline.ModeAnalyze)

	playlists, err := container.Library.ListPlaylists(ctx)
	if err != nil {
		return err
	}
	printCollectionReport(tracks, playlist.NewMatcher(playlists), decisions)
	return nil
}

// printCollectionReport adds the collection-level findings to the run
// summary: untagged tracks, playlist taxonomy problems and playlist gaps.
// Everything here is advisory; analyze never writes.
func printCollectionReport(tracks []shared.Track, matcher *playlist.Matcher, decisions []pipeline.Decision) {
	// classified genres of every decision, accepted or not, so a genre
	// deferred for lack of a playlist still surfaces as a suggestion
	distribution := make(map[taxonomy.Genre]int)
	for _, d := range decisions {
		if d.Genre != "" && d.Genre != taxonomy.Unknown {
			distribution[d.Genre]++
		}
	}

	var untagged []string
	for _, t := range tracks {
		if t.CurrentGenre == "" {
			untagged = append(untagged, fmt.Sprintf("%s - %s", t.Artist, t.Title))
		}
	}

	shared.ColorInfo.Printf("\n📊 Collection:\n")
	fmt.Printf("   Tracks analyzed: %d, without genre: %d\n", len(tracks), len(untagged))
	for i, name := range untagged {
		if i >= 10 {
			fmt.Printf("   ... and %d more\n", len(untagged)-10)
			break
		}
		fmt.Printf("   - %s\n", name)
	}

	findings := matcher.Inconsistencies()
	if len(findings) > 0 {
		shared.ColorWarning.Printf("\n⚠️ Playlist taxonomy problems:\n")
		for _, f := range findings {
			name := f.Playlist.Name
			if name == "" {
				name = f.Playlist.ID
			}
			fmt.Printf("   - %s: %s\n", name, f.Detail)
		}
	}

	suggestions := matcher.Suggestions(distribution)
	if len(suggestions) > 0 {
		shared.ColorInfo.Printf("\n✨ Suggested playlists:\n")
		for _, s := range suggestions {
			fmt.Printf("   - %s (%d tracks without a playlist of their genre)\n", s.Genre, s.Tracks)
		}
	}

	var recommendations []string
	missingGenre := 0
	mismatched := 0
	for _, f := range findings {
		switch f.Kind {
		case playlist.MissingGenre:
			missingGenre++
		case playlist.NameGenreMismatch:
			mismatched++
		}
	}
	if missingGenre > 0 {
		recommendations = append(recommendations, fmt.Sprintf("set the genre field on %d playlists", missingGenre))
	}
	if mismatched > 0 {
		recommendations = append(recommendations, fmt.Sprintf("reconcile %d playlist names with their genre fields", mismatched))
	}
	if len(suggestions) > 0 {
		recommendations = append(recommendations, "create playlists for the suggested genres")
	}
	if len(recommendations) > 0 {
		shared.ColorInfo.Printf("\n💡 Recommendations:\n")
		for _, r := range recommendations {
			fmt.Printf("   - %s\n", r)
		}
	}
}

// analyzeOne classifies a track that is not in the library, so there is no
// taxonomy to match against and no decision to make
func analyzeOne(ctx context.Context, container *services.ServiceContainer, track shared.Track, top int) {
	result := container.Research.Research(ctx, track.Artist, track.Title)
	detection := container.Remix.Detect(ctx, track, result)
	candidates := container.Classifier.Classify(result, detection, nil)

	shared.ColorInfo.Printf("🎵 %s - %s\n", track.Artist, track.Title)
	shared.ColorInfo.Printf("   Sources found: %d, research confidence %.2f\n", result.SourcesFound(), result.Confidence())
	if len(result.CombinedTags()) > 0 {
		shared.ColorInfo.Printf("   Tags: %s\n", strings.Join(result.CombinedTags(), ", "))
	}
	printRemix(detection)
	for i, c := range candidates {
		if i >= top {
			break
		}
		fmt.Printf("   %d. %-20s %.2f (text %.2f, acoustic %.2f)\n", i+1, c.Genre, c.Confidence, c.TextScore, c.AcousticScore)
	}
}

func printAnalysis(d pipeline.Decision, top int) {
	shared.ColorInfo.Printf("🎵 %s - %s: %s", d.Track.Artist, d.Track.Title, d.Outcome)
	if d.Reason != pipeline.ReasonNone {
		fmt.Printf(" (%s)", d.Reason)
	}
	fmt.Printf("\n")
	for i, c := range d.Candidates {
		if i >= top {
			break
		}
		fmt.Printf("   %d. %-20s %.2f (text %.2f, acoustic %.2f)\n", i+1, c.Genre, c.Confidence, c.TextScore, c.AcousticScore)
	}
}

func printRemix(detection remix.Detection) {
	switch detection.Status {
	case remix.Resolved:
		shared.ColorSuccess.Printf("   Remix of %s - %s (indicators: %s)\n",
			detection.OriginalArtist, detection.OriginalTitle, strings.Join(detection.Indicators, ", "))
	case remix.Unresolved:
		shared.ColorWarning.Printf("   Remix indicators (%s) but no original found\n", strings.Join(detection.Indicators, ", "))
	}
}

// splitArtistTitle parses "Artist - Title" with the first separator winning
func splitArtistTitle(s string) (artist, title string, ok bool) {
	parts := strings.SplitN(s, " - ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}
