package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/behruzmistry/genrebendpro/internal/interfaces"
	"github.com/behruzmistry/genrebendpro/internal/pipeline"
	"github.com/behruzmistry/genrebendpro/internal/shared"
	"github.com/behruzmistry/genrebendpro/internal/taxonomy"
)

// NewOrganizeCommand creates the organize command
func NewOrganizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Classify the library and file tracks into playlists.",
		RunE:  runOrganizeCommand,
	}

	// Add flags
	cmd.Flags().Bool("dry-run", false, "Compute decisions and log intended writes without performing them")
	cmd.Flags().Bool("no-confirm", false, "Skip confirmation prompt")
	cmd.Flags().Float64("threshold", 0, "Override the acceptance confidence threshold")
	cmd.Flags().Int("limit", 0, "Only process the first N tracks")

	return cmd
}

func runOrganizeCommand(cmd *cobra.Command, args []string) error {
	cfg, container := initConfigAndServices(cmd)

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noConfirm, _ := cmd.Flags().GetBool("no-confirm")
	limit, _ := cmd.Flags().GetInt("limit")
	debug, _ := cmd.Flags().GetBool("debug")
	if cmd.Flags().Changed("threshold") {
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		cfg.ConfidenceThreshold = threshold
	}

	// Ctrl-C stops between batches, keeping already-written decisions
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container.Authenticate(ctx)

	container.Logger.Info("🎵 Loading library from %s", cfg.LexiconURL)
	tracks, err := container.Library.ListAllTracks(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrLibraryUnavailable) {
			container.Logger.Error("Library is unreachable at %s. Is Lexicon running?", cfg.LexiconURL)
		}
		return err
	}
	if limit > 0 && limit < len(tracks) {
		tracks = tracks[:limit]
	}
	if len(tracks) == 0 {
		container.Logger.Warning("No tracks to process.")
		return nil
	}

	mode := pipeline.ModeExecute
	if dryRun {
		mode = pipeline.ModeDryRun
	}

	if !noConfirm && !dryRun {
		prompt := fmt.Sprintf("Classify %d tracks and write accepted results to the library? (y/n)", len(tracks))
		if !shared.GetYesNoInput(prompt, "y") {
			container.Logger.Warning("⚠️ Run cancelled by user.")
			return nil
		}
	}

	orchestrator := pipeline.NewOrchestrator(cfg, container.Library, container.Research,
		container.Remix, container.Classifier, container.Acoustic, container.Logger)
	orchestrator.SetMode(mode)
	orchestrator.SetProgress(shared.IsTTY() && !debug)

	decisions, summary, err := orchestrator.Run(ctx, tracks)
	if err != nil {
		return err
	}

	printDecisions(container.Logger, decisions, debug)
	printSummary(summary, mode)
	return nil
}

func printDecisions(logger interfaces.LoggerService, decisions []pipeline.Decision, debug bool) {
	for _, d := range decisions {
		switch {
		case d.Outcome == pipeline.Reject:
			logger.Warning("%s", d)
		case d.Outcome == pipeline.Defer && d.Reason != pipeline.ReasonAlreadyTagged:
			logger.Info("%s", d)
		case debug:
			logger.Info("%s", d)
		}
		for _, c := range d.Conflicts {
			logger.Warning("%s - %s conflicts with existing membership in %s (%s)",
				d.Track.Artist, d.Track.Title, c.PlaylistName, c.Genre)
		}
	}
}

func printSummary(summary *pipeline.Summary, mode pipeline.Mode) {
	fmt.Printf("\n")
	shared.ColorInfo.Printf("📊 Run Summary (%s):\n", mode)

	if summary.Accepted > 0 {
		shared.ColorSuccess.Printf("✅ Accepted: %d tracks\n", summary.Accepted)
	}
	if summary.Deferred > 0 {
		shared.ColorWarning.Printf("⏭️  Deferred: %d tracks (%d already tagged, %d cancelled)\n",
			summary.Deferred, summary.Skipped, summary.Cancelled)
	}
	if summary.Rejected > 0 {
		shared.ColorError.Printf("❌ Rejected: %d tracks\n", summary.Rejected)
	}
	if summary.RemixResolved+summary.RemixUnresolved > 0 {
		shared.ColorInfo.Printf("🎛  Remixes: %d resolved, %d unresolved\n", summary.RemixResolved, summary.RemixUnresolved)
	}
	if summary.Conflicts > 0 {
		shared.ColorWarning.Printf("⚠️ Membership conflicts reported: %d\n", summary.Conflicts)
	}

	if len(summary.GenreDistribution) > 0 {
		shared.ColorInfo.Println("🎼 Genre distribution:")
		for _, line := range genreDistributionLines(summary.GenreDistribution) {
			fmt.Println(line)
		}
	}

	shared.ColorSuccess.Printf("🎉 Done: %d/%d tracks filed (%.0f%%)\n",
		summary.Accepted, summary.Total, summary.SuccessRate()*100)
}

func genreDistributionLines(distribution map[taxonomy.Genre]int) []string {
	type entry struct {
		genre taxonomy.Genre
		count int
	}
	entries := make([]entry, 0, len(distribution))
	for g, n := range distribution {
		entries = append(entries, entry{g, n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].genre < entries[j].genre
	})

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("   %-20s %s %d", e.genre, strings.Repeat("█", e.count), e.count))
	}
	return lines
}
