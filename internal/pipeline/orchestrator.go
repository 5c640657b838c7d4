package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/sync/semaphore"

	"github.com/behruzmistry/genrebendpro/internal/api/acoustic"
	"github.com/behruzmistry/genrebendpro/internal/config"
	"github.com/behruzmistry/genrebendpro/internal/interfaces"
	"github.com/behruzmistry/genrebendpro/internal/playlist"
	"github.com/behruzmistry/genrebendpro/internal/remix"
	"github.com/behruzmistry/genrebendpro/internal/shared"
	"github.com/behruzmistry/genrebendpro/internal/taxonomy"
)

// Mode selects how far a run goes with its side effects
type Mode int

const (
	// ModeAnalyze computes decisions without logging intended writes
	ModeAnalyze Mode = iota
	// ModeDryRun computes decisions and logs every write it would perform
	ModeDryRun
	// ModeExecute performs library writes for accepted tracks
	ModeExecute
)

func (m Mode) String() string {
	switch m {
	case ModeDryRun:
		return "dry-run"
	case ModeExecute:
		return "execute"
	default:
		return "analyze"
	}
}

// Orchestrator drives the per-track pipeline across a batch of tracks. It
// loads the playlist taxonomy once per run, processes tracks in fixed-size
// batches with bounded parallelism, and converts every per-track failure
// into a decision instead of aborting the batch.
type Orchestrator struct {
	cfg        *config.Config
	library    interfaces.LibraryService
	research   interfaces.ResearchService
	detector   interfaces.RemixService
	classifier interfaces.ClassifierService
	acoustic   interfaces.AcousticService
	logger     interfaces.LoggerService

	mode     Mode
	progress bool

	// newMatcher builds the per-run matcher from the taxonomy snapshot
	newMatcher func([]shared.Playlist) interfaces.MatcherService
}

// NewOrchestrator wires the pipeline stages together
func NewOrchestrator(cfg *config.Config, library interfaces.LibraryService, research interfaces.ResearchService,
	detector interfaces.RemixService, classifier interfaces.ClassifierService, acoustic interfaces.AcousticService,
	logger interfaces.LoggerService) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		library:    library,
		research:   research,
		detector:   detector,
		classifier: classifier,
		acoustic:   acoustic,
		logger:     logger,
		newMatcher: func(playlists []shared.Playlist) interfaces.MatcherService {
			return playlist.NewMatcher(playlists)
		},
	}
}

// SetMode selects the run mode
func (o *Orchestrator) SetMode(mode Mode) {
	o.mode = mode
}

// SetProgress toggles the progress bar
func (o *Orchestrator) SetProgress(enabled bool) {
	o.progress = enabled
}

// Run processes the given tracks end to end and returns the per-track
// decisions in input order plus an aggregate summary. The library must be
// reachable up front; research and acoustic failures degrade evidence but
// never abort the run. Cancellation is honored between batches only:
// tracks already decided keep their decisions, pending ones are deferred.
func (o *Orchestrator) Run(ctx context.Context, tracks []shared.Track) ([]Decision, *Summary, error) {
	if err := o.library.Status(ctx); err != nil {
		return nil, nil, fmt.Errorf("library status check failed: %w", err)
	}

	playlists, err := o.library.ListPlaylists(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load playlist taxonomy: %w", err)
	}
	matcher := o.newMatcher(playlists)

	batchSize := o.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = len(tracks)
	}
	parallelism := int64(o.cfg.Parallelism)
	if parallelism <= 0 {
		parallelism = 1
	}

	var bar *pb.ProgressBar
	if o.progress && len(tracks) > 0 {
		bar = pb.StartNew(len(tracks))
		defer bar.Finish()
	}

	decisions := make([]Decision, len(tracks))
	memberships := make(map[string]map[string]bool)
	cancelled := false

	for start := 0; start < len(tracks); start += batchSize {
		if ctx.Err() != nil {
			cancelled = true
		}
		if cancelled {
			for i := start; i < len(tracks); i++ {
				decisions[i] = deferCancelled(tracks[i])
				if bar != nil {
					bar.Increment()
				}
			}
			break
		}

		end := start + batchSize
		if end > len(tracks) {
			end = len(tracks)
		}

		sem := semaphore.NewWeighted(parallelism)
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			if err := sem.Acquire(ctx, 1); err != nil {
				// mid-batch cancellation: finish what was started,
				// defer the rest of this batch
				decisions[i] = deferCancelled(tracks[i])
				if bar != nil {
					bar.Increment()
				}
				cancelled = true
				continue
			}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer sem.Release(1)
				decisions[i] = o.process(ctx, tracks[i], matcher)
				if bar != nil {
					bar.Increment()
				}
			}(i)
		}
		wg.Wait()

		if o.mode == ModeExecute {
			if err := o.commit(ctx, decisions[start:end], memberships); err != nil {
				return nil, nil, err
			}
		}

		if end < len(tracks) && o.cfg.BatchDelaySeconds > 0 {
			delay := time.Duration(o.cfg.BatchDelaySeconds * float64(time.Second))
			select {
			case <-ctx.Done():
				cancelled = true
			case <-time.After(delay):
			}
		}
	}

	summary := NewSummary()
	for _, d := range decisions {
		summary.Add(d)
	}
	o.ReportIntended(decisions)
	return decisions, summary, nil
}

// process runs one track through the sequential pipeline stages
func (o *Orchestrator) process(ctx context.Context, track shared.Track, matcher interfaces.MatcherService) Decision {
	decision := Decision{Track: track, State: StatePending}

	// tracks already confidently tagged are not re-researched
	if track.CurrentGenre != "" && track.Confidence > o.cfg.SkipConfidence {
		decision.State = StateDecided
		decision.Outcome = Defer
		decision.Reason = ReasonAlreadyTagged
		if g, ok := taxonomy.ParseGenre(track.CurrentGenre); ok {
			decision.Genre = g
		}
		decision.Confidence = track.Confidence
		return decision
	}

	result := o.research.Research(ctx, track.Artist, track.Title)
	decision.State = StateResearched

	detection := o.detector.Detect(ctx, track, result)
	decision.State = StateRemixChecked
	decision.Remix = detection.Status

	features, err := o.extractFeatures(ctx, track)
	if err != nil {
		o.logger.Debug("acoustic extraction failed for %s: %v", track.Title, err)
	}

	candidates := o.classifier.Classify(result, detection, features)
	decision.State = StateClassified
	decision.Candidates = candidates

	top := candidates[0]
	decision.Genre = top.Genre
	decision.Confidence = top.Confidence

	if top.Genre == taxonomy.Unknown {
		decision.State = StateDecided
		decision.Outcome = Reject
		if detection.Status == remix.Unresolved {
			decision.Reason = ReasonRemixConflict
		} else {
			decision.Reason = ReasonNoEvidence
		}
		return decision
	}

	match, err := matcher.Match(top.Genre, detection.Status, track)
	if err != nil {
		o.logger.Warning("Playlist taxonomy inconsistent for %s - %s: %v", track.Artist, track.Title, err)
		decision.State = StateDecided
		decision.Outcome = Reject
		decision.Reason = ReasonInconsistentTaxonomy
		return decision
	}
	decision.State = StateMatched

	switch {
	case match == nil:
		decision.Outcome = Defer
		decision.Reason = ReasonNoPlaylistMatch
	case top.Confidence < o.cfg.ConfidenceThreshold:
		decision.Outcome = Defer
		decision.Reason = ReasonBelowThreshold
	default:
		// the playlist may be a nearest-genre fallback; the genre written
		// back stays the classified label
		decision.Outcome = Accept
		decision.Playlist = &match.Playlist
		decision.Conflicts = match.Conflicts
	}
	decision.State = StateDecided
	return decision
}

// extractFeatures asks the acoustic collaborator for a feature vector.
// Unavailable features are a normal outcome, surfaced as nil.
func (o *Orchestrator) extractFeatures(ctx context.Context, track shared.Track) (*acoustic.Features, error) {
	if o.acoustic == nil || !o.acoustic.Enabled() || track.FilePath == "" {
		return nil, nil
	}
	return o.acoustic.Extract(ctx, track.FilePath)
}

// commit performs the library writes for the accepted decisions of one
// batch. Library failures abort the run. The memberships cache is shared
// across batches so each touched playlist is listed at most once per run.
func (o *Orchestrator) commit(ctx context.Context, decisions []Decision, memberships map[string]map[string]bool) error {
	for i := range decisions {
		d := &decisions[i]
		if d.Outcome != Accept {
			continue
		}
		if err := o.library.UpdateTrackGenre(ctx, d.Track.ID, string(d.Genre)); err != nil {
			return fmt.Errorf("failed to update genre for %s: %w", d.Track.Title, err)
		}
		if d.Playlist != nil {
			member, err := o.isMember(ctx, memberships, d.Playlist.ID, d.Track)
			if err != nil {
				return fmt.Errorf("failed to read playlist %s: %w", d.Playlist.Name, err)
			}
			if !member {
				if err := o.library.AddToPlaylist(ctx, d.Playlist.ID, d.Track.ID); err != nil {
					return fmt.Errorf("failed to add %s to playlist %s: %w", d.Track.Title, d.Playlist.Name, err)
				}
				memberships[d.Playlist.ID][d.Track.ID] = true
			}
		}
		for _, c := range d.Conflicts {
			o.logger.Warning("%s - %s also belongs to %s (%s)", d.Track.Artist, d.Track.Title, c.PlaylistName, c.Genre)
		}
	}
	return nil
}

// isMember consults the track's own snapshot first and falls back to the
// playlist's current contents, fetched lazily once per playlist.
func (o *Orchestrator) isMember(ctx context.Context, memberships map[string]map[string]bool, playlistID string, track shared.Track) (bool, error) {
	if memberOf(track, playlistID) {
		return true, nil
	}
	set, ok := memberships[playlistID]
	if !ok {
		ids, err := o.library.GetPlaylistTracks(ctx, playlistID)
		if err != nil {
			return false, err
		}
		set = make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		memberships[playlistID] = set
	}
	return set[track.ID], nil
}

// ReportIntended logs the writes a dry run would have performed
func (o *Orchestrator) ReportIntended(decisions []Decision) {
	if o.mode != ModeDryRun {
		return
	}
	for _, d := range decisions {
		if d.Outcome != Accept {
			continue
		}
		name := ""
		if d.Playlist != nil {
			name = d.Playlist.Name
		}
		o.logger.Info("[dry-run] would set %s - %s to %s and add to %s (%.2f)",
			d.Track.Artist, d.Track.Title, d.Genre, name, d.Confidence)
	}
}

func deferCancelled(track shared.Track) Decision {
	return Decision{
		Track:   track,
		State:   StateDecided,
		Outcome: Defer,
		Reason:  ReasonCancelled,
	}
}

func memberOf(track shared.Track, playlistID string) bool {
	for _, id := range track.Playlists {
		if id == playlistID {
			return true
		}
	}
	return false
}
