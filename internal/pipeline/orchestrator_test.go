package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/behruzmistry/genrebendpro/internal/api/acoustic"
	"github.com/behruzmistry/genrebendpro/internal/classify"
	"github.com/behruzmistry/genrebendpro/internal/config"
	"github.com/behruzmistry/genrebendpro/internal/remix"
	"github.com/behruzmistry/genrebendpro/internal/research"
	"github.com/behruzmistry/genrebendpro/internal/shared"
	"github.com/behruzmistry/genrebendpro/internal/taxonomy"
)

type fakeLibrary struct {
	mu             sync.Mutex
	playlists      []shared.Playlist
	playlistTracks map[string][]string
	statusErr      error

	genreWrites    map[string]string
	playlistWrites map[string]string
	listings       int
}

func newFakeLibrary(playlists ...shared.Playlist) *fakeLibrary {
	return &fakeLibrary{
		playlists:      playlists,
		playlistTracks: make(map[string][]string),
		genreWrites:    make(map[string]string),
		playlistWrites: make(map[string]string),
	}
}

func (f *fakeLibrary) Status(ctx context.Context) error { return f.statusErr }

func (f *fakeLibrary) ListTracks(ctx context.Context, limit, offset int) ([]shared.Track, error) {
	return nil, nil
}

func (f *fakeLibrary) ListAllTracks(ctx context.Context) ([]shared.Track, error) {
	return nil, nil
}

func (f *fakeLibrary) ListPlaylists(ctx context.Context) ([]shared.Playlist, error) {
	return f.playlists, nil
}

func (f *fakeLibrary) UpdateTrackGenre(ctx context.Context, trackID, genre string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.genreWrites[trackID] = genre
	return nil
}

func (f *fakeLibrary) AddToPlaylist(ctx context.Context, playlistID, trackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playlistWrites[trackID] = playlistID
	return nil
}

func (f *fakeLibrary) GetPlaylistTracks(ctx context.Context, playlistID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings++
	return f.playlistTracks[playlistID], nil
}

type fakeResearch struct {
	mu      sync.Mutex
	results map[string]*research.Result
	calls   []string
	onCall  func()
}

func (f *fakeResearch) Research(ctx context.Context, artist, title string) *research.Result {
	f.mu.Lock()
	f.calls = append(f.calls, title)
	onCall := f.onCall
	result := f.results[title]
	f.mu.Unlock()
	if onCall != nil {
		onCall()
	}
	if result == nil {
		return &research.Result{Artist: artist, Title: title}
	}
	return result
}

type fakeDetector struct {
	detections map[string]remix.Detection
}

func (f *fakeDetector) Detect(ctx context.Context, track shared.Track, result *research.Result) remix.Detection {
	return f.detections[track.Title]
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})    {}
func (nopLogger) Warning(string, ...interface{}) {}
func (nopLogger) Error(string, ...interface{})   {}
func (nopLogger) Debug(string, ...interface{})   {}
func (nopLogger) Success(string, ...interface{}) {}
func (nopLogger) SetDebugMode(bool)              {}

func corroborated(tags ...string) *research.Result {
	return &research.Result{Evidence: []research.Evidence{
		{Source: "lastfm", Weight: research.WeightLastfm, Found: true, Tags: tags, Confidence: 0.7},
		{Source: "musicbrainz", Weight: research.WeightMusicBrainz, Found: true, Tags: tags, Confidence: 0.6},
	}}
}

func split(lastfmTag, musicbrainzTag string) *research.Result {
	return &research.Result{Evidence: []research.Evidence{
		{Source: "lastfm", Weight: research.WeightLastfm, Found: true, Tags: []string{lastfmTag}, Confidence: 0.7},
		{Source: "musicbrainz", Weight: research.WeightMusicBrainz, Found: true, Tags: []string{musicbrainzTag}, Confidence: 0.6},
	}}
}

func testConfig() *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.BatchDelaySeconds = 0
	return cfg
}

func testOrchestrator(cfg *config.Config, lib *fakeLibrary, res *fakeResearch, det *fakeDetector) *Orchestrator {
	if det == nil {
		det = &fakeDetector{}
	}
	classifier := classify.NewClassifier(cfg.Fusion)
	return NewOrchestrator(cfg, lib, res, det, classifier, nil, nopLogger{})
}

func TestRunAcceptsCorroboratedTrack(t *testing.T) {
	lib := newFakeLibrary(shared.Playlist{ID: "pl-house", Name: "House", Genre: "House"})
	res := &fakeResearch{results: map[string]*research.Result{"Move Your Body": corroborated("house")}}
	orch := testOrchestrator(testConfig(), lib, res, nil)

	decisions, summary, err := orch.Run(context.Background(), []shared.Track{
		{ID: "t1", Title: "Move Your Body", Artist: "Marshall Jefferson"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decisions[0].Outcome != Accept {
		t.Fatalf("expected Accept, got %v (%s)", decisions[0].Outcome, decisions[0].Reason)
	}
	if decisions[0].Playlist == nil || decisions[0].Playlist.ID != "pl-house" {
		t.Errorf("accepted decision must reference a playlist from the snapshot, got %+v", decisions[0].Playlist)
	}
	if decisions[0].State != StateDecided {
		t.Errorf("expected terminal state, got %v", decisions[0].State)
	}
	if summary.Accepted != 1 || summary.GenreDistribution[taxonomy.House] != 1 {
		t.Errorf("summary not updated: %+v", summary)
	}
}

func TestRunRejectsNoEvidence(t *testing.T) {
	lib := newFakeLibrary(shared.Playlist{ID: "pl-house", Name: "House", Genre: "House"})
	res := &fakeResearch{}
	orch := testOrchestrator(testConfig(), lib, res, nil)

	decisions, _, err := orch.Run(context.Background(), []shared.Track{
		{ID: "t1", Title: "Obscure B-Side", Artist: "Nobody"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decisions[0].Outcome != Reject || decisions[0].Reason != ReasonNoEvidence {
		t.Fatalf("expected REJECTED(NO_EVIDENCE), got %v (%s)", decisions[0].Outcome, decisions[0].Reason)
	}
	if decisions[0].Genre != taxonomy.Unknown || decisions[0].Confidence != 0 {
		t.Errorf("no-evidence decision should carry the Unknown sentinel at zero confidence")
	}
}

func TestRunDefersSplitEvidence(t *testing.T) {
	lib := newFakeLibrary(
		shared.Playlist{ID: "pl-house", Name: "House", Genre: "House"},
		shared.Playlist{ID: "pl-techno", Name: "Techno", Genre: "Techno"},
	)
	res := &fakeResearch{results: map[string]*research.Result{"Contested": split("house", "techno")}}
	orch := testOrchestrator(testConfig(), lib, res, nil)

	decisions, _, err := orch.Run(context.Background(), []shared.Track{
		{ID: "t1", Title: "Contested", Artist: "Someone"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decisions[0].Outcome != Defer || decisions[0].Reason != ReasonBelowThreshold {
		t.Fatalf("expected DEFERRED(BELOW_THRESHOLD), got %v (%s)", decisions[0].Outcome, decisions[0].Reason)
	}
}

func TestRunRejectsUnresolvedRemixWithoutEvidence(t *testing.T) {
	lib := newFakeLibrary(shared.Playlist{ID: "pl-house", Name: "House", Genre: "House"})
	res := &fakeResearch{}
	det := &fakeDetector{detections: map[string]remix.Detection{
		"Lost Dub (VIP)": {Status: remix.Unresolved, Indicators: []string{"vip"}},
	}}
	orch := testOrchestrator(testConfig(), lib, res, det)

	decisions, _, err := orch.Run(context.Background(), []shared.Track{
		{ID: "t1", Title: "Lost Dub (VIP)", Artist: "Ghost"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decisions[0].Outcome != Reject || decisions[0].Reason != ReasonRemixConflict {
		t.Fatalf("expected REJECTED(REMIX_CONFLICT), got %v (%s)", decisions[0].Outcome, decisions[0].Reason)
	}
}

func TestRunSkipsConfidentlyTaggedTracks(t *testing.T) {
	lib := newFakeLibrary(shared.Playlist{ID: "pl-house", Name: "House", Genre: "House"})
	res := &fakeResearch{}
	orch := testOrchestrator(testConfig(), lib, res, nil)

	decisions, summary, err := orch.Run(context.Background(), []shared.Track{
		{ID: "t1", Title: "Done Already", Artist: "Someone", CurrentGenre: "House", Confidence: 0.95},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decisions[0].Outcome != Defer || decisions[0].Reason != ReasonAlreadyTagged {
		t.Fatalf("expected DEFERRED(ALREADY_TAGGED), got %v (%s)", decisions[0].Outcome, decisions[0].Reason)
	}
	if len(res.calls) != 0 {
		t.Errorf("skipped track must not be researched, got calls %v", res.calls)
	}
	if summary.Skipped != 1 {
		t.Errorf("expected one skipped track in the summary, got %d", summary.Skipped)
	}
}

func TestRunAbortsWhenLibraryUnavailable(t *testing.T) {
	lib := newFakeLibrary()
	lib.statusErr = shared.ErrLibraryUnavailable
	orch := testOrchestrator(testConfig(), lib, &fakeResearch{}, nil)

	_, _, err := orch.Run(context.Background(), []shared.Track{{ID: "t1", Title: "Anything"}})
	if err == nil {
		t.Fatal("expected run to abort when the library is unreachable")
	}
}

func TestRunExecuteWritesAcceptedOnly(t *testing.T) {
	lib := newFakeLibrary(shared.Playlist{ID: "pl-house", Name: "House", Genre: "House"})
	res := &fakeResearch{results: map[string]*research.Result{
		"Good":      corroborated("house"),
		"Contested": split("house", "techno"),
	}}
	orch := testOrchestrator(testConfig(), lib, res, nil)
	orch.SetMode(ModeExecute)

	_, _, err := orch.Run(context.Background(), []shared.Track{
		{ID: "t1", Title: "Good", Artist: "A"},
		{ID: "t2", Title: "Contested", Artist: "B"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lib.genreWrites["t1"] != "House" {
		t.Errorf("expected genre write for accepted track, got %v", lib.genreWrites)
	}
	if lib.playlistWrites["t1"] != "pl-house" {
		t.Errorf("expected playlist write for accepted track, got %v", lib.playlistWrites)
	}
	if _, ok := lib.genreWrites["t2"]; ok {
		t.Error("deferred track must not be written")
	}
}

func TestRunKeepsClassifiedGenreOnNearestPlaylist(t *testing.T) {
	// the snapshot has no Deep House playlist, so the track lands in the
	// nearest House one without coarsening its genre
	lib := newFakeLibrary(shared.Playlist{ID: "pl-house", Name: "House", Genre: "House"})
	res := &fakeResearch{results: map[string]*research.Result{"Warm Inside": corroborated("deep house")}}
	orch := testOrchestrator(testConfig(), lib, res, nil)
	orch.SetMode(ModeExecute)

	decisions, _, err := orch.Run(context.Background(), []shared.Track{
		{ID: "t1", Title: "Warm Inside", Artist: "A"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decisions[0].Outcome != Accept {
		t.Fatalf("expected Accept, got %v (%s)", decisions[0].Outcome, decisions[0].Reason)
	}
	if decisions[0].Playlist == nil || decisions[0].Playlist.ID != "pl-house" {
		t.Errorf("expected the nearest playlist, got %+v", decisions[0].Playlist)
	}
	if decisions[0].Genre != taxonomy.DeepHouse {
		t.Errorf("decision genre must stay the classified label, got %q", decisions[0].Genre)
	}
	if lib.genreWrites["t1"] != "Deep House" {
		t.Errorf("library genre write must stay the classified label, got %q", lib.genreWrites["t1"])
	}
	if lib.playlistWrites["t1"] != "pl-house" {
		t.Errorf("expected playlist write to the nearest playlist, got %v", lib.playlistWrites)
	}
}

func TestRunExecuteSkipsExistingPlaylistMembers(t *testing.T) {
	// t1 is already in the playlist server-side but its snapshot does not
	// say so; the commit must consult the playlist contents before adding
	lib := newFakeLibrary(shared.Playlist{ID: "pl-house", Name: "House", Genre: "House"})
	lib.playlistTracks["pl-house"] = []string{"t1"}
	res := &fakeResearch{results: map[string]*research.Result{
		"First":  corroborated("house"),
		"Second": corroborated("house"),
	}}
	orch := testOrchestrator(testConfig(), lib, res, nil)
	orch.SetMode(ModeExecute)

	_, _, err := orch.Run(context.Background(), []shared.Track{
		{ID: "t1", Title: "First", Artist: "A"},
		{ID: "t2", Title: "Second", Artist: "B"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lib.genreWrites["t1"] != "House" {
		t.Error("genre write still applies to an existing member")
	}
	if _, ok := lib.playlistWrites["t1"]; ok {
		t.Error("existing member must not be re-added to the playlist")
	}
	if lib.playlistWrites["t2"] != "pl-house" {
		t.Errorf("expected playlist write for the new member, got %v", lib.playlistWrites)
	}
	if lib.listings != 1 {
		t.Errorf("playlist contents should be fetched once per run, got %d", lib.listings)
	}
}

func TestRunDryRunPerformsNoWrites(t *testing.T) {
	lib := newFakeLibrary(shared.Playlist{ID: "pl-house", Name: "House", Genre: "House"})
	res := &fakeResearch{results: map[string]*research.Result{"Good": corroborated("house")}}
	orch := testOrchestrator(testConfig(), lib, res, nil)
	orch.SetMode(ModeDryRun)

	decisions, _, err := orch.Run(context.Background(), []shared.Track{{ID: "t1", Title: "Good", Artist: "A"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decisions[0].Outcome != Accept {
		t.Fatalf("dry run must still decide, got %v", decisions[0].Outcome)
	}
	if len(lib.genreWrites) != 0 || len(lib.playlistWrites) != 0 {
		t.Error("dry run must not write to the library")
	}
}

func TestRunBatchIsolation(t *testing.T) {
	lib := newFakeLibrary(shared.Playlist{ID: "pl-house", Name: "House", Genre: "House"})
	results := make(map[string]*research.Result)
	var tracks []shared.Track
	for i := 0; i < 20; i++ {
		title := "Track " + string(rune('A'+i))
		tracks = append(tracks, shared.Track{ID: title, Title: title, Artist: "X"})
		if i%2 == 0 {
			results[title] = corroborated("house")
		}
		// odd tracks get no evidence, standing in for a dead source
	}
	cfg := testConfig()
	cfg.BatchSize = 6
	orch := testOrchestrator(cfg, lib, &fakeResearch{results: results}, nil)

	decisions, summary, err := orch.Run(context.Background(), tracks)
	if err != nil {
		t.Fatalf("run must complete despite per-track failures: %v", err)
	}
	if summary.Total != 20 {
		t.Fatalf("every track needs a decision, got %d", summary.Total)
	}
	for i, d := range decisions {
		if d.State != StateDecided {
			t.Errorf("track %d not decided: %v", i, d.State)
		}
	}
	if summary.Accepted != 10 || summary.Rejected != 10 {
		t.Errorf("expected 10 accepted and 10 rejected, got %+v", summary)
	}
}

func TestRunCancellationBetweenBatches(t *testing.T) {
	lib := newFakeLibrary(shared.Playlist{ID: "pl-house", Name: "House", Genre: "House"})
	ctx, cancel := context.WithCancel(context.Background())
	res := &fakeResearch{
		results: map[string]*research.Result{"First": corroborated("house")},
		onCall:  cancel, // user aborts while the first batch is in flight
	}
	cfg := testConfig()
	cfg.BatchSize = 1
	cfg.Parallelism = 1
	orch := testOrchestrator(cfg, lib, res, nil)

	decisions, summary, err := orch.Run(ctx, []shared.Track{
		{ID: "t1", Title: "First", Artist: "A"},
		{ID: "t2", Title: "Second", Artist: "B"},
		{ID: "t3", Title: "Third", Artist: "C"},
	})
	if err != nil {
		t.Fatalf("cancellation is not a run error: %v", err)
	}
	if decisions[0].Outcome != Accept {
		t.Errorf("already-decided track keeps its decision, got %v", decisions[0].Outcome)
	}
	for _, d := range decisions[1:] {
		if d.Outcome != Defer || d.Reason != ReasonCancelled {
			t.Errorf("pending track should be DEFERRED(CANCELLED), got %v (%s)", d.Outcome, d.Reason)
		}
	}
	if summary.Cancelled != 2 {
		t.Errorf("expected 2 cancelled tracks, got %d", summary.Cancelled)
	}
}

func TestRunThresholdMonotonicity(t *testing.T) {
	tracks := []shared.Track{
		{ID: "t1", Title: "Good", Artist: "A"},
		{ID: "t2", Title: "Contested", Artist: "B"},
		{ID: "t3", Title: "Nothing", Artist: "C"},
	}
	results := map[string]*research.Result{
		"Good":      corroborated("house"),
		"Contested": split("house", "techno"),
	}

	run := func(threshold float64) []Decision {
		lib := newFakeLibrary(
			shared.Playlist{ID: "pl-house", Name: "House", Genre: "House"},
			shared.Playlist{ID: "pl-techno", Name: "Techno", Genre: "Techno"},
		)
		cfg := testConfig()
		cfg.ConfidenceThreshold = threshold
		orch := testOrchestrator(cfg, lib, &fakeResearch{results: results}, nil)
		decisions, _, err := orch.Run(context.Background(), tracks)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return decisions
	}

	low := run(0.45)
	high := run(0.95)

	for i := range tracks {
		if high[i].Outcome == Accept && low[i].Outcome != Accept {
			t.Errorf("track %s accepted at the higher threshold only", tracks[i].Title)
		}
		if (low[i].Outcome == Reject) != (high[i].Outcome == Reject) {
			t.Errorf("rejection of %s must not depend on the threshold", tracks[i].Title)
		}
	}
	if low[1].Outcome != Accept || high[1].Outcome != Defer {
		t.Error("lowering the threshold should move the contested track from DEFERRED to ACCEPTED")
	}
}

func TestRunUsesAcousticFeaturesWhenAvailable(t *testing.T) {
	lib := newFakeLibrary(shared.Playlist{ID: "pl-house", Name: "House", Genre: "House"})
	res := &fakeResearch{results: map[string]*research.Result{"Warm": corroborated("house")}}
	cfg := testConfig()
	classifier := classify.NewClassifier(cfg.Fusion)
	orch := NewOrchestrator(cfg, lib, res, &fakeDetector{}, classifier, stubAcoustic{}, nopLogger{})

	decisions, _, err := orch.Run(context.Background(), []shared.Track{
		{ID: "t1", Title: "Warm", Artist: "A", FilePath: "/music/warm.flac"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decisions[0].Candidates[0].AcousticScore == 0 {
		t.Error("expected the acoustic channel to contribute")
	}
}

type stubAcoustic struct{}

func (stubAcoustic) Enabled() bool { return true }

func (stubAcoustic) Extract(ctx context.Context, fileRef string) (*acoustic.Features, error) {
	return &acoustic.Features{
		SpectralCentroid: 2200, SpectralRolloff: 5500, SpectralBandwidth: 2000,
		ZeroCrossingRate: 0.08, Tempo: 124, Energy: 0.70, HarmonicRatio: 0.60, Loudness: -8,
	}, nil
}

func TestSummarySuccessRate(t *testing.T) {
	s := NewSummary()
	s.Add(Decision{Outcome: Accept, Genre: taxonomy.House})
	s.Add(Decision{Outcome: Reject, Reason: ReasonNoEvidence})
	s.Add(Decision{Outcome: Defer, Reason: ReasonAlreadyTagged})
	s.Add(Decision{Outcome: Defer, Reason: ReasonBelowThreshold, Remix: remix.Resolved})

	if s.Total != 4 || s.Accepted != 1 || s.Rejected != 1 || s.Deferred != 2 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.Skipped != 1 || s.RemixResolved != 1 {
		t.Errorf("skip and remix bookkeeping wrong: %+v", s)
	}
	if rate := s.SuccessRate(); rate != float64(1)/3 {
		t.Errorf("success rate should ignore skipped tracks, got %.3f", rate)
	}
}
