package remix

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/behruzmistry/genrebendpro/internal/research"
	"github.com/behruzmistry/genrebendpro/internal/shared"
)

type stubSource struct {
	name   string
	tags   []string
	err    error
	calls  int
	titles []string
}

func (s *stubSource) Name() string    { return s.name }
func (s *stubSource) Weight() float64 { return 1.0 }

func (s *stubSource) Lookup(ctx context.Context, artist, title string) (*research.LookupResult, error) {
	s.calls++
	s.titles = append(s.titles, title)
	if s.err != nil {
		return nil, s.err
	}
	return &research.LookupResult{Tags: s.tags, Confidence: 0.7}, nil
}

func TestScanIndicators(t *testing.T) {
	tests := []struct {
		title    string
		artist   string
		expected []string
	}{
		{"Strobe", "deadmau5", nil},
		{"One More Time (Daft Punk Remix)", "Daft Punk", []string{"remix"}},
		{"Anthem (Club Mix)", "Some DJ", []string{"version-marker"}},
		{"Big Tune", "DJ One vs. DJ Two", []string{"co-credit"}},
		{"Voodoo People (Pendulum Edit)", "The Prodigy", []string{"edit"}},
		{"Dubstep Anthem", "Bass Head", nil},
		{"Weightless VIP", "Producer", []string{"vip"}},
	}

	for _, tt := range tests {
		got := ScanIndicators(tt.title, tt.artist)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("ScanIndicators(%q, %q) = %v, expected %v", tt.title, tt.artist, got, tt.expected)
		}
	}
}

func TestStripRemixSuffix(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"One More Time (Daft Punk Remix)", "One More Time"},
		{"Anthem (Extended Club Mix)", "Anthem"},
		{"Voodoo People - Pendulum Remix", "Voodoo People"},
		{"Levels [Skrillex Edit]", "Levels"},
		{"Song (feat. Somebody)", "Song"},
		{"Plain Title", "Plain Title"},
	}

	for _, tt := range tests {
		if got := StripRemixSuffix(tt.title); got != tt.expected {
			t.Errorf("StripRemixSuffix(%q) = %q, expected %q", tt.title, got, tt.expected)
		}
	}
}

func TestDetectNotRemix(t *testing.T) {
	source := &stubSource{name: "lastfm", tags: []string{"house"}}
	detector := NewDetector(research.NewAggregator(source))

	track := shared.Track{Title: "Strobe", Artist: "deadmau5"}
	detection := detector.Detect(context.Background(), track, nil)

	if detection.Status != NotRemix {
		t.Errorf("expected NotRemix, got %v", detection.Status)
	}
	if source.calls != 0 {
		t.Errorf("expected no original lookup for a non-remix, got %d calls", source.calls)
	}
}

func TestDetectResolvesOriginal(t *testing.T) {
	source := &stubSource{name: "lastfm", tags: []string{"progressive house"}}
	detector := NewDetector(research.NewAggregator(source))

	track := shared.Track{Title: "Greyhound (Bass Face Remix)", Artist: "Swedish House Mafia"}
	detection := detector.Detect(context.Background(), track, nil)

	if detection.Status != Resolved {
		t.Fatalf("expected Resolved, got %v", detection.Status)
	}
	if detection.OriginalTitle != "Greyhound" {
		t.Errorf("expected stripped title Greyhound, got %q", detection.OriginalTitle)
	}
	if detection.OriginalEvidence == nil || !detection.OriginalEvidence.HasEvidence() {
		t.Error("expected original evidence to be attached")
	}
	if len(source.titles) != 1 || source.titles[0] != "Greyhound" {
		t.Errorf("expected one lookup for Greyhound, got %v", source.titles)
	}
}

func TestDetectUnresolvedWhenLookupFails(t *testing.T) {
	source := &stubSource{name: "lastfm", err: errors.New("api down")}
	detector := NewDetector(research.NewAggregator(source))

	track := shared.Track{Title: "Greyhound (Bass Face Remix)", Artist: "Swedish House Mafia"}
	detection := detector.Detect(context.Background(), track, nil)

	if detection.Status != Unresolved {
		t.Errorf("expected Unresolved, got %v", detection.Status)
	}
	if detection.OriginalEvidence != nil {
		t.Error("expected no original evidence on failed lookup")
	}
}

func TestDetectUnresolvedWithoutStrippableSuffix(t *testing.T) {
	source := &stubSource{name: "lastfm", tags: []string{"dub"}}
	detector := NewDetector(research.NewAggregator(source))

	// keyword present as a whole word but nothing to strip
	track := shared.Track{Title: "Voodoo Dub", Artist: "King Tubby"}
	detection := detector.Detect(context.Background(), track, nil)

	if detection.Status != Unresolved {
		t.Errorf("expected Unresolved, got %v", detection.Status)
	}
	if source.calls != 0 {
		t.Errorf("expected no lookup when stripping changes nothing, got %d calls", source.calls)
	}
}

func TestStatusString(t *testing.T) {
	if NotRemix.String() != "NOT_REMIX" || Resolved.String() != "REMIX_RESOLVED" || Unresolved.String() != "REMIX_UNRESOLVED" {
		t.Error("unexpected status strings")
	}
}
