package pipeline

import (
	"fmt"

	"github.com/behruzmistry/genrebendpro/internal/classify"
	"github.com/behruzmistry/genrebendpro/internal/playlist"
	"github.com/behruzmistry/genrebendpro/internal/remix"
	"github.com/behruzmistry/genrebendpro/internal/shared"
	"github.com/behruzmistry/genrebendpro/internal/taxonomy"
)

// State is a track's position in the per-track pipeline. Stages are strictly
// sequential; a track that fails a stage still reaches Decided, carrying the
// failure as its decision reason.
type State int

const (
	StatePending State = iota
	StateResearched
	StateRemixChecked
	StateClassified
	StateMatched
	StateDecided
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateResearched:
		return "RESEARCHED"
	case StateRemixChecked:
		return "REMIX_CHECKED"
	case StateClassified:
		return "CLASSIFIED"
	case StateMatched:
		return "MATCHED"
	case StateDecided:
		return "DECIDED"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the terminal disposition of a track
type Outcome int

const (
	// Defer means confidence was too low to act but evidence exists
	Defer Outcome = iota
	// Accept means the genre and playlist assignment clear the threshold
	Accept
	// Reject means the evidence conflicts irreconcilably or is absent
	Reject
)

func (o Outcome) String() string {
	switch o {
	case Accept:
		return "ACCEPTED"
	case Reject:
		return "REJECTED"
	default:
		return "DEFERRED"
	}
}

// Reason is a machine-readable explanation attached to Reject and Defer
// decisions
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonNoEvidence           Reason = "NO_EVIDENCE"
	ReasonRemixConflict        Reason = "REMIX_CONFLICT"
	ReasonBelowThreshold       Reason = "BELOW_THRESHOLD"
	ReasonNoPlaylistMatch      Reason = "NO_PLAYLIST_MATCH"
	ReasonAlreadyTagged        Reason = "ALREADY_TAGGED"
	ReasonCancelled            Reason = "CANCELLED"
	ReasonInconsistentTaxonomy Reason = "INCONSISTENT_TAXONOMY"
)

// Decision is the complete per-track outcome reported to the caller.
// Nothing is silently dropped: every processed track produces one.
type Decision struct {
	Track      shared.Track
	State      State
	Outcome    Outcome
	Reason     Reason
	Genre      taxonomy.Genre
	Confidence float64
	Remix      remix.Status
	Candidates []classify.Candidate
	Playlist   *shared.Playlist
	Conflicts  []playlist.Conflict
}

func (d Decision) String() string {
	switch d.Outcome {
	case Accept:
		name := ""
		if d.Playlist != nil {
			name = d.Playlist.Name
		}
		return fmt.Sprintf("%s - %s: %s -> %s (%.2f)", d.Track.Artist, d.Track.Title, d.Outcome, name, d.Confidence)
	default:
		return fmt.Sprintf("%s - %s: %s (%s)", d.Track.Artist, d.Track.Title, d.Outcome, d.Reason)
	}
}

// Summary aggregates a run's decisions for reporting
type Summary struct {
	Total     int
	Accepted  int
	Rejected  int
	Deferred  int
	Skipped   int
	Cancelled int

	RemixResolved   int
	RemixUnresolved int
	Conflicts       int

	GenreDistribution map[taxonomy.Genre]int
	Reasons           map[Reason]int
}

// NewSummary creates an empty run summary
func NewSummary() *Summary {
	return &Summary{
		GenreDistribution: make(map[taxonomy.Genre]int),
		Reasons:           make(map[Reason]int),
	}
}

// Add folds one decision into the summary
func (s *Summary) Add(d Decision) {
	s.Total++
	switch d.Outcome {
	case Accept:
		s.Accepted++
		s.GenreDistribution[d.Genre]++
	case Reject:
		s.Rejected++
	case Defer:
		s.Deferred++
		if d.Reason == ReasonAlreadyTagged {
			s.Skipped++
		}
		if d.Reason == ReasonCancelled {
			s.Cancelled++
		}
	}
	if d.Reason != ReasonNone {
		s.Reasons[d.Reason]++
	}
	switch d.Remix {
	case remix.Resolved:
		s.RemixResolved++
	case remix.Unresolved:
		s.RemixUnresolved++
	}
	s.Conflicts += len(d.Conflicts)
}

// SuccessRate is the share of tracks accepted, ignoring skipped ones
func (s *Summary) SuccessRate() float64 {
	considered := s.Total - s.Skipped - s.Cancelled
	if considered <= 0 {
		return 0
	}
	return float64(s.Accepted) / float64(considered)
}
