package research

import "github.com/behruzmistry/genrebendpro/internal/taxonomy"

// LookupResult is what a single source returns for one track. A nil
// LookupResult means the source had no match, which is a normal outcome.
type LookupResult struct {
	Tags       []string
	Confidence float64           // the source's own reported confidence in [0,1]
	Raw        map[string]string // raw fields kept for diagnostics
}

// Evidence is the per-source slot of a Result. Sources that failed or found
// nothing still occupy a slot so the merge never silently drops a source.
type Evidence struct {
	Source     string
	Weight     float64 // fixed priority weight of the source
	Found      bool
	Tags       []string
	Confidence float64
	Raw        map[string]string
}

// Result is the merged research outcome for one track. It is assembled once
// per track, treated as immutable afterwards, and discarded after
// classification.
type Result struct {
	Artist   string
	Title    string
	Evidence []Evidence // fixed source-priority order
}

// HasEvidence reports whether any source contributed at least one tag
func (r *Result) HasEvidence() bool {
	for _, e := range r.Evidence {
		if e.Found && len(e.Tags) > 0 {
			return true
		}
	}
	return false
}

// SourcesFound counts sources that returned a match
func (r *Result) SourcesFound() int {
	n := 0
	for _, e := range r.Evidence {
		if e.Found {
			n++
		}
	}
	return n
}

// CombinedTags returns every tag from every source, deduplicated on the
// normalized form, in source-priority order. Disagreeing sources all keep
// their tags; nothing is dropped.
func (r *Result) CombinedTags() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, e := range r.Evidence {
		for _, tag := range e.Tags {
			key := taxonomy.Normalize(tag)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// Confidence scores the overall research quality: how many sources matched,
// whether any genre tags came back, and how rich the highest-priority
// source's payload was. Capped at 1.0.
func (r *Result) Confidence() float64 {
	confidence := 0.0

	switch r.SourcesFound() {
	case 0:
		return 0.0
	case 1:
		confidence = 0.6
	default:
		confidence = 0.8
	}

	if len(r.CombinedTags()) > 0 {
		confidence += 0.1
	}

	// Richness markers from the primary source's raw payload.
	for _, e := range r.Evidence {
		if !e.Found {
			continue
		}
		if e.Raw["artistTags"] == "true" {
			confidence += 0.05
		}
		if e.Raw["similarTracks"] == "true" {
			confidence += 0.05
		}
		if e.Raw["playcount"] == "true" {
			confidence += 0.05
		}
		break
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
