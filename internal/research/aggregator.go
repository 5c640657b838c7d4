package research

import (
	"context"
	"regexp"
	"strings"
	"time"
)

const defaultSourceTimeout = 20 * time.Second

// Aggregator queries every configured research source for a track, in fixed
// priority order, and merges the responses into one Result. A failing source
// contributes an empty evidence slot; partial data is expected and
// tolerated. Each underlying client enforces its own rate limit, so the
// aggregator is safe to call from concurrent per-track goroutines.
type Aggregator struct {
	sources       []Source
	sourceTimeout time.Duration
	debug         bool
}

// NewAggregator creates an aggregator over the given sources. Order matters:
// it is the fixed source-priority order used for merging and tie-breaking.
func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{
		sources:       sources,
		sourceTimeout: defaultSourceTimeout,
	}
}

// SetSourceTimeout overrides the per-source lookup timeout
func (a *Aggregator) SetSourceTimeout(d time.Duration) {
	if d > 0 {
		a.sourceTimeout = d
	}
}

// SetDebug enables debug logging
func (a *Aggregator) SetDebug(debug bool) {
	a.debug = debug
}

// Sources returns the configured sources in priority order
func (a *Aggregator) Sources() []Source {
	return a.sources
}

// Research queries all sources for the track and merges their responses.
// It never fails: a source that errors or times out leaves an empty slot.
func (a *Aggregator) Research(ctx context.Context, artist, title string) *Result {
	cleanArtist := CleanArtistForSearch(artist)
	cleanTitle := CleanTitleForSearch(title)

	result := &Result{
		Artist:   artist,
		Title:    title,
		Evidence: make([]Evidence, 0, len(a.sources)),
	}

	for _, source := range a.sources {
		evidence := Evidence{
			Source: source.Name(),
			Weight: source.Weight(),
		}

		sourceCtx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
		lookup, err := source.Lookup(sourceCtx, cleanArtist, cleanTitle)
		cancel()

		if err == nil && lookup != nil {
			evidence.Found = true
			evidence.Tags = lookup.Tags
			evidence.Confidence = lookup.Confidence
			evidence.Raw = lookup.Raw
			if evidence.Confidence == 0 {
				evidence.Confidence = priorConfidence
			}
		}
		// err != nil: retries are already exhausted inside the client;
		// the empty slot records the absence.

		result.Evidence = append(result.Evidence, evidence)

		if ctx.Err() != nil {
			break
		}
	}

	return result
}

var (
	fileExtPattern     = regexp.MustCompile(`(?i)\.(mp3|wav|flac|aac|m4a|ogg|opus)$`)
	leadingNumPattern  = regexp.MustCompile(`^\d+\s*[-.]?\s*`)
	trailingNumPattern = regexp.MustCompile(`\s+[-.]?\s*\d+\s*$`)
	leadingArticle     = regexp.MustCompile(`(?i)^(the|a|an)\s+`)
)

// CleanTitleForSearch strips noise that hurts search hit rates: file
// extensions, leading track numbers and trailing numbers.
func CleanTitleForSearch(title string) string {
	clean := strings.TrimSpace(title)
	clean = fileExtPattern.ReplaceAllString(clean, "")
	clean = leadingNumPattern.ReplaceAllString(clean, "")
	clean = trailingNumPattern.ReplaceAllString(clean, "")
	return strings.TrimSpace(clean)
}

// CleanArtistForSearch strips leading articles from an artist name
func CleanArtistForSearch(artist string) string {
	clean := strings.TrimSpace(artist)
	clean = leadingArticle.ReplaceAllString(clean, "")
	return strings.TrimSpace(clean)
}
