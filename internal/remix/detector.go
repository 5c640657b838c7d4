package remix

import (
	"context"
	"regexp"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/behruzmistry/genrebendpro/internal/research"
	"github.com/behruzmistry/genrebendpro/internal/shared"
	"github.com/behruzmistry/genrebendpro/internal/taxonomy"
)

// Status classifies a track's remix standing. Unresolved is distinct from
// NotRemix: remix indicators were found but no original could be matched, so
// classification must fall back to the remix's own metadata only.
type Status int

const (
	NotRemix Status = iota
	Resolved
	Unresolved
)

func (s Status) String() string {
	switch s {
	case NotRemix:
		return "NOT_REMIX"
	case Resolved:
		return "REMIX_RESOLVED"
	case Unresolved:
		return "REMIX_UNRESOLVED"
	default:
		return "UNKNOWN"
	}
}

// Detection is the outcome of remix detection for one track. When Status is
// Resolved, OriginalEvidence carries the resolved original's research result
// for the classifier to blend in.
type Detection struct {
	Status           Status
	Indicators       []string
	OriginalTitle    string
	OriginalArtist   string
	OriginalEvidence *research.Result
}

// remixKeywords are authoritative whole-word indicators in the normalized
// title or artist. A remix-ish research tag alone never flips the status.
var remixKeywords = []string{
	"remix", "edit", "vip", "rework", "bootleg", "flip", "refix", "mashup", "dub",
}

var (
	// "(... Mix)" / "[... Version]" style markers
	versionMarkerPattern = regexp.MustCompile(`(?i)[(\[][^)\]]*\b(mix|version)\b[^)\]]*[)\]]`)
	// co-credit structures common to remixes
	coCreditPattern = regexp.MustCompile(`(?i)\b(ft\.?|feat\.?|featuring|vs\.?)\s`)
	// suffix segments stripped to recover the original title
	strippedSegmentPattern = regexp.MustCompile(`(?i)\s*[(\[][^)\]]*\b(remix|mix|edit|vip|rework|bootleg|flip|refix|mashup|dub|version)\b[^)\]]*[)\]]`)
	dashSuffixPattern      = regexp.MustCompile(`(?i)\s+-\s+[^-]*\b(remix|mix|edit|vip|rework|bootleg|flip|refix|mashup|dub)\b.*$`)
	featSuffixPattern      = regexp.MustCompile(`(?i)\s*[(\[]?(ft\.?|feat\.?|featuring)\s[^)\]]*[)\]]?\s*$`)
)

// Detector decides remix status and, when indicated, attempts to resolve
// the original recording through the research aggregator.
type Detector struct {
	aggregator *research.Aggregator
	similarity *metrics.JaroWinkler
	debug      bool
}

// NewDetector creates a remix detector backed by the given aggregator
func NewDetector(aggregator *research.Aggregator) *Detector {
	return &Detector{
		aggregator: aggregator,
		similarity: metrics.NewJaroWinkler(),
	}
}

// SetDebug enables debug logging
func (d *Detector) SetDebug(debug bool) {
	d.debug = debug
}

// Detect scans the track's textual fields for remix indicators and, if any
// are found, re-queries the aggregator for the stripped original. Acoustic
// evidence plays no part here; only title/artist keywords are authoritative.
func (d *Detector) Detect(ctx context.Context, track shared.Track, _ *research.Result) Detection {
	indicators := ScanIndicators(track.Title, track.Artist)
	if len(indicators) == 0 {
		return Detection{Status: NotRemix}
	}

	originalTitle := StripRemixSuffix(track.Title)
	originalArtist := strings.TrimSpace(featSuffixPattern.ReplaceAllString(track.Artist, ""))
	if originalArtist == "" {
		originalArtist = track.Artist
	}

	detection := Detection{
		Status:         Unresolved,
		Indicators:     indicators,
		OriginalTitle:  originalTitle,
		OriginalArtist: originalArtist,
	}

	// Stripping changed nothing: there is no distinct original to look up.
	if originalTitle == "" || strutil.Similarity(
		strings.ToLower(originalTitle), strings.ToLower(track.Title), d.similarity) > 0.99 {
		shared.DebugPrint(d.debug, "remix indicators in %q but no strippable suffix", track.Title)
		return detection
	}

	evidence := d.aggregator.Research(ctx, originalArtist, originalTitle)
	if evidence.HasEvidence() {
		detection.Status = Resolved
		detection.OriginalEvidence = evidence
	}
	return detection
}

// ScanIndicators returns the remix indicators present in a title/artist
// pair. Whole-word keyword matches, "(... Mix)" markers and co-credit
// structures all count.
func ScanIndicators(title, artist string) []string {
	var indicators []string
	seen := make(map[string]bool)

	add := func(indicator string) {
		if !seen[indicator] {
			seen[indicator] = true
			indicators = append(indicators, indicator)
		}
	}

	normalizedTitle := taxonomy.Normalize(title)
	normalizedArtist := taxonomy.Normalize(artist)
	titleWords := wordSet(normalizedTitle)
	artistWords := wordSet(normalizedArtist)

	for _, keyword := range remixKeywords {
		if titleWords[keyword] || artistWords[keyword] {
			add(keyword)
		}
	}
	if versionMarkerPattern.MatchString(title) {
		add("version-marker")
	}
	if coCreditPattern.MatchString(title) || coCreditPattern.MatchString(artist) {
		add("co-credit")
	}
	return indicators
}

// StripRemixSuffix removes remix-indicating segments from a title so the
// original recording can be looked up.
func StripRemixSuffix(title string) string {
	stripped := strippedSegmentPattern.ReplaceAllString(title, "")
	stripped = dashSuffixPattern.ReplaceAllString(stripped, "")
	stripped = featSuffixPattern.ReplaceAllString(stripped, "")
	return strings.TrimSpace(stripped)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}
