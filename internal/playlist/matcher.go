package playlist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/behruzmistry/genrebendpro/internal/remix"
	"github.com/behruzmistry/genrebendpro/internal/shared"
	"github.com/behruzmistry/genrebendpro/internal/taxonomy"
)

// Specificity says which renditions a playlist accepts. It is derived from
// the playlist's name and description; most playlists accept any rendition.
type Specificity int

const (
	Any Specificity = iota
	RemixOnly
	OriginalOnly
)

func (s Specificity) String() string {
	switch s {
	case RemixOnly:
		return "remix-only"
	case OriginalOnly:
		return "original-only"
	default:
		return "any"
	}
}

// fuzzyNameThreshold is the minimum Jaro-Winkler similarity between a
// playlist name and a genre label for a name-based match.
const fuzzyNameThreshold = 0.85

// Conflict flags an existing playlist membership whose genre family clashes
// with the newly chosen genre. The matcher only reports conflicts; removal
// stays with the caller.
type Conflict struct {
	PlaylistID   string
	PlaylistName string
	Genre        taxonomy.Genre
}

// Match is a chosen playlist for a track, with how it was found and any
// membership conflicts detected against the track's current playlists.
type Match struct {
	Playlist    shared.Playlist
	Genre       taxonomy.Genre
	Exact       bool
	Specificity Specificity
	Conflicts   []Conflict
}

type entry struct {
	playlist       shared.Playlist
	genre          taxonomy.Genre
	genreKnown     bool
	specificity    Specificity
	normalizedName string
	malformed      bool
}

// Matcher maps genre candidates onto a read-only playlist taxonomy
// snapshot loaded once per run.
type Matcher struct {
	entries    []entry
	byID       map[string]entry
	similarity *metrics.JaroWinkler
}

// NewMatcher builds a matcher over the given taxonomy snapshot. Malformed
// entries are kept so that matching a track against one can be reported as
// an inconsistency instead of a silent miss.
func NewMatcher(playlists []shared.Playlist) *Matcher {
	m := &Matcher{
		byID:       make(map[string]entry, len(playlists)),
		similarity: metrics.NewJaroWinkler(),
	}
	for _, p := range playlists {
		e := entry{
			playlist:       p,
			specificity:    deriveSpecificity(p),
			normalizedName: taxonomy.Normalize(p.Name),
			malformed:      p.ID == "" || p.Name == "",
		}
		e.genre, e.genreKnown = taxonomy.ParseGenre(p.Genre)
		m.entries = append(m.entries, e)
		if p.ID != "" {
			m.byID[p.ID] = e
		}
	}
	return m
}

// Size returns the number of playlists in the snapshot
func (m *Matcher) Size() int {
	return len(m.entries)
}

// Match finds the best playlist for the given genre and remix status.
// Precedence: exact genre with compatible specificity, then the nearest
// genre from the similarity table, then a fuzzy name match. A nil match
// with nil error means no playlist fits. ErrInconsistentTaxonomy is
// returned when the chosen playlist entry is malformed.
func (m *Matcher) Match(genre taxonomy.Genre, status remix.Status, track shared.Track) (*Match, error) {
	if genre == taxonomy.Unknown {
		return nil, nil
	}

	if e, ok := m.bestForGenre(genre, status); ok {
		return m.finish(e, genre, true, track)
	}
	for _, near := range taxonomy.Similar(genre) {
		if e, ok := m.bestForGenre(near, status); ok {
			return m.finish(e, near, false, track)
		}
	}
	if e, ok := m.bestByName(genre, status); ok {
		return m.finish(e, genre, false, track)
	}
	return nil, nil
}

func (m *Matcher) finish(e entry, genre taxonomy.Genre, exact bool, track shared.Track) (*Match, error) {
	if e.malformed {
		return nil, fmt.Errorf("playlist %q (id %q): %w", e.playlist.Name, e.playlist.ID, shared.ErrInconsistentTaxonomy)
	}
	return &Match{
		Playlist:    e.playlist,
		Genre:       genre,
		Exact:       exact,
		Specificity: e.specificity,
		Conflicts:   m.membershipConflicts(track, genre),
	}, nil
}

// bestForGenre picks the compatible playlist for an exact genre label.
// Rendition-specific playlists win over unspecified ones; names break the
// remaining ties.
func (m *Matcher) bestForGenre(genre taxonomy.Genre, status remix.Status) (entry, bool) {
	var candidates []entry
	for _, e := range m.entries {
		if e.genreKnown && e.genre == genre && compatible(e.specificity, status) {
			candidates = append(candidates, e)
		}
	}
	return pick(candidates)
}

// bestByName falls back to fuzzy matching the genre label against playlist
// names, for snapshots whose genre fields are missing or irregular.
func (m *Matcher) bestByName(genre taxonomy.Genre, status remix.Status) (entry, bool) {
	label := taxonomy.Normalize(string(genre))
	bestScore := fuzzyNameThreshold
	var best entry
	var found bool
	for _, e := range m.entries {
		if e.genreKnown || !compatible(e.specificity, status) {
			continue
		}
		score := strutil.Similarity(label, e.normalizedName, m.similarity)
		if score > bestScore || (score == bestScore && found && e.playlist.Name < best.playlist.Name) {
			best, found = e, true
			bestScore = score
		}
	}
	return best, found
}

// membershipConflicts reports existing memberships in playlists of a
// clearly different genre family than the chosen genre.
func (m *Matcher) membershipConflicts(track shared.Track, genre taxonomy.Genre) []Conflict {
	var conflicts []Conflict
	for _, id := range track.Playlists {
		e, ok := m.byID[id]
		if !ok || !e.genreKnown {
			continue
		}
		if !taxonomy.SameFamily(e.genre, genre) {
			conflicts = append(conflicts, Conflict{
				PlaylistID:   e.playlist.ID,
				PlaylistName: e.playlist.Name,
				Genre:        e.genre,
			})
		}
	}
	return conflicts
}

func pick(candidates []entry) (entry, bool) {
	if len(candidates) == 0 {
		return entry{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		si, sj := candidates[i].specificity != Any, candidates[j].specificity != Any
		if si != sj {
			return si
		}
		return candidates[i].playlist.Name < candidates[j].playlist.Name
	})
	return candidates[0], true
}

// compatible enforces rendition specificity: remix-only playlists need a
// remixed track, original-only playlists need a non-remix.
func compatible(s Specificity, status remix.Status) bool {
	switch s {
	case RemixOnly:
		return status != remix.NotRemix
	case OriginalOnly:
		return status == remix.NotRemix
	default:
		return true
	}
}

// deriveSpecificity reads rendition hints out of the playlist name and
// description
func deriveSpecificity(p shared.Playlist) Specificity {
	text := taxonomy.Normalize(p.Name + " " + p.Description)
	for _, marker := range []string{"remixes", "remix only", "remixes only", "remix"} {
		if containsWordPhrase(text, marker) {
			return RemixOnly
		}
	}
	for _, marker := range []string{"originals", "originals only", "original mixes", "original"} {
		if containsWordPhrase(text, marker) {
			return OriginalOnly
		}
	}
	return Any
}

func containsWordPhrase(text, phrase string) bool {
	idx := strings.Index(text, phrase)
	for idx >= 0 {
		beforeOK := idx == 0 || text[idx-1] == ' '
		end := idx + len(phrase)
		afterOK := end == len(text) || text[end] == ' '
		if beforeOK && afterOK {
			return true
		}
		next := strings.Index(text[idx+1:], phrase)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}
