package playlist

import (
	"fmt"
	"sort"

	"github.com/behruzmistry/genrebendpro/internal/shared"
	"github.com/behruzmistry/genrebendpro/internal/taxonomy"
)

// InconsistencyKind classifies what is wrong with a playlist's metadata
type InconsistencyKind int

const (
	// MissingMetadata means the playlist lacks an ID or a name
	MissingMetadata InconsistencyKind = iota
	// MissingGenre means the genre field is empty or not a known label
	MissingGenre
	// NameGenreMismatch means the name points at a different genre family
	// than the genre field
	NameGenreMismatch
)

func (k InconsistencyKind) String() string {
	switch k {
	case MissingGenre:
		return "missing-genre"
	case NameGenreMismatch:
		return "name-genre-mismatch"
	default:
		return "missing-metadata"
	}
}

// Inconsistency is one report-only finding about the playlist taxonomy.
// Nothing acts on these; they surface in the collection analysis.
type Inconsistency struct {
	Playlist shared.Playlist
	Kind     InconsistencyKind
	Detail   string
}

// Suggestion proposes a playlist for a genre that has tracks but no home
type Suggestion struct {
	Genre  taxonomy.Genre
	Tracks int
}

// Inconsistencies audits the snapshot for metadata problems: playlists
// without id or name, genre fields that are empty or unrecognized, and
// names that contradict their genre field.
func (m *Matcher) Inconsistencies() []Inconsistency {
	var findings []Inconsistency
	for _, e := range m.entries {
		switch {
		case e.malformed:
			findings = append(findings, Inconsistency{e.playlist, MissingMetadata, "missing id or name"})
		case !e.genreKnown && e.playlist.Genre == "":
			findings = append(findings, Inconsistency{e.playlist, MissingGenre, "no genre set"})
		case !e.genreKnown:
			findings = append(findings, Inconsistency{e.playlist, MissingGenre,
				fmt.Sprintf("unrecognized genre %q", e.playlist.Genre)})
		default:
			if named, ok := genreFromName(e.normalizedName); ok && !taxonomy.SameFamily(named, e.genre) {
				findings = append(findings, Inconsistency{e.playlist, NameGenreMismatch,
					fmt.Sprintf("name suggests %s but genre is %s", named, e.genre)})
			}
		}
	}
	return findings
}

// Covered reports whether some well-formed playlist files the genre
// directly, regardless of rendition specificity
func (m *Matcher) Covered(genre taxonomy.Genre) bool {
	for _, e := range m.entries {
		if !e.malformed && e.genreKnown && e.genre == genre {
			return true
		}
	}
	return false
}

// Suggestions lists the genres from a track distribution that no playlist
// covers, most frequent first. Suggestions are advisory; playlists are
// never created.
func (m *Matcher) Suggestions(distribution map[taxonomy.Genre]int) []Suggestion {
	var suggestions []Suggestion
	for genre, count := range distribution {
		if genre == taxonomy.Unknown || count == 0 || m.Covered(genre) {
			continue
		}
		suggestions = append(suggestions, Suggestion{Genre: genre, Tracks: count})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Tracks != suggestions[j].Tracks {
			return suggestions[i].Tracks > suggestions[j].Tracks
		}
		return suggestions[i].Genre < suggestions[j].Genre
	})
	return suggestions
}

// genreFromName reads a genre out of a normalized playlist name, preferring
// the most specific label so "deep house party" maps to Deep House, not House
func genreFromName(normalizedName string) (taxonomy.Genre, bool) {
	var best taxonomy.Genre
	bestLen := 0
	for _, g := range taxonomy.All {
		label := taxonomy.Normalize(string(g))
		if len(label) > bestLen && containsWordPhrase(normalizedName, label) {
			best, bestLen = g, len(label)
		}
	}
	return best, bestLen > 0
}
