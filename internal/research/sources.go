package research

import (
	"context"

	"github.com/behruzmistry/genrebendpro/internal/api/lastfm"
	"github.com/behruzmistry/genrebendpro/internal/api/musicbrainz"
	"github.com/behruzmistry/genrebendpro/internal/api/spotify"
)

// Fixed priority weights per source. Higher weight wins ties and counts for
// more in the textual evidence channel.
const (
	WeightLastfm      = 1.0
	WeightMusicBrainz = 0.8
	WeightSpotify     = 0.6

	// priorConfidence is used for sources that do not report their own
	// confidence.
	priorConfidence = 0.5
)

// Source is one external research collaborator. Lookup returns nil without
// an error when the source has no match for the track.
type Source interface {
	Name() string
	Weight() float64
	Lookup(ctx context.Context, artist, title string) (*LookupResult, error)
}

// LastfmSource adapts the Last.fm client. It is the highest-priority source
// and enriches its result with artist tags and similar-track counts.
type LastfmSource struct {
	client *lastfm.Client
}

func NewLastfmSource(client *lastfm.Client) *LastfmSource {
	return &LastfmSource{client: client}
}

func (s *LastfmSource) Name() string    { return "lastfm" }
func (s *LastfmSource) Weight() float64 { return WeightLastfm }

func (s *LastfmSource) Lookup(ctx context.Context, artist, title string) (*LookupResult, error) {
	info, err := s.client.GetTrackInfo(ctx, artist, title)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, nil
	}

	result := &LookupResult{
		Confidence: priorConfidence,
		Raw:        map[string]string{},
	}
	for _, tag := range info.TopTags.Tag {
		result.Tags = append(result.Tags, tag.Name)
	}
	if info.PlayCount > 0 {
		result.Raw["playcount"] = "true"
		result.Confidence += 0.05
	}

	// Artist tags broaden the evidence beyond the single recording.
	if artistInfo, err := s.client.GetArtistInfo(ctx, artist); err == nil && artistInfo != nil {
		if len(artistInfo.Tags.Tag) > 0 {
			result.Raw["artistTags"] = "true"
			result.Confidence += 0.1
		}
		for _, tag := range artistInfo.Tags.Tag {
			result.Tags = append(result.Tags, tag.Name)
		}
	}

	if similar, err := s.client.GetSimilarTracks(ctx, artist, title); err == nil && len(similar) > 0 {
		result.Raw["similarTracks"] = "true"
		result.Confidence += 0.1
	}

	if result.Confidence > 1.0 {
		result.Confidence = 1.0
	}
	return result, nil
}

// MusicBrainzSource adapts the MusicBrainz client. The recording match score
// doubles as the source's reported confidence.
type MusicBrainzSource struct {
	client *musicbrainz.Client
}

func NewMusicBrainzSource(client *musicbrainz.Client) *MusicBrainzSource {
	return &MusicBrainzSource{client: client}
}

func (s *MusicBrainzSource) Name() string    { return "musicbrainz" }
func (s *MusicBrainzSource) Weight() float64 { return WeightMusicBrainz }

func (s *MusicBrainzSource) Lookup(ctx context.Context, artist, title string) (*LookupResult, error) {
	rec, err := s.client.SearchRecording(ctx, artist, title)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	return &LookupResult{
		Tags:       rec.TagNames(),
		Confidence: rec.MatchScore,
		Raw: map[string]string{
			"mbid": rec.ID,
		},
	}, nil
}

// SpotifySource adapts the Spotify client. Spotify tags genres at the artist
// level only and reports no confidence of its own, so the fixed prior is
// used.
type SpotifySource struct {
	client *spotify.SpotifyClient
}

func NewSpotifySource(client *spotify.SpotifyClient) *SpotifySource {
	return &SpotifySource{client: client}
}

func (s *SpotifySource) Name() string    { return "spotify" }
func (s *SpotifySource) Weight() float64 { return WeightSpotify }

func (s *SpotifySource) Lookup(ctx context.Context, artist, title string) (*LookupResult, error) {
	genres, err := s.client.GetArtistGenres(ctx, artist)
	if err != nil {
		return nil, err
	}
	if len(genres) == 0 {
		return nil, nil
	}

	return &LookupResult{
		Tags:       genres,
		Confidence: priorConfidence,
	}, nil
}
