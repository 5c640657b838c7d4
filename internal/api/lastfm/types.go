package lastfm

import (
	"encoding/json"
	"strconv"
)

// Tag is one Last.fm tag attached to a track or artist
type Tag struct {
	Name string `json:"name"`
}

// TagList tolerates Last.fm returning either a single tag object or an
// array of them for the same field.
type TagList struct {
	Tag []Tag
}

func (tl *TagList) UnmarshalJSON(data []byte) error {
	var multi struct {
		Tag []Tag `json:"tag"`
	}
	if err := json.Unmarshal(data, &multi); err == nil {
		tl.Tag = multi.Tag
		return nil
	}
	var single struct {
		Tag Tag `json:"tag"`
	}
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single.Tag.Name != "" {
		tl.Tag = []Tag{single.Tag}
	}
	return nil
}

// PlayCount tolerates Last.fm returning play counts as strings
type PlayCount int64

func (p *PlayCount) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = PlayCount(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*p = 0
		return nil
	}
	*p = PlayCount(n)
	return nil
}

// TrackArtist is the artist credit on a track response
type TrackArtist struct {
	Name string `json:"name"`
}

// TrackInfo is the track.getInfo response payload
type TrackInfo struct {
	Name      string      `json:"name"`
	Artist    TrackArtist `json:"artist"`
	PlayCount PlayCount   `json:"playcount"`
	TopTags   TagList     `json:"toptags"`
}

// ArtistInfo is the artist.getInfo response payload
type ArtistInfo struct {
	Name string  `json:"name"`
	Tags TagList `json:"tags"`
}

// SimilarTrack is one entry of the track.getSimilar response
type SimilarTrack struct {
	Name   string      `json:"name"`
	Artist TrackArtist `json:"artist"`
	Match  float64     `json:"match"`
}
