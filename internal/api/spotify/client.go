package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// SpotifyClient holds the spotify client and its credentials. Spotify is an
// optional research source: it only contributes artist-level genre tags and
// is enabled when client credentials are configured.
type SpotifyClient struct {
	client *spotify.Client
	ID     string
	Secret string
}

// NewSpotifyClient creates a new spotify client
func NewSpotifyClient(id, secret string) *SpotifyClient {
	return &SpotifyClient{
		ID:     id,
		Secret: secret,
	}
}

// Enabled reports whether credentials are configured
func (s *SpotifyClient) Enabled() bool {
	return s.ID != "" && s.Secret != ""
}

// Authenticate authenticates the client with the spotify api
func (s *SpotifyClient) Authenticate(ctx context.Context) error {
	config := &clientcredentials.Config{
		ClientID:     s.ID,
		ClientSecret: s.Secret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := config.Token(ctx)
	if err != nil {
		return err
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	s.client = spotify.New(httpClient)
	return nil
}

// GetArtistGenres looks up an artist by name and returns Spotify's genre
// tags for the best match. An empty slice without an error means the artist
// was not found.
func (s *SpotifyClient) GetArtistGenres(ctx context.Context, artist string) ([]string, error) {
	if s.client == nil {
		return nil, fmt.Errorf("spotify client not authenticated")
	}
	if artist == "" {
		return nil, fmt.Errorf("artist cannot be empty")
	}

	result, err := s.client.Search(ctx, artist, spotify.SearchTypeArtist, spotify.Limit(1))
	if err != nil {
		return nil, err
	}

	if result.Artists == nil || len(result.Artists.Artists) == 0 {
		return nil, nil
	}
	return result.Artists.Artists[0].Genres, nil
}
