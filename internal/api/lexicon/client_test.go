package lexicon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/behruzmistry/genrebendpro/internal/shared"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewClient(server.URL, "v1")
}

func TestStatus(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	})

	if err := client.Status(context.Background()); err != nil {
		t.Fatalf("Status failed: %v", err)
	}
}

func TestStatusUnavailable(t *testing.T) {
	server, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	err := client.Status(context.Background())
	if !errors.Is(err, shared.ErrLibraryUnavailable) {
		t.Fatalf("expected ErrLibraryUnavailable, got %v", err)
	}
}

func TestListAllTracksPaginates(t *testing.T) {
	pageSize := 2
	total := 5
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		offset := 0
		fmt.Sscanf(r.URL.Query().Get("offset"), "%d", &offset)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"tracks":[`)
		for i := offset; i < offset+pageSize && i < total; i++ {
			if i > offset {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id":"t%d","title":"Track %d","artist":"Artist"}`, i, i)
		}
		fmt.Fprint(w, `]}`)
	})

	cfg := client.GetConfig()
	cfg.PageSize = pageSize
	client = NewClientWithConfig(cfg)

	tracks, err := client.ListAllTracks(context.Background())
	if err != nil {
		t.Fatalf("ListAllTracks failed: %v", err)
	}
	if len(tracks) != total {
		t.Errorf("expected %d tracks, got %d", total, len(tracks))
	}
	if tracks[0].ID != "t0" || tracks[4].ID != "t4" {
		t.Errorf("tracks out of order: first %s, last %s", tracks[0].ID, tracks[4].ID)
	}
}

func TestListPlaylists(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"playlists":[{"id":"p1","name":"Deep House","genre":"Deep House","trackCount":12}]}`))
	})

	playlists, err := client.ListPlaylists(context.Background())
	if err != nil {
		t.Fatalf("ListPlaylists failed: %v", err)
	}
	if len(playlists) != 1 || playlists[0].Genre != "Deep House" {
		t.Errorf("unexpected playlists: %+v", playlists)
	}
}

func TestUpdateTrackGenre(t *testing.T) {
	var gotMethod, gotPath string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	})

	if err := client.UpdateTrackGenre(context.Background(), "t1", "Techno"); err != nil {
		t.Fatalf("UpdateTrackGenre failed: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/v1/tracks/t1" {
		t.Errorf("unexpected request %s %s", gotMethod, gotPath)
	}
}

func TestServerErrorMapsToLibraryUnavailable(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.ListPlaylists(context.Background())
	if !errors.Is(err, shared.ErrLibraryUnavailable) {
		t.Fatalf("expected ErrLibraryUnavailable, got %v", err)
	}
}
