package catalog

import (
	"net/http"
	"testing"
)

func TestSearchEndpoint(t *testing.T) {
	srv, _, viewerToken, adminToken := newTestServer(t)
	router := srv.Router()

	folder := mustCreateFolder(t, router, adminToken, map[string]any{
		"name":     "Electronic",
		"imageUrl": "https://example.com/e.jpg",
		"tags":     []string{"electronic"},
	})
	mustCreatePlaylist(t, router, adminToken, map[string]any{
		"name":       "Deep House Vibes",
		"spotifyUrl": "https://open.spotify.com/playlist/dhv",
		"tags":       []string{"house", "chill"},
		"folderIds":  []int64{folder.ID},
	})
	mustCreatePlaylist(t, router, adminToken, map[string]any{
		"name":       "Techno Underground",
		"spotifyUrl": "https://open.spotify.com/playlist/tu",
		"tags":       []string{"techno"},
	})

	w := doRequest(t, router, http.MethodGet, "/search?q=house", viewerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", w.Code)
	}
	result := decodeBody[SearchResult](t, w)
	if len(result.Playlists) != 1 || result.Playlists[0].Name != "Deep House Vibes" {
		t.Fatalf("unexpected playlists for q=house: %v", result.Playlists)
	}

	w = doRequest(t, router, http.MethodGet, "/search?tag=electronic", viewerToken, nil)
	result = decodeBody[SearchResult](t, w)
	if len(result.Folders) != 1 || result.Folders[0].Name != "Electronic" {
		t.Fatalf("unexpected folders for tag=electronic: %v", result.Folders)
	}

	// No parameters is a valid, empty search.
	w = doRequest(t, router, http.MethodGet, "/search", viewerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("empty search: expected 200, got %d", w.Code)
	}
	result = decodeBody[SearchResult](t, w)
	if len(result.Playlists) != 0 || len(result.Folders) != 0 {
		t.Fatalf("empty search must return empty sets, got %v", result)
	}
}

func TestTagsEndpoint(t *testing.T) {
	srv, _, viewerToken, adminToken := newTestServer(t)
	router := srv.Router()

	mustCreateFolder(t, router, adminToken, map[string]any{
		"name":     "Electronic",
		"imageUrl": "https://example.com/e.jpg",
		"tags":     []string{"electronic", "dance"},
	})
	mustCreatePlaylist(t, router, adminToken, map[string]any{
		"name":       "Deep House Vibes",
		"spotifyUrl": "https://open.spotify.com/playlist/dhv",
		"tags":       []string{"house", "dance"},
	})

	w := doRequest(t, router, http.MethodGet, "/tags", viewerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tags: expected 200, got %d", w.Code)
	}
	tags := decodeBody[[]string](t, w)
	want := []string{"dance", "electronic", "house"}
	if len(tags) != len(want) {
		t.Fatalf("expected %v, got %v", want, tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tags)
		}
	}
}

func TestLegacyPlaylistSearchEndpoint(t *testing.T) {
	srv, _, viewerToken, adminToken := newTestServer(t)
	router := srv.Router()

	mustCreatePlaylist(t, router, adminToken, map[string]any{
		"name":       "Deep House Vibes",
		"spotifyUrl": "https://open.spotify.com/playlist/dhv",
		"tags":       []string{"house"},
	})

	w := doRequest(t, router, http.MethodGet, "/playlists/search?q=deep", viewerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", w.Code)
	}
	if got := decodeBody[[]Playlist](t, w); len(got) != 1 {
		t.Fatalf("expected one result, got %v", got)
	}

	w = doRequest(t, router, http.MethodGet, "/playlists/search", viewerToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing q: expected 400, got %d", w.Code)
	}
}
