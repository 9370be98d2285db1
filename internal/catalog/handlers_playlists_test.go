package catalog

import (
	"context"
	"fmt"
	"net/http"
	"testing"
)

func TestPlaylistCreateWithMemberships(t *testing.T) {
	srv, _, viewerToken, adminToken := newTestServer(t)
	router := srv.Router()

	f1 := mustCreateFolder(t, router, adminToken, map[string]any{
		"name": "One", "imageUrl": "https://example.com/1.jpg",
	})
	f2 := mustCreateFolder(t, router, adminToken, map[string]any{
		"name": "Two", "imageUrl": "https://example.com/2.jpg",
	})

	playlist := mustCreatePlaylist(t, router, adminToken, map[string]any{
		"name":       "Everywhere",
		"spotifyUrl": "https://open.spotify.com/playlist/everywhere",
		"folderIds":  []int64{f1.ID, f2.ID},
	})

	for _, folder := range []Folder{f1, f2} {
		w := doRequest(t, router, http.MethodGet, fmt.Sprintf("/playlists?folderId=%d", folder.ID), viewerToken, nil)
		got := decodeBody[[]Playlist](t, w)
		if len(got) != 1 || got[0].ID != playlist.ID {
			t.Fatalf("playlist missing from folder %d: %v", folder.ID, got)
		}
	}

	// A folder with no memberships yields empty, not all playlists.
	f3 := mustCreateFolder(t, router, adminToken, map[string]any{
		"name": "Empty", "imageUrl": "https://example.com/3.jpg",
	})
	w := doRequest(t, router, http.MethodGet, fmt.Sprintf("/playlists?folderId=%d", f3.ID), viewerToken, nil)
	if got := decodeBody[[]Playlist](t, w); len(got) != 0 {
		t.Fatalf("empty folder must list no playlists, got %v", got)
	}

	// Omitting folderId lists everything.
	w = doRequest(t, router, http.MethodGet, "/playlists", viewerToken, nil)
	if got := decodeBody[[]Playlist](t, w); len(got) != 1 {
		t.Fatalf("expected the full playlist list, got %v", got)
	}
}

func TestPlaylistDuplicateSpotifyURL(t *testing.T) {
	srv, store, _, adminToken := newTestServer(t)
	router := srv.Router()

	mustCreatePlaylist(t, router, adminToken, map[string]any{
		"name":       "First",
		"spotifyUrl": "https://open.spotify.com/playlist/same",
	})

	w := doRequest(t, router, http.MethodPost, "/playlists", adminToken, map[string]any{
		"name":       "Second",
		"spotifyUrl": "https://open.spotify.com/playlist/same",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate spotifyUrl: expected 409, got %d", w.Code)
	}

	// The rejected create must leave no row behind.
	all, err := store.AllPlaylists(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected a single playlist after the conflict, got %d", len(all))
	}
}

func TestPlaylistUpdateReplacesMembershipsWholesale(t *testing.T) {
	srv, store, viewerToken, adminToken := newTestServer(t)
	router := srv.Router()
	ctx := context.Background()

	f1 := mustCreateFolder(t, router, adminToken, map[string]any{
		"name": "One", "imageUrl": "https://example.com/1.jpg",
	})
	f2 := mustCreateFolder(t, router, adminToken, map[string]any{
		"name": "Two", "imageUrl": "https://example.com/2.jpg",
	})
	playlist := mustCreatePlaylist(t, router, adminToken, map[string]any{
		"name":       "Mover",
		"spotifyUrl": "https://open.spotify.com/playlist/mover",
		"folderIds":  []int64{f1.ID, f2.ID},
	})

	w := doRequest(t, router, http.MethodPut, fmt.Sprintf("/playlists/%d", playlist.ID), adminToken, map[string]any{
		"folderIds": []int64{f2.ID},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/playlists?folderId=%d", f1.ID), viewerToken, nil)
	if got := decodeBody[[]Playlist](t, w); len(got) != 0 {
		t.Fatalf("playlist must have left folder one, got %v", got)
	}
	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/playlists?folderId=%d", f2.ID), viewerToken, nil)
	if got := decodeBody[[]Playlist](t, w); len(got) != 1 || got[0].ID != playlist.ID {
		t.Fatalf("playlist must remain in folder two, got %v", got)
	}

	// Set-membership is idempotent: repeating the same set changes nothing.
	before, err := store.FoldersByPlaylist(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	w = doRequest(t, router, http.MethodPut, fmt.Sprintf("/playlists/%d", playlist.ID), adminToken, map[string]any{
		"folderIds": []int64{f2.ID},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("repeat update: expected 200, got %d", w.Code)
	}
	after, err := store.FoldersByPlaylist(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	if len(before) != len(after) || len(after) != 1 || after[0].FolderID != f2.ID {
		t.Fatalf("idempotence broken: before=%v after=%v", before, after)
	}

	// An empty set unfiles the playlist but keeps it listed globally.
	w = doRequest(t, router, http.MethodPut, fmt.Sprintf("/playlists/%d", playlist.ID), adminToken, map[string]any{
		"folderIds": []int64{},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("unfile: expected 200, got %d", w.Code)
	}
	links, err := store.FoldersByPlaylist(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("expected no memberships, got %v", links)
	}
	w = doRequest(t, router, http.MethodGet, "/playlists", viewerToken, nil)
	if got := decodeBody[[]Playlist](t, w); len(got) != 1 {
		t.Fatalf("unfiled playlist must still appear in the global list, got %v", got)
	}
}

func TestPlaylistPreciseLinkEndpoints(t *testing.T) {
	srv, _, viewerToken, adminToken := newTestServer(t)
	router := srv.Router()

	f1 := mustCreateFolder(t, router, adminToken, map[string]any{
		"name": "One", "imageUrl": "https://example.com/1.jpg",
	})
	f2 := mustCreateFolder(t, router, adminToken, map[string]any{
		"name": "Two", "imageUrl": "https://example.com/2.jpg",
	})
	playlist := mustCreatePlaylist(t, router, adminToken, map[string]any{
		"name":       "Linked",
		"spotifyUrl": "https://open.spotify.com/playlist/linked",
		"folderIds":  []int64{f1.ID},
	})

	w := doRequest(t, router, http.MethodPost,
		fmt.Sprintf("/playlists/%d/folders/%d", playlist.ID, f2.ID), adminToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("add link: expected 204, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/playlists/%d/folders", playlist.ID), viewerToken, nil)
	links := decodeBody[[]PlaylistFolder](t, w)
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %v", links)
	}

	// Removing one link must not touch the other.
	w = doRequest(t, router, http.MethodDelete,
		fmt.Sprintf("/playlists/%d/folders/%d", playlist.ID, f1.ID), adminToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("remove link: expected 204, got %d", w.Code)
	}
	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/playlists/%d/folders", playlist.ID), viewerToken, nil)
	links = decodeBody[[]PlaylistFolder](t, w)
	if len(links) != 1 || links[0].FolderID != f2.ID {
		t.Fatalf("expected only the folder-two link, got %v", links)
	}

	w = doRequest(t, router, http.MethodPost,
		fmt.Sprintf("/playlists/%d/folders/999", playlist.ID), adminToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("link to missing folder: expected 404, got %d", w.Code)
	}
}

func TestPlaylistDeleteCascades(t *testing.T) {
	srv, store, viewerToken, adminToken := newTestServer(t)
	router := srv.Router()

	folder := mustCreateFolder(t, router, adminToken, map[string]any{
		"name": "Home", "imageUrl": "https://example.com/h.jpg",
	})
	playlist := mustCreatePlaylist(t, router, adminToken, map[string]any{
		"name":       "Goner",
		"spotifyUrl": "https://open.spotify.com/playlist/goner",
		"folderIds":  []int64{folder.ID},
	})

	w := doRequest(t, router, http.MethodDelete, fmt.Sprintf("/playlists/%d", playlist.ID), adminToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/playlists/%d", playlist.ID), viewerToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted playlist still visible: %d", w.Code)
	}

	playlists, err := store.PlaylistsByFolder(context.Background(), folder.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(playlists) != 0 {
		t.Fatalf("folder must no longer list the playlist, got %v", playlists)
	}
}

func TestPlaylistValidationAndGate(t *testing.T) {
	srv, _, viewerToken, adminToken := newTestServer(t)
	router := srv.Router()

	w := doRequest(t, router, http.MethodPost, "/playlists", adminToken, map[string]any{
		"spotifyUrl": "https://open.spotify.com/playlist/x",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing name: expected 400, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodPost, "/playlists", adminToken, map[string]any{
		"name": "No URL",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing spotifyUrl: expected 400, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodPost, "/playlists", viewerToken, map[string]any{
		"name":       "Nope",
		"spotifyUrl": "https://open.spotify.com/playlist/nope",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("viewer create: expected 403, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodPut, "/playlists/999", adminToken, map[string]any{"name": "X"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("update missing: expected 404, got %d", w.Code)
	}
}

func TestParseSpotifyURL(t *testing.T) {
	srv, _, viewerToken, adminToken := newTestServer(t)
	router := srv.Router()

	w := doRequest(t, router, http.MethodPost, "/spotify/parse", adminToken, map[string]string{
		"url": "https://open.spotify.com/playlist/37i9dQZF1DX692WcMwL2yW?si=abc",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("parse: expected 200, got %d", w.Code)
	}
	out := decodeBody[map[string]string](t, w)
	if out["playlistId"] != "37i9dQZF1DX692WcMwL2yW" {
		t.Fatalf("unexpected playlistId %q", out["playlistId"])
	}

	w = doRequest(t, router, http.MethodPost, "/spotify/parse", adminToken, map[string]string{
		"url": "https://example.com/not-spotify",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad url: expected 400, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodPost, "/spotify/parse", viewerToken, map[string]string{
		"url": "https://open.spotify.com/playlist/x",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("viewer parse: expected 403, got %d", w.Code)
	}
}
