package catalog

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// handleListPlaylists lists playlists in the folderId query parameter's
// folder. Omitting folderId lists every playlist.
func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := r.URL.Query().Get("folderId")
	if raw == "" {
		playlists, err := s.store.AllPlaylists(ctx)
		if err != nil {
			log.Printf("catalog-service: list playlists: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		writeJSON(w, http.StatusOK, playlists)
		return
	}

	folderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid folderId")
		return
	}
	playlists, err := s.store.PlaylistsByFolder(ctx, folderID)
	if err != nil {
		log.Printf("catalog-service: list playlists in folder: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	playlist, err := s.store.PlaylistByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: get playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		CoverURL    string   `json:"coverUrl"`
		SpotifyURL  string   `json:"spotifyUrl"`
		Tags        []string `json:"tags"`
		FolderIDs   []int64  `json:"folderIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	body.SpotifyURL = strings.TrimSpace(body.SpotifyURL)
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if body.SpotifyURL == "" {
		writeError(w, http.StatusBadRequest, "spotifyUrl is required")
		return
	}

	playlist, err := s.store.CreatePlaylist(ctx, Playlist{
		Name:        body.Name,
		Description: body.Description,
		CoverURL:    body.CoverURL,
		SpotifyURL:  body.SpotifyURL,
		Tags:        body.Tags,
	}, body.FolderIDs)
	if errors.Is(err, ErrConflict) {
		writeError(w, http.StatusConflict, "this playlist already exists in your collection")
		return
	}
	if err != nil {
		log.Printf("catalog-service: create playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, "playlist.created", map[string]any{"playlist": playlist})
	writeJSON(w, http.StatusCreated, playlist)
}

// handleUpdatePlaylist updates playlist fields and, when folderIds is
// present, replaces the playlist's membership set wholesale: the body
// must carry the complete desired set, not a diff.
func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	var body struct {
		Name        *string   `json:"name"`
		Description *string   `json:"description"`
		CoverURL    *string   `json:"coverUrl"`
		SpotifyURL  *string   `json:"spotifyUrl"`
		Tags        *[]string `json:"tags"`
		FolderIDs   *[]int64  `json:"folderIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	existing, err := s.store.PlaylistByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: fetch playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		existing.Name = name
	}
	if body.Description != nil {
		existing.Description = *body.Description
	}
	if body.CoverURL != nil {
		existing.CoverURL = *body.CoverURL
	}
	if body.SpotifyURL != nil {
		u := strings.TrimSpace(*body.SpotifyURL)
		if u == "" {
			writeError(w, http.StatusBadRequest, "spotifyUrl must not be empty")
			return
		}
		existing.SpotifyURL = u
	}
	if body.Tags != nil {
		existing.Tags = *body.Tags
	}

	updated, err := s.store.UpdatePlaylist(ctx, existing)
	if errors.Is(err, ErrConflict) {
		writeError(w, http.StatusConflict, "this playlist already exists in your collection")
		return
	}
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: update playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if body.FolderIDs != nil {
		if err := s.store.SetPlaylistFolders(ctx, id, *body.FolderIDs); err != nil {
			log.Printf("catalog-service: set playlist folders: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
	}

	s.publishEvent(ctx, "playlist.updated", map[string]any{"playlist": updated})
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	err = s.store.DeletePlaylist(ctx, id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: delete playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, "playlist.deleted", map[string]any{"playlistId": id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPlaylistFolders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	links, err := s.store.FoldersByPlaylist(ctx, id)
	if err != nil {
		log.Printf("catalog-service: list playlist folders: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (s *Server) handleAddPlaylistFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}
	folderID, err := parseIDParam(r, "folderId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid folder id")
		return
	}

	if _, err := s.store.PlaylistByID(ctx, playlistID); errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	} else if err != nil {
		log.Printf("catalog-service: fetch playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if _, err := s.store.FolderByID(ctx, folderID); errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	} else if err != nil {
		log.Printf("catalog-service: fetch folder: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := s.store.AddPlaylistToFolder(ctx, playlistID, folderID); err != nil {
		log.Printf("catalog-service: add playlist folder: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemovePlaylistFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}
	folderID, err := parseIDParam(r, "folderId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid folder id")
		return
	}

	if err := s.store.RemovePlaylistFromFolder(ctx, playlistID, folderID); err != nil {
		log.Printf("catalog-service: remove playlist folder: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleParseSpotifyURL extracts the external playlist id from a Spotify
// playlist URL for the admin creation form.
func (s *Server) handleParseSpotifyURL(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !strings.Contains(body.URL, "spotify.com/playlist/") {
		writeError(w, http.StatusBadRequest, "invalid Spotify playlist URL")
		return
	}
	rest := strings.SplitN(body.URL, "/playlist/", 2)[1]
	playlistID := strings.SplitN(rest, "?", 2)[0]
	if playlistID == "" {
		writeError(w, http.StatusBadRequest, "could not extract playlist ID")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"playlistId": playlistID,
		"spotifyUrl": "https://open.spotify.com/playlist/" + playlistID,
	})
}
