package catalog

import (
	"log"
	"net/http"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")
	tag := r.URL.Query().Get("tag")

	result, err := SearchCatalog(ctx, s.store, query, tag)
	if err != nil {
		log.Printf("catalog-service: search: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tags, err := s.store.AllTags(ctx)
	if err != nil {
		log.Printf("catalog-service: list tags: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// handleSearchPlaylists is the older playlist-only text search kept for
// existing clients.
func (s *Server) handleSearchPlaylists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	playlists, err := s.store.AllPlaylists(ctx)
	if err != nil {
		log.Printf("catalog-service: search playlists: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	matched := []Playlist{}
	for _, p := range playlists {
		if matchPlaylistText(p, query) {
			matched = append(matched, p)
		}
	}
	writeJSON(w, http.StatusOK, matched)
}
