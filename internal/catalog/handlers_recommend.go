package catalog

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// handleRecommend runs the configured recommendation strategy over the
// full playlist set. An external backend failing is never surfaced to
// the caller; the local scorer answers instead.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Query = strings.TrimSpace(body.Query)
	if body.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	playlists, err := s.store.AllPlaylists(ctx)
	if err != nil {
		log.Printf("catalog-service: recommend fetch playlists: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if len(playlists) == 0 {
		writeJSON(w, http.StatusOK, Recommendation{
			Explanation:     "No playlists available for recommendations.",
			Recommendations: []RecommendedPlaylist{},
		})
		return
	}

	rec, err := s.recommender.Recommend(ctx, body.Query, playlists)
	if err != nil {
		log.Printf("catalog-service: recommender failed, falling back to local: %v", err)
		rec, err = s.local.Recommend(ctx, body.Query, playlists)
		if err != nil {
			log.Printf("catalog-service: local recommender: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to get recommendations")
			return
		}
	}

	writeJSON(w, http.StatusOK, rec)
}
