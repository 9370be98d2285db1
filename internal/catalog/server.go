package catalog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	store Store
	rdb   *redis.Client

	// recommender is the configured strategy; local is the deterministic
	// fallback used when the configured one fails.
	recommender Recommender
	local       *LocalRecommender

	jwtSecret []byte
	tokenTTL  time.Duration
}

type ServerOptions struct {
	Store       Store
	Redis       *redis.Client
	Recommender Recommender // nil means local only
	JWTSecret   []byte
	TokenTTL    time.Duration
}

func NewServer(opts ServerOptions) *Server {
	local := NewLocalRecommender(nil)
	rec := opts.Recommender
	if rec == nil {
		rec = local
	}
	ttl := opts.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Server{
		store:       opts.Store,
		rdb:         opts.Redis,
		recommender: rec,
		local:       local,
		jwtSecret:   opts.JWTSecret,
		tokenTTL:    ttl,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/auth/user", s.handleCurrentUser)

		r.Get("/folders", s.handleListFolders)
		r.Get("/folders/{id}", s.handleGetFolder)
		r.Get("/folders/{id}/path", s.handleFolderPath)

		r.Get("/playlists", s.handleListPlaylists)
		r.Get("/playlists/search", s.handleSearchPlaylists)
		r.Get("/playlists/{id}", s.handleGetPlaylist)
		r.Get("/playlists/{id}/folders", s.handleListPlaylistFolders)
		r.Post("/playlists/recommend", s.handleRecommend)

		r.Get("/search", s.handleSearch)
		r.Get("/tags", s.handleListTags)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Post("/folders", s.handleCreateFolder)
			r.Patch("/folders/{id}", s.handlePatchFolder)
			r.Delete("/folders/{id}", s.handleDeleteFolder)

			r.Post("/playlists", s.handleCreatePlaylist)
			r.Put("/playlists/{id}", s.handleUpdatePlaylist)
			r.Delete("/playlists/{id}", s.handleDeletePlaylist)

			r.Post("/playlists/{id}/folders/{folderId}", s.handleAddPlaylistFolder)
			r.Delete("/playlists/{id}/folders/{folderId}", s.handleRemovePlaylistFolder)

			r.Post("/spotify/parse", s.handleParseSpotifyURL)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "catalog-service",
	})
}
