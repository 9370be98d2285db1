package catalog

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS folders (
          id          BIGSERIAL PRIMARY KEY,
          name        TEXT NOT NULL,
          description TEXT NOT NULL DEFAULT '',
          image_url   TEXT NOT NULL,
          parent_id   BIGINT,
          path        TEXT NOT NULL,
          tags        TEXT[]
      )
    `); err != nil {
		log.Printf("catalog-service: migrate folders: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlists (
          id          BIGSERIAL PRIMARY KEY,
          name        TEXT NOT NULL,
          description TEXT NOT NULL DEFAULT '',
          cover_url   TEXT NOT NULL DEFAULT '',
          spotify_url TEXT NOT NULL,
          tags        TEXT[]
      )
    `); err != nil {
		return err
	}

	// App code checks for duplicates before inserting; the index is the
	// backstop against a racing create.
	if _, err := pool.Exec(ctx, `
      CREATE UNIQUE INDEX IF NOT EXISTS idx_playlists_spotify_url
      ON playlists(spotify_url)
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlist_folders (
          id          BIGSERIAL PRIMARY KEY,
          playlist_id BIGINT NOT NULL REFERENCES playlists(id),
          folder_id   BIGINT NOT NULL REFERENCES folders(id)
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE UNIQUE INDEX IF NOT EXISTS idx_playlist_folders_pair
      ON playlist_folders(playlist_id, folder_id)
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS users (
          id       BIGSERIAL PRIMARY KEY,
          username TEXT NOT NULL UNIQUE,
          password TEXT NOT NULL,
          role     TEXT NOT NULL DEFAULT 'viewer'
      )
    `); err != nil {
		return err
	}

	return nil
}

// SeedDefaultUsers creates the stock viewer and admin accounts when they
// are missing. Passwords come from the environment at startup.
func SeedDefaultUsers(ctx context.Context, store Store, viewerPassword, adminPassword string) error {
	defaults := []struct {
		username string
		password string
		role     string
	}{
		{"viewer", viewerPassword, roleViewer},
		{"admin", adminPassword, roleAdmin},
	}

	for _, d := range defaults {
		if d.password == "" {
			continue
		}
		if _, err := store.UserByUsername(ctx, d.username); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := store.CreateUser(ctx, User{
			Username: d.username,
			Password: string(hash),
			Role:     d.role,
		}); err != nil && !errors.Is(err, ErrConflict) {
			return err
		}
		log.Printf("catalog-service: seeded %s user", d.username)
	}
	return nil
}
