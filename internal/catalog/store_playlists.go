package catalog

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
)

func scanPlaylist(row pgx.Row, p *Playlist) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.CoverURL, &p.SpotifyURL, &p.Tags)
}

func collectPlaylists(rows pgx.Rows) ([]Playlist, error) {
	defer rows.Close()
	playlists := []Playlist{}
	for rows.Next() {
		var p Playlist
		if err := scanPlaylist(rows, &p); err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return playlists, nil
}

func (s *PostgresStore) PlaylistByID(ctx context.Context, id int64) (Playlist, error) {
	var p Playlist
	err := scanPlaylist(s.db.QueryRow(ctx, `
		SELECT id, name, description, cover_url, spotify_url, tags
		FROM playlists
		WHERE id = $1
	`, id), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return Playlist{}, ErrNotFound
	}
	if err != nil {
		return Playlist{}, err
	}
	return p, nil
}

func (s *PostgresStore) AllPlaylists(ctx context.Context) ([]Playlist, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, cover_url, spotify_url, tags
		FROM playlists
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	return collectPlaylists(rows)
}

// CreatePlaylist inserts the playlist and its initial membership links
// in one transaction. A duplicate spotifyUrl yields ErrConflict.
func (s *PostgresStore) CreatePlaylist(ctx context.Context, p Playlist, folderIDs []int64) (Playlist, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Playlist{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO playlists (name, description, cover_url, spotify_url, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, p.Name, p.Description, p.CoverURL, p.SpotifyURL, p.Tags).Scan(&p.ID)
	if isUniqueViolation(err) {
		return Playlist{}, ErrConflict
	}
	if err != nil {
		return Playlist{}, err
	}

	for _, folderID := range folderIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO playlist_folders (playlist_id, folder_id)
			VALUES ($1, $2)
			ON CONFLICT (playlist_id, folder_id) DO NOTHING
		`, p.ID, folderID); err != nil {
			return Playlist{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Playlist{}, err
	}
	return p, nil
}

func (s *PostgresStore) UpdatePlaylist(ctx context.Context, p Playlist) (Playlist, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE playlists
		SET name = $2,
			description = $3,
			cover_url = $4,
			spotify_url = $5,
			tags = $6
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.CoverURL, p.SpotifyURL, p.Tags)
	if isUniqueViolation(err) {
		return Playlist{}, ErrConflict
	}
	if err != nil {
		return Playlist{}, err
	}
	if tag.RowsAffected() == 0 {
		return Playlist{}, ErrNotFound
	}
	return p, nil
}

func (s *PostgresStore) DeletePlaylist(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM playlist_folders WHERE playlist_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// PlaylistsByFolder resolves memberships for the folder and batch-fetches
// the playlists. A folder with no memberships yields an empty slice.
func (s *PostgresStore) PlaylistsByFolder(ctx context.Context, folderID int64) ([]Playlist, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.name, p.description, p.cover_url, p.spotify_url, p.tags
		FROM playlists p
		JOIN playlist_folders pf ON pf.playlist_id = p.id
		WHERE pf.folder_id = $1
		ORDER BY p.id
	`, folderID)
	if err != nil {
		return nil, err
	}
	return collectPlaylists(rows)
}

func (s *PostgresStore) PlaylistsByTag(ctx context.Context, tag string) ([]Playlist, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, cover_url, spotify_url, tags
		FROM playlists
		WHERE tags @> ARRAY[$1]::text[]
		ORDER BY id
	`, tag)
	if err != nil {
		return nil, err
	}
	return collectPlaylists(rows)
}

// SetPlaylistFolders replaces the playlist's entire membership set.
// Delete-all and insert-all run in one transaction so concurrent readers
// never observe the playlist momentarily unfiled.
func (s *PostgresStore) SetPlaylistFolders(ctx context.Context, playlistID int64, folderIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM playlist_folders WHERE playlist_id = $1`, playlistID); err != nil {
		return err
	}
	for _, folderID := range folderIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO playlist_folders (playlist_id, folder_id)
			VALUES ($1, $2)
			ON CONFLICT (playlist_id, folder_id) DO NOTHING
		`, playlistID, folderID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) AddPlaylistToFolder(ctx context.Context, playlistID, folderID int64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO playlist_folders (playlist_id, folder_id)
		VALUES ($1, $2)
		ON CONFLICT (playlist_id, folder_id) DO NOTHING
	`, playlistID, folderID)
	return err
}

// RemovePlaylistFromFolder deletes exactly one membership link. Other
// links of the same playlist are untouched.
func (s *PostgresStore) RemovePlaylistFromFolder(ctx context.Context, playlistID, folderID int64) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM playlist_folders
		WHERE playlist_id = $1 AND folder_id = $2
	`, playlistID, folderID)
	return err
}

func (s *PostgresStore) FoldersByPlaylist(ctx context.Context, playlistID int64) ([]PlaylistFolder, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, playlist_id, folder_id
		FROM playlist_folders
		WHERE playlist_id = $1
		ORDER BY id
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []PlaylistFolder{}
	for rows.Next() {
		var pf PlaylistFolder
		if err := rows.Scan(&pf.ID, &pf.PlaylistID, &pf.FolderID); err != nil {
			return nil, err
		}
		links = append(links, pf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return links, nil
}

// AllTags returns the distinct union of folder and playlist tags, sorted.
func (s *PostgresStore) AllTags(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}

	for _, query := range []string{
		`SELECT tags FROM playlists WHERE tags IS NOT NULL`,
		`SELECT tags FROM folders WHERE tags IS NOT NULL`,
	} {
		rows, err := s.db.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var tags []string
			if err := rows.Scan(&tags); err != nil {
				rows.Close()
				return nil, err
			}
			for _, t := range tags {
				seen[t] = true
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	all := make([]string, 0, len(seen))
	for t := range seen {
		all = append(all, t)
	}
	sort.Strings(all)
	return all, nil
}
