package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func scanFolder(row pgx.Row, f *Folder) error {
	return row.Scan(&f.ID, &f.Name, &f.Description, &f.ImageURL, &f.ParentID, &f.Path, &f.Tags)
}

func collectFolders(rows pgx.Rows) ([]Folder, error) {
	defer rows.Close()
	folders := []Folder{}
	for rows.Next() {
		var f Folder
		if err := scanFolder(rows, &f); err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return folders, nil
}

func (s *PostgresStore) FolderByID(ctx context.Context, id int64) (Folder, error) {
	var f Folder
	err := scanFolder(s.db.QueryRow(ctx, `
		SELECT id, name, description, image_url, parent_id, path, tags
		FROM folders
		WHERE id = $1
	`, id), &f)
	if errors.Is(err, pgx.ErrNoRows) {
		return Folder{}, ErrNotFound
	}
	if err != nil {
		return Folder{}, err
	}
	return f, nil
}

// FoldersByParent lists direct children of parentID. A nil parentID
// lists root folders, which is distinct from listing everything.
func (s *PostgresStore) FoldersByParent(ctx context.Context, parentID *int64) ([]Folder, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if parentID == nil {
		rows, err = s.db.Query(ctx, `
			SELECT id, name, description, image_url, parent_id, path, tags
			FROM folders
			WHERE parent_id IS NULL
			ORDER BY id
		`)
	} else {
		rows, err = s.db.Query(ctx, `
			SELECT id, name, description, image_url, parent_id, path, tags
			FROM folders
			WHERE parent_id = $1
			ORDER BY id
		`, *parentID)
	}
	if err != nil {
		return nil, err
	}
	return collectFolders(rows)
}

func (s *PostgresStore) AllFolders(ctx context.Context) ([]Folder, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, image_url, parent_id, path, tags
		FROM folders
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	return collectFolders(rows)
}

func (s *PostgresStore) CreateFolder(ctx context.Context, f Folder) (Folder, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO folders (name, description, image_url, parent_id, path, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, f.Name, f.Description, f.ImageURL, f.ParentID, f.Path, f.Tags).Scan(&f.ID)
	if err != nil {
		return Folder{}, err
	}
	return f, nil
}

func (s *PostgresStore) UpdateFolder(ctx context.Context, f Folder) (Folder, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE folders
		SET name = $2,
			description = $3,
			image_url = $4,
			parent_id = $5,
			path = $6,
			tags = $7
		WHERE id = $1
	`, f.ID, f.Name, f.Description, f.ImageURL, f.ParentID, f.Path, f.Tags)
	if err != nil {
		return Folder{}, err
	}
	if tag.RowsAffected() == 0 {
		return Folder{}, ErrNotFound
	}
	return f, nil
}

func (s *PostgresStore) DeleteFolder(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM playlist_folders WHERE folder_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// FoldersByTag matches the tag value exactly against the stored array,
// unlike the substring matching used by free-text search.
func (s *PostgresStore) FoldersByTag(ctx context.Context, tag string) ([]Folder, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, image_url, parent_id, path, tags
		FROM folders
		WHERE tags @> ARRAY[$1]::text[]
		ORDER BY id
	`, tag)
	if err != nil {
		return nil, err
	}
	return collectFolders(rows)
}
