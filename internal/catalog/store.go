package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned by lookups that miss.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a uniqueness constraint would be
	// violated (duplicate spotifyUrl, duplicate username).
	ErrConflict = errors.New("already exists")
)

// Store is the single source of truth for folders, playlists, the
// playlist-folder membership relation and users. Handlers hold a Store
// instance; there is no package-level storage state.
type Store interface {
	// Folders
	FolderByID(ctx context.Context, id int64) (Folder, error)
	FoldersByParent(ctx context.Context, parentID *int64) ([]Folder, error)
	AllFolders(ctx context.Context) ([]Folder, error)
	CreateFolder(ctx context.Context, f Folder) (Folder, error)
	UpdateFolder(ctx context.Context, f Folder) (Folder, error)
	// DeleteFolder removes the folder's membership rows, then the folder,
	// in one transaction. Child folders are not touched: they survive as
	// an orphaned subtree reachable only by direct id lookup.
	DeleteFolder(ctx context.Context, id int64) error
	FoldersByTag(ctx context.Context, tag string) ([]Folder, error)

	// Playlists
	PlaylistByID(ctx context.Context, id int64) (Playlist, error)
	AllPlaylists(ctx context.Context) ([]Playlist, error)
	CreatePlaylist(ctx context.Context, p Playlist, folderIDs []int64) (Playlist, error)
	UpdatePlaylist(ctx context.Context, p Playlist) (Playlist, error)
	DeletePlaylist(ctx context.Context, id int64) error
	PlaylistsByFolder(ctx context.Context, folderID int64) ([]Playlist, error)
	PlaylistsByTag(ctx context.Context, tag string) ([]Playlist, error)

	// Memberships
	// SetPlaylistFolders replaces the complete membership set for a
	// playlist atomically. An empty set leaves the playlist unfiled.
	SetPlaylistFolders(ctx context.Context, playlistID int64, folderIDs []int64) error
	AddPlaylistToFolder(ctx context.Context, playlistID, folderID int64) error
	RemovePlaylistFromFolder(ctx context.Context, playlistID, folderID int64) error
	FoldersByPlaylist(ctx context.Context, playlistID int64) ([]PlaylistFolder, error)

	// Tags
	AllTags(ctx context.Context) ([]string, error)

	// Users
	UserByID(ctx context.Context, id int64) (User, error)
	UserByUsername(ctx context.Context, username string) (User, error)
	CreateUser(ctx context.Context, u User) (User, error)
}

// DBOps is the subset of pgxpool.Pool methods the store uses. It exists
// so tests can inject a mock pool.
type DBOps interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type PostgresStore struct {
	db DBOps
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PostgresStore) UserByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		SELECT id, username, password, role
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Password, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) UserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		SELECT id, username, password, role
		FROM users
		WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Password, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u User) (User, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (username, password, role)
		VALUES ($1, $2, $3)
		RETURNING id
	`, u.Username, u.Password, u.Role).Scan(&u.ID)
	if isUniqueViolation(err) {
		return User{}, ErrConflict
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
