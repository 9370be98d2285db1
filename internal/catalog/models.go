package catalog

// Folder is a node in the playlist-organizing tree. ParentID is nil for
// root folders; Path is the denormalized breadcrumb string kept alongside
// the parent chain for quick display.
type Folder struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"imageUrl"`
	ParentID    *int64   `json:"parentId"`
	Path        string   `json:"path"`
	Tags        []string `json:"tags,omitempty"`
}

// Playlist points at an external Spotify playlist and carries local
// display metadata. SpotifyURL is unique across the catalog.
type Playlist struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CoverURL    string   `json:"coverUrl,omitempty"`
	SpotifyURL  string   `json:"spotifyUrl"`
	Tags        []string `json:"tags,omitempty"`
}

// PlaylistFolder is one membership link in the playlist <-> folder
// many-to-many relation.
type PlaylistFolder struct {
	ID         int64 `json:"id"`
	PlaylistID int64 `json:"playlistId"`
	FolderID   int64 `json:"folderId"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	Role     string `json:"role"`
}

const (
	roleViewer = "viewer"
	roleAdmin  = "admin"
)
