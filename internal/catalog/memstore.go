package catalog

import (
	"context"
	"slices"
	"sort"
	"sync"
)

// MemStore is an in-memory Store used when no database is configured and
// by handler tests. Serial ids start at 1, like the Postgres schema.
type MemStore struct {
	mu sync.Mutex

	folders   map[int64]Folder
	playlists map[int64]Playlist
	links     map[int64]PlaylistFolder
	users     map[int64]User

	nextFolderID   int64
	nextPlaylistID int64
	nextLinkID     int64
	nextUserID     int64
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		folders:        map[int64]Folder{},
		playlists:      map[int64]Playlist{},
		links:          map[int64]PlaylistFolder{},
		users:          map[int64]User{},
		nextFolderID:   1,
		nextPlaylistID: 1,
		nextLinkID:     1,
		nextUserID:     1,
	}
}

func sortedByID[T any](m map[int64]T, id func(T) int64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}

func (s *MemStore) FolderByID(_ context.Context, id int64) (Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.folders[id]
	if !ok {
		return Folder{}, ErrNotFound
	}
	return f, nil
}

func (s *MemStore) FoldersByParent(_ context.Context, parentID *int64) ([]Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Folder{}
	for _, f := range sortedByID(s.folders, func(f Folder) int64 { return f.ID }) {
		switch {
		case parentID == nil && f.ParentID == nil:
			out = append(out, f)
		case parentID != nil && f.ParentID != nil && *f.ParentID == *parentID:
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *MemStore) AllFolders(_ context.Context) ([]Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByID(s.folders, func(f Folder) int64 { return f.ID }), nil
}

func (s *MemStore) CreateFolder(_ context.Context, f Folder) (Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = s.nextFolderID
	s.nextFolderID++
	s.folders[f.ID] = f
	return f, nil
}

func (s *MemStore) UpdateFolder(_ context.Context, f Folder) (Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.folders[f.ID]; !ok {
		return Folder{}, ErrNotFound
	}
	s.folders[f.ID] = f
	return f, nil
}

func (s *MemStore) DeleteFolder(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.folders[id]; !ok {
		return ErrNotFound
	}
	for linkID, link := range s.links {
		if link.FolderID == id {
			delete(s.links, linkID)
		}
	}
	delete(s.folders, id)
	return nil
}

func (s *MemStore) FoldersByTag(_ context.Context, tag string) ([]Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Folder{}
	for _, f := range sortedByID(s.folders, func(f Folder) int64 { return f.ID }) {
		if slices.Contains(f.Tags, tag) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *MemStore) PlaylistByID(_ context.Context, id int64) (Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[id]
	if !ok {
		return Playlist{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) AllPlaylists(_ context.Context) ([]Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByID(s.playlists, func(p Playlist) int64 { return p.ID }), nil
}

func (s *MemStore) CreatePlaylist(_ context.Context, p Playlist, folderIDs []int64) (Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.playlists {
		if existing.SpotifyURL == p.SpotifyURL {
			return Playlist{}, ErrConflict
		}
	}
	p.ID = s.nextPlaylistID
	s.nextPlaylistID++
	s.playlists[p.ID] = p
	for _, folderID := range folderIDs {
		s.addLinkLocked(p.ID, folderID)
	}
	return p, nil
}

func (s *MemStore) UpdatePlaylist(_ context.Context, p Playlist) (Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[p.ID]; !ok {
		return Playlist{}, ErrNotFound
	}
	for _, existing := range s.playlists {
		if existing.ID != p.ID && existing.SpotifyURL == p.SpotifyURL {
			return Playlist{}, ErrConflict
		}
	}
	s.playlists[p.ID] = p
	return p, nil
}

func (s *MemStore) DeletePlaylist(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[id]; !ok {
		return ErrNotFound
	}
	for linkID, link := range s.links {
		if link.PlaylistID == id {
			delete(s.links, linkID)
		}
	}
	delete(s.playlists, id)
	return nil
}

func (s *MemStore) PlaylistsByFolder(_ context.Context, folderID int64) ([]Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := map[int64]bool{}
	for _, link := range s.links {
		if link.FolderID == folderID {
			ids[link.PlaylistID] = true
		}
	}
	out := []Playlist{}
	for _, p := range sortedByID(s.playlists, func(p Playlist) int64 { return p.ID }) {
		if ids[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemStore) PlaylistsByTag(_ context.Context, tag string) ([]Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Playlist{}
	for _, p := range sortedByID(s.playlists, func(p Playlist) int64 { return p.ID }) {
		if slices.Contains(p.Tags, tag) {
			out = append(out, p)
		}
	}
	return out, nil
}

// addLinkLocked inserts a membership link unless the pair already exists.
func (s *MemStore) addLinkLocked(playlistID, folderID int64) {
	for _, link := range s.links {
		if link.PlaylistID == playlistID && link.FolderID == folderID {
			return
		}
	}
	id := s.nextLinkID
	s.nextLinkID++
	s.links[id] = PlaylistFolder{ID: id, PlaylistID: playlistID, FolderID: folderID}
}

func (s *MemStore) SetPlaylistFolders(_ context.Context, playlistID int64, folderIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for linkID, link := range s.links {
		if link.PlaylistID == playlistID {
			delete(s.links, linkID)
		}
	}
	for _, folderID := range folderIDs {
		s.addLinkLocked(playlistID, folderID)
	}
	return nil
}

func (s *MemStore) AddPlaylistToFolder(_ context.Context, playlistID, folderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLinkLocked(playlistID, folderID)
	return nil
}

func (s *MemStore) RemovePlaylistFromFolder(_ context.Context, playlistID, folderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for linkID, link := range s.links {
		if link.PlaylistID == playlistID && link.FolderID == folderID {
			delete(s.links, linkID)
		}
	}
	return nil
}

func (s *MemStore) FoldersByPlaylist(_ context.Context, playlistID int64) ([]PlaylistFolder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []PlaylistFolder{}
	for _, link := range sortedByID(s.links, func(l PlaylistFolder) int64 { return l.ID }) {
		if link.PlaylistID == playlistID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (s *MemStore) AllTags(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	for _, p := range s.playlists {
		for _, t := range p.Tags {
			seen[t] = true
		}
	}
	for _, f := range s.folders {
		for _, t := range f.Tags {
			seen[t] = true
		}
	}
	all := make([]string, 0, len(seen))
	for t := range seen {
		all = append(all, t)
	}
	sort.Strings(all)
	return all, nil
}

func (s *MemStore) UserByID(_ context.Context, id int64) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemStore) UserByUsername(_ context.Context, username string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *MemStore) CreateUser(_ context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return User{}, ErrConflict
		}
	}
	u.ID = s.nextUserID
	s.nextUserID++
	s.users[u.ID] = u
	return u, nil
}
