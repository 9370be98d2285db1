package catalog

import (
	"context"
	"strings"
)

// SearchResult holds the two independently-searched result sequences.
// There is no cross-entity ranking.
type SearchResult struct {
	Playlists []Playlist `json:"playlists"`
	Folders   []Folder   `json:"folders"`
}

// The catalog has two deliberately different tag-matching modes:
//
//   - tag-filter mode matches the tag value exactly as stored
//     (Store.PlaylistsByTag / Store.FoldersByTag);
//   - free-text mode matches tags by case-insensitive substring,
//     alongside name and description (matchPlaylistText).
//
// Searching "Tech" as a tag finds nothing, searching it as text finds
// every Techno playlist.

func matchPlaylistText(p Playlist, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(p.Name), q) {
		return true
	}
	if p.Description != "" && strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func matchFolderText(f Folder, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(f.Name), q) {
		return true
	}
	return f.Description != "" && strings.Contains(strings.ToLower(f.Description), q)
}

// matchNameDescription is the narrower intersecting filter applied on
// top of tag results: tags are not consulted.
func matchPlaylistNameDescription(p Playlist, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(p.Name), q) {
		return true
	}
	return p.Description != "" && strings.Contains(strings.ToLower(p.Description), q)
}

func dedupePlaylists(in []Playlist) []Playlist {
	seen := map[int64]bool{}
	out := []Playlist{}
	for _, p := range in {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

func dedupeFolders(in []Folder) []Folder {
	seen := map[int64]bool{}
	out := []Folder{}
	for _, f := range in {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		out = append(out, f)
	}
	return out
}

// splitTags parses the comma-separated tag parameter, trimming
// whitespace and dropping empty entries.
func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := []string{}
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// SearchCatalog implements the query surface: exact-tag union filtering
// when tags are given, free-text substring search otherwise, and the
// text query as an intersecting filter when both are present. Neither
// query nor tags means empty results, not "browse everything".
func SearchCatalog(ctx context.Context, store Store, query, tagParam string) (SearchResult, error) {
	result := SearchResult{Playlists: []Playlist{}, Folders: []Folder{}}

	tags := splitTags(tagParam)
	if query == "" && len(tags) == 0 {
		return result, nil
	}

	if len(tags) > 0 {
		for _, tag := range tags {
			playlists, err := store.PlaylistsByTag(ctx, tag)
			if err != nil {
				return SearchResult{}, err
			}
			folders, err := store.FoldersByTag(ctx, tag)
			if err != nil {
				return SearchResult{}, err
			}
			result.Playlists = append(result.Playlists, playlists...)
			result.Folders = append(result.Folders, folders...)
		}
		result.Playlists = dedupePlaylists(result.Playlists)
		result.Folders = dedupeFolders(result.Folders)

		if query != "" {
			filteredPlaylists := []Playlist{}
			for _, p := range result.Playlists {
				if matchPlaylistNameDescription(p, query) {
					filteredPlaylists = append(filteredPlaylists, p)
				}
			}
			filteredFolders := []Folder{}
			for _, f := range result.Folders {
				if matchFolderText(f, query) {
					filteredFolders = append(filteredFolders, f)
				}
			}
			result.Playlists = filteredPlaylists
			result.Folders = filteredFolders
		}
		return result, nil
	}

	playlists, err := store.AllPlaylists(ctx)
	if err != nil {
		return SearchResult{}, err
	}
	for _, p := range playlists {
		if matchPlaylistText(p, query) {
			result.Playlists = append(result.Playlists, p)
		}
	}

	folders, err := store.AllFolders(ctx)
	if err != nil {
		return SearchResult{}, err
	}
	for _, f := range folders {
		if matchFolderText(f, query) {
			result.Folders = append(result.Folders, f)
		}
	}

	return result, nil
}
