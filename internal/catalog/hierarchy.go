package catalog

import (
	"context"
	"errors"
	"strings"
)

// ErrFolderCycle means a parent chain loops back on itself. The chain
// invariant is enforced at write time, so hitting this during a walk
// indicates corrupted data.
var ErrFolderCycle = errors.New("folder hierarchy contains a cycle")

// FolderPath resolves the root-to-folder ancestor sequence for
// breadcrumb display. A broken parent reference ends the walk and the
// partial path gathered so far is returned; that is degraded behavior,
// not an error. A revisited id aborts with ErrFolderCycle instead of
// looping forever.
func FolderPath(ctx context.Context, store Store, folderID int64) ([]Folder, error) {
	path := []Folder{}
	visited := map[int64]bool{}

	currentID := &folderID
	for currentID != nil {
		if visited[*currentID] {
			return nil, ErrFolderCycle
		}
		visited[*currentID] = true

		folder, err := store.FolderByID(ctx, *currentID)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		path = append([]Folder{folder}, path...)
		currentID = folder.ParentID
	}

	return path, nil
}

// validateParent checks that the proposed parent exists and that making
// it the parent of folderID would not create a cycle. folderID is zero
// for a folder being created.
func validateParent(ctx context.Context, store Store, folderID int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if folderID != 0 && *parentID == folderID {
		return errFolderOwnAncestor
	}

	startID := *parentID
	visited := map[int64]bool{}
	currentID := parentID
	for currentID != nil {
		if folderID != 0 && *currentID == folderID {
			return errFolderOwnAncestor
		}
		if visited[*currentID] {
			return ErrFolderCycle
		}
		visited[*currentID] = true

		folder, err := store.FolderByID(ctx, *currentID)
		if errors.Is(err, ErrNotFound) {
			// The direct parent must exist; a break further up the chain
			// is the same degraded case FolderPath tolerates.
			if *currentID == startID {
				return errParentMissing
			}
			return nil
		}
		if err != nil {
			return err
		}
		currentID = folder.ParentID
	}
	return nil
}

var (
	errParentMissing     = errors.New("parent folder does not exist")
	errFolderOwnAncestor = errors.New("folder cannot be its own ancestor")
)

// buildFolderPath computes the denormalized breadcrumb string for a
// folder with the given name and parent.
func buildFolderPath(ctx context.Context, store Store, name string, parentID *int64) (string, error) {
	if parentID == nil {
		return name, nil
	}
	ancestors, err := FolderPath(ctx, store, *parentID)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(ancestors)+1)
	for _, a := range ancestors {
		parts = append(parts, a.Name)
	}
	parts = append(parts, name)
	return strings.Join(parts, "/"), nil
}
