package catalog

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// handleListFolders lists children of the parentId query parameter.
// Omitting parentId lists root folders, not the whole tree.
func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var parentID *int64
	if raw := r.URL.Query().Get("parentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid parentId")
			return
		}
		parentID = &id
	}

	folders, err := s.store.FoldersByParent(ctx, parentID)
	if err != nil {
		log.Printf("catalog-service: list folders: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

func (s *Server) handleGetFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid folder id")
		return
	}

	folder, err := s.store.FolderByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: get folder: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		ImageURL    string   `json:"imageUrl"`
		ParentID    *int64   `json:"parentId"`
		Tags        []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if body.ImageURL == "" {
		writeError(w, http.StatusBadRequest, "imageUrl is required")
		return
	}

	if err := validateParent(ctx, s.store, 0, body.ParentID); err != nil {
		switch {
		case errors.Is(err, errParentMissing), errors.Is(err, errFolderOwnAncestor), errors.Is(err, ErrFolderCycle):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("catalog-service: validate parent: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
		}
		return
	}

	path, err := buildFolderPath(ctx, s.store, body.Name, body.ParentID)
	if err != nil {
		log.Printf("catalog-service: build folder path: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	folder, err := s.store.CreateFolder(ctx, Folder{
		Name:        body.Name,
		Description: body.Description,
		ImageURL:    body.ImageURL,
		ParentID:    body.ParentID,
		Path:        path,
		Tags:        body.Tags,
	})
	if err != nil {
		log.Printf("catalog-service: create folder: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, "folder.created", map[string]any{"folder": folder})
	writeJSON(w, http.StatusCreated, folder)
}

func (s *Server) handlePatchFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid folder id")
		return
	}

	// parentId uses RawMessage so an explicit null (move to root) is
	// distinguishable from an absent field.
	var body struct {
		Name        *string         `json:"name"`
		Description *string         `json:"description"`
		ImageURL    *string         `json:"imageUrl"`
		ParentID    json.RawMessage `json:"parentId"`
		Tags        *[]string       `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	existing, err := s.store.FolderByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: fetch folder: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		existing.Name = name
	}
	if body.Description != nil {
		existing.Description = *body.Description
	}
	if body.ImageURL != nil {
		if *body.ImageURL == "" {
			writeError(w, http.StatusBadRequest, "imageUrl must not be empty")
			return
		}
		existing.ImageURL = *body.ImageURL
	}
	if body.Tags != nil {
		existing.Tags = *body.Tags
	}
	if len(body.ParentID) > 0 {
		var parentID *int64
		if err := json.Unmarshal(body.ParentID, &parentID); err != nil {
			writeError(w, http.StatusBadRequest, "invalid parentId")
			return
		}
		if err := validateParent(ctx, s.store, id, parentID); err != nil {
			switch {
			case errors.Is(err, errParentMissing), errors.Is(err, errFolderOwnAncestor), errors.Is(err, ErrFolderCycle):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				log.Printf("catalog-service: validate parent: %v", err)
				writeError(w, http.StatusInternalServerError, "database error")
			}
			return
		}
		existing.ParentID = parentID
	}

	path, err := buildFolderPath(ctx, s.store, existing.Name, existing.ParentID)
	if err != nil {
		log.Printf("catalog-service: build folder path: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	existing.Path = path

	updated, err := s.store.UpdateFolder(ctx, existing)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: update folder: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, "folder.updated", map[string]any{"folder": updated})
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteFolder removes the folder and its membership links. Child
// folders are deliberately left in place as an orphaned subtree.
func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid folder id")
		return
	}

	err = s.store.DeleteFolder(ctx, id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}
	if err != nil {
		log.Printf("catalog-service: delete folder: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, "folder.deleted", map[string]any{"folderId": id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFolderPath(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid folder id")
		return
	}

	path, err := FolderPath(ctx, s.store, id)
	if errors.Is(err, ErrFolderCycle) {
		log.Printf("catalog-service: folder path for %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "folder hierarchy corrupted")
		return
	}
	if err != nil {
		log.Printf("catalog-service: folder path: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, path)
}
