package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret")

// newTestServer builds a MemStore-backed server with stock viewer and
// admin accounts, returning bearer tokens for both.
func newTestServer(t *testing.T) (*Server, *MemStore, string, string) {
	t.Helper()

	store := NewMemStore()
	srv := NewServer(ServerOptions{
		Store:     store,
		JWTSecret: testSecret,
	})

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	viewer, err := store.CreateUser(context.Background(), User{Username: "viewer", Password: string(hash), Role: roleViewer})
	if err != nil {
		t.Fatalf("create viewer: %v", err)
	}
	admin, err := store.CreateUser(context.Background(), User{Username: "admin", Password: string(hash), Role: roleAdmin})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	viewerToken, err := srv.issueToken(viewer)
	if err != nil {
		t.Fatalf("issue viewer token: %v", err)
	}
	adminToken, err := srv.issueToken(admin)
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}

	return srv, store, viewerToken, adminToken
}

func doRequest(t *testing.T, router chi.Router, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func mustCreateFolder(t *testing.T, router chi.Router, adminToken string, body map[string]any) Folder {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/folders", adminToken, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create folder: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decodeBody[Folder](t, w)
}

func mustCreatePlaylist(t *testing.T, router chi.Router, adminToken string, body map[string]any) Playlist {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/playlists", adminToken, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create playlist: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decodeBody[Playlist](t, w)
}
