package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/noteful/internal/handler"
	"github.com/sakif/noteful/internal/model"
)

// newTestServer assembles the full stack — router, middleware, services,
// in-memory database — exactly as production does, minus the listener.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := New(Config{
		DBPath:      ":memory:",
		JWTSecret:   "test-secret-at-least-16-chars!!",
		TokenExpiry: time.Hour,
		BcryptCost:  4, // bcrypt minimum, keeps registration fast in tests
	}, logger)
	if err != nil {
		t.Fatalf("failed to create test server: %v", err)
	}
	t.Cleanup(func() { s.db.Close() })
	return s
}

// do sends a JSON request through the router. An empty token leaves the
// Authorization header off.
func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewBuffer(encoded)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return out
}

// registerAndLogin creates a user and returns a valid bearer token plus the
// new user's id.
func registerAndLogin(t *testing.T, s *Server, username string) (token, userID string) {
	t.Helper()

	rr := do(t, s, http.MethodPost, "/api/users", "", map[string]string{
		"username": username,
		"password": "longenough1",
	})
	require.Equal(t, http.StatusCreated, rr.Code, "register %s: %s", username, rr.Body.String())
	userID = decodeBody[model.User](t, rr).ID

	rr = do(t, s, http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": "longenough1",
	})
	require.Equal(t, http.StatusOK, rr.Code, "login %s: %s", username, rr.Body.String())

	body := decodeBody[map[string]string](t, rr)
	require.NotEmpty(t, body["authToken"])
	return body["authToken"], userID
}

// =========================================================================
// REGISTRATION AND LOGIN
// =========================================================================

func TestRegisterEndpoint(t *testing.T) {
	s := newTestServer(t)

	rr := do(t, s, http.MethodPost, "/api/users", "", map[string]string{
		"username": "alice",
		"password": "longenough1",
		"fullname": "Alice Example",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Location"))

	user := decodeBody[model.User](t, rr)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	// The digest never serializes.
	assert.NotContains(t, rr.Body.String(), "password")
	assert.NotContains(t, rr.Body.String(), "$2a$")
}

func TestRegisterEndpoint_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name         string
		body         any
		wantStatus   int
		wantMessage  string
		wantLocation string
	}{
		{
			name:         "missing password",
			body:         map[string]string{"username": "alice"},
			wantStatus:   http.StatusUnprocessableEntity,
			wantMessage:  "Missing 'password' in request body",
			wantLocation: "password",
		},
		{
			name:         "short password",
			body:         map[string]string{"username": "alice", "password": "short"},
			wantStatus:   http.StatusUnprocessableEntity,
			wantMessage:  "Must be at least 8 characters long",
			wantLocation: "password",
		},
		{
			name:         "non-string password",
			body:         map[string]any{"username": "alice", "password": 12345678},
			wantStatus:   http.StatusUnprocessableEntity,
			wantMessage:  "The field password must be type String",
			wantLocation: "password",
		},
		{
			// A missing required field wins over a type mismatch elsewhere
			// in the body.
			name:         "missing username beats non-string password",
			body:         map[string]any{"password": 12345678},
			wantStatus:   http.StatusUnprocessableEntity,
			wantMessage:  "Missing 'username' in request body",
			wantLocation: "username",
		},
		{
			name:         "null username",
			body:         map[string]any{"username": nil, "password": "s3cr3t-pass"},
			wantStatus:   http.StatusUnprocessableEntity,
			wantMessage:  "The field username must be type String",
			wantLocation: "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, s, http.MethodPost, "/api/users", "", tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			errBody := decodeBody[handler.ErrorResponse](t, rr)
			assert.Equal(t, tt.wantMessage, errBody.Message)
			assert.Equal(t, tt.wantLocation, errBody.Location)
		})
	}
}

func TestRegisterEndpoint_DuplicateUsername(t *testing.T) {
	s := newTestServer(t)
	registerAndLogin(t, s, "alice")

	rr := do(t, s, http.MethodPost, "/api/users", "", map[string]string{
		"username": "alice",
		"password": "longenough1",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	errBody := decodeBody[handler.ErrorResponse](t, rr)
	assert.Equal(t, "The username already exists", errBody.Message)
}

func TestLoginEndpoint_BadCredentialsAreIndistinguishable(t *testing.T) {
	s := newTestServer(t)
	registerAndLogin(t, s, "alice")

	// Wrong password for a real user and a login for a user that doesn't
	// exist must produce byte-identical error bodies.
	wrongPassword := do(t, s, http.MethodPost, "/api/login", "", map[string]string{
		"username": "alice", "password": "wrongpassword",
	})
	unknownUser := do(t, s, http.MethodPost, "/api/login", "", map[string]string{
		"username": "nobody", "password": "longenough1",
	})

	require.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	require.Equal(t, http.StatusBadRequest, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())

	errBody := decodeBody[handler.ErrorResponse](t, wrongPassword)
	assert.Equal(t, "Incorrect username or password", errBody.Message)
	assert.Empty(t, errBody.Location)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/notes", "/api/folders", "/api/tags"} {
		rr := do(t, s, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

// =========================================================================
// NOTE LIFECYCLE
// =========================================================================

func TestNoteLifecycle(t *testing.T) {
	s := newTestServer(t)
	token, aliceID := registerAndLogin(t, s, "alice")

	// Folder and tag to reference.
	rr := do(t, s, http.MethodPost, "/api/folders", token, map[string]string{"name": "Work"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	folder := decodeBody[model.Folder](t, rr)

	rr = do(t, s, http.MethodPost, "/api/tags", token, map[string]string{"name": "urgent"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	tag := decodeBody[model.Tag](t, rr)

	// Create.
	rr = do(t, s, http.MethodPost, "/api/notes", token, map[string]any{
		"title":    "standup notes",
		"content":  "discussed the roadmap",
		"folderId": folder.ID,
		"tags":     []string{tag.ID},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	note := decodeBody[model.Note](t, rr)
	assert.Equal(t, fmt.Sprintf("/api/notes/%s", note.ID), rr.Header().Get("Location"))
	assert.Equal(t, aliceID, note.UserID)
	assert.Equal(t, folder.ID, note.FolderID)
	assert.Equal(t, []string{tag.ID}, note.Tags)

	// Read back.
	rr = do(t, s, http.MethodGet, "/api/notes/"+note.ID, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// Filtered list.
	rr = do(t, s, http.MethodGet, "/api/notes?searchTerm=roadmap", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	notes := decodeBody[[]model.Note](t, rr)
	require.Len(t, notes, 1)
	assert.Equal(t, note.ID, notes[0].ID)

	// Partial update: unset the folder, keep everything else.
	rr = do(t, s, http.MethodPut, "/api/notes/"+note.ID, token, map[string]any{
		"folderId": "",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decodeBody[model.Note](t, rr)
	assert.Empty(t, updated.FolderID)
	assert.Equal(t, "standup notes", updated.Title)

	// Delete.
	rr = do(t, s, http.MethodDelete, "/api/notes/"+note.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, s, http.MethodGet, "/api/notes/"+note.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNoteCreate_RejectsForeignReferences(t *testing.T) {
	s := newTestServer(t)
	aliceToken, _ := registerAndLogin(t, s, "alice")
	bobToken, _ := registerAndLogin(t, s, "bob")

	rr := do(t, s, http.MethodPost, "/api/folders", bobToken, map[string]string{"name": "Bob's"})
	require.Equal(t, http.StatusCreated, rr.Code)
	bobFolder := decodeBody[model.Folder](t, rr)

	// Alice referencing Bob's folder fails as if the folder didn't exist.
	rr = do(t, s, http.MethodPost, "/api/notes", aliceToken, map[string]any{
		"title":    "trespassing",
		"folderId": bobFolder.ID,
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	errBody := decodeBody[handler.ErrorResponse](t, rr)
	assert.Equal(t, "folderId", errBody.Location)

	// And nothing was written.
	rr = do(t, s, http.MethodGet, "/api/notes", aliceToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[[]model.Note](t, rr))
}

func TestNoteCreate_TagsMustBeAnArray(t *testing.T) {
	s := newTestServer(t)
	token, _ := registerAndLogin(t, s, "alice")

	rr := do(t, s, http.MethodPost, "/api/notes", token, map[string]any{
		"title": "mistyped",
		"tags":  "not-an-array",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	errBody := decodeBody[handler.ErrorResponse](t, rr)
	assert.Equal(t, "The `tags` property must be an array", errBody.Message)
}

// =========================================================================
// CROSS-USER ISOLATION
// =========================================================================

func TestUsersCannotSeeEachOthersData(t *testing.T) {
	s := newTestServer(t)
	aliceToken, _ := registerAndLogin(t, s, "alice")
	bobToken, _ := registerAndLogin(t, s, "bob")

	rr := do(t, s, http.MethodPost, "/api/notes", aliceToken, map[string]any{
		"title": "alice's secret",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	note := decodeBody[model.Note](t, rr)

	// Bob fetching Alice's note by id gets the same 404 as a missing note.
	rr = do(t, s, http.MethodGet, "/api/notes/"+note.ID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, s, http.MethodDelete, "/api/notes/"+note.ID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Bob's listing stays empty.
	rr = do(t, s, http.MethodGet, "/api/notes", bobToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[[]model.Note](t, rr))

	// And the note survived Bob's delete attempt.
	rr = do(t, s, http.MethodGet, "/api/notes/"+note.ID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

// =========================================================================
// FOLDER AND TAG ENDPOINTS
// =========================================================================

func TestFolderEndpoints(t *testing.T) {
	s := newTestServer(t)
	token, _ := registerAndLogin(t, s, "alice")

	rr := do(t, s, http.MethodPost, "/api/folders", token, map[string]string{"name": "Work"})
	require.Equal(t, http.StatusCreated, rr.Code)
	folder := decodeBody[model.Folder](t, rr)

	// Duplicate name for the same user.
	rr = do(t, s, http.MethodPost, "/api/folders", token, map[string]string{"name": "Work"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Folder name already exists", decodeBody[handler.ErrorResponse](t, rr).Message)

	// Rename.
	rr = do(t, s, http.MethodPut, "/api/folders/"+folder.ID, token, map[string]string{"name": "Projects"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Projects", decodeBody[model.Folder](t, rr).Name)

	// Missing name.
	rr = do(t, s, http.MethodPost, "/api/folders", token, map[string]string{})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	// Delete, then the listing is empty again.
	rr = do(t, s, http.MethodDelete, "/api/folders/"+folder.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, s, http.MethodGet, "/api/folders", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[[]model.Folder](t, rr))
}

func TestTagEndpoints(t *testing.T) {
	s := newTestServer(t)
	token, _ := registerAndLogin(t, s, "alice")

	rr := do(t, s, http.MethodPost, "/api/tags", token, map[string]string{"name": "urgent"})
	require.Equal(t, http.StatusCreated, rr.Code)
	tag := decodeBody[model.Tag](t, rr)

	rr = do(t, s, http.MethodGet, "/api/tags/"+tag.ID, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "urgent", decodeBody[model.Tag](t, rr).Name)

	// Deleting the tag detaches it from notes that carried it.
	rr = do(t, s, http.MethodPost, "/api/notes", token, map[string]any{
		"title": "labelled",
		"tags":  []string{tag.ID},
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	note := decodeBody[model.Note](t, rr)

	rr = do(t, s, http.MethodDelete, "/api/tags/"+tag.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, s, http.MethodGet, "/api/notes/"+note.ID, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[model.Note](t, rr).Tags)
}
