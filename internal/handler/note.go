package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/noteful/internal/auth"
	"github.com/sakif/noteful/internal/repository"
	"github.com/sakif/noteful/internal/service"
)

// NoteHandler owns the /api/notes endpoints. Every route here sits behind
// auth.RequireAuth, so the caller identity is always in the context.
type NoteHandler struct {
	notes  *service.NoteService
	logger *slog.Logger
}

func NewNoteHandler(notes *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, logger: logger}
}

type createNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	FolderID string   `json:"folderId"`
	Tags     []string `json:"tags"`
}

// updateNoteRequest mirrors createNoteRequest with pointers: only fields
// present in the body are applied. folderId set to "" unsets the folder.
type updateNoteRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	FolderID *string   `json:"folderId"`
	Tags     *[]string `json:"tags"`
}

// HandleList returns the caller's notes.
//
// HTTP: GET /api/notes?searchTerm=&folderId=&tagId=
func (h *NoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	q := r.URL.Query()
	notes, err := h.notes.List(r.Context(), user.ID, repository.NoteFilter{
		SearchTerm: q.Get("searchTerm"),
		FolderID:   q.Get("folderId"),
		TagID:      q.Get("tagId"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notes)
}

// HandleGet returns a single note.
//
// HTTP: GET /api/notes/{id}
func (h *NoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	note, err := h.notes.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// HandleCreate creates a note after the reference validator clears its
// folder and tags.
//
// HTTP: POST /api/notes
func (h *NoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	note, err := h.notes.Create(r.Context(), user.ID, service.CreateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		FolderID: req.FolderID,
		Tags:     req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", r.URL.Path, note.ID))
	writeJSON(w, http.StatusCreated, note)
}

// HandleUpdate applies a partial update.
//
// HTTP: PUT /api/notes/{id}
func (h *NoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req updateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	note, err := h.notes.Update(r.Context(), user.ID, r.PathValue("id"), service.UpdateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		FolderID: req.FolderID,
		Tags:     req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// HandleDelete removes a note.
//
// HTTP: DELETE /api/notes/{id}
func (h *NoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	if err := h.notes.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
