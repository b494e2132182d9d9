package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/noteful/internal/auth"
	"github.com/sakif/noteful/internal/service"
)

// FolderHandler owns the /api/folders endpoints.
type FolderHandler struct {
	folders *service.FolderService
	logger  *slog.Logger
}

func NewFolderHandler(folders *service.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{folders: folders, logger: logger}
}

type folderRequest struct {
	Name string `json:"name"`
}

// HandleList — GET /api/folders
func (h *FolderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	folders, err := h.folders.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folders)
}

// HandleGet — GET /api/folders/{id}
func (h *FolderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	folder, err := h.folders.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

// HandleCreate — POST /api/folders
func (h *FolderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req folderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	folder, err := h.folders.Create(r.Context(), user.ID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", r.URL.Path, folder.ID))
	writeJSON(w, http.StatusCreated, folder)
}

// HandleUpdate — PUT /api/folders/{id}
func (h *FolderHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req folderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	folder, err := h.folders.Update(r.Context(), user.ID, r.PathValue("id"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

// HandleDelete — DELETE /api/folders/{id}
func (h *FolderHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	if err := h.folders.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
