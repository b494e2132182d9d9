package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/noteful/internal/auth"
	"github.com/sakif/noteful/internal/service"
)

// TagHandler owns the /api/tags endpoints.
type TagHandler struct {
	tags   *service.TagService
	logger *slog.Logger
}

func NewTagHandler(tags *service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{tags: tags, logger: logger}
}

type tagRequest struct {
	Name string `json:"name"`
}

// HandleList — GET /api/tags
func (h *TagHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	tags, err := h.tags.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tags)
}

// HandleGet — GET /api/tags/{id}
func (h *TagHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	tag, err := h.tags.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tag)
}

// HandleCreate — POST /api/tags
func (h *TagHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tag, err := h.tags.Create(r.Context(), user.ID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", r.URL.Path, tag.ID))
	writeJSON(w, http.StatusCreated, tag)
}

// HandleUpdate — PUT /api/tags/{id}
func (h *TagHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tag, err := h.tags.Update(r.Context(), user.ID, r.PathValue("id"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tag)
}

// HandleDelete — DELETE /api/tags/{id}
func (h *TagHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	if err := h.tags.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
