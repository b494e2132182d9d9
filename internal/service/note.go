package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/noteful/internal/apperror"
	"github.com/sakif/noteful/internal/model"
	"github.com/sakif/noteful/internal/repository"
)

// NoteService orchestrates note CRUD. Every operation is scoped by the
// caller's user id, and every write runs the reference validator first — a
// note can only ever point at folders and tags its owner holds.
type NoteService struct {
	notes  repository.NoteRepository
	refs   *referenceValidator
	logger *slog.Logger
}

func NewNoteService(
	notes repository.NoteRepository,
	folders repository.FolderRepository,
	tags repository.TagRepository,
	logger *slog.Logger,
) *NoteService {
	return &NoteService{
		notes:  notes,
		refs:   &referenceValidator{folders: folders, tags: tags},
		logger: logger,
	}
}

// CreateNoteInput is the create payload. Tags nil means "no tags supplied";
// an explicit empty array is also fine.
type CreateNoteInput struct {
	Title    string
	Content  string
	FolderID string
	Tags     []string
}

// UpdateNoteInput is the partial-update payload. Nil fields are left
// untouched. A non-nil FolderID pointing at an empty string removes the
// folder association; a non-nil empty Title is rejected.
type UpdateNoteInput struct {
	Title    *string
	Content  *string
	FolderID *string
	Tags     *[]string
}

// List returns the caller's notes, newest-updated first, optionally
// filtered.
func (s *NoteService) List(ctx context.Context, userID string, filter repository.NoteFilter) ([]model.Note, error) {
	notes, err := s.notes.FindNotes(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return notes, nil
}

// Get returns one of the caller's notes. A malformed id is a 400; a note
// that doesn't exist — or exists but belongs to someone else — is a 404.
func (s *NoteService) Get(ctx context.Context, userID, id string) (*model.Note, error) {
	if !isWellFormedID(id) {
		return nil, apperror.InvalidInput("id", "The `id` is not valid")
	}

	return s.notes.FindNote(ctx, id, userID)
}

// Create validates the referenced folder and tags, then persists the note.
// Validation completes fully before the write: a failed reference check
// means no note exists afterwards.
func (s *NoteService) Create(ctx context.Context, userID string, in CreateNoteInput) (*model.Note, error) {
	if in.Title == "" {
		return nil, apperror.InvalidInput("title", "Missing `title` in request body")
	}

	if err := s.refs.validate(ctx, in.FolderID, in.Tags, userID); err != nil {
		return nil, err
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	note := &model.Note{
		Title:    in.Title,
		Content:  in.Content,
		FolderID: in.FolderID,
		Tags:     tags,
		UserID:   userID,
	}

	if err := s.notes.CreateNote(ctx, note); err != nil {
		s.logger.Error("failed to create note",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating note: %w", err)
	}

	s.logger.Info("note created",
		slog.String("id", note.ID),
		slog.String("userID", userID),
	)

	return note, nil
}

// Update applies a partial update to one of the caller's notes.
//
// Setting folderId to the empty string is the explicit unset: it clears the
// association instead of failing validation. All supplied references are
// validated before the existing note is touched.
func (s *NoteService) Update(ctx context.Context, userID, id string, in UpdateNoteInput) (*model.Note, error) {
	if !isWellFormedID(id) {
		return nil, apperror.InvalidInput("id", "The `id` is not valid")
	}
	if in.Title != nil && *in.Title == "" {
		return nil, apperror.InvalidInput("title", "Missing `title` in request body")
	}

	// Effective references for validation. An empty folderId is the unset
	// signal and validates trivially; absent fields validate trivially too.
	folderID := ""
	if in.FolderID != nil {
		folderID = *in.FolderID
	}
	var tags []string
	if in.Tags != nil {
		tags = *in.Tags
		if tags == nil {
			tags = []string{}
		}
	}

	if err := s.refs.validate(ctx, folderID, tags, userID); err != nil {
		return nil, err
	}

	note, err := s.notes.FindNote(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		note.Title = *in.Title
	}
	if in.Content != nil {
		note.Content = *in.Content
	}
	if in.FolderID != nil {
		note.FolderID = *in.FolderID // "" clears the association
	}
	if in.Tags != nil {
		note.Tags = tags
	}

	if err := s.notes.UpdateNote(ctx, note); err != nil {
		s.logger.Error("failed to update note",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating note: %w", err)
	}

	s.logger.Info("note updated", slog.String("id", note.ID))

	return note, nil
}

// Delete removes one of the caller's notes.
func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	if !isWellFormedID(id) {
		return apperror.InvalidInput("id", "The `id` is not valid")
	}

	if err := s.notes.DeleteNote(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info("note deleted", slog.String("id", id))
	return nil
}
