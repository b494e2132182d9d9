// Package repository declares the storage contracts consumed by the service
// layer. The concrete implementation lives in repository/sqlite; services
// only ever see these interfaces.
package repository

import (
	"context"

	"github.com/sakif/noteful/internal/model"
)

// NoteFilter narrows a note listing. All fields are optional; the zero value
// matches every note the user owns.
type NoteFilter struct {
	SearchTerm string // case-insensitive substring match on title or content
	FolderID   string // equality on folder_id
	TagID      string // set membership: notes labelled with this tag
}

type UserRepository interface {
	// CreateUser persists a new user. Returns apperror.ErrConflict when the
	// username is already taken.
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
}

type FolderRepository interface {
	CreateFolder(ctx context.Context, folder *model.Folder) error
	FindFolders(ctx context.Context, userID string) ([]model.Folder, error)
	FindFolder(ctx context.Context, id, userID string) (*model.Folder, error)
	UpdateFolder(ctx context.Context, folder *model.Folder) error
	// DeleteFolder removes the folder and unfiles the owner's notes in it.
	DeleteFolder(ctx context.Context, id, userID string) error
	// CountFolder reports how many folders match both id and owner: 1 when
	// the folder exists and belongs to the user, 0 otherwise.
	CountFolder(ctx context.Context, id, userID string) (int, error)
}

type TagRepository interface {
	CreateTag(ctx context.Context, tag *model.Tag) error
	FindTags(ctx context.Context, userID string) ([]model.Tag, error)
	FindTag(ctx context.Context, id, userID string) (*model.Tag, error)
	UpdateTag(ctx context.Context, tag *model.Tag) error
	// DeleteTag removes the tag and strips it from the owner's notes.
	DeleteTag(ctx context.Context, id, userID string) error
	// CountTagsByIDs reports how many distinct tags owned by the user match
	// the given ids. Duplicate ids in the input do not raise the count.
	CountTagsByIDs(ctx context.Context, ids []string, userID string) (int, error)
}

type NoteRepository interface {
	CreateNote(ctx context.Context, note *model.Note) error
	FindNotes(ctx context.Context, userID string, filter NoteFilter) ([]model.Note, error)
	FindNote(ctx context.Context, id, userID string) (*model.Note, error)
	// UpdateNote replaces the note's mutable fields, including its folder
	// association (an empty FolderID clears it) and its tag set.
	UpdateNote(ctx context.Context, note *model.Note) error
	DeleteNote(ctx context.Context, id, userID string) error
}
