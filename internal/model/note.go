package model

import "time"

// Note is the central entity: a titled piece of content owned by exactly one
// user, optionally filed into one of that user's folders and labelled with
// any number of that user's tags.
//
// FolderID is empty when the note is unfiled — `omitempty` keeps the field
// out of the JSON entirely in that case, so "no folder" reads as an absent
// key rather than an empty string.
//
// Tags holds tag IDs, not tag records. It is a set: order carries no meaning
// and the API never guarantees one.
type Note struct {
	ID        string    `json:"id"                 db:"id"`
	Title     string    `json:"title"              db:"title"`
	Content   string    `json:"content"            db:"content"`
	FolderID  string    `json:"folderId,omitempty" db:"folder_id"`
	Tags      []string  `json:"tags"`
	UserID    string    `json:"userId"             db:"user_id"`
	CreatedAt time.Time `json:"createdAt"          db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt"          db:"updated_at"`
}

// Folder groups a user's notes. Name is unique per owning user, not
// globally — two users can both have a folder called "Work".
type Folder struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	UserID    string    `json:"userId"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Tag labels a user's notes. Like Folder, Name is unique per owning user.
type Tag struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	UserID    string    `json:"userId"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
