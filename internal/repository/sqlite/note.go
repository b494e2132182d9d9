package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/noteful/internal/apperror"
	"github.com/sakif/noteful/internal/model"
	"github.com/sakif/noteful/internal/repository"
)

var _ repository.NoteRepository = (*DB)(nil)

// CreateNote inserts a note and its tag links in one transaction.
// The caller (service layer) has already validated that the folder and tags
// exist and belong to the note's owner.
func (db *DB) CreateNote(ctx context.Context, note *model.Note) error {
	now := time.Now()
	note.ID = xid.New().String()
	note.CreatedAt = now
	note.UpdatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO notes (id, title, content, folder_id, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		note.ID,
		note.Title,
		note.Content,
		nullable(note.FolderID),
		note.UserID,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting note: %w", err)
	}

	if err := replaceNoteTags(ctx, tx, note.ID, note.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing note insert: %w", err)
	}

	return nil
}

// FindNotes lists the user's notes, newest-updated first, applying the
// optional filter predicates: case-insensitive substring search on title or
// content, folder equality, and tag membership.
func (db *DB) FindNotes(ctx context.Context, userID string, filter repository.NoteFilter) ([]model.Note, error) {
	query := `SELECT n.id, n.title, n.content, n.folder_id, n.user_id, n.created_at, n.updated_at
		 FROM notes n`
	args := []any{}

	if filter.TagID != "" {
		query += ` JOIN note_tags nt ON nt.note_id = n.id AND nt.tag_id = ?`
		args = append(args, filter.TagID)
	}

	query += ` WHERE n.user_id = ?`
	args = append(args, userID)

	if filter.SearchTerm != "" {
		query += ` AND (LOWER(n.title) LIKE ? OR LOWER(n.content) LIKE ?)`
		pattern := "%" + strings.ToLower(filter.SearchTerm) + "%"
		args = append(args, pattern, pattern)
	}

	if filter.FolderID != "" {
		query += ` AND n.folder_id = ?`
		args = append(args, filter.FolderID)
	}

	query += ` ORDER BY n.updated_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notes: %w", err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notes: %w", err)
	}

	if err := db.attachTags(ctx, notes); err != nil {
		return nil, err
	}

	return notes, nil
}

// FindNote retrieves one note scoped by owner, tags included. Foreign notes
// are indistinguishable from missing ones.
func (db *DB) FindNote(ctx context.Context, id, userID string) (*model.Note, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, title, content, folder_id, user_id, created_at, updated_at
		 FROM notes WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	var n model.Note
	var folderID sql.NullString
	err := row.Scan(&n.ID, &n.Title, &n.Content, &folderID, &n.UserID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("note")
		}
		return nil, fmt.Errorf("sqlite: getting note %s: %w", id, err)
	}
	n.FolderID = folderID.String

	n.Tags, err = db.noteTags(ctx, n.ID)
	if err != nil {
		return nil, err
	}

	return &n, nil
}

// UpdateNote replaces the note's mutable fields and its tag set. An empty
// FolderID writes NULL, which is how "remove the folder association" lands
// in storage.
func (db *DB) UpdateNote(ctx context.Context, note *model.Note) error {
	note.UpdatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, folder_id = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		note.Title,
		note.Content,
		nullable(note.FolderID),
		note.UpdatedAt,
		note.ID,
		note.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating note %s: %w", note.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("note")
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM note_tags WHERE note_id = ?`, note.ID,
	); err != nil {
		return fmt.Errorf("sqlite: clearing note tags: %w", err)
	}
	if err := replaceNoteTags(ctx, tx, note.ID, note.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing note update: %w", err)
	}

	return nil
}

// DeleteNote removes a note and its tag links in one transaction. The links
// are deleted explicitly rather than left to ON DELETE CASCADE, so the
// cleanup does not depend on connection-level pragma state.
func (db *DB) DeleteNote(ctx context.Context, id, userID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning note delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM note_tags
		 WHERE note_id IN (SELECT id FROM notes WHERE id = ? AND user_id = ?)`,
		id, userID,
	); err != nil {
		return fmt.Errorf("sqlite: clearing note tags: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting note %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("note")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing note delete: %w", err)
	}

	return nil
}

// --- helpers ---

// nullable maps an empty string to NULL so an unfiled note stores no folder
// reference at all.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// scanNote reads one row from a notes SELECT (the n.* column order).
func scanNote(rows *sql.Rows) (*model.Note, error) {
	var n model.Note
	var folderID sql.NullString
	if err := rows.Scan(&n.ID, &n.Title, &n.Content, &folderID, &n.UserID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, fmt.Errorf("sqlite: scanning note row: %w", err)
	}
	n.FolderID = folderID.String
	return &n, nil
}

// replaceNoteTags inserts the note's tag links. INSERT OR IGNORE collapses
// duplicate ids in the input — the link table is a set.
func replaceNoteTags(ctx context.Context, tx *sql.Tx, noteID string, tags []string) error {
	for _, tagID := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`,
			noteID, tagID,
		); err != nil {
			return fmt.Errorf("sqlite: linking tag %s to note %s: %w", tagID, noteID, err)
		}
	}
	return nil
}

// noteTags returns a single note's tag ids.
func (db *DB) noteTags(ctx context.Context, noteID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT tag_id FROM note_tags WHERE note_id = ? ORDER BY tag_id`,
		noteID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading note tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag id: %w", err)
		}
		tags = append(tags, tagID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating note tags: %w", err)
	}

	return tags, nil
}

// attachTags loads tag links for a batch of notes with one query instead of
// one per note.
func (db *DB) attachTags(ctx context.Context, notes []model.Note) error {
	if len(notes) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(notes)-1) + "?"
	args := make([]any, 0, len(notes))
	index := make(map[string]int, len(notes))
	for i := range notes {
		notes[i].Tags = []string{}
		args = append(args, notes[i].ID)
		index[notes[i].ID] = i
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT note_id, tag_id FROM note_tags WHERE note_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading note tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var noteID, tagID string
		if err := rows.Scan(&noteID, &tagID); err != nil {
			return fmt.Errorf("sqlite: scanning note tag link: %w", err)
		}
		if i, ok := index[noteID]; ok {
			notes[i].Tags = append(notes[i].Tags, tagID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating note tag links: %w", err)
	}

	for i := range notes {
		sort.Strings(notes[i].Tags)
	}

	return nil
}
