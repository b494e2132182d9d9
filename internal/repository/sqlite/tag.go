package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/noteful/internal/apperror"
	"github.com/sakif/noteful/internal/model"
	"github.com/sakif/noteful/internal/repository"
)

var _ repository.TagRepository = (*DB)(nil)

func (db *DB) CreateTag(ctx context.Context, tag *model.Tag) error {
	now := time.Now()
	tag.ID = xid.New().String()
	tag.CreatedAt = now
	tag.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		tag.ID,
		tag.Name,
		tag.UserID,
		tag.CreatedAt,
		tag.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Tag name already exists")
		}
		return fmt.Errorf("sqlite: inserting tag %q: %w", tag.Name, err)
	}

	return nil
}

func (db *DB) FindTags(ctx context.Context, userID string) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, user_id, created_at, updated_at
		 FROM tags
		 WHERE user_id = ?
		 ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	return tags, nil
}

func (db *DB) FindTag(ctx context.Context, id, userID string) (*model.Tag, error) {
	var t model.Tag
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, user_id, created_at, updated_at
		 FROM tags WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&t.ID, &t.Name, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("tag")
		}
		return nil, fmt.Errorf("sqlite: getting tag %s: %w", id, err)
	}

	return &t, nil
}

func (db *DB) UpdateTag(ctx context.Context, tag *model.Tag) error {
	tag.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE tags SET name = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		tag.Name,
		tag.UpdatedAt,
		tag.ID,
		tag.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Tag name already exists")
		}
		return fmt.Errorf("sqlite: updating tag %s: %w", tag.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("tag")
	}

	return nil
}

// DeleteTag removes a tag and strips it from the owner's notes, in one
// transaction.
func (db *DB) DeleteTag(ctx context.Context, id, userID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM note_tags
		 WHERE tag_id = ?
		   AND note_id IN (SELECT id FROM notes WHERE user_id = ?)`,
		id, userID,
	); err != nil {
		return fmt.Errorf("sqlite: untagging notes for tag %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM tags WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting tag %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("tag")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing tag delete: %w", err)
	}

	return nil
}

// CountTagsByIDs counts the user's tags whose ids appear in ids. The IN
// clause matches rows, not input elements, so duplicate ids in the input
// never raise the count — the reference validator leans on that.
func (db *DB) CountTagsByIDs(ctx context.Context, ids []string, userID string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	// database/sql has no slice binding, so the placeholder list is built to
	// match len(ids). Values still travel as parameters, never in the SQL.
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, userID)

	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags WHERE id IN (`+placeholders+`) AND user_id = ?`,
		args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting tags: %w", err)
	}

	return count, nil
}
