package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/noteful/internal/apperror"
	"github.com/sakif/noteful/internal/model"
	"github.com/sakif/noteful/internal/repository"
)

var _ repository.FolderRepository = (*DB)(nil)

// CreateFolder inserts a new folder. The UNIQUE(user_id, name) index makes
// duplicate names a per-user conflict, never a cross-user one.
func (db *DB) CreateFolder(ctx context.Context, folder *model.Folder) error {
	now := time.Now()
	folder.ID = xid.New().String()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO folders (id, name, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		folder.ID,
		folder.Name,
		folder.UserID,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Folder name already exists")
		}
		return fmt.Errorf("sqlite: inserting folder %q: %w", folder.Name, err)
	}

	return nil
}

// FindFolders lists the user's folders sorted by name.
func (db *DB) FindFolders(ctx context.Context, userID string) ([]model.Folder, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, user_id, created_at, updated_at
		 FROM folders
		 WHERE user_id = ?
		 ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing folders: %w", err)
	}
	defer rows.Close()

	folders := []model.Folder{}
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.UserID, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning folder row: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating folders: %w", err)
	}

	return folders, nil
}

// FindFolder retrieves one folder scoped by owner. A folder belonging to
// another user scans as no rows, so callers can't tell "foreign" from
// "missing".
func (db *DB) FindFolder(ctx context.Context, id, userID string) (*model.Folder, error) {
	var f model.Folder
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, user_id, created_at, updated_at
		 FROM folders WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&f.ID, &f.Name, &f.UserID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("folder")
		}
		return nil, fmt.Errorf("sqlite: getting folder %s: %w", id, err)
	}

	return &f, nil
}

// UpdateFolder renames a folder. The WHERE clause carries the owner, so a
// foreign folder reports NotFound via RowsAffected.
func (db *DB) UpdateFolder(ctx context.Context, folder *model.Folder) error {
	folder.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE folders SET name = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		folder.Name,
		folder.UpdatedAt,
		folder.ID,
		folder.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Folder name already exists")
		}
		return fmt.Errorf("sqlite: updating folder %s: %w", folder.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("folder")
	}

	return nil
}

// DeleteFolder removes a folder and unfiles the owner's notes that were in
// it. Both statements run in one transaction so a failure never leaves notes
// pointing at a deleted folder.
func (db *DB) DeleteFolder(ctx context.Context, id, userID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE notes SET folder_id = NULL
		 WHERE folder_id = ? AND user_id = ?`,
		id, userID,
	); err != nil {
		return fmt.Errorf("sqlite: unfiling notes for folder %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM folders WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting folder %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("folder")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing folder delete: %w", err)
	}

	return nil
}

// CountFolder counts folders matching both id and owner. Existence and
// ownership are one condition — the reference validator's primitive.
func (db *DB) CountFolder(ctx context.Context, id, userID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM folders WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting folder %s: %w", id, err)
	}

	return count, nil
}
