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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user, generating its id and timestamps.
// A duplicate username trips the UNIQUE index and comes back as
// apperror.ErrConflict with the message the API contract promises.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password, fullname, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Password,
		user.Fullname,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("The username already exists")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// FindUserByID retrieves a user by internal id.
func (db *DB) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(db.conn.QueryRowContext(ctx,
		`SELECT id, username, password, fullname, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	))
}

// FindUserByUsername retrieves a user by exact username match. This is the
// lookup the local login protocol starts with.
func (db *DB) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(db.conn.QueryRowContext(ctx,
		`SELECT id, username, password, fullname, created_at, updated_at
		 FROM users WHERE username = ?`,
		username,
	))
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Password,
		&u.Fullname,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("sqlite: scanning user: %w", err)
	}
	return &u, nil
}
