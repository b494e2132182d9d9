// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Password holds the bcrypt digest, never the plaintext. The `json:"-"` tag
// is the serialization boundary the rest of the app relies on: whether a User
// is written to an HTTP response or embedded in a JWT payload, the digest is
// stripped by encoding/json itself, so no handler can leak it by accident.
//
// Username is unique across all accounts. Fullname is optional; registration
// trims it rather than rejecting surrounding whitespace (unlike the
// credential fields, which are rejected untrimmed).
type User struct {
	ID        string    `json:"id"        db:"id"`
	Username  string    `json:"username"  db:"username"`
	Password  string    `json:"-"         db:"password"` // bcrypt digest
	Fullname  string    `json:"fullname"  db:"fullname"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
