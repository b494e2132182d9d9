// Package auth provides the credential primitives: bcrypt password hashing
// and JWT issuance/verification, plus the HTTP middleware that guards
// protected routes.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. POST /api/users registers an account — the password is bcrypt-hashed
//     before it ever reaches the database
//  2. POST /api/login verifies the credentials and mints a signed JWT
//  3. On every protected request, middleware reads the Authorization header,
//     verifies the token, and places the caller in the request context
//
// WHY BCRYPT?
// bcrypt is a password hashing function designed to be slow, and that
// slowness is the security feature: it makes offline brute force expensive.
// Fast hashes (MD5, SHA-256) can be cracked with GPU rigs in minutes.
// bcrypt also generates a random salt per call and embeds it in the output,
// so two users with the same password get different digests and no separate
// salt column is needed.
//
// Digest format (the full output of bcrypt.GenerateFromPassword):
//
//	$2a$10$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (10 rounds → 2^10 iterations)
//	 version
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor.
//
// COST TUNING RULE OF THUMB:
// Set the cost so a single hash takes somewhere in the tens to low hundreds
// of milliseconds on your production hardware. Too low and digests are cheap
// to crack; too high and login becomes sluggish while the server burns CPU
// on bcrypt during traffic spikes. 10 is a reasonable default today.
const defaultCost = 10

// maxPasswordBytes is bcrypt's input limit. The library silently truncates
// longer input, so we reject it explicitly instead.
const maxPasswordBytes = 72

// PasswordService hashes and verifies passwords with bcrypt.
//
// It's a struct rather than free functions so the cost can be injected:
// tests use the bcrypt minimum (4) to avoid paying the full work factor on
// every hashing operation.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom bcrypt
// cost. Intended for tests; production code should use NewPasswordService.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash transforms a plaintext password into a self-contained bcrypt digest.
//
// bcrypt generates a random salt per call and embeds it (along with the
// cost) in the output, so the same plaintext yields a different digest every
// time and Verify needs no separate salt storage.
//
// Returns an error only for inputs longer than 72 bytes or an internal
// bcrypt failure — never for the content of the password itself.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", maxPasswordBytes)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(digest), nil
}

// Verify reports whether plaintext matches the stored bcrypt digest.
//
// A mismatch is a normal outcome, not an error: Verify returns (false, nil).
// The error return is reserved for malformed digests (wrong prefix,
// truncated storage) — cases where no meaningful comparison happened.
//
// bcrypt.CompareHashAndPassword compares in constant time, so response
// timing doesn't reveal how much of the password was right.
func (p *PasswordService) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("auth: comparing password digest: %w", err)
	}
	return true, nil
}
