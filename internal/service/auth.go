// Package service contains the business logic layer: registration and login
// rules, reference validation, and the CRUD orchestration for notes,
// folders, and tags. Handlers stay HTTP-only; repositories stay SQL-only.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/noteful/internal/apperror"
	"github.com/sakif/noteful/internal/auth"
	"github.com/sakif/noteful/internal/model"
	"github.com/sakif/noteful/internal/repository"
)

// Password length bounds. The maximum matches bcrypt's 72-byte input limit —
// accepting longer passwords would store bytes bcrypt never looks at.
const (
	MinUsernameLength = 1
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// AuthService owns the credential flows: registration (validate, hash,
// persist) and the local login protocol (lookup, verify, mint token).
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterInput is the registration payload. Pointer fields distinguish
// "absent from the request body" from "present but empty" — the validation
// pipeline needs both.
//
// NonString lists fields that appeared in the body with a non-string JSON
// value, in body-declaration order. The handler records them instead of
// rejecting at decode time, so the pipeline can keep its fixed check order:
// a missing required field is reported before any type mismatch.
type RegisterInput struct {
	Username  *string
	Password  *string
	Fullname  *string
	NonString []string
}

// Register validates the input, hashes the password, and persists the user.
//
// The checks run in a fixed order and the first failure wins:
//  1. username and password must be present
//  2. every field present must be a string
//  3. username and password must not start or end with whitespace
//     (credentials are never trimmed silently; fullname is)
//  4. username must be at least 1 character
//  5. password must be 8..72 characters
//
// Only after every check passes does the plaintext reach bcrypt. A duplicate
// username surfaces from the repository as a Conflict, distinct from the
// validation errors above.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	for _, field := range []struct {
		name  string
		value *string
	}{
		{"username", in.Username},
		{"password", in.Password},
	} {
		if field.value == nil {
			return nil, apperror.ValidationFailed(field.name,
				fmt.Sprintf("Missing '%s' in request body", field.name))
		}
	}

	if len(in.NonString) > 0 {
		name := in.NonString[0]
		return nil, apperror.ValidationFailed(name,
			fmt.Sprintf("The field %s must be type String", name))
	}

	username := *in.Username
	password := *in.Password

	for _, field := range []struct {
		name  string
		value string
	}{
		{"username", username},
		{"password", password},
	} {
		if strings.TrimSpace(field.value) != field.value {
			return nil, apperror.ValidationFailed(field.name,
				fmt.Sprintf("The field: %s cannot start or end with a whitespace", field.name))
		}
	}

	if len(username) < MinUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("Must be at least %d characters long", MinUsernameLength))
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Must be at least %d characters long", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Must be at most %d characters long", MaxPasswordLength))
	}

	fullname := ""
	if in.Fullname != nil {
		fullname = strings.TrimSpace(*in.Fullname)
	}

	digest, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username: username,
		Password: digest,
		Fullname: fullname,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// Conflict (duplicate username) passes through untouched.
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Authenticate runs the local protocol: exact username lookup, then bcrypt
// verification.
//
// An unknown username fails with a LoginError located at "username"; a wrong
// password with one located at "password". The two stay distinct here for
// diagnostics — the HTTP layer collapses them before the caller sees either.
// Any other failure (store unavailable, malformed digest) propagates as-is
// rather than masquerading as bad credentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.LoginFailed("username", "Incorrect username")
		}
		return nil, fmt.Errorf("service/auth: looking up user %q: %w", username, err)
	}

	ok, err := s.passwords.Verify(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: verifying password for %q: %w", username, err)
	}
	if !ok {
		return nil, apperror.LoginFailed("password", "Incorrect password")
	}

	return user, nil
}

// Login authenticates and, on success, mints a fresh bearer token. The login
// endpoint returns only the token, never the user record.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", fmt.Errorf("service/auth: issuing token for %q: %w", username, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return token, nil
}
