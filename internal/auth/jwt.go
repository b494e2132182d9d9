package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/noteful/internal/apperror"
	"github.com/sakif/noteful/internal/model"
)

// defaultExpiry is the token lifetime used when the configuration doesn't
// supply one. A week matches the original deployment's JWT_EXPIRY.
const defaultExpiry = 7 * 24 * time.Hour

const issuer = "noteful"

// TokenService issues and verifies the signed bearer tokens that carry a
// caller's identity between requests.
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server stores no session data.
// Everything the middleware needs (the user record, expiry) rides inside the
// signed token, and the HMAC signature ensures nobody can tamper with it
// without the secret key.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"user":{...},"sub":"alice","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The payload embeds the user record (minus the password digest, which
// model.User's json tag strips at marshal time), the subject is the
// username, and the only invalidation mechanism is expiry. There is no
// revocation list — a compromised token stays valid until it expires. Known
// limitation of the stateless design.
//
// Signing is HS256 with a shared symmetric secret. The same secret verifies,
// so verification needs no storage lookup.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. A non-positive expiry falls back to the default (7 days).
// The secret should be at least 32 bytes of random data in production, e.g.
// JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string, expiry time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if expiry <= 0 {
		expiry = defaultExpiry
	}
	return &TokenService{secret: []byte(secret), expiry: expiry}, nil
}

// claims is the JWT payload: the embedded user plus the registered claims
// (subject, issuer, issued-at, expiry).
type claims struct {
	User model.User `json:"user"`
	jwt.RegisteredClaims
}

// Issue creates and signs a bearer token for the given user.
//
// The user record rides inside the payload so Verify can reconstruct the
// caller's identity without a database lookup. Subject is the username.
func (s *TokenService) Issue(user *model.User) (string, error) {
	return s.IssueWithDuration(user, s.expiry)
}

// IssueWithDuration issues a token with a custom lifetime. Used by tests to
// mint already-expired tokens.
func (s *TokenService) IssueWithDuration(user *model.User, d time.Duration) (string, error) {
	if user == nil {
		return "", errors.New("auth: user must not be nil")
	}

	now := time.Now()
	c := claims{
		User: *user,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a token string and returns the user embedded
// in its payload.
//
// Signature, expiry, issuer, and algorithm are all checked — restricting the
// algorithm to HS256 via jwt.WithValidMethods closes the classic "alg:none"
// confusion attack. Any failure comes back as apperror.ErrUnauthorized; a
// token that fails verification confers no partial trust.
func (s *TokenService) Verify(tokenStr string) (*model.User, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Unauthorized("token expired")
		}
		return nil, apperror.Unauthorized("invalid token")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, apperror.Unauthorized("invalid token claims")
	}
	if c.User.ID == "" || c.User.Username == "" {
		return nil, apperror.Unauthorized("token has no user")
	}

	user := c.User
	return &user, nil
}
