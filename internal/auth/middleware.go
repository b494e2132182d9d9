package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/noteful/internal/model"
)

var errNoToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type for this package's context keys.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. With a plain string key like
// "user", ANY package that knows the string can read or shadow the value.
// Only this package can create a key of type contextKey, so only this
// package can read or write the caller stored in the request context.
type contextKey string

const userKey contextKey = "user"

// RequireAuth is the bearer-protocol gate for protected routes.
//
// It reads the Authorization header ("Bearer <token>"), verifies the token,
// and stores the embedded user in the request context. A missing, malformed,
// expired, or tampered token ends the request with 401 before any handler
// runs.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler wrapping the original:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... do stuff before the handler ...
//	        next.ServeHTTP(w, r)
//	    })
//	}
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
//
// Every request re-enters unauthenticated and is judged on its own token;
// no session state survives between requests.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := callerFromRequest(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"status":401,"message":"Unauthorized"}` + "\n"))
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated caller from the request
// context. Returns (nil, false) if the request never passed RequireAuth.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// callerFromRequest extracts and verifies the bearer token.
func callerFromRequest(r *http.Request, tokens *TokenService) (*model.User, error) {
	header := r.Header.Get("Authorization")
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		return nil, errNoToken
	}

	return tokens.Verify(tokenStr)
}
