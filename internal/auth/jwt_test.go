package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sakif/noteful/internal/apperror"
	"github.com/sakif/noteful/internal/model"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func testUser() *model.User {
	return &model.User{
		ID:       "cv37rs3pp9olc6atsptg",
		Username: "alice",
		Password: "$2a$10$should.never.appear.in.a.token",
		Fullname: "Alice Example",
	}
}

// =========================================================================
// CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short", time.Hour); err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_DefaultExpiry(t *testing.T) {
	ts, err := NewTokenService("this-is-16-chars", 0)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	if ts.expiry != defaultExpiry {
		t.Errorf("expiry = %v, want the default %v", ts.expiry, defaultExpiry)
	}
}

// =========================================================================
// Issue / Verify TESTS
// =========================================================================

func TestIssueVerify_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	user, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if user.ID != "cv37rs3pp9olc6atsptg" {
		t.Errorf("user.ID = %q, want the issued user's id", user.ID)
	}
	if user.Username != "alice" {
		t.Errorf("user.Username = %q, want %q", user.Username, "alice")
	}
}

func TestIssue_SubjectIsUsername(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	parsed, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	// Verify reconstructs identity from the embedded user whose username is
	// also the token subject.
	if parsed.Username != "alice" {
		t.Errorf("subject/username = %q, want %q", parsed.Username, "alice")
	}
}

func TestIssue_DigestNeverEntersTheToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// The payload is base64 of JSON; the digest string would survive both
	// encodings if it were ever marshalled.
	if strings.Contains(token, "should.never.appear") {
		t.Fatal("token contains the raw password digest")
	}

	user, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if user.Password != "" {
		t.Errorf("verified user carries a password digest: %q", user.Password)
	}
}

func TestIssue_NilUser(t *testing.T) {
	ts := newTestTokenService(t)

	if _, err := ts.Issue(nil); err == nil {
		t.Fatal("Issue() should reject a nil user")
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.IssueWithDuration(testUser(), -time.Minute)
	if err != nil {
		t.Fatalf("IssueWithDuration() error = %v", err)
	}

	_, err = ts.Verify(token)
	if err == nil {
		t.Fatal("Verify() should reject an expired token")
	}
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("expired token error should be ErrUnauthorized, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	ts := newTestTokenService(t)
	other, err := NewTokenService("a-completely-different-secret!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, err := other.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = ts.Verify(token)
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("token signed with a different secret should be ErrUnauthorized, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	_, err := ts.Verify("this.is.garbage")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("garbage token should be ErrUnauthorized, got %v", err)
	}
}
