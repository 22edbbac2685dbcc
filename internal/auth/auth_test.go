package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/OpenCourseHub/CourseForge/internal/models"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong horse") {
		t.Error("wrong password accepted")
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

func TestNewAuth_EmptySecret(t *testing.T) {
	if _, err := NewAuth("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func testUser(staff bool) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: "amara",
		IsStaff:  staff,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	a, err := NewAuth("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new auth: %v", err)
	}

	user := testUser(true)
	token, err := a.IssueToken(user, "sess-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := a.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("subject: expected %s, got %s", user.ID, claims.Subject)
	}
	if claims.SessionID != "sess-1" {
		t.Errorf("session id: expected sess-1, got %s", claims.SessionID)
	}
	if !claims.IsStaff {
		t.Error("staff flag lost")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	a1, _ := NewAuth("secret-one", time.Hour)
	a2, _ := NewAuth("secret-two", time.Hour)

	token, err := a1.IssueToken(testUser(false), "sess-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := a2.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_Tampered(t *testing.T) {
	a, _ := NewAuth("test-secret", time.Hour)
	token, err := a.IssueToken(testUser(false), "sess-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	tampered := parts[0] + ".eyJpc19zdGFmZiI6dHJ1ZX0." + parts[2]
	if _, err := a.ParseToken(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}

	if _, err := a.ParseToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	a, _ := NewAuth("test-secret", -time.Minute)
	token, err := a.IssueToken(testUser(false), "sess-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := a.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
