package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestSessions(t *testing.T) *Sessions {
	t.Helper()

	s, err := NewSessions(&JWTConfig{
		Secret: []byte("test-secret-change-me"),
		Issuer: "test",
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("new sessions: %v", err)
	}
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestSessions(t)

	token, err := s.Issue("R1", "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := s.Verify(token, "R1", "alice"); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestSessionRejectsOtherSlot(t *testing.T) {
	s := newTestSessions(t)
	token, _ := s.Issue("R1", "alice")

	if err := s.Verify(token, "R1", "bob"); !errors.Is(err, ErrSlotMismatch) {
		t.Fatalf("expected ErrSlotMismatch for other name, got %v", err)
	}
	if err := s.Verify(token, "R2", "alice"); !errors.Is(err, ErrSlotMismatch) {
		t.Fatalf("expected ErrSlotMismatch for other room, got %v", err)
	}
}

func TestSessionRejectsExpiredToken(t *testing.T) {
	s := newTestSessions(t)
	issued := time.Now()
	s.now = func() time.Time { return issued }
	token, _ := s.Issue("R1", "alice")

	s.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if err := s.Verify(token, "R1", "alice"); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestSessionRejectsForeignSignature(t *testing.T) {
	s := newTestSessions(t)
	other, err := NewSessions(&JWTConfig{Secret: []byte("another-secret"), Issuer: "test", TTL: time.Hour})
	if err != nil {
		t.Fatalf("new sessions: %v", err)
	}
	token, _ := other.Issue("R1", "alice")

	if err := s.Verify(token, "R1", "alice"); !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		t.Fatalf("expected signature error, got %v", err)
	}
	if err := s.Verify("garbage", "R1", "alice"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestSessionRequiresSecret(t *testing.T) {
	if _, err := NewSessions(&JWTConfig{}); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}

	secret, err := RandomSecret()
	if err != nil || len(secret) != 32 {
		t.Fatalf("random secret: %v (%d bytes)", err, len(secret))
	}
}
