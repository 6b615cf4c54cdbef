package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSlotMismatch is returned when a token belongs to another room or name.
	ErrSlotMismatch = errors.New("token issued for a different room slot")
	// ErrEmptySecret is returned when sessions are configured without a key.
	ErrEmptySecret = errors.New("session secret is empty")
)

// Sessions issues and verifies reconnect tokens for (room, name) slots.
type Sessions struct {
	jwtConfig *JWTConfig
	now       func() time.Time
}

// NewSessions creates a session service.
func NewSessions(jwtConfig *JWTConfig) (*Sessions, error) {
	if jwtConfig == nil || len(jwtConfig.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &Sessions{jwtConfig: jwtConfig, now: time.Now}, nil
}

// RandomSecret returns a fresh 32 byte key for deployments that did not
// configure one. Tokens signed with it do not survive a restart.
func RandomSecret() ([]byte, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	return secret, nil
}

// Issue returns a signed token for name in roomID.
func (s *Sessions) Issue(roomID, name string) (string, error) {
	token, err := GenerateToken(s.jwtConfig, roomID, name, s.now())
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Verify checks that token is valid and was issued for name in roomID.
func (s *Sessions) Verify(token, roomID, name string) error {
	claims, err := ValidateToken(s.jwtConfig, token, s.now())
	if err != nil {
		return err
	}
	if claims.RoomID != roomID || claims.Name != name {
		return ErrSlotMismatch
	}
	return nil
}
