// Package cipher implements end-to-end payload encryption for room clients.
// The server never sees keys; it relays the encoded content untouched.
package cipher

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// scrypt cost parameters for deriving a room key from a passphrase.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var (
	ErrEmptyPassphrase = errors.New("passphrase must not be empty")
	ErrMalformed       = errors.New("malformed ciphertext")
	ErrDecrypt         = errors.New("decryption failed")
)

// Codec transforms message content before it is sent and after it is received.
type Codec interface {
	Encode(plaintext string) (string, error)
	Decode(content string) (string, error)
	// Encrypted reports whether encoded content should be flagged as encrypted.
	Encrypted() bool
}

// Plain passes content through unchanged.
type Plain struct{}

func (Plain) Encode(plaintext string) (string, error) { return plaintext, nil }
func (Plain) Decode(content string) (string, error)   { return content, nil }
func (Plain) Encrypted() bool                          { return false }

// Sealed encrypts content with XChaCha20-Poly1305 under a key shared by
// everyone in the room who knows the passphrase.
type Sealed struct {
	key []byte
}

// NewSealed derives the room key from passphrase, salted by the room id so
// the same passphrase yields different keys in different rooms.
func NewSealed(passphrase, roomID string) (*Sealed, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	salt := []byte("securecomm:" + strings.ToUpper(roomID))
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &Sealed{key: key}, nil
}

// Encode returns base64(nonce || ciphertext).
func (s *Sealed) Encode(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decode reverses Encode.
func (s *Sealed) Decode(content string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return "", ErrMalformed
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrMalformed
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

func (s *Sealed) Encrypted() bool { return true }

// Fingerprint is a short key digest that participants can compare out of band.
func (s *Sealed) Fingerprint() string {
	sum := blake2b.Sum256(s.key)
	return hex.EncodeToString(sum[:4])
}

var (
	_ Codec = Plain{}
	_ Codec = (*Sealed)(nil)
)
