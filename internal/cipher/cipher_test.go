package cipher

import (
	"errors"
	"testing"
)

func TestSealedRoundTrip(t *testing.T) {
	alice, err := NewSealed("correct horse", "abc123")
	if err != nil {
		t.Fatalf("NewSealed: %v", err)
	}
	bob, err := NewSealed("correct horse", "ABC123")
	if err != nil {
		t.Fatalf("NewSealed: %v", err)
	}

	if alice.Fingerprint() != bob.Fingerprint() {
		t.Fatalf("room ids differing only in case must share a key")
	}
	if len(alice.Fingerprint()) != 8 {
		t.Fatalf("expected 8 hex chars, got %q", alice.Fingerprint())
	}

	encoded, err := alice.Encode("meet at noon")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encoded == "meet at noon" {
		t.Fatal("content was not encrypted")
	}
	again, _ := alice.Encode("meet at noon")
	if again == encoded {
		t.Fatal("nonces must differ between messages")
	}

	plain, err := bob.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if plain != "meet at noon" {
		t.Fatalf("unexpected plaintext %q", plain)
	}
}

func TestSealedRejectsForeignKeys(t *testing.T) {
	alice, _ := NewSealed("secret", "ROOM1")
	otherRoom, _ := NewSealed("secret", "ROOM2")
	otherPass, _ := NewSealed("guess", "ROOM1")

	if alice.Fingerprint() == otherRoom.Fingerprint() {
		t.Fatal("room id must salt the key")
	}

	encoded, _ := alice.Encode("hello")
	for name, codec := range map[string]*Sealed{"other room": otherRoom, "other passphrase": otherPass} {
		if _, err := codec.Decode(encoded); !errors.Is(err, ErrDecrypt) {
			t.Errorf("%s: expected ErrDecrypt, got %v", name, err)
		}
	}
}

func TestSealedMalformed(t *testing.T) {
	s, _ := NewSealed("secret", "ROOM")

	tests := []string{"not base64!", "c2hvcnQ="}
	for _, in := range tests {
		if _, err := s.Decode(in); !errors.Is(err, ErrMalformed) {
			t.Errorf("Decode(%q): expected ErrMalformed, got %v", in, err)
		}
	}

	if _, err := NewSealed("", "ROOM"); !errors.Is(err, ErrEmptyPassphrase) {
		t.Fatalf("expected ErrEmptyPassphrase, got %v", err)
	}
}

func TestPlain(t *testing.T) {
	var c Codec = Plain{}
	out, _ := c.Encode("x")
	back, _ := c.Decode(out)
	if out != "x" || back != "x" || c.Encrypted() {
		t.Fatalf("plain codec altered content")
	}
}
