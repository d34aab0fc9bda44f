package crypto

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "secret1" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash: %q", hash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret1")); err != nil {
		t.Fatalf("hash does not match its password: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret2")) == nil {
		t.Fatalf("hash matches a different password")
	}

	again, _ := h.Hash("secret1")
	if again == hash {
		t.Fatalf("expected a fresh salt per hash")
	}
}

func TestBcryptHasher_Cost(t *testing.T) {
	hash, err := NewBcryptHasher(0).Hash("secret1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Cost returned error: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", cost, bcrypt.DefaultCost)
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	if _, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("x", 73)); err == nil {
		t.Fatalf("expected error for input over 72 bytes")
	}
}
