package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plain text")
	}

	ok, err := CheckPassword(hash, "correct horse battery staple")
	if err != nil || !ok {
		t.Errorf("expected match, got %v, %v", ok, err)
	}

	ok, err = CheckPassword(hash, "wrong")
	if err != nil || ok {
		t.Errorf("expected mismatch without error, got %v, %v", ok, err)
	}
}

func TestPassword_MalformedHash(t *testing.T) {
	if _, err := CheckPassword("not-a-bcrypt-hash", "x"); err == nil {
		t.Error("expected error for malformed hash")
	}
}

func TestPassword_TooLongCountsBytes(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("é", 40)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("expected ErrPasswordTooLong for 80 bytes, got %v", err)
	}
	if _, err := HashPassword(strings.Repeat("é", 36)); err != nil {
		t.Errorf("expected 72 bytes to hash, got %v", err)
	}
}
