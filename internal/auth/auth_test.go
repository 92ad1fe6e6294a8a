package auth

import (
	"testing"
	"time"
)

func testManager() *Manager {
	return &Manager{
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
		Issuer: "devcamper-api",
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := testManager()
	token, err := m.NewToken("5d7a514b5d2c12c7449be042", "publisher")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Subject != "5d7a514b5d2c12c7449be042" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != "publisher" {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m := testManager()
	token, err := m.NewToken("abc", "user")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	other := &Manager{Secret: []byte("other-secret"), TTL: time.Hour}
	if _, err := other.Parse(token); err == nil {
		t.Fatalf("expected parse error for wrong secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := &Manager{Secret: []byte("test-secret"), TTL: -time.Minute}
	token, err := m.NewToken("abc", "user")
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}
	if _, err := m.Parse(token); err == nil {
		t.Fatalf("expected parse error for expired token")
	}
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("123456")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "123456" {
		t.Fatalf("hash must not equal plaintext")
	}
	if err := ComparePassword(hash, "123456"); err != nil {
		t.Fatalf("ComparePassword error: %v", err)
	}
	if err := ComparePassword(hash, "wrongpass"); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestResetTokenHashing(t *testing.T) {
	plain, hashed, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken error: %v", err)
	}
	if len(plain) != 40 {
		t.Fatalf("expected 40 hex chars, got %d", len(plain))
	}
	if hashed == plain {
		t.Fatalf("hashed token must differ from plain token")
	}
	if HashResetToken(plain) != hashed {
		t.Fatalf("hash of plain token does not match stored hash")
	}

	plain2, _, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken error: %v", err)
	}
	if plain2 == plain {
		t.Fatalf("tokens must be random")
	}
}
