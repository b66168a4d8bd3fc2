package auth

import (
	"testing"
	"time"
)

func TestTokenSourceIssue(t *testing.T) {
	ts := NewTokenSource("test-secret", time.Hour)

	raw, session, err := ts.Issue(42)

	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if raw == "" {
		t.Fatal("raw token must not be empty")
	}

	if session.UserID != 42 {
		t.Fatalf("session.UserID = %d, want 42", session.UserID)
	}

	if session.TokenHash == raw {
		t.Fatal("session must store a hash, not the raw token")
	}

	if session.TokenHash != ts.HashToken(raw) {
		t.Fatal("stored hash must match HashToken(raw)")
	}

	if !session.ExpiresAt.After(session.CreatedAt) {
		t.Fatal("session must expire after creation")
	}
}

func TestTokenSourceIssueUnique(t *testing.T) {
	ts := NewTokenSource("test-secret", time.Hour)

	seen := make(map[string]struct{})

	for i := 0; i < 50; i++ {
		raw, _, err := ts.Issue(1)

		if err != nil {
			t.Fatalf("Issue: %v", err)
		}

		if _, dup := seen[raw]; dup {
			t.Fatal("duplicate token issued")
		}

		seen[raw] = struct{}{}
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	ts := NewTokenSource("test-secret", time.Hour)

	if ts.HashToken("abc") != ts.HashToken("abc") {
		t.Fatal("hash must be deterministic")
	}

	other := NewTokenSource("other-secret", time.Hour)

	if ts.HashToken("abc") == other.HashToken("abc") {
		t.Fatal("hash must depend on the secret")
	}
}

func TestSessionActive(t *testing.T) {
	now := time.Now().UTC()

	s := Session{ExpiresAt: now.Add(time.Hour)}

	if !s.Active(now) {
		t.Fatal("unexpired, unrevoked session must be active")
	}

	if s.Active(now.Add(2 * time.Hour)) {
		t.Fatal("expired session must not be active")
	}

	revoked := now
	s.RevokedAt = &revoked

	if s.Active(now) {
		t.Fatal("revoked session must not be active")
	}
}
