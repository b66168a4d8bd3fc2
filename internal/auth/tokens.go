package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Session is one issued bearer token. Only the HMAC hash of the raw token is
// ever persisted.
type Session struct {
	ID        string
	UserID    int
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

type TokenSource struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenSource(secret string, ttl time.Duration) *TokenSource {
	return &TokenSource{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (t *TokenSource) TTL() time.Duration {
	return t.ttl
}

// Issue mints an opaque bearer token and the session row that backs it.
func (t *TokenSource) Issue(userID int) (raw string, s Session, err error) {
	buf := make([]byte, 32)

	_, err = rand.Read(buf)

	if err != nil {
		return "", Session{}, err
	}

	raw = base64.RawURLEncoding.EncodeToString(buf)
	now := time.Now().UTC()

	s = Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: t.HashToken(raw),
		ExpiresAt: now.Add(t.ttl),
		CreatedAt: now,
	}

	return raw, s, nil
}

// Deterministic HMAC hash (server-side pepper). Store this in the DB, never
// the raw token.
func (t *TokenSource) HashToken(raw string) string {
	h := hmac.New(sha256.New, t.secret)
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}
