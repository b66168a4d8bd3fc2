package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/security"
)

type fakeUserStore struct {
	byEmail map[string]user.User
	byID    map[int]user.User
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	u, ok := f.byEmail[email]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int) (user.User, error) {
	u, ok := f.byID[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

type fakeSessionStore struct {
	byHash  map[string]Session
	revoked map[string]bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		byHash:  make(map[string]Session),
		revoked: make(map[string]bool),
	}
}

func (f *fakeSessionStore) Create(ctx context.Context, s Session) error {
	f.byHash[s.TokenHash] = s
	return nil
}

func (f *fakeSessionStore) GetByTokenHash(ctx context.Context, hash string) (Session, error) {
	s, ok := f.byHash[hash]

	if !ok {
		return Session{}, ErrSessionNotFound
	}

	if f.revoked[s.ID] {
		now := time.Now().UTC()
		s.RevokedAt = &now
	}

	return s, nil
}

func (f *fakeSessionStore) Revoke(ctx context.Context, id string) error {
	f.revoked[id] = true
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUserStore, *fakeSessionStore) {
	t.Helper()

	hash, err := security.HashPassword("password123")

	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	u := user.User{
		ID:           1,
		Name:         "John",
		Email:        "john@example.com",
		PasswordHash: hash,
	}

	users := &fakeUserStore{
		byEmail: map[string]user.User{u.Email: u},
		byID:    map[int]user.User{u.ID: u},
	}
	sessions := newFakeSessionStore()

	svc := NewService(users, sessions, nil, NewTokenSource("test-secret", time.Hour))

	return svc, users, sessions
}

func TestLoginSuccess(t *testing.T) {
	svc, _, sessions := newTestService(t)

	u, token, err := svc.Login(context.Background(), "john@example.com", "password123")

	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if u.ID != 1 {
		t.Fatalf("user id = %d, want 1", u.ID)
	}

	if token == "" {
		t.Fatal("token must not be empty")
	}

	if len(sessions.byHash) != 1 {
		t.Fatalf("expected one stored session, got %d", len(sessions.byHash))
	}

	// stored value must be the hash, not the raw token
	if _, ok := sessions.byHash[token]; ok {
		t.Fatal("session store must not contain the raw token")
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, unknownErr := svc.Login(context.Background(), "nobody@example.com", "password123")
	_, _, badPassErr := svc.Login(context.Background(), "john@example.com", "wrong-password")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", unknownErr)
	}

	if !errors.Is(badPassErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", badPassErr)
	}
}

func TestResolve(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, token, err := svc.Login(context.Background(), "john@example.com", "password123")

	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	u, err := svc.Resolve(context.Background(), token)

	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if u.ID != 1 {
		t.Fatalf("resolved user id = %d, want 1", u.ID)
	}
}

func TestResolveRejectsUnknownToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Resolve(context.Background(), "made-up-token")

	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}

	_, err = svc.Resolve(context.Background(), "")

	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("empty token: got %v, want ErrUnauthenticated", err)
	}
}

func TestResolveRejectsRevokedSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, token, err := svc.Login(context.Background(), "john@example.com", "password123")

	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	err = svc.Logout(context.Background(), token)

	if err != nil {
		t.Fatalf("Logout: %v", err)
	}

	_, err = svc.Resolve(context.Background(), token)

	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated after logout", err)
	}
}

func TestResolveRejectsDeletedUser(t *testing.T) {
	svc, users, _ := newTestService(t)

	_, token, err := svc.Login(context.Background(), "john@example.com", "password123")

	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	delete(users.byID, 1)

	_, err = svc.Resolve(context.Background(), token)

	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated for deleted user", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)

	// never-issued token
	if err := svc.Logout(context.Background(), "made-up-token"); err != nil {
		t.Fatalf("Logout unknown token: %v", err)
	}

	// empty token
	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("Logout empty token: %v", err)
	}

	_, token, err := svc.Login(context.Background(), "john@example.com", "password123")

	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// double logout
	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("first Logout: %v", err)
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
}
