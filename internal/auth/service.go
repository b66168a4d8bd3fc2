package auth

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/security"
)

var (
	// One error for unknown email and wrong password, so responses cannot be
	// used to probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Keep these interfaces small so tests can fake them easily.

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int) (user.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, s Session) error
	GetByTokenHash(ctx context.Context, hash string) (Session, error)
	Revoke(ctx context.Context, id string) error
}

var ErrSessionNotFound = errors.New("session not found")

// SessionCache is a best-effort token lookup shortcut; a miss always falls
// through to the session store.
type SessionCache interface {
	Get(ctx context.Context, tokenHash string) (userID int, ok bool)
	Set(ctx context.Context, tokenHash string, userID int, ttl time.Duration)
	Delete(ctx context.Context, tokenHash string)
}

type Service struct {
	users    UserStore
	sessions SessionStore
	cache    SessionCache
	tokens   *TokenSource
}

func NewService(users UserStore, sessions SessionStore, cache SessionCache, tokens *TokenSource) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		cache:    cache,
		tokens:   tokens,
	}
}

// Login checks credentials and issues a bearer token bound to the user.
func (s *Service) Login(ctx context.Context, email, password string) (user.User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, "", ErrInvalidCredentials
		}

		return user.User{}, "", err
	}

	err = security.CheckPassword(u.PasswordHash, password)

	if err != nil {
		return user.User{}, "", ErrInvalidCredentials
	}

	raw, session, err := s.tokens.Issue(u.ID)

	if err != nil {
		return user.User{}, "", err
	}

	err = s.sessions.Create(ctx, session)

	if err != nil {
		return user.User{}, "", err
	}

	if s.cache != nil {
		s.cache.Set(ctx, session.TokenHash, u.ID, s.tokens.TTL())
	}

	return u, raw, nil
}

// Resolve maps a raw bearer token back to the user it was issued to.
func (s *Service) Resolve(ctx context.Context, raw string) (user.User, error) {
	if raw == "" {
		return user.User{}, ErrUnauthenticated
	}

	hash := s.tokens.HashToken(raw)

	if s.cache != nil {
		if userID, ok := s.cache.Get(ctx, hash); ok {
			return s.lookupUser(ctx, userID)
		}
	}

	session, err := s.sessions.GetByTokenHash(ctx, hash)

	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return user.User{}, ErrUnauthenticated
		}

		return user.User{}, err
	}

	now := time.Now().UTC()

	if !session.Active(now) {
		return user.User{}, ErrUnauthenticated
	}

	if s.cache != nil {
		s.cache.Set(ctx, hash, session.UserID, time.Until(session.ExpiresAt))
	}

	return s.lookupUser(ctx, session.UserID)
}

// Logout revokes the session behind the token. Idempotent: an unknown or
// already-revoked token is not an error.
func (s *Service) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}

	hash := s.tokens.HashToken(raw)

	if s.cache != nil {
		s.cache.Delete(ctx, hash)
	}

	session, err := s.sessions.GetByTokenHash(ctx, hash)

	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}

		return err
	}

	return s.sessions.Revoke(ctx, session.ID)
}

func (s *Service) lookupUser(ctx context.Context, id int) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)

	if err != nil {
		// the owner of a live session may have been deleted
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUnauthenticated
		}

		return user.User{}, err
	}

	return u, nil
}
