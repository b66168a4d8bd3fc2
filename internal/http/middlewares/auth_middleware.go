package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/authz"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type SessionResolver interface {
	Resolve(ctx context.Context, raw string) (user.User, error)
}

type AuthMiddleware struct {
	sessions SessionResolver
}

func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// BearerToken pulls the raw token out of the Authorization header, "" when
// absent or malformed.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")

	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
}

func (m *AuthMiddleware) abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "Unauthenticated.",
	})
}

// RequireAuth rejects the request unless a valid bearer token resolves to a
// live user.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := BearerToken(c)

		if raw == "" {
			m.abortUnauthenticated(c)
			return
		}

		u, err := m.sessions.Resolve(c.Request.Context(), raw)

		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				m.abortUnauthenticated(c)
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Could not resolve identity",
			})
			return
		}

		SetIdentity(c, u, raw)
		c.Next()
	}
}

// OptionalAuth resolves identity when a token is supplied but lets anonymous
// requests through. A token that is present and invalid is still a 401: a
// caller who claims an identity must be able to back it up.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := BearerToken(c)

		if raw == "" {
			c.Next()
			return
		}

		u, err := m.sessions.Resolve(c.Request.Context(), raw)

		if err != nil {
			m.abortUnauthenticated(c)
			return
		}

		SetIdentity(c, u, raw)
		c.Next()
	}
}

// SetIdentity stashes the resolved identity on the request context. Exported
// so handler tests can inject a caller without running the middleware.
func SetIdentity(c *gin.Context, u user.User, raw string) {
	c.Set(ctxCallerKey, authz.Caller{ID: u.ID, Management: u.Management})
	c.Set(ctxUserKey, u)
	c.Set(ctxTokenKey, raw)
}

// Helpers so handlers don't need to know the magic keys.

func CallerFromContext(c *gin.Context) (authz.Caller, bool) {
	v, ok := c.Get(ctxCallerKey)
	if !ok {
		return authz.Caller{}, false
	}

	caller, ok := v.(authz.Caller)
	return caller, ok
}

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}

	u, ok := v.(user.User)
	return u, ok
}
