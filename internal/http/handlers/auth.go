package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (user.User, string, error)
	Logout(ctx context.Context, raw string) error
}

type AuthHandler struct {
	svc Authenticator
}

func NewAuthHandler(svc Authenticator) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for the credential check
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, token, err := h.svc.Login(cctx, req.Email, req.Password)

	if err != nil {
		// one response shape for unknown email and wrong password
		if errors.Is(err, auth.ErrInvalidCredentials) {
			RespondUnauthenticated(ctx, "Invalid credentials")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	RespondDataMessage(ctx, http.StatusOK, "Login successful", gin.H{
		"user":  u,
		"token": token,
	})
}

// Logout always reports success; revoking an unknown or already-revoked
// token is a no-op.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw := middlewares.BearerToken(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.svc.Logout(cctx, raw)

	if err != nil {
		RespondInternal(ctx, "Could not log out")
		return
	}

	RespondMessage(ctx, http.StatusOK, "Logout successful")
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthenticated(ctx, "Unauthenticated.")
		return
	}

	RespondData(ctx, http.StatusOK, u)
}
