package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/bloghub/internal/authz"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/geocoder89/bloghub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, name, email, passwordHash string) (user.User, error)
	GetByID(ctx context.Context, id int) (user.User, error)
	Update(ctx context.Context, id int, name, email, passwordHash *string) (user.User, error)
	Delete(ctx context.Context, id int) error
}

type UsersHandler struct {
	repo UserStore
}

func NewUsersHandler(repo UserStore) *UsersHandler {
	return &UsersHandler{repo: repo}
}

// Register is the only unauthenticated write; new accounts never carry the
// management flag.
func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.repo.Create(cctx, req.Name, req.Email, hash)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondValidationErrors(ctx, map[string][]string{
				"email": {"The email has already been taken."},
			})
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	RespondDataMessage(ctx, http.StatusCreated, "User created successfully", u)
}

func (h *UsersHandler) List(ctx *gin.Context) {
	caller, ok := middlewares.CallerFromContext(ctx)

	if !ok || !authz.CanListUsers(caller) {
		RespondForbidden(ctx, "Unauthorized to access user list")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	RespondData(ctx, http.StatusOK, users)
}

func (h *UsersHandler) Get(ctx *gin.Context) {
	id, _, ok := h.authorizeUserAccess(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	RespondData(ctx, http.StatusOK, u)
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	id, _, ok := h.authorizeUserAccess(ctx)

	if !ok {
		return
	}

	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Empty() {
		RespondBadRequest(ctx, "No fields to update")
		return
	}

	var passwordHash *string

	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)

		if err != nil {
			RespondInternal(ctx, "Could not update user")
			return
		}

		passwordHash = &hash
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.repo.Update(cctx, id, req.Name, req.Email, passwordHash)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrEmailTaken):
			RespondValidationErrors(ctx, map[string][]string{
				"email": {"The email has already been taken."},
			})
		default:
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	RespondDataMessage(ctx, http.StatusOK, "User updated successfully", u)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	id, _, ok := h.authorizeUserAccess(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	RespondMessage(ctx, http.StatusOK, "User deleted successfully")
}

// authorizeUserAccess parses the id param and enforces the self-or-management
// rule. It writes the response on failure.
func (h *UsersHandler) authorizeUserAccess(ctx *gin.Context) (int, authz.Caller, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid user id")
		return 0, authz.Caller{}, false
	}

	caller, ok := middlewares.CallerFromContext(ctx)

	if !ok {
		RespondUnauthenticated(ctx, "Unauthenticated.")
		return 0, authz.Caller{}, false
	}

	if !authz.CanAccessUser(caller, id) {
		RespondForbidden(ctx, "Unauthorized to access this user data")
		return 0, authz.Caller{}, false
	}

	return id, caller, true
}
