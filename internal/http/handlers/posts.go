package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/bloghub/internal/authz"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// fixed page size across all post listings
const postsPageSize = 10

type PostStore interface {
	Create(ctx context.Context, p post.Post) (post.Post, error)
	GetByID(ctx context.Context, id int) (post.Post, error)
	List(ctx context.Context, f post.ListPostsFilter) ([]post.Post, int, error)
	Update(ctx context.Context, id int, req post.UpdatePostRequest) (post.Post, error)
	Delete(ctx context.Context, id int) error
}

type PostsHandler struct {
	repo PostStore
}

func NewPostsHandler(repo PostStore) *PostsHandler {
	return &PostsHandler{repo: repo}
}

type pageMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func listPayload(items []post.Post, page, total int) gin.H {
	totalPages := (total + postsPageSize - 1) / postsPageSize

	return gin.H{
		"items": items,
		"meta": pageMeta{
			Page:       page,
			PerPage:    postsPageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

func (h *PostsHandler) List(ctx *gin.Context) {
	filter := post.ListPostsFilter{Limit: postsPageSize}

	caller, authed := middlewares.CallerFromContext(ctx)

	if authed {
		callerID := caller.ID
		filter.CallerID = &callerID
	}

	page := 1

	if raw := ctx.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil || n < 1 {
			RespondBadRequest(ctx, "Invalid page number")
			return
		}

		page = n
	}

	filter.Offset = (page - 1) * postsPageSize

	if raw := ctx.Query("status"); raw != "" {
		if !post.ValidStatus(raw) {
			RespondValidationErrors(ctx, map[string][]string{
				"status": {"The selected status is invalid."},
			})
			return
		}

		// anonymous callers may only ever see open posts, whatever they ask for
		if !authed && raw != post.StatusOpen {
			RespondData(ctx, http.StatusOK, listPayload([]post.Post{}, page, 0))
			return
		}

		status := raw
		filter.Status = &status
	}

	if raw := ctx.Query("user_id"); raw != "" {
		ownerID, err := strconv.Atoi(raw)

		if err != nil || ownerID <= 0 {
			RespondBadRequest(ctx, "Invalid user_id filter")
			return
		}

		filter.UserID = &ownerID
	}

	if raw := ctx.Query("my_posts"); authed && (raw == "true" || raw == "1") {
		filter.OwnOnly = true
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	posts, total, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list blog posts")
		return
	}

	RespondData(ctx, http.StatusOK, listPayload(posts, page, total))
}

func (h *PostsHandler) Create(ctx *gin.Context) {
	caller, ok := middlewares.CallerFromContext(ctx)

	if !ok {
		RespondUnauthenticated(ctx, "Unauthenticated.")
		return
	}

	var req post.CreatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	status := req.Status

	if status == "" {
		status = post.StatusDraft
	}

	slug := req.Slug

	if slug == "" {
		slug = post.Slugify(req.Title)
	}

	p := post.Post{
		UserID:  caller.ID,
		Title:   req.Title,
		Content: req.Content,
		Slug:    slug,
		Status:  status,
	}

	if status == post.StatusPublished {
		now := time.Now().UTC()
		p.PublishedAt = &now
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, p)

	if err != nil {
		if errors.Is(err, post.ErrSlugTaken) {
			RespondValidationErrors(ctx, map[string][]string{
				"slug": {"The slug has already been taken."},
			})
			return
		}

		RespondInternal(ctx, "Could not create blog post")
		return
	}

	// the creator is the author; no need to re-read for the join
	if u, ok := middlewares.UserFromContext(ctx); ok {
		created.User = &post.Author{ID: u.ID, Name: u.Name, Email: u.Email}
	}

	RespondDataMessage(ctx, http.StatusCreated, "Blog post created successfully", created)
}

func (h *PostsHandler) Get(ctx *gin.Context) {
	id, ok := postID(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Blog post not found")
			return
		}

		RespondInternal(ctx, "Could not fetch blog post")
		return
	}

	var caller *authz.Caller

	if c, authed := middlewares.CallerFromContext(ctx); authed {
		caller = &c
	}

	switch authz.PostView(caller, p) {
	case authz.ViewHidden:
		// a draft must look exactly like a missing post
		RespondNotFound(ctx, "Blog post not found")
	case authz.ViewNeedsAuth:
		RespondUnauthenticated(ctx, "Unauthenticated.")
	default:
		RespondData(ctx, http.StatusOK, p)
	}
}

func (h *PostsHandler) Update(ctx *gin.Context) {
	id, ok := postID(ctx)

	if !ok {
		return
	}

	caller, ok := middlewares.CallerFromContext(ctx)

	if !ok {
		RespondUnauthenticated(ctx, "Unauthenticated.")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Blog post not found")
			return
		}

		RespondInternal(ctx, "Could not fetch blog post")
		return
	}

	if !authz.CanModifyPost(caller, existing) {
		RespondForbidden(ctx, "Unauthorized to update this blog post")
		return
	}

	var req post.UpdatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Empty() {
		RespondBadRequest(ctx, "No fields to update")
		return
	}

	updated, err := h.repo.Update(cctx, id, req)

	if err != nil {
		switch {
		case errors.Is(err, post.ErrNotFound):
			RespondNotFound(ctx, "Blog post not found")
		case errors.Is(err, post.ErrSlugTaken):
			RespondValidationErrors(ctx, map[string][]string{
				"slug": {"The slug has already been taken."},
			})
		default:
			RespondInternal(ctx, "Could not update blog post")
		}
		return
	}

	RespondDataMessage(ctx, http.StatusOK, "Blog post updated successfully", updated)
}

func (h *PostsHandler) Delete(ctx *gin.Context) {
	id, ok := postID(ctx)

	if !ok {
		return
	}

	caller, ok := middlewares.CallerFromContext(ctx)

	if !ok {
		RespondUnauthenticated(ctx, "Unauthenticated.")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Blog post not found")
			return
		}

		RespondInternal(ctx, "Could not fetch blog post")
		return
	}

	if !authz.CanModifyPost(caller, existing) {
		RespondForbidden(ctx, "Unauthorized to delete this blog post")
		return
	}

	err = h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Blog post not found")
			return
		}

		RespondInternal(ctx, "Could not delete blog post")
		return
	}

	RespondMessage(ctx, http.StatusOK, "Blog post deleted successfully")
}

func postID(ctx *gin.Context) (int, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid blog post id")
		return 0, false
	}

	return id, true
}
