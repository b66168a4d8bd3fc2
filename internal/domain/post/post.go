package post

import (
	"errors"
	"time"
)

const (
	// Visible only to the owner.
	StatusDraft = "draft"
	// Visible to any authenticated caller.
	StatusPublished = "published"
	// Visible to anyone, including anonymous callers.
	StatusOpen = "open"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusOpen:
		return true
	}
	return false
}

type Author struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Post struct {
	ID          int        `json:"id"`
	UserID      int        `json:"user_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Slug        string     `json:"slug"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Owner record, loaded on reads. Nil when the owner was deleted.
	User *Author `json:"user,omitempty"`
}

var (
	ErrNotFound  = errors.New("blog post not found")
	ErrSlugTaken = errors.New("slug already taken")
)

type CreatePostRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
	Status  string `json:"status" binding:"omitempty,oneof=draft published open"`
	Slug    string `json:"slug" binding:"omitempty,max=255"`
}

type UpdatePostRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=255"`
	Content *string `json:"content" binding:"omitempty"`
	Status  *string `json:"status" binding:"omitempty,oneof=draft published open"`
	Slug    *string `json:"slug" binding:"omitempty,max=255"`
}

func (r UpdatePostRequest) Empty() bool {
	return r.Title == nil && r.Content == nil && r.Status == nil && r.Slug == nil
}

// with pointers if optional, it will be nil
type ListPostsFilter struct {
	Status *string
	UserID *int

	// Restrict to rows the caller may see. CallerID nil means anonymous.
	CallerID *int
	// Restrict to the caller's own posts (my_posts=true).
	OwnOnly bool

	Limit  int
	Offset int
}
