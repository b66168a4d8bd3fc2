// Package authz centralizes every permission decision so handlers never
// hand-roll ownership or role conditionals.
package authz

import "github.com/geocoder89/bloghub/internal/domain/post"

// Caller is the resolved identity of an authenticated request.
type Caller struct {
	ID         int
	Management bool
}

// CanListUsers: the user listing is management-only.
func CanListUsers(c Caller) bool {
	return c.Management
}

// CanAccessUser covers get/update/delete on a user record: self or management.
func CanAccessUser(c Caller, targetID int) bool {
	return c.Management || c.ID == targetID
}

// CanModifyPost covers update/delete on a post: owner only. The management
// flag grants no bypass on posts.
func CanModifyPost(c Caller, p post.Post) bool {
	return c.ID == p.UserID
}

// PostViewDecision is the outcome of a single-post visibility check.
type PostViewDecision int

const (
	ViewAllowed PostViewDecision = iota
	// Report the post as missing; drafts must not leak their existence.
	ViewHidden
	// Caller must authenticate to read it.
	ViewNeedsAuth
)

// PostView decides whether caller (nil = anonymous) may read p.
func PostView(caller *Caller, p post.Post) PostViewDecision {
	switch p.Status {
	case post.StatusOpen:
		return ViewAllowed
	case post.StatusPublished:
		if caller == nil {
			return ViewNeedsAuth
		}
		return ViewAllowed
	default: // draft
		if caller != nil && caller.ID == p.UserID {
			return ViewAllowed
		}
		return ViewHidden
	}
}
