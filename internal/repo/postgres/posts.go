package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostsRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewPostsRepo(pool *pgxpool.Pool, metrics *observability.Prom) *PostsRepo {
	return &PostsRepo{pool: pool, metrics: metrics}
}

func (r *PostsRepo) observe(op string, fn func() error) error {
	if r.metrics == nil {
		return fn()
	}

	return r.metrics.ObserveDB(op, fn)
}

// author columns come back NULL when the owner was deleted
const postSelect = `
	SELECT p.id, p.user_id, p.title, p.content, p.slug, p.status,
	       p.published_at, p.created_at, p.updated_at,
	       u.id, u.name, u.email
	FROM blog_posts p
	LEFT JOIN users u ON u.id = p.user_id
`

func scanPost(row pgx.Row, p *post.Post) error {
	var authorID *int
	var authorName, authorEmail *string

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Title,
		&p.Content,
		&p.Slug,
		&p.Status,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
		&authorID,
		&authorName,
		&authorEmail,
	)

	if err != nil {
		return err
	}

	if authorID != nil {
		p.User = &post.Author{
			ID:    *authorID,
			Name:  *authorName,
			Email: *authorEmail,
		}
	}

	return nil
}

func (r *PostsRepo) Create(ctx context.Context, p post.Post) (post.Post, error) {
	err := r.observe("posts.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO blog_posts (user_id, title, content, slug, status, published_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, created_at, updated_at`,
			p.UserID, p.Title, p.Content, p.Slug, p.Status, p.PublishedAt,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	})

	if err != nil {
		if isUniqueViolation(err) {
			return post.Post{}, post.ErrSlugTaken
		}

		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) GetByID(ctx context.Context, id int) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.get", func() error {
		return scanPost(r.pool.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id), &p)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}

		return post.Post{}, err
	}

	return p, nil
}

// List applies the visibility rules baked into the filter and returns one
// page plus the total match count.
func (r *PostsRepo) List(ctx context.Context, f post.ListPostsFilter) ([]post.Post, int, error) {
	baseQuery := `
	SELECT p.id, p.user_id, p.title, p.content, p.slug, p.status,
	       p.published_at, p.created_at, p.updated_at,
	       u.id, u.name, u.email,
	       COUNT(*) OVER() AS total
	FROM blog_posts p
	LEFT JOIN users u ON u.id = p.user_id
	`

	var conds []string
	var args []interface{}

	argsPosition := 1

	// visibility boundary first
	if f.CallerID != nil {
		conds = append(conds, fmt.Sprintf("(p.user_id = $%d OR p.status IN ('published', 'open'))", argsPosition))
		args = append(args, *f.CallerID)
		argsPosition++
	} else {
		conds = append(conds, "p.status = 'open'")
	}

	if f.Status != nil {
		conds = append(conds, fmt.Sprintf("p.status = $%d", argsPosition))
		args = append(args, *f.Status)
		argsPosition++
	}

	if f.UserID != nil {
		conds = append(conds, fmt.Sprintf("p.user_id = $%d", argsPosition))
		args = append(args, *f.UserID)
		argsPosition++
	}

	if f.OwnOnly && f.CallerID != nil {
		conds = append(conds, fmt.Sprintf("p.user_id = $%d", argsPosition))
		args = append(args, *f.CallerID)
		argsPosition++
	}

	query := baseQuery + " WHERE " + strings.Join(conds, " AND ")

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, f.Limit, f.Offset)

	output := make([]post.Post, 0, f.Limit)
	total := 0

	err := r.observe("posts.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var p post.Post
			var authorID *int
			var authorName, authorEmail *string
			var t int

			err = rows.Scan(
				&p.ID, &p.UserID, &p.Title, &p.Content, &p.Slug, &p.Status,
				&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
				&authorID, &authorName, &authorEmail,
				&t,
			)

			if err != nil {
				return err
			}

			if authorID != nil {
				p.User = &post.Author{ID: *authorID, Name: *authorName, Email: *authorEmail}
			}

			total = t
			output = append(output, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

// Update applies only the provided fields. published_at is stamped on the
// first transition into published and never touched again.
func (r *PostsRepo) Update(ctx context.Context, id int, req post.UpdatePostRequest) (post.Post, error) {
	var sets []string
	var args []interface{}

	argsPosition := 1

	if req.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argsPosition))
		args = append(args, *req.Title)
		argsPosition++
	}

	if req.Content != nil {
		sets = append(sets, fmt.Sprintf("content = $%d", argsPosition))
		args = append(args, *req.Content)
		argsPosition++
	}

	if req.Slug != nil {
		sets = append(sets, fmt.Sprintf("slug = $%d", argsPosition))
		args = append(args, *req.Slug)
		argsPosition++
	}

	if req.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argsPosition))
		sets = append(sets, fmt.Sprintf(
			"published_at = CASE WHEN $%d = 'published' AND published_at IS NULL THEN NOW() ELSE published_at END",
			argsPosition,
		))
		args = append(args, *req.Status)
		argsPosition++
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		`UPDATE blog_posts SET %s WHERE id = $%d RETURNING id`,
		strings.Join(sets, ", "), argsPosition,
	)
	args = append(args, id)

	err := r.observe("posts.update", func() error {
		var updatedID int
		return r.pool.QueryRow(ctx, query, args...).Scan(&updatedID)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}

		if isUniqueViolation(err) {
			return post.Post{}, post.ErrSlugTaken
		}

		return post.Post{}, err
	}

	// re-read with the author join
	return r.GetByID(ctx, id)
}

func (r *PostsRepo) Delete(ctx context.Context, id int) error {
	var tag pgconn.CommandTag

	err := r.observe("posts.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return post.ErrNotFound
	}

	return nil
}
