package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionsRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewSessionsRepo(pool *pgxpool.Pool, metrics *observability.Prom) *SessionsRepo {
	return &SessionsRepo{pool: pool, metrics: metrics}
}

func (r *SessionsRepo) observe(op string, fn func() error) error {
	if r.metrics == nil {
		return fn()
	}

	return r.metrics.ObserveDB(op, fn)
}

func (r *SessionsRepo) Create(ctx context.Context, s auth.Session) error {
	return r.observe("sessions.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO sessions (id, user_id, token_hash, expires_at, revoked_at, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			s.ID, s.UserID, s.TokenHash, s.ExpiresAt, s.RevokedAt, s.CreatedAt,
		)
		return err
	})
}

func (r *SessionsRepo) GetByTokenHash(ctx context.Context, hash string) (auth.Session, error) {
	var s auth.Session

	err := r.observe("sessions.get", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
			 FROM sessions
			 WHERE token_hash = $1`,
			hash,
		).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.RevokedAt, &s.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Session{}, auth.ErrSessionNotFound
		}

		return auth.Session{}, err
	}

	return s, nil
}

func (r *SessionsRepo) Revoke(ctx context.Context, id string) error {
	return r.observe("sessions.revoke", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE sessions
			 SET revoked_at = NOW()
			 WHERE id = $1 AND revoked_at IS NULL`,
			id,
		)
		return err
	})
}

// DeleteExpired clears sessions past their expiry; the sweeper calls this
// periodically.
func (r *SessionsRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var removed int64

	err := r.observe("sessions.delete_expired", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)

		if err != nil {
			return err
		}

		removed = tag.RowsAffected()
		return nil
	})

	return removed, err
}
