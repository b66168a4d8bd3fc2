package db

import (
	"context"
	"errors"

	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureManagementUser creates the configured management account on first
// boot. The management flag is never settable through the API.
func EnsureManagementUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.ManagementEmail == "" || cfg.ManagementPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.ManagementEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.ManagementPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (name, email, password_hash, management)
		 VALUES ($1, $2, $3, TRUE)`,
		cfg.ManagementName, cfg.ManagementEmail, hash,
	)

	return err
}
