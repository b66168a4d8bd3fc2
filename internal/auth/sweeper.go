package auth

import (
	"context"
	"log/slog"
	"time"
)

type ExpiredSessionStore interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type SweeperConfig struct {
	Interval time.Duration
}

// Sweeper periodically removes sessions past their expiry so the table does
// not grow without bound.
type Sweeper struct {
	cfg      SweeperConfig
	sessions ExpiredSessionStore
	log      *slog.Logger
}

func NewSweeper(cfg SweeperConfig, sessions ExpiredSessionStore, log *slog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}

	return &Sweeper{
		cfg:      cfg,
		sessions: sessions,
		log:      log,
	}
}

func (s *Sweeper) Run(ctx context.Context) error {
	// first pass right away to clear anything that expired while we were down
	s.sweep(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("session sweeper received shutdown signal")
			return nil

		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	removed, err := s.sessions.DeleteExpired(sctx)

	if err != nil {
		if ctx.Err() != nil {
			return
		}

		s.log.Warn("expired session sweep failed", "err", err)
		return
	}

	if removed > 0 {
		s.log.Info("expired sessions removed", "count", removed)
	}
}
