package auth

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingExpiredStore struct {
	calls   atomic.Int64
	removed int64
}

func (c *countingExpiredStore) DeleteExpired(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	return c.removed, nil
}

func TestSweeperRunsImmediatelyAndStops(t *testing.T) {
	store := &countingExpiredStore{removed: 3}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	sw := NewSweeper(SweeperConfig{Interval: time.Hour}, store, log)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- sw.Run(ctx)
	}()

	// the first sweep happens before the first tick
	deadline := time.After(2 * time.Second)

	for store.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ran an initial sweep")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}

func TestSweeperTicks(t *testing.T) {
	store := &countingExpiredStore{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	sw := NewSweeper(SweeperConfig{Interval: 20 * time.Millisecond}, store, log)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_ = sw.Run(ctx)

	// initial sweep plus at least one tick
	if n := store.calls.Load(); n < 2 {
		t.Fatalf("expected repeated sweeps, got %d", n)
	}
}

func TestSweeperDefaultsInterval(t *testing.T) {
	sw := NewSweeper(SweeperConfig{}, &countingExpiredStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if sw.cfg.Interval != time.Hour {
		t.Fatalf("default interval = %v, want 1h", sw.cfg.Interval)
	}
}
