// Package sessioncache keeps a Redis shortcut from token hash to user id so
// most authenticated requests skip the sessions table. Entries live at most
// as long as the session itself and are evicted on logout.
package sessioncache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

type Cache struct {
	redisdb *redis.Client
	log     *slog.Logger
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config, log *slog.Logger) *Cache {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Cache{redisdb: redisdb, log: log}
}

// Ping checks redis connectivity (readiness probe).
func (c *Cache) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.redisdb.Close()
}

// Get reports a cached user id for the token hash. Any redis failure is a
// miss; the caller falls back to the database.
func (c *Cache) Get(ctx context.Context, tokenHash string) (int, bool) {
	val, err := c.redisdb.Get(ctx, keyPrefix+tokenHash).Result()

	if err != nil {
		if err != redis.Nil {
			c.log.Warn("session cache read failed", "err", err)
		}
		return 0, false
	}

	userID, err := strconv.Atoi(val)

	if err != nil {
		return 0, false
	}

	return userID, true
}

func (c *Cache) Set(ctx context.Context, tokenHash string, userID int, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	err := c.redisdb.Set(ctx, keyPrefix+tokenHash, strconv.Itoa(userID), ttl).Err()

	if err != nil {
		c.log.Warn("session cache write failed", "err", err)
	}
}

func (c *Cache) Delete(ctx context.Context, tokenHash string) {
	err := c.redisdb.Del(ctx, keyPrefix+tokenHash).Err()

	if err != nil {
		c.log.Warn("session cache delete failed", "err", err)
	}
}
