package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheKeyPrefix is the Redis key prefix for cached session rows.
const cacheKeyPrefix = "session:"

// Cache is a read-through Redis cache in front of the sessions table.
// The database row stays canonical (login and logout mutate it in place),
// so every mutation must invalidate the cached copy. A cache failure is
// never fatal -- callers fall back to the database.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a session cache with the given TTL.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get returns the cached session for a token, or nil on a miss.
func (c *Cache) Get(ctx context.Context, token string) *Session {
	data, err := c.rdb.Get(ctx, cacheKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		slog.Warn("session cache read failed", slog.Any("error", err))
		return nil
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		slog.Warn("session cache entry corrupt", slog.Any("error", err))
		return nil
	}
	return &s
}

// Put stores a session under its token with the configured TTL.
func (c *Cache) Put(ctx context.Context, s *Session) {
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKeyPrefix+s.Hash, data, c.ttl).Err(); err != nil {
		slog.Warn("session cache write failed", slog.Any("error", err))
	}
}

// Invalidate drops the cached entry for a token. Called after every session
// row mutation so a stale anonymous copy is never served post-login.
func (c *Cache) Invalidate(ctx context.Context, token string) error {
	if err := c.rdb.Del(ctx, cacheKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("invalidating cached session: %w", err)
	}
	return nil
}
