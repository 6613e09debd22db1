package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed session store. Records are stored as JSON
// values under a "session:" key prefix with no expiry (garbage collection
// of stale sessions is out of scope).
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
	}
}

func (r *RedisStore) key(sessionKey string) string {
	return r.prefix + sessionKey
}

// Get returns the record for key, or nil if absent.
func (r *RedisStore) Get(ctx context.Context, sessionKey string) (*Record, error) {
	val, err := r.client.Get(ctx, r.key(sessionKey)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return &rec, nil
}

// Commit upserts the mapping for sessionKey.
func (r *RedisStore) Commit(ctx context.Context, sessionKey, workspacePath string) error {
	if sessionKey == "" {
		return fmt.Errorf("session: missing session key")
	}

	now := time.Now()
	rec := Record{
		SessionKey:    sessionKey,
		WorkspacePath: workspacePath,
		CreatedAt:     now,
		LastUsedAt:    now,
	}
	if existing, err := r.Get(ctx, sessionKey); err != nil {
		return err
	} else if existing != nil {
		rec.CreatedAt = existing.CreatedAt
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}
	return r.client.Set(ctx, r.key(sessionKey), data, 0).Err()
}

// Close closes the underlying Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
