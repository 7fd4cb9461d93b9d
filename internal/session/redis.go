package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps flows in Redis so any instance can serve the callback.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed flow store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "onboarding:flow:",
	}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Create stores a new flow with a TTL derived from its expiry.
func (r *RedisStore) Create(ctx context.Context, f Flow) error {
	return r.set(ctx, f)
}

// Get returns the flow, or nil when unknown or expired.
func (r *RedisStore) Get(ctx context.Context, id string) (*Flow, error) {
	val, err := r.client.Get(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var f Flow
	if err := json.Unmarshal([]byte(val), &f); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal flow: %w", err)
	}
	return &f, nil
}

// Update replaces a stored flow, keeping its expiry-derived TTL.
func (r *RedisStore) Update(ctx context.Context, f Flow) error {
	return r.set(ctx, f)
}

// Delete removes a flow.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *RedisStore) set(ctx context.Context, f Flow) error {
	if f.ID == "" {
		return fmt.Errorf("session: missing flow id")
	}

	ttl := time.Until(f.ExpiresAt)
	if ttl <= 0 {
		// Already expired; remove instead of extending.
		return r.client.Del(ctx, r.key(f.ID)).Err()
	}

	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("session: failed to marshal flow: %w", err)
	}
	return r.client.Set(ctx, r.key(f.ID), data, ttl).Err()
}

// Compile-time interface check
var _ Store = (*RedisStore)(nil)
