// Copyright (c) 2026 InternPulse. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/internpulse/internpulse/internal/platform/constants"
)

// RedisRotationStore implements [RotationStore] on Redis.
//
// # Why Redis?
//
// Rotation markers are pure tombstones: they only need to outlive the refresh
// token they spend, after which they are garbage. Redis gives us the atomic
// SETNX test-and-set the rotation race requires plus free expiry, without
// growing a relational table that would need a cleanup job.
type RedisRotationStore struct {
	client *redis.Client
}

// NewRotationStore creates a Redis-backed rotation store.
func NewRotationStore(client *redis.Client) *RedisRotationStore {
	return &RedisRotationStore{client: client}
}

// MarkRotated records the refresh token's jti as spent.
//
// SETNX succeeds for exactly one caller per key, so when two clients race to
// redeem the same refresh token, only the SETNX winner proceeds to rotation.
func (store *RedisRotationStore) MarkRotated(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	key := constants.RedisPrefixRotatedJTI + jti

	// Keep the tombstone alive at least marginally longer than the token.
	if ttl <= 0 {
		ttl = time.Minute
	}

	first, err := store.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis_rotation_store_setnx_failed: %w", err)
	}

	return first, nil
}
