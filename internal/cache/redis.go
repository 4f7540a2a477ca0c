// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache stores price lookups in Redis with a TTL.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pdiddy/price-scout/pkg/types"
)

// DefaultTTL applies when the configuration leaves the TTL unset.
const DefaultTTL = 6 * time.Hour

// Redis implements pricing.Cache on a Redis server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects lazily to cfg.Addr. It returns nil when no address is
// configured; callers treat that as "no cache".
func New(cfg types.CacheConfig) *Redis {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewWithClient(rdb, cfg.TTL)
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

// TTL is the expiry applied to every entry.
func (r *Redis) TTL() time.Duration { return r.ttl }

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get returns the value for key. A missing key is a miss, not an error.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value under key with the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
