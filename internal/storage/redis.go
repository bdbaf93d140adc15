package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the store in a redis hash, one hash per scope.
type Redis struct {
	rdb *redis.Client
	key string
}

// NewRedis connects to the redis server at url and pings it.
func NewRedis(ctx context.Context, url, scope string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}
	return NewRedisFromClient(rdb, scope), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb *redis.Client, scope string) *Redis {
	if scope == "" {
		scope = DefaultScope
	}
	return &Redis{rdb: rdb, key: "storage:" + scope}
}

// Get reads key from the scope hash.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.HGet(ctx, r.key, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, true, nil
}

// Set writes key into the scope hash.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.HSet(ctx, r.key, key, value).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes key from the scope hash.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.rdb.HDel(ctx, r.key, key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close closes the redis client.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
