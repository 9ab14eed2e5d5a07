// Package cache is a JSON-over-Redis cache. Every call degrades to a miss
// when Redis is not connected, so callers never need a separate code path.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shashiranjanraj/tiffin/config"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"github.com/shashiranjanraj/tiffin/pkg/metrics"
)

// RDB is the shared client; nil means caching is disabled.
var RDB *redis.Client

// Connect dials Redis and pings it. On failure RDB stays nil.
func Connect(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	RDB = client
	return nil
}

func Close() error {
	if RDB == nil {
		return nil
	}
	err := RDB.Close()
	RDB = nil
	return err
}

// Get unmarshals the value at key into dest and reports a hit.
func Get(ctx context.Context, key string, dest any) bool {
	if RDB == nil {
		return false
	}

	val, err := RDB.Get(ctx, key).Bytes()
	if err == nil {
		err = json.Unmarshal(val, dest)
	}
	metrics.RecordCacheLookup(err == nil)
	return err == nil
}

func Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if RDB == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	return RDB.Set(ctx, key, data, ttl).Err()
}

func Del(ctx context.Context, keys ...string) error {
	if RDB == nil || len(keys) == 0 {
		return nil
	}
	return RDB.Del(ctx, keys...).Err()
}

// Remember serves dest from key when cached, otherwise fills it with load
// and stores the result for ttl. Write-back failures are only logged.
func Remember(ctx context.Context, key string, ttl time.Duration, dest any, load func() error) error {
	if Get(ctx, key, dest) {
		return nil
	}
	if err := load(); err != nil {
		return err
	}
	if err := Set(ctx, key, dest, ttl); err != nil {
		logger.WithCtx(ctx).Warn("cache write failed", "key", key, "error", err)
	}
	return nil
}
