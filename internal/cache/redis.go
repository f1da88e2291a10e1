package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/NotSilaev/MrStone/internal/errors"
)

// maxUpdateRetries bounds the optimistic transaction loop in RedisCache.Update.
const maxUpdateRetries = 10

// RedisConfig holds connection settings for RedisCache.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	Prefix       string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisCache is a Cache shared by every instance connected to the same Redis database.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a Redis-backed cache. Connections are opened lazily, so an
// unreachable server surfaces as errors from the cache operations and from Ping.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	return NewRedisCacheFromClient(client, cfg.Prefix), nil
}

// NewRedisCacheFromClient wraps an existing client. Keys are stored as prefix+key.
func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisCache) key(key string) string {
	return r.prefix + key
}

// Get returns the value stored under key.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, apperrors.Wrap(err, "failed to get cache key")
	}
	return value, true, nil
}

// Set stores value under key for ttl.
func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return apperrors.Wrap(err, "failed to set cache key")
	}
	return nil
}

// TTL returns the remaining lifetime of key with millisecond precision.
func (r *RedisCache) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	ttl, err := r.client.PTTL(ctx, r.key(key)).Result()
	if err != nil {
		return 0, false, apperrors.Wrap(err, "failed to get cache key ttl")
	}
	// -2: key absent, -1: key without expiration.
	if ttl <= 0 {
		return 0, false, nil
	}
	return ttl, true, nil
}

// Delete removes key.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return apperrors.Wrap(err, "failed to delete cache key")
	}
	return nil
}

// Update applies fn to key inside a WATCH/MULTI transaction, retrying when another
// client modified the key in between. Gives up with ErrUpdateConflict after
// maxUpdateRetries attempts.
func (r *RedisCache) Update(ctx context.Context, key string, fn UpdateFunc) error {
	k := r.key(key)

	txf := func(tx *redis.Tx) error {
		var current Item
		found := true

		value, err := tx.Get(ctx, k).Result()
		switch {
		case errors.Is(err, redis.Nil):
			found = false
		case err != nil:
			return err
		default:
			ttl, err := tx.PTTL(ctx, k).Result()
			if err != nil {
				return err
			}
			if ttl < 0 {
				ttl = 0
			}
			current = Item{Value: value, TTL: ttl}
		}

		next, err := fn(current, found)
		if err != nil {
			return err
		}

		ttl := next.TTL
		if ttl < 0 {
			ttl = 0
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next.Value, ttl)
			return nil
		})
		return err
	}

	for range maxUpdateRetries {
		err := r.client.Watch(ctx, txf, k)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return apperrors.Wrap(err, "failed to update cache key")
		}
	}

	return ErrUpdateConflict
}

// Ping checks connectivity with Redis.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
