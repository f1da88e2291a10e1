package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedisCache(RedisConfig{
		Addr:   mr.Addr(),
		Prefix: "test:",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c, mr
}

func TestNewRedisCache_RequiresAddr(t *testing.T) {
	_, err := NewRedisCache(RedisConfig{})
	assert.Error(t, err)
}

func TestNewRedisCache_UnreachableServer(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()

	c, err := NewRedisCache(RedisConfig{
		Addr:        addr,
		DialTimeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})

	assert.Error(t, c.Ping(context.Background()))
	_, _, err = c.Get(context.Background(), "key")
	assert.Error(t, err)
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	_, found, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "key", "value", time.Minute))
	assert.True(t, mr.Exists("test:key"))

	value, found, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value", value)

	require.NoError(t, c.Delete(ctx, "key"))
	_, found, err = c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	_, found, err := c.TTL(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "forever", "value", 0))
	_, found, err = c.TTL(ctx, "forever")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "key", "value", 60*time.Second))
	mr.FastForward(30 * time.Second)

	ttl, found, err := c.TTL(ctx, "key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 30*time.Second, ttl)

	mr.FastForward(30 * time.Second)
	_, found, err = c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_Update(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	err := c.Update(ctx, "counter", func(current Item, found bool) (Item, error) {
		assert.False(t, found)
		return Item{Value: "1", TTL: 60 * time.Second}, nil
	})
	require.NoError(t, err)

	mr.FastForward(20 * time.Second)

	err = c.Update(ctx, "counter", func(current Item, found bool) (Item, error) {
		assert.True(t, found)
		assert.Equal(t, "1", current.Value)
		assert.Equal(t, 40*time.Second, current.TTL)
		return Item{Value: "2", TTL: current.TTL}, nil
	})
	require.NoError(t, err)

	value, err := mr.Get("test:counter")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
	assert.Equal(t, 40*time.Second, mr.TTL("test:counter"))
}

func TestRedisCache_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	const workers = 5
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = c.Update(ctx, "n", func(current Item, found bool) (Item, error) {
				return Item{Value: current.Value + "x", TTL: time.Minute}, nil
			})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrUpdateConflict)
		}
	}

	value, err := mr.Get("test:n")
	require.NoError(t, err)
	assert.Len(t, value, succeeded)
}

func TestRedisCache_FromClient(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c := NewRedisCacheFromClient(client, "")
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Set(ctx, "requests:10.0.0.1", "x", time.Second))
	assert.True(t, mr.Exists("requests:10.0.0.1"))
}
