package caching

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

type ReadOnlyCache interface {
	Get(ctx context.Context, key string, target any) error
}

type Cache interface {
	ReadOnlyCache
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// UseCache reads key through the cache, filling it from callback on a miss.
// Callback errors are returned and nothing is cached.
func UseCache[T any](ctx context.Context, cash Cache, key string, ttl time.Duration, callback func() (T, error)) (T, error) {
	return UseCacheWithRO(ctx, cash, cash, key, ttl, callback)
}

func UseCacheWithRO[T any](ctx context.Context, roCash ReadOnlyCache, cash Cache, key string, ttl time.Duration, callback func() (T, error)) (T, error) {
	var v T
	err := roCash.Get(ctx, key, &v)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		return v, err
	}

	v, err = callback()
	if err != nil {
		return v, err
	}

	// fire and forget
	//nolint:errcheck
	cash.Set(ctx, key, v, ttl)
	return v, nil
}

type CacheRedis struct {
	instance *cache.Cache
}

func (c *CacheRedis) Get(ctx context.Context, key string, target any) error {
	return c.instance.Get(ctx, key, target)
}

func (c *CacheRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.instance.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   ttl,
	})
}

func (c *CacheRedis) Delete(ctx context.Context, key string) error {
	err := c.instance.Delete(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil
	}
	return err
}

// NewCacheRedis accepts a nil client, in which case only the local TinyLFU tier is used.
func NewCacheRedis(client redis.UniversalClient, withLocalCache bool) (*CacheRedis, error) {
	opts := &cache.Options{}
	if client != nil {
		opts.Redis = client
	}
	if withLocalCache || client == nil {
		opts.LocalCache = cache.NewTinyLFU(10000, time.Minute)
	}
	return &CacheRedis{cache.New(opts)}, nil
}

type RedisClient interface {
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// DeleteKeys removes every key matching pattern, on each master of a cluster.
func DeleteKeys(ctx context.Context, client redis.UniversalClient, pattern string) (int, error) {
	clusterClient, ok := client.(*redis.ClusterClient)
	if !ok {
		return deleteKeys(ctx, client, pattern)
	}

	var total atomic.Int64
	err := clusterClient.ForEachMaster(ctx, func(ctx context.Context, c *redis.Client) error {
		n, err := deleteKeys(ctx, c, pattern)
		total.Add(int64(n))
		return err
	})
	return int(total.Load()), err
}

func deleteKeys(ctx context.Context, client RedisClient, pattern string) (int, error) {
	keys, err := client.Keys(ctx, pattern).Result()
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	return len(keys), client.Del(ctx, keys...).Err()
}
