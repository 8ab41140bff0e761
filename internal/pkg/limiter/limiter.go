package limiter

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("rate limited")

type Limiter struct {
	limiter *redis_rate.Limiter
}

func NewLimiter(client redis.UniversalClient) (*Limiter, error) {
	return &Limiter{redis_rate.NewLimiter(client)}, nil
}

func (l *Limiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) error {
	res, err := l.limiter.Allow(ctx, key, limit)
	if err != nil {
		return err
	}

	if res.Allowed == 0 {
		return ErrRateLimited
	}
	return nil
}

type bucket struct {
	limiter *rate.Limiter
	expires time.Time
}

// LocalLimiter keeps token buckets in process memory. Limits only hold per instance.
type LocalLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{buckets: map[string]*bucket{}}
}

func (l *LocalLimiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) error {
	if limit.IsZero() {
		return nil
	}

	if !l.get(key, limit).Allow() {
		return ErrRateLimited
	}
	return nil
}

func (l *LocalLimiter) get(key string, limit redis_rate.Limit) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for k, b := range l.buckets {
		if now.After(b.expires) {
			delete(l.buckets, k)
		}
	}

	if b, ok := l.buckets[key]; ok {
		b.expires = now.Add(limit.Period)
		return b.limiter
	}

	every := rate.Every(limit.Period / time.Duration(max(limit.Rate, 1)))
	b := &bucket{
		limiter: rate.NewLimiter(every, max(limit.Burst, 1)),
		expires: now.Add(limit.Period),
	}
	l.buckets[key] = b
	return b.limiter
}
