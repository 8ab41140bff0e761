package interfaces

import (
	"context"

	"github.com/go-redis/redis_rate/v10"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}

// Locker serializes work on a key across API instances.
type Locker interface {
	Obtain(ctx context.Context, key string) (unlock func(), err error)
}
