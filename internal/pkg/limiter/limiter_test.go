package limiter

import (
	"context"
	"testing"

	"github.com/go-redis/redis_rate/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLimiterBurst(t *testing.T) {
	l := NewLocalLimiter()
	ctx := context.Background()
	limit := redis_rate.PerMinute(3)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow(ctx, "user:1", limit))
	}
	assert.ErrorIs(t, l.Allow(ctx, "user:1", limit), ErrRateLimited)

	// other keys have their own bucket
	assert.NoError(t, l.Allow(ctx, "user:2", limit))
}

func TestLocalLimiterZeroLimit(t *testing.T) {
	l := NewLocalLimiter()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Allow(context.Background(), "k", redis_rate.Limit{}))
	}
}
