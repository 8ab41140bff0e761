package app

import (
	"context"
	"testing"

	"whiteboard/internal/datastore"
	"whiteboard/internal/datastore/memstore"
	"whiteboard/internal/interfaces"
	"whiteboard/internal/pkg/limiter"
	"whiteboard/internal/pkg/locker"
	"whiteboard/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryContainerFallsBackToLocal(t *testing.T) {
	for _, key := range []string{"REDIS_DB", "REDIS_CACHE", "REDIS_CACHE_READONLY", "REDIS_LIMITER", "REDIS_MUTEX",
		"CLUSTER_REDIS_DB", "CLUSTER_REDIS_CACHE", "CLUSTER_REDIS_CACHE_READONLY", "CLUSTER_REDIS_LIMITER", "CLUSTER_REDIS_MUTEX"} {
		t.Setenv(key, "")
	}

	container := NewContainer(map[string]string{"JWT_SECRET": "secret", "STORE": STORE_MEMORY})

	store, err := do.Invoke[datastore.Store](container)
	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, store)

	l, err := do.Invoke[interfaces.Locker](container)
	require.NoError(t, err)
	assert.IsType(t, &locker.Local{}, l)

	rl, err := do.Invoke[interfaces.Limiter](container)
	require.NoError(t, err)
	assert.IsType(t, &limiter.LocalLimiter{}, rl)

	_, err = do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	assert.Error(t, err)

	config, err := store.GetConfigByKey(context.Background(), services.CONFIG_CHECK_IN_INK_REWARD)
	require.NoError(t, err)
	assert.Equal(t, "10", config.Value)

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](container)
	require.NoError(t, err)
	_, err = serviceLeaderboard.RebuildStreakLeaderboard(context.Background())
	assert.ErrorIs(t, err, services.ErrLeaderboardUnavailable)

	vs := do.MustInvokeNamed[map[string]string](container, "envs")
	assert.Equal(t, "production", vs["API_MODE"])
	assert.Equal(t, "*", vs["API_ORIGINS"])
}

func TestUnknownStore(t *testing.T) {
	container := NewContainer(map[string]string{"JWT_SECRET": "secret", "STORE": "sqlite"})
	_, err := do.Invoke[datastore.Store](container)
	assert.Error(t, err)
}
