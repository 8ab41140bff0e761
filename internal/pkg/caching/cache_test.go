package caching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type board struct {
	ID   string
	Name string
}

func TestUseCacheLocalOnly(t *testing.T) {
	c, err := NewCacheRedis(nil, false)
	require.NoError(t, err)

	ctx := context.Background()
	calls := 0
	load := func() ([]board, error) {
		calls++
		return []board{{ID: "general", Name: "General"}}, nil
	}

	first, err := UseCache(ctx, c, "boards", time.Minute, load)
	require.NoError(t, err)
	second, err := UseCache(ctx, c, "boards", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Delete(ctx, "boards"))
	require.NoError(t, c.Delete(ctx, "boards"))
	_, err = UseCache(ctx, c, "boards", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestUseCacheDoesNotStoreErrors(t *testing.T) {
	c, err := NewCacheRedis(nil, false)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = UseCache(context.Background(), c, "k", time.Minute, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := UseCache(context.Background(), c, "k", time.Minute, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
