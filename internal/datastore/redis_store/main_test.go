package redis_store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardMetaEncoding(t *testing.T) {
	meta := &LeaderboardMeta{BuiltAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), Entries: 42}

	b, err := EncodeLeaderboardMeta(meta)
	require.NoError(t, err)

	decoded, err := DecodeLeaderboardMeta(b)
	require.NoError(t, err)
	assert.Equal(t, 42, decoded.Entries)
	assert.True(t, meta.BuiltAt.Equal(decoded.BuiltAt))
}

func TestLeaderboardKeys(t *testing.T) {
	assert.Equal(t, "leaderboard:streak", dbKeyLeaderboard("Streak"))
	assert.Equal(t, "leaderboard:streak:building", dbKeyLeaderboardBuilding("streak"))
	assert.Equal(t, "leaderboard:streak:meta", dbKeyLeaderboardMeta("streak"))
}

func TestDecodeLeaderboardMetaRejectsGarbage(t *testing.T) {
	_, err := DecodeLeaderboardMeta([]byte{0xc1})
	assert.Error(t, err)
}
