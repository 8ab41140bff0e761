package services

import (
	"testing"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCensorUsername(t *testing.T) {
	assert.Equal(t, "ab", censorUsername("ab"))
	assert.Equal(t, "ch*****d", censorUsername("chalkboard"))
	assert.Equal(t, "黑板*****擦", censorUsername("黑板板擦"))
}

func TestStreakLeaderboardFromStore(t *testing.T) {
	f := newFixture(t)
	steady := &models.UserFromAuth{ID: uuid.New(), Username: "steady"}
	casual := &models.UserFromAuth{ID: uuid.New(), Username: "casual"}
	for _, user := range []*models.UserFromAuth{steady, casual} {
		_, err := f.user.FindOrCreateProfile(f.ctx, user)
		require.NoError(t, err)
	}

	_, err := f.activity.CheckIn(f.ctx, steady.ID)
	require.NoError(t, err)
	f.clock.Advance(oneDay)
	for _, user := range []*models.UserFromAuth{steady, casual} {
		_, err := f.activity.CheckIn(f.ctx, user.ID)
		require.NoError(t, err)
	}

	board, err := f.leaderboard.GetStreakLeaderboard(f.ctx, casual)
	require.NoError(t, err)
	require.Len(t, board.Leaderboard, 2)
	assert.Equal(t, steady.ID, board.Leaderboard[0].UserID)
	assert.EqualValues(t, 2, board.Leaderboard[0].Score)
	assert.Equal(t, "st*****y", board.Leaderboard[0].Username)
	assert.Equal(t, 2, board.Me.Rank)
	assert.EqualValues(t, 1, board.Me.Score)

	_, err = f.leaderboard.RebuildStreakLeaderboard(f.ctx)
	assert.ErrorIs(t, err, ErrLeaderboardUnavailable)
	assert.NoError(t, f.leaderboard.RecordStreak(f.ctx, steady.ID, 2))
}

func TestMeShowsLiveStreak(t *testing.T) {
	f := newFixture(t)
	user := &models.UserFromAuth{ID: uuid.New(), Username: "me"}

	_, err := f.activity.CheckIn(f.ctx, user.ID)
	require.NoError(t, err)

	me, err := f.user.Me(f.ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, me.Streak)
	assert.Equal(t, models.Amount{Ink: 10}, me.Currency)
	assert.Equal(t, "me", me.Profile.Username)

	f.clock.Advance(2 * oneDay)
	me, err = f.user.Me(f.ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 0, me.Streak)
}
