package services

import (
	"testing"
	"time"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneDay = 24 * time.Hour

func TestCheckInTwiceSameDay(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	first, err := f.activity.CheckIn(f.ctx, userID)
	require.NoError(t, err)
	require.True(t, first.Success)
	assert.Equal(t, 1, first.Streak)
	assert.EqualValues(t, DEFAULT_CHECK_IN_INK_REWARD, first.InkAwarded)
	assert.Equal(t, &models.Amount{Ink: DEFAULT_CHECK_IN_INK_REWARD}, first.Currency)

	f.clock.Advance(3 * time.Hour)
	second, err := f.activity.CheckIn(f.ctx, userID)
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.Equal(t, CodeAlreadyCheckedIn, second.Code)

	assert.Equal(t, models.Amount{Ink: DEFAULT_CHECK_IN_INK_REWARD}, f.balance(t, userID))
	streak, err := f.activity.GetStreak(f.ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.StreakDays)
}

func TestCheckInStreak(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	for want := 1; want <= 3; want++ {
		result, err := f.activity.CheckIn(f.ctx, userID)
		require.NoError(t, err)
		require.True(t, result.Success)
		assert.Equal(t, want, result.Streak)
		f.clock.Advance(oneDay)
	}

	// the day after the last check-in was skipped
	f.clock.Advance(oneDay)
	result, err := f.activity.CheckIn(f.ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Streak)
}

func TestCheckInAcrossMidnightUTC(t *testing.T) {
	f := newFixture(t)
	f.clock.now = time.Date(2026, time.March, 10, 23, 59, 0, 0, time.UTC)
	userID := uuid.New()

	_, err := f.activity.CheckIn(f.ctx, userID)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)
	result, err := f.activity.CheckIn(f.ctx, userID)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 2, result.Streak)
}

func TestStreakAchievementsFollowCheckIns(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	var completed []string
	for i := 0; i < 7; i++ {
		result, err := f.activity.CheckIn(f.ctx, userID)
		require.NoError(t, err)
		completed = append(completed, result.CompletedAchievements...)
		f.clock.Advance(oneDay)
	}
	assert.Equal(t, []string{"streak-7"}, completed)

	list, err := f.achievement.GetAchievements(f.ctx, userID)
	require.NoError(t, err)
	for _, achievement := range list.Achievements {
		switch achievement.ID {
		case "streak-7":
			assert.True(t, achievement.Completed)
		case "streak-30":
			assert.Equal(t, 7, achievement.CurrentProgress)
			assert.False(t, achievement.Completed)
		}
	}
}

func TestCurrentStreakExpires(t *testing.T) {
	yesterday := testNow.AddDate(0, 0, -1)
	older := testNow.AddDate(0, 0, -2)

	assert.Equal(t, 0, CurrentStreak(nil, testNow))
	assert.Equal(t, 4, CurrentStreak(&models.StreakState{StreakDays: 4, LastCheckIn: &yesterday}, testNow))
	assert.Equal(t, 0, CurrentStreak(&models.StreakState{StreakDays: 4, LastCheckIn: &older}, testNow))
}

func TestDailyCompletionBonusOncePerDay(t *testing.T) {
	f := newFixture(t)
	author := uuid.New()
	userID := uuid.New()

	post := f.createPost(t, author, "hello board")

	checkIn, err := f.activity.CheckIn(f.ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.Amount{}, checkIn.DailyBonus)

	f.createPost(t, userID, "my post")

	_, err = f.post.CreateComment(f.ctx, userID, post.Post.ID, "nice")
	require.NoError(t, err)

	thumb, err := f.thumb.ToggleThumb(f.ctx, userID, models.ThumbTarget{PostID: &post.Post.ID})
	require.NoError(t, err)
	assert.Equal(t, ThumbAdded, thumb.Action)

	status, err := f.activity.GetActivities(f.ctx, userID)
	require.NoError(t, err)
	assert.True(t, status.Today.AllCompleted)
	assert.EqualValues(t, DEFAULT_DAILY_COMPLETE_PRISMATIC_BONUS, status.Currency.Prismatic)

	// repeating activities the same day pays nothing more
	_, err = f.post.CreateComment(f.ctx, userID, post.Post.ID, "again")
	require.NoError(t, err)
	update, err := f.activity.RecordActivity(f.ctx, userID, models.ActivityLiked)
	require.NoError(t, err)
	assert.False(t, update.Changed)
	assert.False(t, update.DailyCompleted)
	assert.EqualValues(t, DEFAULT_DAILY_COMPLETE_PRISMATIC_BONUS, f.balance(t, userID).Prismatic)
}

func TestRecordActivityRejectsUnknownKind(t *testing.T) {
	f := newFixture(t)
	_, err := f.activity.RecordActivity(f.ctx, uuid.New(), models.ActivityKind("sleeping"))
	assert.ErrorIs(t, err, ErrInvalidActivity)
}
