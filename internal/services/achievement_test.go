package services

import (
	"sync"
	"testing"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserScenario(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	checkIn, err := f.activity.CheckIn(f.ctx, userID)
	require.NoError(t, err)
	require.True(t, checkIn.Success)
	assert.Equal(t, 1, checkIn.Streak)
	assert.Equal(t, models.Amount{Ink: 10}, f.balance(t, userID))

	post := f.createPost(t, userID, "my very first post")
	assert.Contains(t, post.CompletedAchievements, "first-post")

	list, err := f.achievement.GetAchievements(f.ctx, userID)
	require.NoError(t, err)
	var firstPost *models.AchievementProgress
	for _, achievement := range list.Achievements {
		if achievement.ID == "first-post" {
			firstPost = achievement
		}
	}
	require.NotNil(t, firstPost)
	assert.True(t, firstPost.Completed)
	assert.False(t, firstPost.RewardClaimed)

	claim, err := f.achievement.Claim(f.ctx, userID, "first-post")
	require.NoError(t, err)
	require.True(t, claim.Success)
	assert.EqualValues(t, 25, claim.Reward.InkPoints)
	assert.Equal(t, &models.Amount{Ink: 35}, claim.Currency)

	again, err := f.achievement.Claim(f.ctx, userID, "first-post")
	require.NoError(t, err)
	assert.False(t, again.Success)
	assert.Equal(t, CodeNotClaimable, again.Code)
	assert.Equal(t, models.Amount{Ink: 35}, f.balance(t, userID))
}

func TestFirstPostAwardedOnce(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	first := f.createPost(t, userID, "day one")
	assert.Contains(t, first.CompletedAchievements, "first-post")

	f.clock.Advance(oneDay)
	second := f.createPost(t, userID, "day two")
	assert.NotContains(t, second.CompletedAchievements, "first-post")
}

func TestClaimConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	row, err := f.achievement.Progress(f.ctx, userID, "lucky-draw", 10)
	require.NoError(t, err)
	require.True(t, row.Completed)

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan *ClaimResult, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.achievement.Claim(f.ctx, userID, "lucky-draw")
			assert.NoError(t, err)
			results <- result
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for result := range results {
		if result != nil && result.Success {
			succeeded++
			require.NotNil(t, result.Reward.Flair)
			assert.Equal(t, "badge-lucky-clover", result.Reward.Flair.ID)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, models.Amount{Prismatic: 1}, f.balance(t, userID))

	inventory, err := f.flair.GetInventory(f.ctx, userID)
	require.NoError(t, err)
	assert.Len(t, inventory.Items, 1)
}

func TestClaimIncompleteAchievement(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	result, err := f.achievement.Claim(f.ctx, userID, "prolific-poster")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, CodeNotClaimable, result.Code)

	_, err = f.achievement.Progress(f.ctx, userID, "prolific-poster", 3)
	require.NoError(t, err)
	result, err = f.achievement.Claim(f.ctx, userID, "prolific-poster")
	require.NoError(t, err)
	assert.False(t, result.Success)

	_, err = f.achievement.Claim(f.ctx, userID, "no-such-thing")
	assert.ErrorIs(t, err, ErrAchievementNotFound)
}

func TestProgressClampsAtRequired(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	row, err := f.achievement.Progress(f.ctx, userID, "prolific-poster", 25)
	require.NoError(t, err)
	assert.Equal(t, 10, row.CurrentProgress)
	assert.True(t, row.Completed)
	require.NotNil(t, row.CompletedAt)
	completedAt := *row.CompletedAt

	f.clock.Advance(oneDay)
	row, err = f.achievement.Progress(f.ctx, userID, "prolific-poster", 1)
	require.NoError(t, err)
	assert.Equal(t, 10, row.CurrentProgress)
	assert.True(t, completedAt.Equal(*row.CompletedAt))
}

func TestGetAchievementsOrdering(t *testing.T) {
	f := newFixture(t)

	list, err := f.achievement.GetAchievements(f.ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"collection", "consistency", "social"}, list.Categories)
	require.NotEmpty(t, list.Achievements)
	assert.Equal(t, "collection", list.Achievements[0].Category)
	for _, achievement := range list.Achievements {
		assert.Zero(t, achievement.CurrentProgress)
		assert.False(t, achievement.Completed)
	}
}
