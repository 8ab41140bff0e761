package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"whiteboard/internal/datastore"
	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := New()
	userID := uuid.New()
	boom := errors.New("boom")

	err := store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
		account, err := repo.LockCurrencyAccount(ctx, userID)
		if err != nil {
			return err
		}
		account.InkPoints = 500
		if err := repo.UpdateCurrencyAccount(ctx, account); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.GetCurrencyAccount(ctx, userID)
	assert.ErrorIs(t, err, datastore.ErrNotFound)
}

func TestRunInTxCommits(t *testing.T) {
	ctx := context.Background()
	store := New()
	userID := uuid.New()

	err := store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
		account, err := repo.LockCurrencyAccount(ctx, userID)
		if err != nil {
			return err
		}
		account.PrismaticInk = 4
		return repo.UpdateCurrencyAccount(ctx, account)
	})
	require.NoError(t, err)

	account, err := store.GetCurrencyAccount(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, account.PrismaticInk)
}

func TestInsertPostOnePerDay(t *testing.T) {
	ctx := context.Background()
	store := New()
	userID := uuid.New()
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	inserted, err := store.InsertPost(ctx, &models.Post{ID: uuid.New(), BoardID: "general", UserID: userID, Content: "a", PostDay: day})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.InsertPost(ctx, &models.Post{ID: uuid.New(), BoardID: "general", UserID: userID, Content: "b", PostDay: day})
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = store.InsertPost(ctx, &models.Post{ID: uuid.New(), BoardID: "general", UserID: userID, Content: "c", PostDay: day.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.True(t, inserted)

	count, err := store.CountPostsByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUserAchievementInsertOnce(t *testing.T) {
	ctx := context.Background()
	store := New()
	userID := uuid.New()

	_, err := store.LockUserAchievement(ctx, userID, "first-post")
	assert.ErrorIs(t, err, datastore.ErrNotFound)

	row := &models.UserAchievement{UserID: userID, AchievementID: "first-post", CurrentProgress: 1, Completed: true}
	inserted, err := store.InsertUserAchievement(ctx, row)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.InsertUserAchievement(ctx, row)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestThumbTargets(t *testing.T) {
	ctx := context.Background()
	store := New()
	userID := uuid.New()
	postID := uuid.New()
	target := models.ThumbTarget{PostID: &postID}

	inserted, err := store.InsertThumb(ctx, &models.Thumb{ID: uuid.New(), UserID: userID, PostID: &postID})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.InsertThumb(ctx, &models.Thumb{ID: uuid.New(), UserID: userID, PostID: &postID})
	require.NoError(t, err)
	assert.False(t, inserted)

	thumb, err := store.FindThumb(ctx, userID, target)
	require.NoError(t, err)
	require.NoError(t, store.DeleteThumb(ctx, thumb.ID))

	count, err := store.CountThumbs(ctx, target)
	require.NoError(t, err)
	assert.Zero(t, count)
}
