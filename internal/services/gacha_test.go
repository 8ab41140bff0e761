package services

import (
	"testing"
	"time"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poolItem(flairID string, rarity models.Rarity, weight int) *models.CollectionItem {
	return &models.CollectionItem{
		CollectionID: "test",
		FlairID:      flairID,
		Weight:       weight,
		Flair:        &models.FlairItem{ID: flairID, Rarity: rarity},
	}
}

func TestDrawFlairSkipsEmptyTiers(t *testing.T) {
	pool := []*models.CollectionItem{
		poolItem("a", models.RarityCommon, 5),
		poolItem("b", models.RarityCommon, 1),
	}
	weights := map[models.Rarity]int{models.RarityCommon: 10, models.RarityLegendary: 9990}

	for i := 0; i < 50; i++ {
		item, err := DrawFlair(pool, weights)
		require.NoError(t, err)
		assert.Equal(t, models.RarityCommon, item.Flair.Rarity)
	}
}

func TestDrawFlairZeroWeightTierNeverWins(t *testing.T) {
	pool := []*models.CollectionItem{
		poolItem("common", models.RarityCommon, 1),
		poolItem("rare", models.RarityRare, 1),
	}
	weights := map[models.Rarity]int{models.RarityCommon: 0, models.RarityRare: 10000}

	for i := 0; i < 50; i++ {
		item, err := DrawFlair(pool, weights)
		require.NoError(t, err)
		assert.Equal(t, "rare", item.FlairID)
	}
}

func TestDrawFlairEmptyPool(t *testing.T) {
	_, err := DrawFlair(nil, map[models.Rarity]int{models.RarityCommon: 10000})
	assert.ErrorIs(t, err, errEmptyPool)

	_, err = DrawFlair([]*models.CollectionItem{poolItem("a", models.RarityEpic, 0)}, map[models.Rarity]int{models.RarityEpic: 10000})
	assert.ErrorIs(t, err, errEmptyPool)
}

func TestPullInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	f.fund(t, userID, models.Amount{Ink: 50})

	result, err := f.gacha.Pull(f.ctx, userID, "classroom-basics", false)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, CodeInsufficientFunds, result.Code)
	assert.Equal(t, models.Amount{Ink: 50}, f.balance(t, userID))

	state, err := f.gacha.GetGachaState(f.ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, state.RecentPulls)

	inventory, err := f.flair.GetInventory(f.ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, inventory.Items)
}

func TestPullChargesAndGrantsTogether(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	f.fund(t, userID, models.Amount{Ink: 250, Prismatic: 2})

	result, err := f.gacha.Pull(f.ctx, userID, "classroom-basics", false)
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)
	require.NotNil(t, result.Flair)
	assert.Equal(t, models.Amount{Ink: DEFAULT_GACHA_STANDARD_INK_COST}, result.Cost)
	assert.Equal(t, &models.Amount{Ink: 150, Prismatic: 2}, result.Currency)

	premium, err := f.gacha.Pull(f.ctx, userID, "classroom-basics", true)
	require.NoError(t, err)
	require.True(t, premium.Success)
	assert.NotEqual(t, models.RarityCommon, premium.Flair.Rarity)
	assert.Equal(t, models.Amount{Ink: 150, Prismatic: 1}, f.balance(t, userID))

	state, err := f.gacha.GetGachaState(f.ctx, userID)
	require.NoError(t, err)
	assert.Len(t, state.RecentPulls, 2)

	inventory, err := f.flair.GetInventory(f.ctx, userID)
	require.NoError(t, err)
	assert.Len(t, inventory.Items, 2)
}

func TestPullUnknownOrClosedCollection(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	f.fund(t, userID, models.Amount{Ink: 500})

	_, err := f.gacha.Pull(f.ctx, userID, "", false)
	assert.ErrorIs(t, err, ErrInvalidCollection)

	_, err = f.gacha.Pull(f.ctx, userID, "missing", false)
	assert.ErrorIs(t, err, ErrCollectionNotFound)

	end := testNow.Add(-time.Hour)
	require.NoError(t, f.store.InsertCollection(f.ctx, &models.GachaCollection{
		ID:        "retired",
		Name:      "Retired",
		StartDate: testNow.AddDate(0, -2, 0),
		EndDate:   &end,
		IsActive:  true,
	}))

	result, err := f.gacha.Pull(f.ctx, userID, "retired", false)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, CodeCollectionUnavailable, result.Code)
	assert.Equal(t, models.Amount{Ink: 500}, f.balance(t, userID))

	synced, err := f.gacha.SyncCollectionWindows(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
}
