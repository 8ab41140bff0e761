package services

import (
	"testing"

	"whiteboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRarityWeights(t *testing.T) {
	weights, err := ParseRarityWeights(DEFAULT_GACHA_STANDARD_RARITY_WEIGHTS)
	require.NoError(t, err)
	assert.Equal(t, map[models.Rarity]int{
		models.RarityCommon:    7000,
		models.RarityRare:      2200,
		models.RarityEpic:      700,
		models.RarityLegendary: 100,
	}, weights)

	weights, err = ParseRarityWeights(" rare : 10000 ")
	require.NoError(t, err)
	assert.Equal(t, map[models.Rarity]int{models.RarityRare: 10000}, weights)

	for _, bad := range []string{
		"",
		"common:5000",
		"common:5000,mythic:5000",
		"common:5000,common:5000",
		"common:11000,rare:-1000",
		"common=10000",
		"common:lots",
	} {
		_, err := ParseRarityWeights(bad)
		assert.Error(t, err, bad)
	}
}

func TestRarityWeightsFallBackToDefault(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.config.SetConfig(f.ctx, CONFIG_GACHA_PREMIUM_RARITY_WEIGHTS, "legendary:10000"))
	assert.Equal(t, map[models.Rarity]int{models.RarityLegendary: 10000}, f.config.GetRarityWeights(f.ctx, true))

	require.NoError(t, f.config.SetConfig(f.ctx, CONFIG_GACHA_STANDARD_RARITY_WEIGHTS, "common:1"))
	weights := f.config.GetRarityWeights(f.ctx, false)
	assert.Equal(t, 7000, weights[models.RarityCommon])
}

func TestIntConfig(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, DEFAULT_POST_MAX_LENGTH, f.config.GetInt(f.ctx, CONFIG_POST_MAX_LENGTH, DEFAULT_POST_MAX_LENGTH))

	require.NoError(t, f.config.SetConfig(f.ctx, CONFIG_POST_MAX_LENGTH, "12"))
	assert.Equal(t, 12, f.config.GetInt(f.ctx, CONFIG_POST_MAX_LENGTH, DEFAULT_POST_MAX_LENGTH))

	require.NoError(t, f.config.SetConfig(f.ctx, CONFIG_POST_MAX_LENGTH, "twelve"))
	_, err := f.config.GetIntConfig(f.ctx, CONFIG_POST_MAX_LENGTH, DEFAULT_POST_MAX_LENGTH)
	assert.Error(t, err)
	assert.Equal(t, DEFAULT_POST_MAX_LENGTH, f.config.GetInt(f.ctx, CONFIG_POST_MAX_LENGTH, DEFAULT_POST_MAX_LENGTH))
}

func TestSeedDefaultConfigsKeepsExisting(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.config.SetConfig(f.ctx, CONFIG_POST_MAX_LENGTH, "12"))

	added, err := SeedDefaultConfigs(f.ctx, f.store)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultConfigs())-1, added)
	assert.Equal(t, 12, f.config.GetInt(f.ctx, CONFIG_POST_MAX_LENGTH, DEFAULT_POST_MAX_LENGTH))

	added, err = SeedDefaultConfigs(f.ctx, f.store)
	require.NoError(t, err)
	assert.Zero(t, added)
}
