package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"whiteboard/internal/datastore"
	"whiteboard/internal/models"
	"whiteboard/internal/pkg/caching"

	"github.com/samber/do"
	"go.uber.org/zap"
)

type ServiceConfig struct {
	container     *do.Injector
	store         datastore.Store
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
	logger        *zap.Logger
}

func NewServiceConfig(container *do.Injector) (*ServiceConfig, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*zap.Logger](container)
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{container, store, cache, readonlyCache, logger.Named("config")}, nil
}

func (service *ServiceConfig) GetStringConfig(ctx context.Context, key string, defaultValue string) (string, error) {
	callback := func() (string, error) {
		config, err := service.store.GetConfigByKey(ctx, key)
		if errors.Is(err, datastore.ErrNotFound) {
			return defaultValue, nil
		}
		if err != nil {
			return defaultValue, err
		}
		return config.Value, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) GetIntConfig(ctx context.Context, key string, defaultValue int) (int, error) {
	value, err := service.GetStringConfig(ctx, key, strconv.Itoa(defaultValue))
	if err != nil {
		return defaultValue, err
	}

	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue, err
	}

	return intValue, nil
}

// GetInt is GetIntConfig for callers that always want a usable value.
func (service *ServiceConfig) GetInt(ctx context.Context, key string, defaultValue int) int {
	value, err := service.GetIntConfig(ctx, key, defaultValue)
	if err != nil {
		service.logger.Warn("config fallback", zap.String("key", key), zap.Error(err))
		return defaultValue
	}
	return value
}

func (service *ServiceConfig) SetConfig(ctx context.Context, key string, value string) error {
	err := service.store.UpsertConfig(ctx, &models.Config{Key: key, Value: value})
	if err != nil {
		return err
	}
	return service.cache.Delete(ctx, DBKeyConfig(key))
}

// GetRarityWeights returns the basis-point table for a pull tier. A malformed
// table falls back to the built-in default.
func (service *ServiceConfig) GetRarityWeights(ctx context.Context, premium bool) map[models.Rarity]int {
	key, defaultValue := CONFIG_GACHA_STANDARD_RARITY_WEIGHTS, DEFAULT_GACHA_STANDARD_RARITY_WEIGHTS
	if premium {
		key, defaultValue = CONFIG_GACHA_PREMIUM_RARITY_WEIGHTS, DEFAULT_GACHA_PREMIUM_RARITY_WEIGHTS
	}

	value, err := service.GetStringConfig(ctx, key, defaultValue)
	if err == nil {
		var weights map[models.Rarity]int
		weights, err = ParseRarityWeights(value)
		if err == nil {
			return weights
		}
	}

	service.logger.Warn("invalid rarity weights, using default", zap.String("key", key), zap.Error(err))
	weights, _ := ParseRarityWeights(defaultValue)
	return weights
}

// ParseRarityWeights parses "common:7000,rare:2200,..." into a table whose
// values are non-negative and sum to RARITY_WEIGHT_TOTAL.
func ParseRarityWeights(value string) (map[models.Rarity]int, error) {
	weights := map[models.Rarity]int{}
	total := 0
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, raw, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("malformed rarity weight %q", part)
		}

		rarity := models.Rarity(strings.TrimSpace(name))
		if !rarity.Valid() {
			return nil, fmt.Errorf("unknown rarity %q", rarity)
		}
		if _, dup := weights[rarity]; dup {
			return nil, fmt.Errorf("duplicate rarity %q", rarity)
		}

		weight, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("rarity %q: %w", rarity, err)
		}
		if weight < 0 {
			return nil, fmt.Errorf("rarity %q has negative weight", rarity)
		}

		weights[rarity] = weight
		total += weight
	}

	if total != RARITY_WEIGHT_TOTAL {
		return nil, fmt.Errorf("rarity weights sum to %d, want %d", total, RARITY_WEIGHT_TOTAL)
	}
	return weights, nil
}

// DefaultConfigs lists every tunable with its built-in value.
func DefaultConfigs() []*models.Config {
	return []*models.Config{
		{Key: CONFIG_CHECK_IN_INK_REWARD, Value: strconv.Itoa(DEFAULT_CHECK_IN_INK_REWARD)},
		{Key: CONFIG_DAILY_COMPLETE_PRISMATIC_BONUS, Value: strconv.Itoa(DEFAULT_DAILY_COMPLETE_PRISMATIC_BONUS)},
		{Key: CONFIG_GACHA_STANDARD_INK_COST, Value: strconv.Itoa(DEFAULT_GACHA_STANDARD_INK_COST)},
		{Key: CONFIG_GACHA_PREMIUM_PRISMATIC_COST, Value: strconv.Itoa(DEFAULT_GACHA_PREMIUM_PRISMATIC_COST)},
		{Key: CONFIG_GACHA_RECENT_PULLS_LIMIT, Value: strconv.Itoa(DEFAULT_GACHA_RECENT_PULLS_LIMIT)},
		{Key: CONFIG_GACHA_STANDARD_RARITY_WEIGHTS, Value: DEFAULT_GACHA_STANDARD_RARITY_WEIGHTS},
		{Key: CONFIG_GACHA_PREMIUM_RARITY_WEIGHTS, Value: DEFAULT_GACHA_PREMIUM_RARITY_WEIGHTS},
		{Key: CONFIG_POST_MAX_LENGTH, Value: strconv.Itoa(DEFAULT_POST_MAX_LENGTH)},
		{Key: CONFIG_COMMENT_MAX_LENGTH, Value: strconv.Itoa(DEFAULT_COMMENT_MAX_LENGTH)},
		{Key: CONFIG_WRITE_RATE_LIMIT_PER_MINUTE, Value: strconv.Itoa(DEFAULT_WRITE_RATE_LIMIT_PER_MINUTE)},
		{Key: CONFIG_STREAK_LEADERBOARD_LIMIT, Value: strconv.Itoa(DEFAULT_STREAK_LEADERBOARD_LIMIT)},
		{Key: CONFIG_CRONJOB_TIME_STREAK_LEADERBOARD, Value: DEFAULT_CRONJOB_TIME_STREAK_LEADERBOARD},
		{Key: CONFIG_CRONJOB_TIME_COLLECTION_WINDOW, Value: DEFAULT_CRONJOB_TIME_COLLECTION_WINDOW},
	}
}

// SeedDefaultConfigs inserts the defaults that are not set yet and returns how
// many were added. Existing values are kept.
func SeedDefaultConfigs(ctx context.Context, store datastore.Store) (int, error) {
	added := 0
	for _, config := range DefaultConfigs() {
		_, err := store.GetConfigByKey(ctx, config.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, datastore.ErrNotFound) {
			return added, err
		}
		if err := store.UpsertConfig(ctx, config); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
