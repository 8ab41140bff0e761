package services

import (
	"context"
	"errors"
	"fmt"

	"whiteboard/internal/datastore"
	"whiteboard/internal/datastore/redis_store"
	"whiteboard/internal/models"
	"whiteboard/internal/pkg"
	"whiteboard/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

var ErrLeaderboardUnavailable = errors.New("leaderboard storage is not configured")

const streakLeaderboardRebuildLimit = 10000

type ServiceLeaderboard struct {
	container     *do.Injector
	redisDB       redis.UniversalClient
	redisDBCache  redis.UniversalClient
	store         datastore.Store
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
	logger        *zap.Logger
	clock         Clock

	serviceUser   *ServiceUser
	serviceConfig *ServiceConfig
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	// both redis connections are optional; without them the board is read from the store
	db, _ := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	dbRedisCache, _ := do.InvokeNamed[redis.UniversalClient](container, "redis-cache")

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

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, db, dbRedisCache, store, cache, readonlyCache, logger.Named("leaderboard"), invokeClock(container), serviceUser, serviceConfig}, nil
}

func (service *ServiceLeaderboard) GetStreakLeaderboard(ctx context.Context, user *models.UserFromAuth) (*models.LeaderboardResponse, error) {
	limit := service.serviceConfig.GetInt(ctx, CONFIG_STREAK_LEADERBOARD_LIMIT, DEFAULT_STREAK_LEADERBOARD_LIMIT)

	callback := func() (*models.LeaderboardResponse, error) {
		var response *models.LeaderboardResponse
		var err error
		if service.redisDB != nil {
			response, err = service.fromRedis(ctx, user, limit)
		} else {
			response, err = service.fromStore(ctx, user, limit)
		}
		if err != nil {
			return nil, err
		}

		for _, item := range response.Leaderboard {
			// censor username
			profile, _ := service.serviceUser.FindProfileByID(ctx, item.UserID)
			if profile != nil {
				item.Username = censorUsername(profile.Username)
			}
		}
		return response, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyLeaderboardByUser(LEADERBOARD_STREAK, user.ID, limit), CACHE_TTL_1_MIN, callback)
}

func (service *ServiceLeaderboard) fromRedis(ctx context.Context, user *models.UserFromAuth, limit int) (*models.LeaderboardResponse, error) {
	leaderboard, err := redis_store.GetLeaderboard(ctx, service.redisDB, LEADERBOARD_STREAK, limit)
	if err != nil {
		return nil, err
	}

	me := &models.LeaderboardItem{Username: user.Username, UserID: user.ID}
	rank, err := redis_store.GetRankWithScore(ctx, service.redisDB, LEADERBOARD_STREAK, user.ID)
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	if err == nil {
		me.Rank = int(rank.Rank + 1)
		me.Score = rank.Score
	}

	return &models.LeaderboardResponse{Leaderboard: leaderboard, Me: me}, nil
}

func (service *ServiceLeaderboard) fromStore(ctx context.Context, user *models.UserFromAuth, limit int) (*models.LeaderboardResponse, error) {
	streaks, err := service.topStreaks(ctx, limit)
	if err != nil {
		return nil, err
	}

	response := &models.LeaderboardResponse{
		Leaderboard: make([]*models.LeaderboardItem, 0, len(streaks)),
		Me:          &models.LeaderboardItem{Username: user.Username, UserID: user.ID},
	}
	for i, streak := range streaks {
		item := &models.LeaderboardItem{UserID: streak.UserID, Score: float64(streak.StreakDays), Rank: i + 1}
		response.Leaderboard = append(response.Leaderboard, item)
		if streak.UserID == user.ID {
			response.Me.Rank = item.Rank
			response.Me.Score = item.Score
		}
	}

	if response.Me.Rank == 0 {
		streak, err := service.store.GetStreakState(ctx, user.ID)
		if err != nil && !errors.Is(err, datastore.ErrNotFound) {
			return nil, err
		}
		response.Me.Score = float64(CurrentStreak(streak, service.clock()))
	}
	return response, nil
}

// topStreaks only counts streaks that can still continue today.
func (service *ServiceLeaderboard) topStreaks(ctx context.Context, limit int) ([]*models.StreakState, error) {
	yesterday := pkg.CalendarDay(service.clock()).AddDate(0, 0, -1)
	return service.store.ListTopStreaks(ctx, yesterday, limit)
}

// RebuildStreakLeaderboard replaces the redis board with the live streaks.
func (service *ServiceLeaderboard) RebuildStreakLeaderboard(ctx context.Context) (int, error) {
	if service.redisDB == nil {
		return 0, ErrLeaderboardUnavailable
	}

	streaks, err := service.topStreaks(ctx, streakLeaderboardRebuildLimit)
	if err != nil {
		return 0, err
	}

	items := make([]*models.LeaderboardItem, 0, len(streaks))
	for _, streak := range streaks {
		items = append(items, &models.LeaderboardItem{UserID: streak.UserID, Score: float64(streak.StreakDays)})
	}

	if err := redis_store.ReplaceLeaderboard(ctx, service.redisDB, LEADERBOARD_STREAK, items); err != nil {
		return 0, err
	}

	err = redis_store.SetLeaderboardMeta(ctx, service.redisDB, LEADERBOARD_STREAK, &redis_store.LeaderboardMeta{BuiltAt: service.clock(), Entries: len(items)})
	if err != nil {
		service.logger.Warn("leaderboard meta", zap.Error(err))
	}

	if err := service.ClearLeaderboardCache(ctx, LEADERBOARD_STREAK); err != nil {
		service.logger.Warn("leaderboard cache", zap.Error(err))
	}
	return len(items), nil
}

func (service *ServiceLeaderboard) ClearLeaderboardCache(ctx context.Context, leaderboardName string) error {
	if service.redisDBCache == nil {
		return nil
	}
	_, err := caching.DeleteKeys(ctx, service.redisDBCache, fmt.Sprintf("leaderboard_by_user:%s*", leaderboardName))
	return err
}

// RecordStreak pushes one user's streak onto the redis board after a check-in.
func (service *ServiceLeaderboard) RecordStreak(ctx context.Context, userID uuid.UUID, streak int) error {
	if service.redisDB == nil {
		return nil
	}
	_, err := redis_store.SetLeaderboard(ctx, service.redisDB, LEADERBOARD_STREAK, &models.LeaderboardItem{UserID: userID, Score: float64(streak)})
	return err
}

func censorUsername(username string) string {
	runes := []rune(username)
	if len(runes) < 3 {
		return username
	}
	return string(runes[:2]) + "*****" + string(runes[len(runes)-1])
}
