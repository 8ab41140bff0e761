package services

import (
	"context"
	"errors"
	"slices"

	"whiteboard/internal/datastore"
	"whiteboard/internal/interfaces"
	"whiteboard/internal/models"
	"whiteboard/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/mroth/weightedrand/v2"
	"github.com/samber/do"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errEmptyPool = errors.New("no item can be drawn")

type ServiceGacha[T any] struct {
	chooser *weightedrand.Chooser[T, int]
}

func NewServiceGacha[T any](choices []weightedrand.Choice[T, int]) (*ServiceGacha[T], error) {
	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return nil, err
	}

	return &ServiceGacha[T]{chooser}, nil
}

func (service *ServiceGacha[T]) Pick() T {
	return service.chooser.Pick()
}

// DrawFlair picks a rarity tier by weights, then an item of that tier by the
// item's own weight. Tiers without items, or with zero weight, never win; the
// remaining tiers keep their relative odds.
func DrawFlair(pool []*models.CollectionItem, weights map[models.Rarity]int) (*models.CollectionItem, error) {
	tiers := map[models.Rarity][]*models.CollectionItem{}
	for _, item := range pool {
		if item.Flair == nil || item.Weight <= 0 {
			continue
		}
		tiers[item.Flair.Rarity] = append(tiers[item.Flair.Rarity], item)
	}

	var tierChoices []weightedrand.Choice[models.Rarity, int]
	for _, rarity := range models.Rarities {
		if weights[rarity] > 0 && len(tiers[rarity]) > 0 {
			tierChoices = append(tierChoices, weightedrand.NewChoice(rarity, weights[rarity]))
		}
	}
	if len(tierChoices) == 0 {
		return nil, errEmptyPool
	}

	tierGacha, err := NewServiceGacha(tierChoices)
	if err != nil {
		return nil, err
	}
	rarity := tierGacha.Pick()

	itemChoices := make([]weightedrand.Choice[*models.CollectionItem, int], 0, len(tiers[rarity]))
	for _, item := range tiers[rarity] {
		itemChoices = append(itemChoices, weightedrand.NewChoice(item, item.Weight))
	}
	itemGacha, err := NewServiceGacha(itemChoices)
	if err != nil {
		return nil, err
	}
	return itemGacha.Pick(), nil
}

type ServiceGachaPull struct {
	container *do.Injector
	store     datastore.Store
	cache     caching.Cache
	locker    interfaces.Locker
	logger    *zap.Logger
	clock     Clock

	serviceConfig      *ServiceConfig
	serviceLedger      *ServiceLedger
	serviceAchievement *ServiceAchievement
}

func NewServiceGachaPull(container *do.Injector) (*ServiceGachaPull, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	locker, err := do.Invoke[interfaces.Locker](container)
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*zap.Logger](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	serviceLedger, err := do.Invoke[*ServiceLedger](container)
	if err != nil {
		return nil, err
	}

	serviceAchievement, err := do.Invoke[*ServiceAchievement](container)
	if err != nil {
		return nil, err
	}

	return &ServiceGachaPull{container, store, cache, locker, logger.Named("gacha"), invokeClock(container), serviceConfig, serviceLedger, serviceAchievement}, nil
}

type PullResult struct {
	Outcome
	Flair                 *models.FlairItem `json:"flair,omitempty"`
	Pull                  *models.GachaPull `json:"pull,omitempty"`
	Cost                  models.Amount     `json:"cost"`
	Currency              *models.Amount    `json:"currency,omitempty"`
	CompletedAchievements []string          `json:"completed_achievements,omitempty"`
}

func (service *ServiceGachaPull) pool(ctx context.Context, collectionID string) ([]*models.CollectionItem, error) {
	return caching.UseCache(ctx, service.cache, DBKeyCollectionPool(collectionID), CACHE_TTL_5_MINS, func() ([]*models.CollectionItem, error) {
		return service.store.ListCollectionItems(ctx, collectionID)
	})
}

func (service *ServiceGachaPull) cost(ctx context.Context, premium bool) (models.Amount, string) {
	if premium {
		return models.Amount{Prismatic: int64(service.serviceConfig.GetInt(ctx, CONFIG_GACHA_PREMIUM_PRISMATIC_COST, DEFAULT_GACHA_PREMIUM_PRISMATIC_COST))}, REASON_GACHA_PREMIUM
	}
	return models.Amount{Ink: int64(service.serviceConfig.GetInt(ctx, CONFIG_GACHA_STANDARD_INK_COST, DEFAULT_GACHA_STANDARD_INK_COST))}, REASON_GACHA_STANDARD
}

// Pull charges the tier's cost and grants one flair from the collection. The
// charge, the inventory item and the pull record commit together or not at all.
func (service *ServiceGachaPull) Pull(ctx context.Context, userID uuid.UUID, collectionID string, premium bool) (*PullResult, error) {
	if collectionID == "" {
		return nil, ErrInvalidCollection
	}

	collection, err := service.store.GetCollection(ctx, collectionID)
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, err
	}

	now := service.clock()
	if !collection.OpenAt(now) {
		return &PullResult{Outcome: countRejection(Outcome{Code: CodeCollectionUnavailable, Message: "collection is not available"})}, nil
	}

	pool, err := service.pool(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	weights := service.serviceConfig.GetRarityWeights(ctx, premium)
	cost, reason := service.cost(ctx, premium)

	result := &PullResult{Cost: cost}
	err = withUserLock(ctx, service.locker, userID, func() error {
		return service.store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
			account, err := service.serviceLedger.Debit(ctx, repo, userID, cost, reason)
			if errors.Is(err, ErrInsufficientFunds) {
				return reject(CodeInsufficientFunds, "not enough currency for this pull")
			}
			if err != nil {
				return err
			}

			item, err := DrawFlair(pool, weights)
			if errors.Is(err, errEmptyPool) {
				return reject(CodeEmptyPool, "collection has nothing to draw")
			}
			if err != nil {
				return err
			}

			pulledAt := service.clock()
			err = repo.InsertInventoryItem(ctx, &models.InventoryItem{
				ID:         uuid.New(),
				UserID:     userID,
				FlairID:    item.FlairID,
				Source:     SOURCE_GACHA,
				AcquiredAt: pulledAt,
			})
			if err != nil {
				return err
			}

			pull := &models.GachaPull{
				ID:           uuid.New(),
				UserID:       userID,
				CollectionID: collectionID,
				FlairID:      item.FlairID,
				PullTime:     pulledAt,
				WasPremium:   premium,
			}
			if err := repo.InsertGachaPull(ctx, pull); err != nil {
				return err
			}
			pull.Flair = item.Flair

			completed, err := service.serviceAchievement.AdvanceInTx(ctx, repo, userID, models.TriggerGachaPulls, 1)
			if err != nil {
				return err
			}

			balance := account.Balance()
			result.Flair = item.Flair
			result.Pull = pull
			result.Currency = &balance
			result.CompletedAchievements = completed
			return nil
		})
	})
	if outcome, ok := asRejection(err); ok {
		result.Outcome = countRejection(outcome)
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	tier := "standard"
	if premium {
		tier = "premium"
	}
	metricGachaPulls.WithLabelValues(tier, string(result.Flair.Rarity)).Inc()
	service.logger.Info("gacha pull", zap.Stringer("user", userID), zap.String("collection", collectionID), zap.String("tier", tier), zap.String("flair", result.Flair.ID))

	result.Outcome = accepted()
	return result, nil
}

func (service *ServiceGachaPull) GetGachaState(ctx context.Context, userID uuid.UUID) (*models.GachaState, error) {
	now := service.clock()
	limit := service.serviceConfig.GetInt(ctx, CONFIG_GACHA_RECENT_PULLS_LIMIT, DEFAULT_GACHA_RECENT_PULLS_LIMIT)

	state := &models.GachaState{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		collections, err := service.store.ListActiveCollections(gctx, now)
		if err != nil {
			return err
		}

		state.Collections = make([]*models.CollectionView, 0, len(collections))
		for _, collection := range collections {
			pool, err := service.pool(gctx, collection.ID)
			if err != nil {
				return err
			}
			state.Collections = append(state.Collections, &models.CollectionView{
				GachaCollection: *collection,
				Rarities:        poolRarities(pool),
				Items:           pool,
			})
		}
		return nil
	})
	g.Go(func() error {
		var err error
		state.Currency, err = service.serviceLedger.GetBalance(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		state.RecentPulls, err = service.store.ListGachaPulls(gctx, userID, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if state.RecentPulls == nil {
		state.RecentPulls = []*models.GachaPull{}
	}
	return state, nil
}

func poolRarities(pool []*models.CollectionItem) []models.Rarity {
	rarities := []models.Rarity{}
	for _, rarity := range models.Rarities {
		if slices.ContainsFunc(pool, func(item *models.CollectionItem) bool {
			return item.Flair != nil && item.Flair.Rarity == rarity
		}) {
			rarities = append(rarities, rarity)
		}
	}
	return rarities
}

// SyncCollectionWindows sets is_active to whether each collection's window
// contains now and returns how many rows changed.
func (service *ServiceGachaPull) SyncCollectionWindows(ctx context.Context) (int, error) {
	collections, err := service.store.ListCollections(ctx)
	if err != nil {
		return 0, err
	}

	now := service.clock()
	changed := 0
	for _, collection := range collections {
		open := collection.InWindow(now)
		if collection.IsActive == open {
			continue
		}
		if err := service.store.UpdateCollectionActive(ctx, collection.ID, open); err != nil {
			return changed, err
		}
		service.logger.Info("collection window", zap.String("collection", collection.ID), zap.Bool("active", open))
		changed++
	}
	return changed, nil
}
