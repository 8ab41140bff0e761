package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"whiteboard/internal/datastore"
	"whiteboard/internal/interfaces"
	"whiteboard/internal/models"
	"whiteboard/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/samber/do"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ServiceAchievement struct {
	container *do.Injector
	store     datastore.Store
	cache     caching.Cache
	locker    interfaces.Locker
	logger    *zap.Logger
	clock     Clock

	serviceLedger *ServiceLedger
}

func NewServiceAchievement(container *do.Injector) (*ServiceAchievement, error) {
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

	serviceLedger, err := do.Invoke[*ServiceLedger](container)
	if err != nil {
		return nil, err
	}

	return &ServiceAchievement{container, store, cache, locker, logger.Named("achievement"), invokeClock(container), serviceLedger}, nil
}

type AchievementList struct {
	Achievements []*models.AchievementProgress `json:"achievements"`
	Categories   []string                      `json:"categories"`
}

type ClaimResult struct {
	Outcome
	Reward   *models.RewardBundle `json:"reward,omitempty"`
	Currency *models.Amount       `json:"currency,omitempty"`
}

func (service *ServiceAchievement) Definitions(ctx context.Context) ([]*models.AchievementDefinition, error) {
	return caching.UseCache(ctx, service.cache, DBKeyAchievementDefinitions(), CACHE_TTL_15_MINS, func() ([]*models.AchievementDefinition, error) {
		return service.store.ListAchievementDefinitions(ctx)
	})
}

func (service *ServiceAchievement) definition(ctx context.Context, achievementID string) (*models.AchievementDefinition, error) {
	definitions, err := service.Definitions(ctx)
	if err != nil {
		return nil, err
	}
	for _, definition := range definitions {
		if definition.ID == achievementID {
			return definition, nil
		}
	}
	return nil, ErrAchievementNotFound
}

// Progress adds delta to one achievement in its own transaction.
func (service *ServiceAchievement) Progress(ctx context.Context, userID uuid.UUID, achievementID string, delta int) (*models.UserAchievement, error) {
	definition, err := service.definition(ctx, achievementID)
	if err != nil {
		return nil, err
	}

	var row *models.UserAchievement
	err = withUserLock(ctx, service.locker, userID, func() error {
		return service.store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
			var err error
			row, _, err = service.ProgressInTx(ctx, repo, userID, definition, delta)
			return err
		})
	})
	return row, err
}

// ProgressInTx adds delta to the user's progress, clamped at the required
// amount, and reports whether this call completed the achievement.
func (service *ServiceAchievement) ProgressInTx(ctx context.Context, repo datastore.Repository, userID uuid.UUID, definition *models.AchievementDefinition, delta int) (*models.UserAchievement, bool, error) {
	if delta <= 0 {
		return nil, false, nil
	}
	return service.advance(ctx, repo, userID, definition, func(current int) int {
		return current + delta
	})
}

// RaiseInTx moves progress up to value. Lower values leave it as is.
func (service *ServiceAchievement) RaiseInTx(ctx context.Context, repo datastore.Repository, userID uuid.UUID, definition *models.AchievementDefinition, value int) (*models.UserAchievement, bool, error) {
	if value <= 0 {
		return nil, false, nil
	}
	return service.advance(ctx, repo, userID, definition, func(current int) int {
		return max(current, value)
	})
}

func (service *ServiceAchievement) advance(ctx context.Context, repo datastore.Repository, userID uuid.UUID, definition *models.AchievementDefinition, next func(current int) int) (*models.UserAchievement, bool, error) {
	row, err := service.lockOrCreate(ctx, repo, userID, definition.ID)
	if err != nil {
		return nil, false, err
	}
	if row.Completed {
		return row, false, nil
	}

	progress := min(definition.RequiredProgress, next(row.CurrentProgress))
	if progress == row.CurrentProgress {
		return row, false, nil
	}

	row.CurrentProgress = progress
	completedNow := false
	if progress >= definition.RequiredProgress {
		now := service.clock()
		row.Completed = true
		row.CompletedAt = &now
		completedNow = true
	}

	if err := repo.UpdateUserAchievement(ctx, row); err != nil {
		return nil, false, err
	}
	return row, completedNow, nil
}

func (service *ServiceAchievement) lockOrCreate(ctx context.Context, repo datastore.Repository, userID uuid.UUID, achievementID string) (*models.UserAchievement, error) {
	row, err := repo.LockUserAchievement(ctx, userID, achievementID)
	if !errors.Is(err, datastore.ErrNotFound) {
		return row, err
	}

	_, err = repo.InsertUserAchievement(ctx, &models.UserAchievement{UserID: userID, AchievementID: achievementID})
	if err != nil {
		return nil, err
	}
	return repo.LockUserAchievement(ctx, userID, achievementID)
}

func triggered(definitions []*models.AchievementDefinition, trigger models.AchievementTrigger) []*models.AchievementDefinition {
	var matched []*models.AchievementDefinition
	for _, definition := range definitions {
		if definition.Trigger == trigger {
			matched = append(matched, definition)
		}
	}
	return matched
}

// AdvanceInTx applies delta to every achievement driven by trigger and returns
// the ids completed by this call.
func (service *ServiceAchievement) AdvanceInTx(ctx context.Context, repo datastore.Repository, userID uuid.UUID, trigger models.AchievementTrigger, delta int) ([]string, error) {
	return service.forTrigger(ctx, repo, trigger, func(definition *models.AchievementDefinition) (bool, error) {
		_, completed, err := service.ProgressInTx(ctx, repo, userID, definition, delta)
		return completed, err
	})
}

// RaiseToInTx is AdvanceInTx for high-water triggers such as the check-in streak.
func (service *ServiceAchievement) RaiseToInTx(ctx context.Context, repo datastore.Repository, userID uuid.UUID, trigger models.AchievementTrigger, value int) ([]string, error) {
	return service.forTrigger(ctx, repo, trigger, func(definition *models.AchievementDefinition) (bool, error) {
		_, completed, err := service.RaiseInTx(ctx, repo, userID, definition, value)
		return completed, err
	})
}

func (service *ServiceAchievement) forTrigger(ctx context.Context, repo datastore.Repository, trigger models.AchievementTrigger, fn func(*models.AchievementDefinition) (bool, error)) ([]string, error) {
	definitions, err := repo.ListAchievementDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	completed := []string{}
	for _, definition := range triggered(definitions, trigger) {
		done, err := fn(definition)
		if err != nil {
			return nil, err
		}
		if done {
			completed = append(completed, definition.ID)
		}
	}
	return completed, nil
}

// AwardFirstPostInTx inserts the first-post achievements already completed and
// unclaimed. A row that already exists is left alone, so retries never award twice.
func (service *ServiceAchievement) AwardFirstPostInTx(ctx context.Context, repo datastore.Repository, userID uuid.UUID) ([]string, error) {
	definitions, err := repo.ListAchievementDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	awarded := []string{}
	for _, definition := range triggered(definitions, models.TriggerFirstPost) {
		now := service.clock()
		inserted, err := repo.InsertUserAchievement(ctx, &models.UserAchievement{
			UserID:          userID,
			AchievementID:   definition.ID,
			CurrentProgress: definition.RequiredProgress,
			Completed:       true,
			CompletedAt:     &now,
		})
		if err != nil {
			return nil, err
		}
		if inserted {
			awarded = append(awarded, definition.ID)
		}
	}
	return awarded, nil
}

// Claim pays out a completed achievement exactly once. Not completed and
// already claimed are rejections, not errors.
func (service *ServiceAchievement) Claim(ctx context.Context, userID uuid.UUID, achievementID string) (*ClaimResult, error) {
	definition, err := service.definition(ctx, achievementID)
	if err != nil {
		return nil, err
	}

	result := &ClaimResult{}
	err = withUserLock(ctx, service.locker, userID, func() error {
		return service.store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
			row, err := repo.LockUserAchievement(ctx, userID, achievementID)
			if errors.Is(err, datastore.ErrNotFound) {
				return reject(CodeNotClaimable, "achievement not completed")
			}
			if err != nil {
				return err
			}
			if !row.Completed {
				return reject(CodeNotClaimable, "achievement not completed")
			}
			if row.RewardClaimed {
				return reject(CodeNotClaimable, "reward already claimed")
			}

			now := service.clock()
			row.RewardClaimed = true
			row.ClaimedAt = &now
			if err := repo.UpdateUserAchievement(ctx, row); err != nil {
				return err
			}

			reward := &models.RewardBundle{InkPoints: definition.InkReward, PrismaticInk: definition.PrismaticReward}
			account, err := service.serviceLedger.Credit(ctx, repo, userID, models.Amount{Ink: reward.InkPoints, Prismatic: reward.PrismaticInk}, fmt.Sprintf(REASON_ACHIEVEMENT, achievementID))
			if err != nil {
				return err
			}

			if definition.FlairReward != nil {
				flair, err := repo.GetFlairItem(ctx, *definition.FlairReward)
				if errors.Is(err, datastore.ErrNotFound) {
					return fmt.Errorf("achievement %s: %w", achievementID, ErrFlairNotFound)
				}
				if err != nil {
					return err
				}
				err = repo.InsertInventoryItem(ctx, &models.InventoryItem{
					ID:         uuid.New(),
					UserID:     userID,
					FlairID:    flair.ID,
					Source:     SOURCE_ACHIEVEMENT,
					AcquiredAt: now,
				})
				if err != nil {
					return err
				}
				reward.Flair = flair
			}

			balance := account.Balance()
			result.Reward = reward
			result.Currency = &balance
			return nil
		})
	})
	if outcome, ok := asRejection(err); ok {
		return &ClaimResult{Outcome: countRejection(outcome)}, nil
	}
	if err != nil {
		return nil, err
	}

	metricAchievementClaims.WithLabelValues(achievementID).Inc()
	service.logger.Info("achievement claimed", zap.Stringer("user", userID), zap.String("achievement", achievementID))
	result.Outcome = accepted()
	return result, nil
}

func (service *ServiceAchievement) GetAchievements(ctx context.Context, userID uuid.UUID) (*AchievementList, error) {
	var definitions []*models.AchievementDefinition
	var rows []*models.UserAchievement

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		definitions, err = service.Definitions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = service.store.ListUserAchievements(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]*models.UserAchievement, len(rows))
	for _, row := range rows {
		byID[row.AchievementID] = row
	}

	list := &AchievementList{
		Achievements: make([]*models.AchievementProgress, 0, len(definitions)),
		Categories:   []string{},
	}
	for _, definition := range definitions {
		progress := &models.AchievementProgress{AchievementDefinition: *definition}
		if row, ok := byID[definition.ID]; ok {
			progress.CurrentProgress = row.CurrentProgress
			progress.Completed = row.Completed
			progress.CompletedAt = row.CompletedAt
			progress.RewardClaimed = row.RewardClaimed
		}
		progress.ProgressPercentage = models.ProgressPercentage(progress.CurrentProgress, definition.RequiredProgress)
		list.Achievements = append(list.Achievements, progress)

		if !slices.Contains(list.Categories, definition.Category) {
			list.Categories = append(list.Categories, definition.Category)
		}
	}

	slices.SortStableFunc(list.Achievements, func(a, b *models.AchievementProgress) int {
		return cmp.Or(
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.RequiredProgress, b.RequiredProgress),
			cmp.Compare(a.ID, b.ID),
		)
	})
	slices.Sort(list.Categories)
	return list, nil
}
