package services

import (
	"context"
	"errors"

	"whiteboard/internal/datastore"
	"whiteboard/internal/interfaces"
	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/samber/do"
)

const (
	ThumbAdded   = "added"
	ThumbRemoved = "removed"
)

type ServiceThumb struct {
	container *do.Injector
	store     datastore.Store
	locker    interfaces.Locker
	clock     Clock

	serviceActivity    *ServiceActivity
	serviceAchievement *ServiceAchievement
}

func NewServiceThumb(container *do.Injector) (*ServiceThumb, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	locker, err := do.Invoke[interfaces.Locker](container)
	if err != nil {
		return nil, err
	}

	serviceActivity, err := do.Invoke[*ServiceActivity](container)
	if err != nil {
		return nil, err
	}

	serviceAchievement, err := do.Invoke[*ServiceAchievement](container)
	if err != nil {
		return nil, err
	}

	return &ServiceThumb{container, store, locker, invokeClock(container), serviceActivity, serviceAchievement}, nil
}

type ThumbResult struct {
	Action                string   `json:"action"`
	ThumbCount            int      `json:"thumb_count"`
	CompletedAchievements []string `json:"completed_achievements,omitempty"`
}

// ToggleThumb adds the user's thumb to the target or takes it back. Only the
// add counts as the day's like activity.
func (service *ServiceThumb) ToggleThumb(ctx context.Context, userID uuid.UUID, target models.ThumbTarget) (*ThumbResult, error) {
	if !target.Valid() {
		return nil, ErrInvalidThumbTarget
	}

	rewards := service.serviceActivity.Rewards(ctx)
	result := &ThumbResult{}
	var update *ActivityUpdate
	err := withUserLock(ctx, service.locker, userID, func() error {
		return service.store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
			if err := targetExists(ctx, repo, target); err != nil {
				return err
			}

			existing, err := repo.FindThumb(ctx, userID, target)
			if err != nil && !errors.Is(err, datastore.ErrNotFound) {
				return err
			}

			if existing != nil {
				if err := repo.DeleteThumb(ctx, existing.ID); err != nil {
					return err
				}
				result.Action = ThumbRemoved
			} else {
				inserted, err := repo.InsertThumb(ctx, &models.Thumb{
					ID:        uuid.New(),
					UserID:    userID,
					PostID:    target.PostID,
					CommentID: target.CommentID,
					CreatedAt: service.clock(),
				})
				if err != nil {
					return err
				}
				result.Action = ThumbAdded

				if inserted {
					update, err = service.serviceActivity.RecordActivityInTx(ctx, repo, userID, models.ActivityLiked, rewards)
					if err != nil {
						return err
					}
					completed, err := service.serviceAchievement.AdvanceInTx(ctx, repo, userID, models.TriggerThumbsGiven, 1)
					if err != nil {
						return err
					}
					result.CompletedAchievements = append(update.CompletedAchievements, completed...)
				}
			}

			result.ThumbCount, err = repo.CountThumbs(ctx, target)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	update.observe()
	return result, nil
}

func targetExists(ctx context.Context, repo datastore.Repository, target models.ThumbTarget) error {
	if target.PostID != nil {
		_, err := repo.GetPost(ctx, *target.PostID)
		if errors.Is(err, datastore.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	_, err := repo.GetComment(ctx, *target.CommentID)
	if errors.Is(err, datastore.ErrNotFound) {
		return ErrCommentNotFound
	}
	return err
}
