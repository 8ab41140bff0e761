package services

import (
	"context"
	"errors"

	"whiteboard/internal/datastore"
	"whiteboard/internal/interfaces"
	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/samber/do"
	"go.uber.org/zap"
)

type ServiceFlair struct {
	container *do.Injector
	store     datastore.Store
	locker    interfaces.Locker
	logger    *zap.Logger
	clock     Clock
}

func NewServiceFlair(container *do.Injector) (*ServiceFlair, error) {
	store, err := do.Invoke[datastore.Store](container)
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

	return &ServiceFlair{container, store, locker, logger.Named("flair"), invokeClock(container)}, nil
}

type FlairResult struct {
	Outcome
	AlreadyApplied bool              `json:"already_applied,omitempty"`
	Flair          *models.FlairItem `json:"flair,omitempty"`
}

// ApplyFlair puts a flair the user owns on a post the user owns. Applying the
// same flair twice keeps the single existing application.
func (service *ServiceFlair) ApplyFlair(ctx context.Context, userID uuid.UUID, postID uuid.UUID, flairID string) (*FlairResult, error) {
	var result *FlairResult
	err := withUserLock(ctx, service.locker, userID, func() error {
		return service.store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
			var err error
			result, err = service.ApplyFlairInTx(ctx, repo, userID, postID, flairID)
			return err
		})
	})
	if outcome, ok := asRejection(err); ok {
		return &FlairResult{Outcome: countRejection(outcome)}, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (service *ServiceFlair) ApplyFlairInTx(ctx context.Context, repo datastore.Repository, userID uuid.UUID, postID uuid.UUID, flairID string) (*FlairResult, error) {
	if err := ownPost(ctx, repo, userID, postID); err != nil {
		return nil, err
	}

	flair, err := repo.GetFlairItem(ctx, flairID)
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, ErrFlairNotFound
	}
	if err != nil {
		return nil, err
	}

	owned, err := repo.CountInventoryItems(ctx, userID, flairID)
	if err != nil {
		return nil, err
	}
	if owned == 0 {
		return nil, reject(CodeNotOwner, "you do not own this flair")
	}

	inserted, err := repo.InsertPostFlair(ctx, &models.PostFlair{
		ID:        uuid.New(),
		PostID:    postID,
		FlairID:   flairID,
		AppliedAt: service.clock(),
	})
	if err != nil {
		return nil, err
	}

	return &FlairResult{Outcome: accepted(), AlreadyApplied: !inserted, Flair: flair}, nil
}

// RemoveFlair takes a flair off the caller's post. Removing a flair that is
// not applied succeeds.
func (service *ServiceFlair) RemoveFlair(ctx context.Context, userID uuid.UUID, postID uuid.UUID, flairID string) (*FlairResult, error) {
	err := withUserLock(ctx, service.locker, userID, func() error {
		return service.store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
			if err := ownPost(ctx, repo, userID, postID); err != nil {
				return err
			}
			return repo.DeletePostFlair(ctx, postID, flairID)
		})
	})
	if outcome, ok := asRejection(err); ok {
		return &FlairResult{Outcome: countRejection(outcome)}, nil
	}
	if err != nil {
		return nil, err
	}
	return &FlairResult{Outcome: accepted()}, nil
}

func ownPost(ctx context.Context, repo datastore.Repository, userID uuid.UUID, postID uuid.UUID) error {
	post, err := repo.GetPost(ctx, postID)
	if errors.Is(err, datastore.ErrNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return reject(CodeNotOwner, "you do not own this post")
	}
	return nil
}

func (service *ServiceFlair) GetInventory(ctx context.Context, userID uuid.UUID) (*models.Inventory, error) {
	items, err := service.store.ListInventoryItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	applications, err := service.store.ListPostFlairsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	appliedTo := map[string][]uuid.UUID{}
	for _, application := range applications {
		appliedTo[application.FlairID] = append(appliedTo[application.FlairID], application.PostID)
	}

	inventory := &models.Inventory{
		Items:   make([]*models.InventoryEntry, 0, len(items)),
		Grouped: map[models.FlairType][]*models.InventoryEntry{},
	}
	for _, item := range items {
		entry := &models.InventoryEntry{InventoryItem: *item, AppliedTo: appliedTo[item.FlairID]}
		if entry.AppliedTo == nil {
			entry.AppliedTo = []uuid.UUID{}
		}
		inventory.Items = append(inventory.Items, entry)
		if item.Flair != nil {
			inventory.Grouped[item.Flair.Type] = append(inventory.Grouped[item.Flair.Type], entry)
		}
	}
	return inventory, nil
}

func (service *ServiceFlair) GetPostFlairs(ctx context.Context, postID uuid.UUID) (map[models.FlairType][]*models.FlairItem, error) {
	if _, err := service.store.GetPost(ctx, postID); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	applications, err := service.store.ListPostFlairs(ctx, postID)
	if err != nil {
		return nil, err
	}
	grouped := groupApplied(applications)[postID]
	if grouped == nil {
		grouped = map[models.FlairType][]*models.FlairItem{}
	}
	return grouped, nil
}

func groupApplied(applications []*models.PostFlair) map[uuid.UUID]map[models.FlairType][]*models.FlairItem {
	flairs := map[uuid.UUID][]*models.FlairItem{}
	for _, application := range applications {
		if application.Flair != nil {
			flairs[application.PostID] = append(flairs[application.PostID], application.Flair)
		}
	}

	grouped := make(map[uuid.UUID]map[models.FlairType][]*models.FlairItem, len(flairs))
	for postID, items := range flairs {
		grouped[postID] = models.GroupFlairsByType(items)
	}
	return grouped
}
