package services

import (
	"context"
	"errors"

	"whiteboard/internal/datastore"
	"whiteboard/internal/models"
	"whiteboard/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

type ServiceUser struct {
	container     *do.Injector
	store         datastore.Store
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
	clock         Clock

	serviceLedger   *ServiceLedger
	serviceActivity *ServiceActivity
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
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

	serviceLedger, err := do.Invoke[*ServiceLedger](container)
	if err != nil {
		return nil, err
	}

	serviceActivity, err := do.Invoke[*ServiceActivity](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, store, cache, readonlyCache, invokeClock(container), serviceLedger, serviceActivity}, nil
}

// FindOrCreateProfile returns the profile for a verified identity, creating it
// from the token claims on first sight.
func (service *ServiceUser) FindOrCreateProfile(ctx context.Context, user *models.UserFromAuth) (*models.Profile, error) {
	callback := func() (*models.Profile, error) {
		profile, err := service.store.GetProfile(ctx, user.ID)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, datastore.ErrNotFound) {
			return nil, err
		}

		profile = &models.Profile{
			ID:        user.ID,
			Username:  user.Username,
			CreatedAt: service.clock(),
		}
		if user.AvatarURL != "" {
			profile.AvatarURL = &user.AvatarURL
		}
		if err := service.store.InsertProfile(ctx, profile); err != nil {
			return nil, err
		}
		return service.store.GetProfile(ctx, user.ID)
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyProfile(user.ID), CACHE_TTL_15_MINS, callback)
}

func (service *ServiceUser) FindProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	callback := func() (*models.Profile, error) {
		return service.store.GetProfile(ctx, userID)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyProfile(userID), CACHE_TTL_15_MINS, callback)
}

func (service *ServiceUser) Me(ctx context.Context, user *models.UserFromAuth) (*models.Me, error) {
	profile, err := service.FindOrCreateProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	me := &models.Me{Profile: profile}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		me.Currency, err = service.serviceLedger.GetBalance(gctx, user.ID)
		return err
	})
	g.Go(func() error {
		streak, err := service.serviceActivity.GetStreak(gctx, user.ID)
		if err != nil {
			return err
		}
		me.Streak = CurrentStreak(streak, service.clock())
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return me, nil
}
