package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"whiteboard/internal/datastore"
	"whiteboard/internal/datastore/memstore"
	"whiteboard/internal/interfaces"
	"whiteboard/internal/models"
	"whiteboard/internal/pkg/caching"
	"whiteboard/internal/pkg/locker"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	ctx   context.Context
	store *memstore.Store
	clock *testClock

	config      *ServiceConfig
	ledger      *ServiceLedger
	achievement *ServiceAchievement
	activity    *ServiceActivity
	flair       *ServiceFlair
	gacha       *ServiceGachaPull
	user        *ServiceUser
	post        *ServicePost
	thumb       *ServiceThumb
	leaderboard *ServiceLeaderboard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	store := memstore.New()
	clock := &testClock{now: testNow}
	err := store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
		return datastore.SeedCatalog(ctx, repo, datastore.DefaultCatalog(clock.Now()))
	})
	require.NoError(t, err)

	cache, err := caching.NewCacheRedis(nil, true)
	require.NoError(t, err)

	injector := do.New()
	do.ProvideValue[datastore.Store](injector, store)
	do.ProvideValue[caching.Cache](injector, cache)
	do.ProvideValue[caching.ReadOnlyCache](injector, cache)
	do.ProvideValue[interfaces.Locker](injector, locker.NewLocal())
	do.ProvideValue(injector, zap.NewNop())
	do.ProvideNamedValue(injector, "clock", Clock(clock.Now))
	Provide(injector)

	return &fixture{
		ctx:         ctx,
		store:       store,
		clock:       clock,
		config:      do.MustInvoke[*ServiceConfig](injector),
		ledger:      do.MustInvoke[*ServiceLedger](injector),
		achievement: do.MustInvoke[*ServiceAchievement](injector),
		activity:    do.MustInvoke[*ServiceActivity](injector),
		flair:       do.MustInvoke[*ServiceFlair](injector),
		gacha:       do.MustInvoke[*ServiceGachaPull](injector),
		user:        do.MustInvoke[*ServiceUser](injector),
		post:        do.MustInvoke[*ServicePost](injector),
		thumb:       do.MustInvoke[*ServiceThumb](injector),
		leaderboard: do.MustInvoke[*ServiceLeaderboard](injector),
	}
}

func (f *fixture) fund(t *testing.T, userID uuid.UUID, amount models.Amount) {
	t.Helper()
	err := f.store.RunInTx(f.ctx, func(ctx context.Context, repo datastore.Repository) error {
		_, err := f.ledger.Credit(ctx, repo, userID, amount, "test")
		return err
	})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, userID uuid.UUID) models.Amount {
	t.Helper()
	balance, err := f.ledger.GetBalance(f.ctx, userID)
	require.NoError(t, err)
	return balance
}

func (f *fixture) grant(t *testing.T, userID uuid.UUID, flairID string) {
	t.Helper()
	err := f.store.InsertInventoryItem(f.ctx, &models.InventoryItem{
		ID:         uuid.New(),
		UserID:     userID,
		FlairID:    flairID,
		Source:     "test",
		AcquiredAt: f.clock.Now(),
	})
	require.NoError(t, err)
}

func (f *fixture) createPost(t *testing.T, userID uuid.UUID, content string) *PostResult {
	t.Helper()
	result, err := f.post.CreatePost(f.ctx, userID, CreatePostInput{BoardID: "general", Content: content})
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)
	return result
}
