// Package memstore is an in-process datastore.Store. A transaction works on a
// copy of the state and swaps it in on success, so a failed transaction leaves
// nothing behind. Transactions are serialized by a single mutex.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"whiteboard/internal/datastore"
	"whiteboard/internal/models"

	"github.com/google/uuid"
)

type dayKey struct {
	userID uuid.UUID
	day    string
}

type achievementKey struct {
	userID        uuid.UUID
	achievementID string
}

type state struct {
	configs          map[string]models.Config
	profiles         map[uuid.UUID]models.Profile
	accounts         map[uuid.UUID]models.CurrencyAccount
	transactions     []models.CurrencyTransaction
	streaks          map[uuid.UUID]models.StreakState
	activities       map[dayKey]models.DailyActivity
	definitions      map[string]models.AchievementDefinition
	userAchievements map[achievementKey]models.UserAchievement
	flairs           map[string]models.FlairItem
	inventory        []models.InventoryItem
	postFlairs       []models.PostFlair
	collections      map[string]models.GachaCollection
	collectionItems  []models.CollectionItem
	pulls            []models.GachaPull
	boards           map[string]models.Board
	posts            map[uuid.UUID]models.Post
	comments         map[uuid.UUID]models.Comment
	thumbs           map[uuid.UUID]models.Thumb
}

func newState() *state {
	return &state{
		configs:          map[string]models.Config{},
		profiles:         map[uuid.UUID]models.Profile{},
		accounts:         map[uuid.UUID]models.CurrencyAccount{},
		streaks:          map[uuid.UUID]models.StreakState{},
		activities:       map[dayKey]models.DailyActivity{},
		definitions:      map[string]models.AchievementDefinition{},
		userAchievements: map[achievementKey]models.UserAchievement{},
		flairs:           map[string]models.FlairItem{},
		collections:      map[string]models.GachaCollection{},
		boards:           map[string]models.Board{},
		posts:            map[uuid.UUID]models.Post{},
		comments:         map[uuid.UUID]models.Comment{},
		thumbs:           map[uuid.UUID]models.Thumb{},
	}
}

func (st *state) clone() *state {
	return &state{
		configs:          maps.Clone(st.configs),
		profiles:         maps.Clone(st.profiles),
		accounts:         maps.Clone(st.accounts),
		transactions:     slices.Clone(st.transactions),
		streaks:          maps.Clone(st.streaks),
		activities:       maps.Clone(st.activities),
		definitions:      maps.Clone(st.definitions),
		userAchievements: maps.Clone(st.userAchievements),
		flairs:           maps.Clone(st.flairs),
		inventory:        slices.Clone(st.inventory),
		postFlairs:       slices.Clone(st.postFlairs),
		collections:      maps.Clone(st.collections),
		collectionItems:  slices.Clone(st.collectionItems),
		pulls:            slices.Clone(st.pulls),
		boards:           maps.Clone(st.boards),
		posts:            maps.Clone(st.posts),
		comments:         maps.Clone(st.comments),
		thumbs:           maps.Clone(st.thumbs),
	}
}

type Store struct {
	*repo
	mu sync.Mutex
	st *state
}

func New() *Store {
	store := &Store{st: newState()}
	store.repo = &repo{store: store}
	return store
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, repo datastore.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := s.st.clone()
	if err := fn(ctx, &repo{tx: working}); err != nil {
		return err
	}
	s.st = working
	return nil
}

// repo either belongs to a transaction (tx set) or reads the committed state
// under the store mutex.
type repo struct {
	store *Store
	tx    *state
}

func (r *repo) state() (*state, func()) {
	if r.tx != nil {
		return r.tx, func() {}
	}
	r.store.mu.Lock()
	return r.store.st, r.store.mu.Unlock
}

func day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func ptr[T any](v T) *T {
	return &v
}

func flairRef(st *state, id string) *models.FlairItem {
	flair, ok := st.flairs[id]
	if !ok {
		return nil
	}
	return &flair
}

func (r *repo) GetConfigByKey(ctx context.Context, key string) (*models.Config, error) {
	st, unlock := r.state()
	defer unlock()

	config, ok := st.configs[key]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return &config, nil
}

func (r *repo) UpsertConfig(ctx context.Context, config *models.Config) error {
	st, unlock := r.state()
	defer unlock()

	st.configs[config.Key] = *config
	return nil
}

func (r *repo) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	st, unlock := r.state()
	defer unlock()

	profile, ok := st.profiles[userID]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return &profile, nil
}

func (r *repo) InsertProfile(ctx context.Context, profile *models.Profile) error {
	st, unlock := r.state()
	defer unlock()

	if _, ok := st.profiles[profile.ID]; ok {
		return nil
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	st.profiles[profile.ID] = *profile
	return nil
}

func (r *repo) GetCurrencyAccount(ctx context.Context, userID uuid.UUID) (*models.CurrencyAccount, error) {
	st, unlock := r.state()
	defer unlock()

	account, ok := st.accounts[userID]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return &account, nil
}

func (r *repo) LockCurrencyAccount(ctx context.Context, userID uuid.UUID) (*models.CurrencyAccount, error) {
	st, unlock := r.state()
	defer unlock()

	account, ok := st.accounts[userID]
	if !ok {
		now := time.Now()
		account = models.CurrencyAccount{UserID: userID, CreatedAt: now, UpdatedAt: now}
		st.accounts[userID] = account
	}
	return &account, nil
}

func (r *repo) UpdateCurrencyAccount(ctx context.Context, account *models.CurrencyAccount) error {
	st, unlock := r.state()
	defer unlock()

	if _, ok := st.accounts[account.UserID]; !ok {
		return datastore.ErrNotFound
	}
	account.UpdatedAt = time.Now()
	st.accounts[account.UserID] = *account
	return nil
}

func (r *repo) InsertCurrencyTransaction(ctx context.Context, transaction *models.CurrencyTransaction) error {
	st, unlock := r.state()
	defer unlock()

	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now()
	}
	st.transactions = append(st.transactions, *transaction)
	return nil
}

func (r *repo) ListCurrencyTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*models.CurrencyTransaction, error) {
	st, unlock := r.state()
	defer unlock()

	out := []*models.CurrencyTransaction{}
	for i := len(st.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if st.transactions[i].UserID == userID {
			out = append(out, ptr(st.transactions[i]))
		}
	}
	return out, nil
}

func (r *repo) GetStreakState(ctx context.Context, userID uuid.UUID) (*models.StreakState, error) {
	st, unlock := r.state()
	defer unlock()

	streak, ok := st.streaks[userID]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return &streak, nil
}

func (r *repo) LockStreakState(ctx context.Context, userID uuid.UUID) (*models.StreakState, error) {
	st, unlock := r.state()
	defer unlock()

	streak, ok := st.streaks[userID]
	if !ok {
		streak = models.StreakState{UserID: userID, UpdatedAt: time.Now()}
		st.streaks[userID] = streak
	}
	return &streak, nil
}

func (r *repo) UpdateStreakState(ctx context.Context, streak *models.StreakState) error {
	st, unlock := r.state()
	defer unlock()

	streak.UpdatedAt = time.Now()
	st.streaks[streak.UserID] = *streak
	return nil
}

func (r *repo) ListTopStreaks(ctx context.Context, since time.Time, limit int) ([]*models.StreakState, error) {
	st, unlock := r.state()
	defer unlock()

	out := []*models.StreakState{}
	for _, streak := range st.streaks {
		if streak.StreakDays == 0 || streak.LastCheckIn == nil || day(*streak.LastCheckIn) < day(since) {
			continue
		}
		out = append(out, ptr(streak))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StreakDays != out[j].StreakDays {
			return out[i].StreakDays > out[j].StreakDays
		}
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *repo) GetDailyActivity(ctx context.Context, userID uuid.UUID, d time.Time) (*models.DailyActivity, error) {
	st, unlock := r.state()
	defer unlock()

	activity, ok := st.activities[dayKey{userID, day(d)}]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return &activity, nil
}

func (r *repo) LockDailyActivity(ctx context.Context, userID uuid.UUID, d time.Time) (*models.DailyActivity, error) {
	st, unlock := r.state()
	defer unlock()

	key := dayKey{userID, day(d)}
	activity, ok := st.activities[key]
	if !ok {
		activity = models.DailyActivity{UserID: userID, ActivityDate: d, UpdatedAt: time.Now()}
		st.activities[key] = activity
	}
	return &activity, nil
}

func (r *repo) UpdateDailyActivity(ctx context.Context, activity *models.DailyActivity) error {
	st, unlock := r.state()
	defer unlock()

	activity.UpdatedAt = time.Now()
	st.activities[dayKey{activity.UserID, day(activity.ActivityDate)}] = *activity
	return nil
}

func (r *repo) InsertAchievementDefinition(ctx context.Context, definition *models.AchievementDefinition) error {
	st, unlock := r.state()
	defer unlock()

	if _, ok := st.definitions[definition.ID]; !ok {
		st.definitions[definition.ID] = *definition
	}
	return nil
}

func (r *repo) GetAchievementDefinition(ctx context.Context, id string) (*models.AchievementDefinition, error) {
	st, unlock := r.state()
	defer unlock()

	definition, ok := st.definitions[id]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return &definition, nil
}

func (r *repo) ListAchievementDefinitions(ctx context.Context) ([]*models.AchievementDefinition, error) {
	st, unlock := r.state()
	defer unlock()

	out := make([]*models.AchievementDefinition, 0, len(st.definitions))
	for _, definition := range st.definitions {
		out = append(out, ptr(definition))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		if out[i].RequiredProgress != out[j].RequiredProgress {
			return out[i].RequiredProgress < out[j].RequiredProgress
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *repo) ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]*models.UserAchievement, error) {
	st, unlock := r.state()
	defer unlock()

	out := []*models.UserAchievement{}
	for key, achievement := range st.userAchievements {
		if key.userID == userID {
			out = append(out, ptr(achievement))
		}
	}
	return out, nil
}

func (r *repo) LockUserAchievement(ctx context.Context, userID uuid.UUID, achievementID string) (*models.UserAchievement, error) {
	st, unlock := r.state()
	defer unlock()

	achievement, ok := st.userAchievements[achievementKey{userID, achievementID}]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return &achievement, nil
}

func (r *repo) InsertUserAchievement(ctx context.Context, achievement *models.UserAchievement) (bool, error) {
	st, unlock := r.state()
	defer unlock()

	key := achievementKey{achievement.UserID, achievement.AchievementID}
	if _, ok := st.userAchievements[key]; ok {
		return false, nil
	}
	st.userAchievements[key] = *achievement
	return true, nil
}

func (r *repo) UpdateUserAchievement(ctx context.Context, achievement *models.UserAchievement) error {
	st, unlock := r.state()
	defer unlock()

	key := achievementKey{achievement.UserID, achievement.AchievementID}
	if _, ok := st.userAchievements[key]; !ok {
		return datastore.ErrNotFound
	}
	st.userAchievements[key] = *achievement
	return nil
}

func (r *repo) InsertFlairItem(ctx context.Context, item *models.FlairItem) error {
	st, unlock := r.state()
	defer unlock()

	if _, ok := st.flairs[item.ID]; !ok {
		st.flairs[item.ID] = *item
	}
	return nil
}

func (r *repo) GetFlairItem(ctx context.Context, id string) (*models.FlairItem, error) {
	st, unlock := r.state()
	defer unlock()

	item := flairRef(st, id)
	if item == nil {
		return nil, datastore.ErrNotFound
	}
	return item, nil
}

func (r *repo) ListFlairItems(ctx context.Context) ([]*models.FlairItem, error) {
	st, unlock := r.state()
	defer unlock()

	out := make([]*models.FlairItem, 0, len(st.flairs))
	for _, item := range st.flairs {
		out = append(out, ptr(item))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *repo) InsertInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	st, unlock := r.state()
	defer unlock()

	if item.AcquiredAt.IsZero() {
		item.AcquiredAt = time.Now()
	}
	stored := *item
	stored.Flair = nil
	st.inventory = append(st.inventory, stored)
	return nil
}

func (r *repo) CountInventoryItems(ctx context.Context, userID uuid.UUID, flairID string) (int, error) {
	st, unlock := r.state()
	defer unlock()

	count := 0
	for _, item := range st.inventory {
		if item.UserID == userID && item.FlairID == flairID {
			count++
		}
	}
	return count, nil
}

func (r *repo) ListInventoryItems(ctx context.Context, userID uuid.UUID) ([]*models.InventoryItem, error) {
	st, unlock := r.state()
	defer unlock()

	out := []*models.InventoryItem{}
	for i := len(st.inventory) - 1; i >= 0; i-- {
		item := st.inventory[i]
		if item.UserID != userID {
			continue
		}
		item.Flair = flairRef(st, item.FlairID)
		out = append(out, &item)
	}
	return out, nil
}

func (r *repo) InsertPostFlair(ctx context.Context, application *models.PostFlair) (bool, error) {
	st, unlock := r.state()
	defer unlock()

	for _, existing := range st.postFlairs {
		if existing.PostID == application.PostID && existing.FlairID == application.FlairID {
			return false, nil
		}
	}
	if application.AppliedAt.IsZero() {
		application.AppliedAt = time.Now()
	}
	stored := *application
	stored.Flair = nil
	st.postFlairs = append(st.postFlairs, stored)
	return true, nil
}

func (r *repo) DeletePostFlair(ctx context.Context, postID uuid.UUID, flairID string) error {
	st, unlock := r.state()
	defer unlock()

	st.postFlairs = slices.DeleteFunc(st.postFlairs, func(application models.PostFlair) bool {
		return application.PostID == postID && application.FlairID == flairID
	})
	return nil
}

func (r *repo) ListPostFlairs(ctx context.Context, postIDs ...uuid.UUID) ([]*models.PostFlair, error) {
	st, unlock := r.state()
	defer unlock()

	out := []*models.PostFlair{}
	for _, application := range st.postFlairs {
		if !slices.Contains(postIDs, application.PostID) {
			continue
		}
		application.Flair = flairRef(st, application.FlairID)
		out = append(out, ptr(application))
	}
	return out, nil
}

func (r *repo) ListPostFlairsByOwner(ctx context.Context, userID uuid.UUID) ([]*models.PostFlair, error) {
	st, unlock := r.state()
	defer unlock()

	out := []*models.PostFlair{}
	for _, application := range st.postFlairs {
		post, ok := st.posts[application.PostID]
		if !ok || post.UserID != userID {
			continue
		}
		out = append(out, ptr(application))
	}
	return out, nil
}

func (r *repo) InsertCollection(ctx context.Context, collection *models.GachaCollection) error {
	st, unlock := r.state()
	defer unlock()

	if _, ok := st.collections[collection.ID]; !ok {
		st.collections[collection.ID] = *collection
	}
	return nil
}

func (r *repo) GetCollection(ctx context.Context, id string) (*models.GachaCollection, error) {
	st, unlock := r.state()
	defer unlock()

	collection, ok := st.collections[id]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return &collection, nil
}

func sortCollections(collections []*models.GachaCollection) {
	sort.Slice(collections, func(i, j int) bool {
		if !collections[i].StartDate.Equal(collections[j].StartDate) {
			return collections[i].StartDate.After(collections[j].StartDate)
		}
		return collections[i].ID < collections[j].ID
	})
}

func (r *repo) ListCollections(ctx context.Context) ([]*models.GachaCollection, error) {
	st, unlock := r.state()
	defer unlock()

	out := make([]*models.GachaCollection, 0, len(st.collections))
	for _, collection := range st.collections {
		out = append(out, ptr(collection))
	}
	sortCollections(out)
	return out, nil
}

func (r *repo) ListActiveCollections(ctx context.Context, at time.Time) ([]*models.GachaCollection, error) {
	st, unlock := r.state()
	defer unlock()

	out := []*models.GachaCollection{}
	for _, collection := range st.collections {
		if collection.OpenAt(at) {
			out = append(out, ptr(collection))
		}
	}
	sortCollections(out)
	return out, nil
}

func (r *repo) UpdateCollectionActive(ctx context.Context, id string, active bool) error {
	st, unlock := r.state()
	defer unlock()

	collection, ok := st.collections[id]
	if !ok {
		return nil
	}
	collection.IsActive = active
	st.collections[id] = collection
	return nil
}

func (r *repo) InsertCollectionItem(ctx context.Context, item *models.CollectionItem) error {
	st, unlock := r.state()
	defer unlock()

	for _, existing := range st.collectionItems {
		if existing.CollectionID == item.CollectionID && existing.FlairID == item.FlairID {
			return nil
		}
	}
	stored := *item
	stored.Flair = nil
	st.collectionItems = append(st.collectionItems, stored)
	return nil
}

func (r *repo) ListCollectionItems(ctx context.Context, collectionID string) ([]*models.CollectionItem, error) {
	st, unlock := r.state()
	defer unlock()

	out := []*models.CollectionItem{}
	for _, item := range st.collectionItems {
		if item.CollectionID != collectionID {
			continue
		}
		item.Flair = flairRef(st, item.FlairID)
		out = append(out, ptr(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FlairID < out[j].FlairID })
	return out, nil
}

func (r *repo) InsertGachaPull(ctx context.Context, pull *models.GachaPull) error {
	st, unlock := r.state()
	defer unlock()

	if pull.PullTime.IsZero() {
		pull.PullTime = time.Now()
	}
	stored := *pull
	stored.Flair = nil
	st.pulls = append(st.pulls, stored)
	return nil
}

func (r *repo) ListGachaPulls(ctx context.Context, userID uuid.UUID, limit int) ([]*models.GachaPull, error) {
	st, unlock := r.state()
	defer unlock()

	out := []*models.GachaPull{}
	for i := len(st.pulls) - 1; i >= 0 && len(out) < limit; i-- {
		pull := st.pulls[i]
		if pull.UserID != userID {
			continue
		}
		pull.Flair = flairRef(st, pull.FlairID)
		out = append(out, &pull)
	}
	return out, nil
}

func (r *repo) InsertBoard(ctx context.Context, board *models.Board) error {
	st, unlock := r.state()
	defer unlock()

	if _, ok := st.boards[board.ID]; !ok {
		st.boards[board.ID] = *board
	}
	return nil
}

func (r *repo) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	st, unlock := r.state()
	defer unlock()

	board, ok := st.boards[id]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return &board, nil
}

func (r *repo) ListBoards(ctx context.Context) ([]*models.Board, error) {
	st, unlock := r.state()
	defer unlock()

	out := make([]*models.Board, 0, len(st.boards))
	for _, board := range st.boards {
		out = append(out, ptr(board))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *repo) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	st, unlock := r.state()
	defer unlock()

	post, ok := st.posts[id]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return &post, nil
}

func (r *repo) InsertPost(ctx context.Context, post *models.Post) (bool, error) {
	st, unlock := r.state()
	defer unlock()

	for _, existing := range st.posts {
		if existing.UserID == post.UserID && day(existing.PostDay) == day(post.PostDay) {
			return false, nil
		}
	}
	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	if post.UpdatedAt.IsZero() {
		post.UpdatedAt = post.CreatedAt
	}
	st.posts[post.ID] = *post
	return true, nil
}

func (r *repo) UpdatePostContent(ctx context.Context, post *models.Post) error {
	st, unlock := r.state()
	defer unlock()

	stored, ok := st.posts[post.ID]
	if !ok {
		return datastore.ErrNotFound
	}
	stored.Content = post.Content
	stored.UpdatedAt = post.UpdatedAt
	st.posts[post.ID] = stored
	return nil
}

func (r *repo) BumpPost(ctx context.Context, postID uuid.UUID, userID uuid.UUID, at time.Time) (*models.Post, error) {
	st, unlock := r.state()
	defer unlock()

	post, ok := st.posts[postID]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	post.PushCount++
	post.UpdatedAt = at
	post.LastBumpedBy = ptr(userID)
	st.posts[postID] = post
	return &post, nil
}

func (r *repo) CountPostsByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	st, unlock := r.state()
	defer unlock()

	count := 0
	for _, post := range st.posts {
		if post.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *repo) HasPostOnDay(ctx context.Context, userID uuid.UUID, d time.Time) (bool, error) {
	st, unlock := r.state()
	defer unlock()

	for _, post := range st.posts {
		if post.UserID == userID && day(post.PostDay) == day(d) {
			return true, nil
		}
	}
	return false, nil
}

func (r *repo) ListPostsByBoard(ctx context.Context, boardID string, limit, offset int) ([]*models.Post, error) {
	st, unlock := r.state()
	defer unlock()

	all := []*models.Post{}
	for _, post := range st.posts {
		if post.BoardID == boardID {
			all = append(all, ptr(post))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].UpdatedAt.After(all[j].UpdatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})
	if offset >= len(all) {
		return []*models.Post{}, nil
	}
	end := min(len(all), offset+limit)
	return all[offset:end], nil
}

func (r *repo) ListPostStats(ctx context.Context, postIDs []uuid.UUID, viewer uuid.UUID) (map[uuid.UUID]models.PostStats, error) {
	st, unlock := r.state()
	defer unlock()

	stats := make(map[uuid.UUID]models.PostStats, len(postIDs))
	for _, id := range postIDs {
		stats[id] = models.PostStats{}
	}
	for _, comment := range st.comments {
		if stat, ok := stats[comment.PostID]; ok {
			stat.CommentCount++
			stats[comment.PostID] = stat
		}
	}
	for _, thumb := range st.thumbs {
		if thumb.PostID == nil {
			continue
		}
		if stat, ok := stats[*thumb.PostID]; ok {
			stat.ThumbCount++
			if thumb.UserID == viewer {
				stat.UserHasThumbed = true
			}
			stats[*thumb.PostID] = stat
		}
	}
	return stats, nil
}

func (r *repo) InsertComment(ctx context.Context, comment *models.Comment) error {
	st, unlock := r.state()
	defer unlock()

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	st.comments[comment.ID] = *comment
	return nil
}

func (r *repo) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	st, unlock := r.state()
	defer unlock()

	comment, ok := st.comments[id]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return &comment, nil
}

func (r *repo) ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	st, unlock := r.state()
	defer unlock()

	out := []*models.Comment{}
	for _, comment := range st.comments {
		if comment.PostID == postID {
			out = append(out, ptr(comment))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *repo) CountComments(ctx context.Context, postID uuid.UUID) (int, error) {
	st, unlock := r.state()
	defer unlock()

	count := 0
	for _, comment := range st.comments {
		if comment.PostID == postID {
			count++
		}
	}
	return count, nil
}

func matchesTarget(thumb models.Thumb, target models.ThumbTarget) bool {
	if target.PostID != nil {
		return thumb.PostID != nil && *thumb.PostID == *target.PostID
	}
	return thumb.CommentID != nil && target.CommentID != nil && *thumb.CommentID == *target.CommentID
}

func (r *repo) FindThumb(ctx context.Context, userID uuid.UUID, target models.ThumbTarget) (*models.Thumb, error) {
	st, unlock := r.state()
	defer unlock()

	for _, thumb := range st.thumbs {
		if thumb.UserID == userID && matchesTarget(thumb, target) {
			return ptr(thumb), nil
		}
	}
	return nil, datastore.ErrNotFound
}

func (r *repo) InsertThumb(ctx context.Context, thumb *models.Thumb) (bool, error) {
	st, unlock := r.state()
	defer unlock()

	target := models.ThumbTarget{PostID: thumb.PostID, CommentID: thumb.CommentID}
	for _, existing := range st.thumbs {
		if existing.UserID == thumb.UserID && matchesTarget(existing, target) {
			return false, nil
		}
	}
	if thumb.CreatedAt.IsZero() {
		thumb.CreatedAt = time.Now()
	}
	st.thumbs[thumb.ID] = *thumb
	return true, nil
}

func (r *repo) DeleteThumb(ctx context.Context, id uuid.UUID) error {
	st, unlock := r.state()
	defer unlock()

	delete(st.thumbs, id)
	return nil
}

func (r *repo) CountThumbs(ctx context.Context, target models.ThumbTarget) (int, error) {
	st, unlock := r.state()
	defer unlock()

	count := 0
	for _, thumb := range st.thumbs {
		if matchesTarget(thumb, target) {
			count++
		}
	}
	return count, nil
}
