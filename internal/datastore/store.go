package datastore

import (
	"context"
	"errors"
	"time"

	"whiteboard/internal/models"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("datastore: not found")

// Repository is the persistence surface of the engagement engine. Lock* methods
// create the row when missing and hold it until the surrounding transaction ends.
type Repository interface {
	GetConfigByKey(ctx context.Context, key string) (*models.Config, error)
	UpsertConfig(ctx context.Context, config *models.Config) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	InsertProfile(ctx context.Context, profile *models.Profile) error

	GetCurrencyAccount(ctx context.Context, userID uuid.UUID) (*models.CurrencyAccount, error)
	LockCurrencyAccount(ctx context.Context, userID uuid.UUID) (*models.CurrencyAccount, error)
	UpdateCurrencyAccount(ctx context.Context, account *models.CurrencyAccount) error
	InsertCurrencyTransaction(ctx context.Context, transaction *models.CurrencyTransaction) error
	ListCurrencyTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*models.CurrencyTransaction, error)

	GetStreakState(ctx context.Context, userID uuid.UUID) (*models.StreakState, error)
	LockStreakState(ctx context.Context, userID uuid.UUID) (*models.StreakState, error)
	UpdateStreakState(ctx context.Context, streak *models.StreakState) error
	// ListTopStreaks only returns streaks still alive on since.
	ListTopStreaks(ctx context.Context, since time.Time, limit int) ([]*models.StreakState, error)

	GetDailyActivity(ctx context.Context, userID uuid.UUID, day time.Time) (*models.DailyActivity, error)
	LockDailyActivity(ctx context.Context, userID uuid.UUID, day time.Time) (*models.DailyActivity, error)
	UpdateDailyActivity(ctx context.Context, activity *models.DailyActivity) error

	InsertAchievementDefinition(ctx context.Context, definition *models.AchievementDefinition) error
	GetAchievementDefinition(ctx context.Context, id string) (*models.AchievementDefinition, error)
	ListAchievementDefinitions(ctx context.Context) ([]*models.AchievementDefinition, error)
	ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]*models.UserAchievement, error)
	// LockUserAchievement returns ErrNotFound when no progress was ever recorded.
	LockUserAchievement(ctx context.Context, userID uuid.UUID, achievementID string) (*models.UserAchievement, error)
	InsertUserAchievement(ctx context.Context, achievement *models.UserAchievement) (bool, error)
	UpdateUserAchievement(ctx context.Context, achievement *models.UserAchievement) error

	InsertFlairItem(ctx context.Context, item *models.FlairItem) error
	GetFlairItem(ctx context.Context, id string) (*models.FlairItem, error)
	ListFlairItems(ctx context.Context) ([]*models.FlairItem, error)
	InsertInventoryItem(ctx context.Context, item *models.InventoryItem) error
	CountInventoryItems(ctx context.Context, userID uuid.UUID, flairID string) (int, error)
	ListInventoryItems(ctx context.Context, userID uuid.UUID) ([]*models.InventoryItem, error)
	InsertPostFlair(ctx context.Context, application *models.PostFlair) (bool, error)
	DeletePostFlair(ctx context.Context, postID uuid.UUID, flairID string) error
	ListPostFlairs(ctx context.Context, postIDs ...uuid.UUID) ([]*models.PostFlair, error)
	ListPostFlairsByOwner(ctx context.Context, userID uuid.UUID) ([]*models.PostFlair, error)

	InsertCollection(ctx context.Context, collection *models.GachaCollection) error
	GetCollection(ctx context.Context, id string) (*models.GachaCollection, error)
	ListCollections(ctx context.Context) ([]*models.GachaCollection, error)
	ListActiveCollections(ctx context.Context, at time.Time) ([]*models.GachaCollection, error)
	UpdateCollectionActive(ctx context.Context, id string, active bool) error
	InsertCollectionItem(ctx context.Context, item *models.CollectionItem) error
	ListCollectionItems(ctx context.Context, collectionID string) ([]*models.CollectionItem, error)
	InsertGachaPull(ctx context.Context, pull *models.GachaPull) error
	ListGachaPulls(ctx context.Context, userID uuid.UUID, limit int) ([]*models.GachaPull, error)

	InsertBoard(ctx context.Context, board *models.Board) error
	GetBoard(ctx context.Context, id string) (*models.Board, error)
	ListBoards(ctx context.Context) ([]*models.Board, error)

	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	// InsertPost reports false when the author already has a post on post.PostDay.
	InsertPost(ctx context.Context, post *models.Post) (bool, error)
	UpdatePostContent(ctx context.Context, post *models.Post) error
	BumpPost(ctx context.Context, postID uuid.UUID, userID uuid.UUID, at time.Time) (*models.Post, error)
	CountPostsByUser(ctx context.Context, userID uuid.UUID) (int, error)
	HasPostOnDay(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error)
	ListPostsByBoard(ctx context.Context, boardID string, limit, offset int) ([]*models.Post, error)
	ListPostStats(ctx context.Context, postIDs []uuid.UUID, viewer uuid.UUID) (map[uuid.UUID]models.PostStats, error)

	InsertComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
	CountComments(ctx context.Context, postID uuid.UUID) (int, error)

	FindThumb(ctx context.Context, userID uuid.UUID, target models.ThumbTarget) (*models.Thumb, error)
	InsertThumb(ctx context.Context, thumb *models.Thumb) (bool, error)
	DeleteThumb(ctx context.Context, id uuid.UUID) error
	CountThumbs(ctx context.Context, target models.ThumbTarget) (int, error)
}

// Store runs fn atomically: either every write made through repo commits or none does.
type Store interface {
	Repository
	RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
