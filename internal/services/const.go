package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrUserLocked = errors.New("user locked")

var (
	ErrContentRequired     = errors.New("content is required")
	ErrContentTooLong      = errors.New("content is too long")
	ErrInvalidThumbTarget  = errors.New("exactly one of post_id or comment_id is required")
	ErrInvalidCollection   = errors.New("collection_id is required")
	ErrBoardNotFound       = errors.New("board not found")
	ErrPostNotFound        = errors.New("post not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrCollectionNotFound  = errors.New("collection not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrFlairNotFound       = errors.New("flair not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("amount must not be negative")
)

const (
	CONFIG_CHECK_IN_INK_REWARD             = "CHECK_IN_INK_REWARD"
	CONFIG_DAILY_COMPLETE_PRISMATIC_BONUS  = "DAILY_COMPLETE_PRISMATIC_BONUS"
	CONFIG_GACHA_STANDARD_INK_COST         = "GACHA_STANDARD_INK_COST"
	CONFIG_GACHA_PREMIUM_PRISMATIC_COST    = "GACHA_PREMIUM_PRISMATIC_COST"
	CONFIG_GACHA_RECENT_PULLS_LIMIT        = "GACHA_RECENT_PULLS_LIMIT"
	CONFIG_GACHA_STANDARD_RARITY_WEIGHTS   = "GACHA_STANDARD_RARITY_WEIGHTS"
	CONFIG_GACHA_PREMIUM_RARITY_WEIGHTS    = "GACHA_PREMIUM_RARITY_WEIGHTS"
	CONFIG_POST_MAX_LENGTH                 = "POST_MAX_LENGTH"
	CONFIG_COMMENT_MAX_LENGTH              = "COMMENT_MAX_LENGTH"
	CONFIG_WRITE_RATE_LIMIT_PER_MINUTE     = "WRITE_RATE_LIMIT_PER_MINUTE"
	CONFIG_STREAK_LEADERBOARD_LIMIT        = "STREAK_LEADERBOARD_LIMIT"
	CONFIG_CRONJOB_TIME_STREAK_LEADERBOARD = "CRONJOB_TIME_STREAK_LEADERBOARD"
	CONFIG_CRONJOB_TIME_COLLECTION_WINDOW  = "CRONJOB_TIME_COLLECTION_WINDOW"

	DEFAULT_CHECK_IN_INK_REWARD             = 10
	DEFAULT_DAILY_COMPLETE_PRISMATIC_BONUS  = 1
	DEFAULT_GACHA_STANDARD_INK_COST         = 100
	DEFAULT_GACHA_PREMIUM_PRISMATIC_COST    = 1
	DEFAULT_GACHA_RECENT_PULLS_LIMIT        = 10
	DEFAULT_GACHA_STANDARD_RARITY_WEIGHTS   = "common:7000,rare:2200,epic:700,legendary:100"
	DEFAULT_GACHA_PREMIUM_RARITY_WEIGHTS    = "common:0,rare:6000,epic:3000,legendary:1000"
	DEFAULT_POST_MAX_LENGTH                 = 5000
	DEFAULT_COMMENT_MAX_LENGTH              = 2000
	DEFAULT_WRITE_RATE_LIMIT_PER_MINUTE     = 30
	DEFAULT_STREAK_LEADERBOARD_LIMIT        = 20
	DEFAULT_CRONJOB_TIME_STREAK_LEADERBOARD = "*/10 * * * *"
	DEFAULT_CRONJOB_TIME_COLLECTION_WINDOW  = "* * * * *"

	RARITY_WEIGHT_TOTAL = 10000

	LEADERBOARD_STREAK = "streak"

	CURRENCY_HISTORY_DEFAULT_LIMIT = 50
	CURRENCY_HISTORY_MAX_LIMIT     = 200
	POSTS_MAX_LIMIT                = 50

	CACHE_TTL_5_SECONDS = 5 * time.Second
	CACHE_TTL_1_MIN     = 1 * time.Minute
	CACHE_TTL_5_MINS    = 5 * time.Minute
	CACHE_TTL_15_MINS   = 15 * time.Minute
	CACHE_TTL_1_HOUR    = 1 * time.Hour
)

// ledger reasons
const (
	REASON_CHECK_IN       = "check_in"
	REASON_DAILY_COMPLETE = "daily_complete"
	REASON_ACHIEVEMENT    = "achievement:%s"
	REASON_GACHA_STANDARD = "gacha_pull:standard"
	REASON_GACHA_PREMIUM  = "gacha_pull:premium"
	SOURCE_GACHA          = "gacha"
	SOURCE_ACHIEVEMENT    = "achievement"
)

func LockKeyUserEngagement(userID uuid.UUID) string {
	return fmt.Sprintf("lock:engagement:%s", userID)
}

func LimitKeyUserWrite(userID uuid.UUID) string {
	return fmt.Sprintf("limit:write:%s", userID)
}

// db
func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyProfile(userID uuid.UUID) string {
	return fmt.Sprintf("profile:%s", userID)
}

func DBKeyBoards() string {
	return "boards:all"
}

func DBKeyAchievementDefinitions() string {
	return "achievements:definitions"
}

func DBKeyCollectionPool(collectionID string) string {
	return fmt.Sprintf("gacha:pool:%s", collectionID)
}

func DBKeyLeaderboardByUser(name string, userID uuid.UUID, limit int) string {
	return fmt.Sprintf("leaderboard_by_user:%s:%s:%d", strings.ToLower(name), userID, limit)
}
