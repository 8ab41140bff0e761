package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AchievementTrigger string

const (
	TriggerFirstPost     AchievementTrigger = "first_post"
	TriggerPosts         AchievementTrigger = "posts"
	TriggerComments      AchievementTrigger = "comments"
	TriggerThumbsGiven   AchievementTrigger = "thumbs_given"
	TriggerDailyComplete AchievementTrigger = "daily_complete"
	TriggerGachaPulls    AchievementTrigger = "gacha_pulls"
	// TriggerCheckInStreak tracks the best streak seen rather than a running count.
	TriggerCheckInStreak AchievementTrigger = "check_in_streak"
)

// AchievementDefinition is catalog data and is not mutated by the engine.
type AchievementDefinition struct {
	bun.BaseModel    `bun:"table:achievement_definitions"`
	ID               string             `bun:"id,pk" json:"id"`
	Name             string             `bun:"name,notnull" json:"name"`
	Description      string             `bun:"description,notnull" json:"description"`
	Category         string             `bun:"category,notnull" json:"category"`
	Trigger          AchievementTrigger `bun:"trigger,notnull" json:"trigger"`
	RequiredProgress int                `bun:"required_progress,notnull" json:"required_progress"`
	InkReward        int64              `bun:"ink_reward,notnull,default:0" json:"ink_reward"`
	PrismaticReward  int64              `bun:"prismatic_reward,notnull,default:0" json:"prismatic_reward"`
	FlairReward      *string            `bun:"flair_reward" json:"flair_reward"`
	Icon             string             `bun:"icon,notnull" json:"icon"`
}

type UserAchievement struct {
	bun.BaseModel   `bun:"table:user_achievements"`
	UserID          uuid.UUID  `bun:"user_id,pk,type:uuid" json:"user_id"`
	AchievementID   string     `bun:"achievement_id,pk" json:"achievement_id"`
	CurrentProgress int        `bun:"current_progress,notnull,default:0" json:"current_progress"`
	Completed       bool       `bun:"completed,notnull,default:false" json:"completed"`
	CompletedAt     *time.Time `bun:"completed_at" json:"completed_at"`
	RewardClaimed   bool       `bun:"reward_claimed,notnull,default:false" json:"reward_claimed"`
	ClaimedAt       *time.Time `bun:"claimed_at" json:"claimed_at"`
}

// AchievementProgress is a definition joined with the user's row, zero-valued when absent.
type AchievementProgress struct {
	AchievementDefinition
	CurrentProgress    int        `json:"current_progress"`
	Completed          bool       `json:"completed"`
	CompletedAt        *time.Time `json:"completed_at"`
	RewardClaimed      bool       `json:"reward_claimed"`
	ProgressPercentage int        `json:"progress_percentage"`
}

func ProgressPercentage(current, required int) int {
	if required <= 0 {
		return 100
	}
	p := int(math.Round(float64(current) / float64(required) * 100))
	return min(100, p)
}

type RewardBundle struct {
	InkPoints    int64      `json:"ink_points"`
	PrismaticInk int64      `json:"prismatic_ink"`
	Flair        *FlairItem `json:"flair"`
}
