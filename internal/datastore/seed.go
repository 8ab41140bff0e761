package datastore

import (
	"context"
	"time"

	"whiteboard/internal/models"
)

type Catalog struct {
	Boards          []*models.Board
	Flairs          []*models.FlairItem
	Achievements    []*models.AchievementDefinition
	Collections     []*models.GachaCollection
	CollectionItems []*models.CollectionItem
}

func strPtr(s string) *string {
	return &s
}

// DefaultCatalog is the content shipped with `migrate seed`.
func DefaultCatalog(now time.Time) *Catalog {
	launch := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	flairs := []*models.FlairItem{
		{ID: "border-chalk", Name: "Chalk Border", Description: "A dusty chalk outline.", Type: models.FlairTypeBorder, Rarity: models.RarityCommon, InkPrice: 50, CSSClass: "flair-border-chalk"},
		{ID: "border-marker", Name: "Marker Border", Description: "Bold dry-erase strokes.", Type: models.FlairTypeBorder, Rarity: models.RarityRare, InkPrice: 150, CSSClass: "flair-border-marker"},
		{ID: "border-neon", Name: "Neon Border", Description: "It hums quietly.", Type: models.FlairTypeBorder, Rarity: models.RarityEpic, PrismaticPrice: 2, CSSClass: "flair-border-neon"},
		{ID: "background-grid", Name: "Grid Paper", Description: "For the orderly mind.", Type: models.FlairTypeBackground, Rarity: models.RarityCommon, InkPrice: 50, CSSClass: "flair-bg-grid"},
		{ID: "background-blueprint", Name: "Blueprint", Description: "Plans within plans.", Type: models.FlairTypeBackground, Rarity: models.RarityRare, InkPrice: 200, CSSClass: "flair-bg-blueprint"},
		{ID: "background-aurora", Name: "Aurora", Description: "Shifting northern lights.", Type: models.FlairTypeBackground, Rarity: models.RarityLegendary, PrismaticPrice: 10, CSSClass: "flair-bg-aurora"},
		{ID: "effect-sparkle", Name: "Sparkle", Description: "A light shimmer.", Type: models.FlairTypeEffect, Rarity: models.RarityRare, InkPrice: 250, CSSClass: "flair-fx-sparkle"},
		{ID: "effect-prismatic", Name: "Prismatic Glow", Description: "Refracts every color at once.", Type: models.FlairTypeEffect, Rarity: models.RarityLegendary, PrismaticPrice: 12, CSSClass: "flair-fx-prismatic"},
		{ID: "badge-star", Name: "Gold Star", Description: "Top marks.", Type: models.FlairTypeBadge, Rarity: models.RarityCommon, InkPrice: 40, CSSClass: "flair-badge-star"},
		{ID: "badge-lucky-clover", Name: "Lucky Clover", Description: "Awarded to persistent pullers.", Type: models.FlairTypeBadge, Rarity: models.RarityEpic, PrismaticPrice: 3, CSSClass: "flair-badge-clover"},
		{ID: "trim-washi", Name: "Washi Tape", Description: "Patterned tape corners.", Type: models.FlairTypeTrim, Rarity: models.RarityCommon, InkPrice: 60, CSSClass: "flair-trim-washi"},
		{ID: "trim-golden", Name: "Golden Trim", Description: "For a month of dedication.", Type: models.FlairTypeTrim, Rarity: models.RarityEpic, PrismaticPrice: 4, CSSClass: "flair-trim-golden"},
	}

	achievements := []*models.AchievementDefinition{
		{ID: "first-post", Name: "First Post", Description: "Write your first post on the whiteboard.", Category: "social", Trigger: models.TriggerFirstPost, RequiredProgress: 1, InkReward: 25, Icon: "pen-line"},
		{ID: "prolific-poster", Name: "Prolific Poster", Description: "Write 10 posts.", Category: "social", Trigger: models.TriggerPosts, RequiredProgress: 10, InkReward: 100, PrismaticReward: 1, Icon: "notebook-pen"},
		{ID: "conversationalist", Name: "Conversationalist", Description: "Leave 25 comments.", Category: "social", Trigger: models.TriggerComments, RequiredProgress: 25, InkReward: 75, Icon: "messages-square"},
		{ID: "generous-thumbs", Name: "Generous Thumbs", Description: "Give 50 thumbs.", Category: "social", Trigger: models.TriggerThumbsGiven, RequiredProgress: 50, InkReward: 50, Icon: "thumbs-up"},
		{ID: "streak-7", Name: "One Week Streak", Description: "Check in 7 days in a row.", Category: "consistency", Trigger: models.TriggerCheckInStreak, RequiredProgress: 7, InkReward: 30, PrismaticReward: 1, Icon: "calendar-days"},
		{ID: "streak-30", Name: "Monthly Dedication", Description: "Check in 30 days in a row.", Category: "consistency", Trigger: models.TriggerCheckInStreak, RequiredProgress: 30, InkReward: 200, PrismaticReward: 5, FlairReward: strPtr("trim-golden"), Icon: "calendar-heart"},
		{ID: "daily-devotee", Name: "Daily Devotee", Description: "Complete every daily activity on 7 days.", Category: "consistency", Trigger: models.TriggerDailyComplete, RequiredProgress: 7, InkReward: 100, PrismaticReward: 2, Icon: "list-checks"},
		{ID: "lucky-draw", Name: "Lucky Draw", Description: "Pull from the gacha 10 times.", Category: "collection", Trigger: models.TriggerGachaPulls, RequiredProgress: 10, PrismaticReward: 1, FlairReward: strPtr("badge-lucky-clover"), Icon: "sparkles"},
	}

	collections := []*models.GachaCollection{
		{ID: "classroom-basics", Name: "Classroom Basics", Description: "The everyday essentials.", StartDate: launch, IsActive: true},
	}

	weights := map[models.Rarity]int{
		models.RarityCommon:    10,
		models.RarityRare:      6,
		models.RarityEpic:      3,
		models.RarityLegendary: 1,
	}
	var items []*models.CollectionItem
	for _, flair := range flairs {
		if flair.ID == "trim-golden" || flair.ID == "badge-lucky-clover" {
			continue
		}
		items = append(items, &models.CollectionItem{
			CollectionID: "classroom-basics",
			FlairID:      flair.ID,
			Weight:       weights[flair.Rarity],
		})
	}

	return &Catalog{
		Boards: []*models.Board{
			{ID: "general", Name: "General", Description: "Anything goes."},
			{ID: "showcase", Name: "Showcase", Description: "Show off what you made."},
			{ID: "questions", Name: "Questions", Description: "Ask the class."},
		},
		Flairs:          flairs,
		Achievements:    achievements,
		Collections:     collections,
		CollectionItems: items,
	}
}

// SeedCatalog inserts catalog rows, leaving existing ids untouched.
func SeedCatalog(ctx context.Context, repo Repository, catalog *Catalog) error {
	for _, board := range catalog.Boards {
		if err := repo.InsertBoard(ctx, board); err != nil {
			return err
		}
	}
	for _, flair := range catalog.Flairs {
		if err := repo.InsertFlairItem(ctx, flair); err != nil {
			return err
		}
	}
	for _, achievement := range catalog.Achievements {
		if err := repo.InsertAchievementDefinition(ctx, achievement); err != nil {
			return err
		}
	}
	for _, collection := range catalog.Collections {
		if err := repo.InsertCollection(ctx, collection); err != nil {
			return err
		}
	}
	for _, item := range catalog.CollectionItems {
		if err := repo.InsertCollectionItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
