package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type GachaCollection struct {
	bun.BaseModel `bun:"table:gacha_collections"`
	ID            string     `bun:"id,pk" json:"id"`
	Name          string     `bun:"name,notnull" json:"name"`
	Description   string     `bun:"description,notnull" json:"description"`
	StartDate     time.Time  `bun:"start_date,notnull" json:"start_date"`
	EndDate       *time.Time `bun:"end_date" json:"end_date"`
	IsActive      bool       `bun:"is_active,notnull,default:true" json:"is_active"`
}

// OpenAt reports whether the collection accepts pulls at t.
func (c *GachaCollection) OpenAt(t time.Time) bool {
	if !c.IsActive || t.Before(c.StartDate) {
		return false
	}
	return c.EndDate == nil || t.Before(*c.EndDate)
}

// InWindow ignores the is_active flag.
func (c *GachaCollection) InWindow(t time.Time) bool {
	return !t.Before(c.StartDate) && (c.EndDate == nil || t.Before(*c.EndDate))
}

type CollectionItem struct {
	bun.BaseModel `bun:"table:collection_items"`
	CollectionID  string     `bun:"collection_id,pk" json:"collection_id"`
	FlairID       string     `bun:"flair_id,pk" json:"flair_id"`
	Weight        int        `bun:"weight,notnull,default:1" json:"weight"`
	Flair         *FlairItem `bun:"rel:belongs-to,join:flair_id=id" json:"flair,omitempty"`
}

type GachaPull struct {
	bun.BaseModel `bun:"table:gacha_pull_records"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	UserID        uuid.UUID  `bun:"user_id,type:uuid,notnull" json:"user_id"`
	CollectionID  string     `bun:"collection_id,notnull" json:"collection_id"`
	FlairID       string     `bun:"flair_id,notnull" json:"flair_id"`
	PullTime      time.Time  `bun:"pull_time,nullzero,notnull,default:current_timestamp" json:"pull_time"`
	WasPremium    bool       `bun:"was_premium,notnull" json:"was_premium"`
	Flair         *FlairItem `bun:"rel:belongs-to,join:flair_id=id" json:"flair,omitempty"`
}

type CollectionView struct {
	GachaCollection
	Rarities []Rarity          `json:"rarities"`
	Items    []*CollectionItem `json:"items"`
}

type GachaState struct {
	Collections []*CollectionView `json:"collections"`
	Currency    Amount            `json:"currency"`
	RecentPulls []*GachaPull      `json:"recent_pulls"`
}
