package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type FlairType string

const (
	FlairTypeBorder     FlairType = "border"
	FlairTypeBackground FlairType = "background"
	FlairTypeEffect     FlairType = "effect"
	FlairTypeBadge      FlairType = "badge"
	FlairTypeTrim       FlairType = "trim"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Rarities is ordered from lowest to highest tier.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}

func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

type FlairItem struct {
	bun.BaseModel  `bun:"table:flair_items"`
	ID             string    `bun:"id,pk" json:"id"`
	Name           string    `bun:"name,notnull" json:"name"`
	Description    string    `bun:"description,notnull" json:"description"`
	Type           FlairType `bun:"type,notnull" json:"type"`
	Rarity         Rarity    `bun:"rarity,notnull" json:"rarity"`
	InkPrice       int64     `bun:"ink_price,notnull,default:0" json:"ink_price"`
	PrismaticPrice int64     `bun:"prismatic_price,notnull,default:0" json:"prismatic_price"`
	CSSClass       string    `bun:"css_class,notnull" json:"css_class"`
}

type InventoryItem struct {
	bun.BaseModel `bun:"table:inventory_items"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	UserID        uuid.UUID  `bun:"user_id,type:uuid,notnull" json:"user_id"`
	FlairID       string     `bun:"flair_id,notnull" json:"flair_id"`
	Source        string     `bun:"source,notnull" json:"source"`
	AcquiredAt    time.Time  `bun:"acquired_at,nullzero,notnull,default:current_timestamp" json:"acquired_at"`
	Flair         *FlairItem `bun:"rel:belongs-to,join:flair_id=id" json:"flair,omitempty"`
}

type PostFlair struct {
	bun.BaseModel `bun:"table:post_flair_applications"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	PostID        uuid.UUID  `bun:"post_id,type:uuid,notnull" json:"post_id"`
	FlairID       string     `bun:"flair_id,notnull" json:"flair_id"`
	AppliedAt     time.Time  `bun:"applied_at,nullzero,notnull,default:current_timestamp" json:"applied_at"`
	Flair         *FlairItem `bun:"rel:belongs-to,join:flair_id=id" json:"flair,omitempty"`
}

type InventoryEntry struct {
	InventoryItem
	AppliedTo []uuid.UUID `json:"applied_to"`
}

type Inventory struct {
	Items   []*InventoryEntry               `json:"inventory"`
	Grouped map[FlairType][]*InventoryEntry `json:"grouped_inventory"`
}

func GroupFlairsByType(items []*FlairItem) map[FlairType][]*FlairItem {
	grouped := map[FlairType][]*FlairItem{}
	for _, item := range items {
		grouped[item.Type] = append(grouped[item.Type], item)
	}
	return grouped
}
