package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Profile struct {
	bun.BaseModel `bun:"table:profiles"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Username      string    `bun:"username,notnull" json:"username"`
	AvatarURL     *string   `bun:"avatar_url" json:"avatar_url"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// UserFromAuth only use in middleware
type UserFromAuth struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
}

type Me struct {
	Profile  *Profile `json:"profile"`
	Currency Amount   `json:"currency"`
	Streak   int      `json:"streak"`
}
