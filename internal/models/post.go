package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Board struct {
	bun.BaseModel `bun:"table:boards"`
	ID            string `bun:"id,pk" json:"id"`
	Name          string `bun:"name,notnull" json:"name"`
	Description   string `bun:"description,notnull" json:"description"`
}

type Post struct {
	bun.BaseModel `bun:"table:posts"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	BoardID       string     `bun:"board_id,notnull" json:"board_id"`
	UserID        uuid.UUID  `bun:"user_id,type:uuid,notnull" json:"user_id"`
	Content       string     `bun:"content,notnull" json:"content"`
	PushCount     int        `bun:"push_count,notnull,default:0" json:"push_count"`
	LastBumpedBy  *uuid.UUID `bun:"last_bumped_by,type:uuid" json:"last_bumped_by"`
	PostDay       time.Time  `bun:"post_day,type:date,notnull" json:"-"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

type Comment struct {
	bun.BaseModel `bun:"table:comments"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	PostID        uuid.UUID `bun:"post_id,type:uuid,notnull" json:"post_id"`
	UserID        uuid.UUID `bun:"user_id,type:uuid,notnull" json:"user_id"`
	Content       string    `bun:"content,notnull" json:"content"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Thumb targets exactly one of PostID or CommentID.
type Thumb struct {
	bun.BaseModel `bun:"table:thumbs"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	UserID        uuid.UUID  `bun:"user_id,type:uuid,notnull" json:"user_id"`
	PostID        *uuid.UUID `bun:"post_id,type:uuid" json:"post_id"`
	CommentID     *uuid.UUID `bun:"comment_id,type:uuid" json:"comment_id"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type ThumbTarget struct {
	PostID    *uuid.UUID
	CommentID *uuid.UUID
}

func (t ThumbTarget) Valid() bool {
	return (t.PostID == nil) != (t.CommentID == nil)
}

type PostStats struct {
	CommentCount   int  `json:"comment_count"`
	ThumbCount     int  `json:"thumb_count"`
	UserHasThumbed bool `json:"user_has_thumbed"`
}

type PostView struct {
	Post
	PostStats
	Author *Profile                   `json:"author"`
	Flairs map[FlairType][]*FlairItem `json:"flairs"`
}

type BumpedPost struct {
	ID           uuid.UUID  `json:"id"`
	PushCount    int        `json:"push_count"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastBumpedBy *uuid.UUID `json:"last_bumped_by"`
	CommentCount int        `json:"comment_count"`
}
