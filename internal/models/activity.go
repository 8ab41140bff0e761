package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ActivityKind string

const (
	ActivityCheckIn   ActivityKind = "check_in"
	ActivityPosted    ActivityKind = "posted"
	ActivityCommented ActivityKind = "commented"
	ActivityLiked     ActivityKind = "liked"
)

func (k ActivityKind) Valid() bool {
	switch k {
	case ActivityCheckIn, ActivityPosted, ActivityCommented, ActivityLiked:
		return true
	}
	return false
}

type DailyActivity struct {
	bun.BaseModel `bun:"table:daily_activities"`
	UserID        uuid.UUID `bun:"user_id,pk,type:uuid" json:"user_id"`
	ActivityDate  time.Time `bun:"activity_date,pk,type:date" json:"date"`
	CheckIn       bool      `bun:"check_in,notnull,default:false" json:"check_in"`
	Posted        bool      `bun:"posted,notnull,default:false" json:"posted"`
	Commented     bool      `bun:"commented,notnull,default:false" json:"commented"`
	Liked         bool      `bun:"liked,notnull,default:false" json:"liked"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// AllCompleted is derived on every read and never stored.
func (d *DailyActivity) AllCompleted() bool {
	if d == nil {
		return false
	}
	return d.CheckIn && d.Posted && d.Commented && d.Liked
}

// Mark sets the flag for kind and reports whether it changed.
func (d *DailyActivity) Mark(kind ActivityKind) bool {
	var flag *bool
	switch kind {
	case ActivityCheckIn:
		flag = &d.CheckIn
	case ActivityPosted:
		flag = &d.Posted
	case ActivityCommented:
		flag = &d.Commented
	case ActivityLiked:
		flag = &d.Liked
	default:
		return false
	}
	if *flag {
		return false
	}
	*flag = true
	return true
}

type StreakState struct {
	bun.BaseModel `bun:"table:streak_states"`
	UserID        uuid.UUID  `bun:"user_id,pk,type:uuid" json:"user_id"`
	StreakDays    int        `bun:"streak_days,notnull,default:0" json:"streak_days"`
	LastCheckIn   *time.Time `bun:"last_check_in,type:date" json:"last_check_in"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

type ActivityStatus struct {
	CheckIn      bool `json:"check_in"`
	Posted       bool `json:"posted"`
	Commented    bool `json:"commented"`
	Liked        bool `json:"liked"`
	AllCompleted bool `json:"all_completed"`
}

func (d *DailyActivity) Status() ActivityStatus {
	if d == nil {
		return ActivityStatus{}
	}
	return ActivityStatus{
		CheckIn:      d.CheckIn,
		Posted:       d.Posted,
		Commented:    d.Commented,
		Liked:        d.Liked,
		AllCompleted: d.AllCompleted(),
	}
}
