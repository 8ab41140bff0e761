package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Amount is a pair of currency deltas or balances.
type Amount struct {
	Ink       int64 `json:"ink_points"`
	Prismatic int64 `json:"prismatic_ink"`
}

func (a Amount) IsZero() bool {
	return a.Ink == 0 && a.Prismatic == 0
}

func (a Amount) Negative() bool {
	return a.Ink < 0 || a.Prismatic < 0
}

type CurrencyAccount struct {
	bun.BaseModel `bun:"table:currency_accounts"`
	UserID        uuid.UUID `bun:"user_id,pk,type:uuid" json:"user_id"`
	InkPoints     int64     `bun:"ink_points,notnull,default:0" json:"ink_points"`
	PrismaticInk  int64     `bun:"prismatic_ink,notnull,default:0" json:"prismatic_ink"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (a *CurrencyAccount) Balance() Amount {
	if a == nil {
		return Amount{}
	}
	return Amount{Ink: a.InkPoints, Prismatic: a.PrismaticInk}
}

// CurrencyTransaction is the append-only history of ledger mutations.
type CurrencyTransaction struct {
	bun.BaseModel  `bun:"table:currency_transactions"`
	ID             uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID         uuid.UUID `bun:"user_id,type:uuid,notnull" json:"user_id"`
	InkDelta       int64     `bun:"ink_delta,notnull" json:"ink_delta"`
	PrismaticDelta int64     `bun:"prismatic_delta,notnull" json:"prismatic_delta"`
	Reason         string    `bun:"reason,notnull" json:"reason"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}
