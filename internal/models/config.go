package models

import (
	"github.com/uptrace/bun"
)

// Config holds runtime content tuning, keyed by the CONFIG_* names.
type Config struct {
	bun.BaseModel `bun:"table:config"`
	Key           string `bun:"key,pk" json:"key"`
	Value         string `bun:"value,notnull" json:"value"`
}
