package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// PostgresStore implements Store on bun. Inside RunInTx the same type is handed
// out bound to the transaction.
type PostgresStore struct {
	db       bun.IDB
	root     *bun.DB
	readonly bun.IDB
}

func NewPostgresStore(db *bun.DB, readonly *bun.DB) *PostgresStore {
	store := &PostgresStore{db: db, root: db, readonly: db}
	if readonly != nil {
		store.readonly = readonly
	}
	return store
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	if s.root == nil {
		return fn(ctx, s)
	}

	return s.root.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &PostgresStore{db: tx, readonly: tx})
	})
}

// catalog is used for content that is only written by migrations and seeds.
func (s *PostgresStore) catalog() bun.IDB {
	return s.readonly
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func dateArg(day time.Time) string {
	return day.UTC().Format(time.DateOnly)
}

func addCheckConstraint(ctx context.Context, db *bun.DB, table, name, expr string) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s", table, name))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)", table, name, expr))
	return err
}

// CreateTables creates every table and index the engine needs. It is safe to rerun.
func CreateTables(ctx context.Context, db *bun.DB) error {
	steps := []func(context.Context, *bun.DB) error{
		CreateTableConfig,
		CreateTableProfile,
		CreateTableCurrencyAccount,
		CreateTableCurrencyTransaction,
		CreateTableStreakState,
		CreateTableDailyActivity,
		CreateTableFlairItem,
		CreateTableAchievementDefinition,
		CreateTableUserAchievement,
		CreateTableInventoryItem,
		CreateTableBoard,
		CreateTablePost,
		CreateTablePostFlair,
		CreateTableComment,
		CreateTableThumb,
		CreateTableGachaCollection,
		CreateTableCollectionItem,
		CreateTableGachaPull,
	}
	for _, step := range steps {
		if err := step(ctx, db); err != nil {
			return err
		}
	}
	return nil
}
