package datastore

import (
	"context"
	"time"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func CreateTableCurrencyAccount(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.CurrencyAccount)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return addCheckConstraint(ctx, db, "currency_accounts", "currency_accounts_non_negative", "ink_points >= 0 AND prismatic_ink >= 0")
}

func CreateTableCurrencyTransaction(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.CurrencyTransaction)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.CurrencyTransaction)(nil)).Index("index_currency_transactions_user_id_created_at").IfNotExists().Column("user_id", "created_at").Exec(ctx)
	return err
}

func (s *PostgresStore) GetCurrencyAccount(ctx context.Context, userID uuid.UUID) (*models.CurrencyAccount, error) {
	var account models.CurrencyAccount
	err := s.db.NewSelect().Model(&account).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

func (s *PostgresStore) LockCurrencyAccount(ctx context.Context, userID uuid.UUID) (*models.CurrencyAccount, error) {
	_, err := s.db.NewInsert().Model(&models.CurrencyAccount{UserID: userID}).On("CONFLICT (user_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return nil, err
	}

	var account models.CurrencyAccount
	err = s.db.NewSelect().Model(&account).Where("user_id = ?", userID).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

func (s *PostgresStore) UpdateCurrencyAccount(ctx context.Context, account *models.CurrencyAccount) error {
	account.UpdatedAt = time.Now()
	_, err := s.db.NewUpdate().Model(account).Column("ink_points", "prismatic_ink", "updated_at").WherePK().Exec(ctx)
	return err
}

func (s *PostgresStore) InsertCurrencyTransaction(ctx context.Context, transaction *models.CurrencyTransaction) error {
	_, err := s.db.NewInsert().Model(transaction).Exec(ctx)
	return err
}

func (s *PostgresStore) ListCurrencyTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*models.CurrencyTransaction, error) {
	var transactions []*models.CurrencyTransaction
	err := s.db.NewSelect().
		Model(&transactions).
		Where("user_id = ?", userID).
		OrderExpr("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return transactions, nil
}
