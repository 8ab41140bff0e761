package services

import (
	"context"
	"testing"

	"whiteboard/internal/datastore"
	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerCreditAndDebit(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	assert.Equal(t, models.Amount{}, f.balance(t, userID))

	f.fund(t, userID, models.Amount{Ink: 120, Prismatic: 3})
	err := f.store.RunInTx(f.ctx, func(ctx context.Context, repo datastore.Repository) error {
		account, err := f.ledger.Debit(ctx, repo, userID, models.Amount{Ink: 100, Prismatic: 1}, REASON_GACHA_STANDARD)
		if err != nil {
			return err
		}
		assert.Equal(t, models.Amount{Ink: 20, Prismatic: 2}, account.Balance())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.Amount{Ink: 20, Prismatic: 2}, f.balance(t, userID))

	history, err := f.ledger.GetCurrencyHistory(f.ctx, userID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestLedgerDebitNeverGoesNegative(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	f.fund(t, userID, models.Amount{Ink: 50})

	err := f.store.RunInTx(f.ctx, func(ctx context.Context, repo datastore.Repository) error {
		_, err := f.ledger.Debit(ctx, repo, userID, models.Amount{Ink: 100}, REASON_GACHA_STANDARD)
		return err
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, models.Amount{Ink: 50}, f.balance(t, userID))

	history, err := f.ledger.GetCurrencyHistory(f.ctx, userID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestLedgerRejectsNegativeAmounts(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	err := f.store.RunInTx(f.ctx, func(ctx context.Context, repo datastore.Repository) error {
		_, err := f.ledger.Credit(ctx, repo, userID, models.Amount{Ink: -5}, "test")
		return err
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	err = f.store.RunInTx(f.ctx, func(ctx context.Context, repo datastore.Repository) error {
		_, err := f.ledger.Debit(ctx, repo, userID, models.Amount{Prismatic: -1}, "test")
		return err
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, models.Amount{}, f.balance(t, userID))
}
