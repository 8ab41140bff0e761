package services

import (
	"context"
	"errors"

	"whiteboard/internal/datastore"
	"whiteboard/internal/models"
	"whiteboard/internal/pkg"

	"github.com/google/uuid"
	"github.com/samber/do"
)

// ServiceLedger owns the two currency balances. Credit and Debit run inside
// the caller's transaction so the balance moves together with whatever paid
// for or earned it.
type ServiceLedger struct {
	container *do.Injector
	store     datastore.Store
	clock     Clock
}

func NewServiceLedger(container *do.Injector) (*ServiceLedger, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLedger{container, store, invokeClock(container)}, nil
}

func (service *ServiceLedger) Credit(ctx context.Context, repo datastore.Repository, userID uuid.UUID, amount models.Amount, reason string) (*models.CurrencyAccount, error) {
	if amount.Negative() {
		return nil, ErrInvalidAmount
	}
	return service.apply(ctx, repo, userID, amount, reason)
}

// Debit fails with ErrInsufficientFunds, leaving the account untouched, when
// either balance would go below zero.
func (service *ServiceLedger) Debit(ctx context.Context, repo datastore.Repository, userID uuid.UUID, amount models.Amount, reason string) (*models.CurrencyAccount, error) {
	if amount.Negative() {
		return nil, ErrInvalidAmount
	}
	return service.apply(ctx, repo, userID, models.Amount{Ink: -amount.Ink, Prismatic: -amount.Prismatic}, reason)
}

func (service *ServiceLedger) apply(ctx context.Context, repo datastore.Repository, userID uuid.UUID, delta models.Amount, reason string) (*models.CurrencyAccount, error) {
	account, err := repo.LockCurrencyAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if delta.IsZero() {
		return account, nil
	}

	next := models.Amount{Ink: account.InkPoints + delta.Ink, Prismatic: account.PrismaticInk + delta.Prismatic}
	if next.Negative() {
		return nil, ErrInsufficientFunds
	}

	account.InkPoints = next.Ink
	account.PrismaticInk = next.Prismatic
	if err := repo.UpdateCurrencyAccount(ctx, account); err != nil {
		return nil, err
	}

	err = repo.InsertCurrencyTransaction(ctx, &models.CurrencyTransaction{
		ID:             uuid.New(),
		UserID:         userID,
		InkDelta:       delta.Ink,
		PrismaticDelta: delta.Prismatic,
		Reason:         reason,
		CreatedAt:      service.clock(),
	})
	if err != nil {
		return nil, err
	}

	for _, d := range []struct {
		currency string
		value    int64
	}{{"ink_points", delta.Ink}, {"prismatic_ink", delta.Prismatic}} {
		switch {
		case d.value > 0:
			metricCurrencyFlow.WithLabelValues(d.currency, "credit").Add(float64(d.value))
		case d.value < 0:
			metricCurrencyFlow.WithLabelValues(d.currency, "debit").Add(float64(-d.value))
		}
	}

	return account, nil
}

// GetBalance reads committed balances; a user who never earned anything has 0/0.
func (service *ServiceLedger) GetBalance(ctx context.Context, userID uuid.UUID) (models.Amount, error) {
	account, err := service.store.GetCurrencyAccount(ctx, userID)
	if errors.Is(err, datastore.ErrNotFound) {
		return models.Amount{}, nil
	}
	if err != nil {
		return models.Amount{}, err
	}
	return account.Balance(), nil
}

func (service *ServiceLedger) GetCurrencyHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*models.CurrencyTransaction, error) {
	if limit <= 0 {
		limit = CURRENCY_HISTORY_DEFAULT_LIMIT
	}
	limit, _ = pkg.Paginate(1, limit, CURRENCY_HISTORY_MAX_LIMIT)

	transactions, err := service.store.ListCurrencyTransactions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []*models.CurrencyTransaction{}
	}
	return transactions, nil
}
