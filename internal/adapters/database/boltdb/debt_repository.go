package boltdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	bolt "go.etcd.io/bbolt"
)

type debtRepository struct {
	tx *bolt.Tx
}

var _ repositories.DebtRepository = (*debtRepository)(nil)

func (r *debtRepository) FindDebtByID(ctx context.Context, debtID string) (*domain.Debt, error) {
	var debt domain.Debt
	found, err := getJSON(r.tx, repositories.CollectionDebts, debtID, &debt)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDebtNotFound, debtID)
	}
	return &debt, nil
}

func (r *debtRepository) ListDebts(ctx context.Context, userID string) ([]domain.Debt, error) {
	debts, err := listJSON(r.tx, repositories.CollectionDebts, "", func(d domain.Debt) bool {
		return d.UserID == userID
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(debts, func(i, j int) bool {
		return debts[i].StartDate.After(debts[j].StartDate)
	})
	return debts, nil
}

func (r *debtRepository) SaveDebt(ctx context.Context, debt domain.Debt) error {
	if err := putJSON(r.tx, repositories.CollectionDebts, debt.DebtID, debt); err != nil {
		return fmt.Errorf("failed to save debt %s: %w", debt.DebtID, err)
	}
	return nil
}

type counterpartyRepository struct {
	tx *bolt.Tx
}

var _ repositories.CounterpartyRepository = (*counterpartyRepository)(nil)

func (r *counterpartyRepository) FindCounterpartyByID(ctx context.Context, counterpartyID string) (*domain.Counterparty, error) {
	var cp domain.Counterparty
	found, err := getJSON(r.tx, repositories.CollectionCounterparties, counterpartyID, &cp)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrCounterpartyNotFound, counterpartyID)
	}
	return &cp, nil
}

func (r *counterpartyRepository) ListCounterparties(ctx context.Context, userID string) ([]domain.Counterparty, error) {
	cps, err := listJSON(r.tx, repositories.CollectionCounterparties, "", func(c domain.Counterparty) bool {
		return c.UserID == userID
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(cps, func(i, j int) bool {
		return cps[i].DisplayName < cps[j].DisplayName
	})
	return cps, nil
}

func (r *counterpartyRepository) SaveCounterparty(ctx context.Context, cp domain.Counterparty) error {
	return putJSON(r.tx, repositories.CollectionCounterparties, cp.CounterpartyID, cp)
}
