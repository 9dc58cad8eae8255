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

type budgetRepository struct {
	tx *bolt.Tx
}

var _ repositories.BudgetRepository = (*budgetRepository)(nil)

// entryKey makes (budgetId, transactionId) the primary key, so at most one entry per pair can exist.
func entryKey(budgetID, transactionID string) string {
	return budgetID + "/" + transactionID
}

func (r *budgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	var budget domain.Budget
	found, err := getJSON(r.tx, repositories.CollectionBudgets, budgetID, &budget)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrBudgetNotFound, budgetID)
	}
	return &budget, nil
}

func (r *budgetRepository) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	budgets, err := listJSON(r.tx, repositories.CollectionBudgets, "", func(b domain.Budget) bool {
		return b.UserID == userID
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(budgets, func(i, j int) bool {
		return budgets[i].CreatedAt.Before(budgets[j].CreatedAt)
	})
	return budgets, nil
}

func (r *budgetRepository) FindBudgetEntry(ctx context.Context, budgetID, transactionID string) (*domain.BudgetEntry, error) {
	var entry domain.BudgetEntry
	found, err := getJSON(r.tx, repositories.CollectionBudgetEntries, entryKey(budgetID, transactionID), &entry)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.ErrNotFound
	}
	return &entry, nil
}

func (r *budgetRepository) ListBudgetEntries(ctx context.Context, budgetID string) ([]domain.BudgetEntry, error) {
	return listJSON[domain.BudgetEntry](r.tx, repositories.CollectionBudgetEntries, budgetID+"/", nil)
}

func (r *budgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	if err := putJSON(r.tx, repositories.CollectionBudgets, budget.BudgetID, budget); err != nil {
		return fmt.Errorf("failed to save budget %s: %w", budget.BudgetID, err)
	}
	return nil
}

func (r *budgetRepository) SaveBudgetEntry(ctx context.Context, entry domain.BudgetEntry) error {
	if err := putJSON(r.tx, repositories.CollectionBudgetEntries, entryKey(entry.BudgetID, entry.TransactionID), entry); err != nil {
		return fmt.Errorf("failed to save budget entry %s: %w", entry.EntryID, err)
	}
	return nil
}

func (r *budgetRepository) DeleteBudgetEntry(ctx context.Context, budgetID, transactionID string) error {
	b, err := bucket(r.tx, repositories.CollectionBudgetEntries)
	if err != nil {
		return err
	}
	return b.Delete([]byte(entryKey(budgetID, transactionID)))
}
