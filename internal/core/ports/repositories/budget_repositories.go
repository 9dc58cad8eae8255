package repositories

import (
	"context"

	"github.com/SscSPs/money_ledger/internal/core/domain"
)

// BudgetReader defines read operations for budgets and their entries
type BudgetReader interface {
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)

	// FindBudgetEntry returns the entry for the (budget, transaction) pair, or apperrors.ErrNotFound.
	FindBudgetEntry(ctx context.Context, budgetID, transactionID string) (*domain.BudgetEntry, error)
	ListBudgetEntries(ctx context.Context, budgetID string) ([]domain.BudgetEntry, error)
}

// BudgetWriter defines write operations for budgets and their entries
type BudgetWriter interface {
	SaveBudget(ctx context.Context, budget domain.Budget) error

	// SaveBudgetEntry stores the entry under its (budget, transaction) key; a second entry for
	// the same pair replaces the first.
	SaveBudgetEntry(ctx context.Context, entry domain.BudgetEntry) error
	DeleteBudgetEntry(ctx context.Context, budgetID, transactionID string) error
}

// BudgetRepository combines all budget-related repository interfaces
type BudgetRepository interface {
	BudgetReader
	BudgetWriter
}
