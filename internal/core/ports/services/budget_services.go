package services

import (
	"context"

	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/money_ledger/internal/dto"
)

// GoalLinkChecker answers whether any planner goal still points at a budget.
// The planner owns goals; the ledger only asks.
type GoalLinkChecker interface {
	BudgetHasLinkedGoals(ctx context.Context, budgetID string) (bool, error)
}

// BudgetReaderSvc defines read operations for budgets
type BudgetReaderSvc interface {
	GetBudgetByID(ctx context.Context, session domain.Session, budgetID string) (*domain.Budget, error)
	ListBudgets(ctx context.Context, session domain.Session) ([]domain.Budget, error)
	ListBudgetEntries(ctx context.Context, session domain.Session, budgetID string) ([]domain.BudgetEntry, error)

	// BudgetHasLinkedGoals exposes the planner guard used by archive and delete.
	BudgetHasLinkedGoals(ctx context.Context, budgetID string) (bool, error)
}

// BudgetWriterSvc defines write operations for budgets
type BudgetWriterSvc interface {
	// CreateBudget resolves the period window and backfills entries from existing transactions.
	CreateBudget(ctx context.Context, session domain.Session, req dto.CreateBudgetRequest) (*domain.Budget, error)
	UpdateBudget(ctx context.Context, session domain.Session, budgetID string, req dto.UpdateBudgetRequest) (*domain.Budget, error)

	// RecomputeBudget rebuilds the derived totals from the budget's entries.
	RecomputeBudget(ctx context.Context, session domain.Session, budgetID string) (*domain.Budget, error)
	ArchiveBudget(ctx context.Context, session domain.Session, budgetID string) error
	DeleteBudget(ctx context.Context, session domain.Session, budgetID string) error

	// RolloverBudget opens the next period of a weekly, monthly or custom budget.
	RolloverBudget(ctx context.Context, session domain.Session, budgetID string) (*domain.Budget, error)
}

// BudgetApplier is how the transaction ledger feeds budgets inside its own unit of work.
type BudgetApplier interface {
	// ApplyTransactionToBudgets adds, rewrites or removes the transaction's entry on every
	// budget of the owner and refreshes the totals of each budget it touched.
	ApplyTransactionToBudgets(ctx context.Context, repos repositories.Repositories, txn domain.Transaction) error
}

// BudgetSvcFacade combines all budget-related service interfaces
type BudgetSvcFacade interface {
	BudgetReaderSvc
	BudgetWriterSvc
	BudgetApplier
}
