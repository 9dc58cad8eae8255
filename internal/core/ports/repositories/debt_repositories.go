package repositories

import (
	"context"

	"github.com/SscSPs/money_ledger/internal/core/domain"
)

// DebtRepository persists debts together with their embedded payments.
type DebtRepository interface {
	FindDebtByID(ctx context.Context, debtID string) (*domain.Debt, error)
	ListDebts(ctx context.Context, userID string) ([]domain.Debt, error)
	SaveDebt(ctx context.Context, debt domain.Debt) error
}

// CounterpartyRepository persists debt counterparties.
type CounterpartyRepository interface {
	FindCounterpartyByID(ctx context.Context, counterpartyID string) (*domain.Counterparty, error)
	ListCounterparties(ctx context.Context, userID string) ([]domain.Counterparty, error)
	SaveCounterparty(ctx context.Context, counterparty domain.Counterparty) error
}
