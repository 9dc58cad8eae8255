package services

import (
	"context"

	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/SscSPs/money_ledger/internal/dto"
)

// DebtReaderSvc defines read operations for debts
type DebtReaderSvc interface {
	GetDebtByID(ctx context.Context, session domain.Session, debtID string) (*domain.Debt, error)
	ListDebts(ctx context.Context, session domain.Session) ([]domain.Debt, error)
}

// DebtWriterSvc defines write operations for debts
type DebtWriterSvc interface {
	CreateDebt(ctx context.Context, session domain.Session, req dto.CreateDebtRequest) (*domain.Debt, error)

	// RecordPayment appends a payment with its conversions frozen at the payment date.
	RecordPayment(ctx context.Context, session domain.Session, debtID string, req dto.RecordPaymentRequest) (*domain.Debt, error)

	// RemovePayment takes a payment off an active debt and soft-deletes its linked transaction.
	RemovePayment(ctx context.Context, session domain.Session, debtID, paymentID string) (*domain.Debt, error)

	// SettleDebt freezes the final figures once the payments cover the obligation.
	SettleDebt(ctx context.Context, session domain.Session, debtID string) (*domain.Debt, error)

	// DeleteDebt soft-deletes a debt that has no payments.
	DeleteDebt(ctx context.Context, session domain.Session, debtID string) error
}

// DebtSvcFacade combines all debt-related service interfaces
type DebtSvcFacade interface {
	DebtReaderSvc
	DebtWriterSvc
}

// CounterpartySvcFacade manages the people debts are held with.
type CounterpartySvcFacade interface {
	CreateCounterparty(ctx context.Context, session domain.Session, req dto.CreateCounterpartyRequest) (*domain.Counterparty, error)
	GetCounterpartyByID(ctx context.Context, session domain.Session, counterpartyID string) (*domain.Counterparty, error)
	ListCounterparties(ctx context.Context, session domain.Session) ([]domain.Counterparty, error)
	ArchiveCounterparty(ctx context.Context, session domain.Session, counterpartyID string) error
}
