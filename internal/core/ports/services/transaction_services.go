package services

import (
	"context"

	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/money_ledger/internal/dto"
)

// TransactionReaderSvc defines read operations for transaction data
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a transaction owned by the session user.
	GetTransactionByID(ctx context.Context, session domain.Session, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a page of the session user's transactions.
	ListTransactions(ctx context.Context, session domain.Session, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionWriterSvc defines write operations for transaction data
type TransactionWriterSvc interface {
	// CreateTransaction records a transaction, freezes its base snapshot and applies it to
	// account balances and budgets in one atomic write. A repeated idempotency key returns
	// the transaction created first.
	CreateTransaction(ctx context.Context, session domain.Session, req dto.CreateTransactionRequest) (*domain.Transaction, error)

	// UpdateTransaction patches a transaction, replacing its old balance effect with the new one.
	UpdateTransaction(ctx context.Context, session domain.Session, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error)

	// SoftDeleteTransaction hides a transaction. Balances are left untouched.
	SoftDeleteTransaction(ctx context.Context, session domain.Session, transactionID string) error

	// CompensateTransaction records the opposite movement of an existing transaction.
	CompensateTransaction(ctx context.Context, session domain.Session, transactionID string) (*domain.Transaction, error)
}

// TransactionRecorder lets other ledger services move money inside their own unit of work.
// Callers publish the resulting change events once their write commits.
type TransactionRecorder interface {
	CreateTransactionInTx(ctx context.Context, repos repositories.Repositories, session domain.Session, req dto.CreateTransactionRequest) (*domain.Transaction, error)
	SoftDeleteTransactionInTx(ctx context.Context, repos repositories.Repositories, session domain.Session, transactionID string) error
	CompensateTransactionInTx(ctx context.Context, repos repositories.Repositories, session domain.Session, transactionID string) (*domain.Transaction, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
	TransactionRecorder
}
