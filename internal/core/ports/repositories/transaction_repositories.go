package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/money_ledger/internal/core/domain"
)

// TransactionFilter narrows ListTransactions. Zero values do not filter.
type TransactionFilter struct {
	UserID         string
	AccountID      string
	Type           domain.TransactionType
	CategoryID     string
	DebtID         string
	From           *time.Time
	To             *time.Time
	IncludeDeleted bool
}

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a specific transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionByIdempotencyKey returns the transaction a user created with key, if any.
	FindTransactionByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Transaction, error)

	// ListTransactions returns matching transactions ordered by date then creation time, newest first.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)

	// AccountHasTransactions reports whether any transaction, deleted or not, references the account.
	AccountHasTransactions(ctx context.Context, accountID string) (bool, error)
}

// TransactionWriter defines write operations for transaction data
type TransactionWriter interface {
	// SaveTransaction inserts or replaces a transaction and maintains the idempotency index.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
}

// TransactionRepository combines all transaction-related repository interfaces
type TransactionRepository interface {
	TransactionReader
	TransactionWriter
}
