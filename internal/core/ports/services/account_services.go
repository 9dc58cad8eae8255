package services

import (
	"context"

	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/SscSPs/money_ledger/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves an account owned by the session user.
	GetAccountByID(ctx context.Context, session domain.Session, accountID string) (*domain.Account, error)

	// ListAccounts returns the session user's accounts that are not deleted.
	ListAccounts(ctx context.Context, session domain.Session) ([]domain.Account, error)

	// ReconcileAccount replays the account's transactions and compares the result with the stored balance.
	ReconcileAccount(ctx context.Context, session domain.Session, accountID string) (*dto.ReconcileAccountResult, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount opens an account with CurrentBalance equal to its initial balance.
	CreateAccount(ctx context.Context, session domain.Session, req dto.CreateAccountRequest) (*domain.Account, error)

	// UpdateAccount patches descriptive fields.
	UpdateAccount(ctx context.Context, session domain.Session, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error)

	// ArchiveAccount hides an account while keeping it usable.
	ArchiveAccount(ctx context.Context, session domain.Session, accountID string) error

	// DeleteAccount soft-deletes an account.
	DeleteAccount(ctx context.Context, session domain.Session, accountID string) error

	// PurgeAccount removes an account permanently. It fails with apperrors.ErrAccountHasReferences
	// while any transaction references it.
	PurgeAccount(ctx context.Context, session domain.Session, accountID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
