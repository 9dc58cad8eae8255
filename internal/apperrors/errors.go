package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation is not allowed in the resource's current state.
var ErrConflict = errors.New("conflict with current state")

// ErrInternal indicates an unexpected failure inside the ledger.
var ErrInternal = errors.New("internal error")

// Not-found errors wrap ErrNotFound so callers can match either the specific or the generic kind.
var (
	ErrAccountNotFound      = fmt.Errorf("account %w", ErrNotFound)
	ErrTransactionNotFound  = fmt.Errorf("transaction %w", ErrNotFound)
	ErrBudgetNotFound       = fmt.Errorf("budget %w", ErrNotFound)
	ErrDebtNotFound         = fmt.Errorf("debt %w", ErrNotFound)
	ErrDebtPaymentNotFound  = fmt.Errorf("debt payment %w", ErrNotFound)
	ErrCounterpartyNotFound = fmt.Errorf("counterparty %w", ErrNotFound)
	ErrFxRateNotFound       = fmt.Errorf("fx rate %w", ErrNotFound)
	ErrCurrencyNotFound     = fmt.Errorf("currency %w", ErrNotFound)
)

// ErrRateUnavailable means no FX path exists between two currencies. It is never defaulted to 1:1.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// ErrInvalidCurrencyCode is returned at the boundary before any write touches the store.
var ErrInvalidCurrencyCode = fmt.Errorf("%w: invalid currency code", ErrValidation)

// Guard errors block destructive operations until the caller resolves them.
var (
	ErrDebtHasPayments      = fmt.Errorf("%w: debt has payments", ErrConflict)
	ErrBudgetHasLinkedGoals = fmt.Errorf("%w: budget has linked goals", ErrConflict)
	ErrAccountHasReferences = fmt.Errorf("%w: account is referenced by transactions", ErrConflict)
	ErrDebtAlreadySettled   = fmt.Errorf("%w: debt is already settled", ErrConflict)
	ErrDebtNotSettleable    = fmt.Errorf("%w: payments do not cover the agreed repayment", ErrConflict)
	ErrTransactionDeleted   = fmt.Errorf("%w: transaction is deleted", ErrConflict)
	ErrAccountInactive      = fmt.Errorf("%w: account is deleted", ErrValidation)
)
