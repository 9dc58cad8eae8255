package dto

import (
	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the input for opening an account.
type CreateAccountRequest struct {
	Name           string             `json:"name" validate:"required,max=100"`
	AccountType    domain.AccountType `json:"accountType" validate:"required,oneof=cash card bank savings credit investment"`
	CurrencyCode   string             `json:"currency" validate:"required"`
	InitialBalance decimal.Decimal    `json:"initialBalance"`
	LinkedGoalID   string             `json:"linkedGoalId,omitempty"`
	Description    string             `json:"description,omitempty" validate:"max=500"`
}

// UpdateAccountRequest patches descriptive fields. Currency and balances cannot be edited.
type UpdateAccountRequest struct {
	Name         *string             `json:"name,omitempty" validate:"omitempty,max=100"`
	AccountType  *domain.AccountType `json:"accountType,omitempty" validate:"omitempty,oneof=cash card bank savings credit investment"`
	LinkedGoalID *string             `json:"linkedGoalId,omitempty"`
	Description  *string             `json:"description,omitempty" validate:"omitempty,max=500"`
}

// ReconcileAccountResult compares the stored balance with the one replayed from transactions.
type ReconcileAccountResult struct {
	AccountID       string          `json:"accountId"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"`
	Difference      decimal.Decimal `json:"difference"`
	Transactions    int             `json:"transactions"`
}

// InBalance reports whether the stored and replayed balances agree.
func (r ReconcileAccountResult) InBalance() bool {
	return r.Difference.IsZero()
}
