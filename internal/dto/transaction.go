package dto

import (
	"time"

	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the input for recording an income, expense or transfer.
type CreateTransactionRequest struct {
	Type          domain.TransactionType `json:"type" validate:"required,oneof=income expense transfer"`
	AccountID     string                 `json:"accountId,omitempty" validate:"required_unless=Type transfer"`
	FromAccountID string                 `json:"fromAccountId,omitempty" validate:"required_if=Type transfer"`
	ToAccountID   string                 `json:"toAccountId,omitempty" validate:"required_if=Type transfer"`
	Amount        decimal.Decimal        `json:"amount"`
	// CurrencyCode defaults to the (source) account currency when empty.
	CurrencyCode string `json:"currency,omitempty"`
	// ToAmount fixes what the receiving account gains on a transfer.
	ToAmount *decimal.Decimal `json:"toAmount,omitempty"`
	// EffectiveRateFromTo is a manual rate quoted as source units per destination unit.
	EffectiveRateFromTo *decimal.Decimal `json:"effectiveRateFromTo,omitempty"`
	// RateToBase overrides the base snapshot rate.
	RateToBase     *decimal.Decimal `json:"rateToBase,omitempty"`
	CategoryID     string           `json:"categoryId,omitempty"`
	DebtID         string           `json:"debtId,omitempty"`
	Note           string           `json:"note,omitempty" validate:"max=500"`
	Date           *time.Time       `json:"date,omitempty"`
	IdempotencyKey string           `json:"idempotencyKey,omitempty" validate:"max=128"`
}

// UpdateTransactionRequest patches a transaction. Nil fields are left unchanged.
// Amount, currency, account and date changes re-run the balance and budget effects.
type UpdateTransactionRequest struct {
	Amount              *decimal.Decimal `json:"amount,omitempty"`
	CurrencyCode        *string          `json:"currency,omitempty"`
	AccountID           *string          `json:"accountId,omitempty"`
	FromAccountID       *string          `json:"fromAccountId,omitempty"`
	ToAccountID         *string          `json:"toAccountId,omitempty"`
	ToAmount            *decimal.Decimal `json:"toAmount,omitempty"`
	EffectiveRateFromTo *decimal.Decimal `json:"effectiveRateFromTo,omitempty"`
	RateToBase          *decimal.Decimal `json:"rateToBase,omitempty"`
	CategoryID          *string          `json:"categoryId,omitempty"`
	Note                *string          `json:"note,omitempty" validate:"omitempty,max=500"`
	Date                *time.Time       `json:"date,omitempty"`
}

// TouchesSettledFields reports whether the patch changes anything that moves money.
func (r UpdateTransactionRequest) TouchesSettledFields() bool {
	return r.Amount != nil || r.CurrencyCode != nil || r.AccountID != nil ||
		r.FromAccountID != nil || r.ToAccountID != nil || r.ToAmount != nil ||
		r.EffectiveRateFromTo != nil || r.RateToBase != nil || r.Date != nil
}

// ListTransactionsParams defines the filter and paging for listing transactions.
type ListTransactionsParams struct {
	AccountID      string                 `json:"accountId,omitempty"`
	Type           domain.TransactionType `json:"type,omitempty" validate:"omitempty,oneof=income expense transfer"`
	CategoryID     string                 `json:"categoryId,omitempty"`
	DebtID         string                 `json:"debtId,omitempty"`
	From           *time.Time             `json:"from,omitempty"`
	To             *time.Time             `json:"to,omitempty"`
	IncludeDeleted bool                   `json:"includeDeleted,omitempty"`
	Limit          int                    `json:"limit,omitempty" validate:"min=0,max=500"`
	NextToken      string                 `json:"nextToken,omitempty"`
}

// ListTransactionsResponse is one page of transactions.
type ListTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	NextToken    *string              `json:"nextToken,omitempty"`
}
