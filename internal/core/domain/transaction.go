package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionType is the kind of money movement a transaction records.
type TransactionType string

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// Transaction records one income, expense or transfer event.
//
// RateUsedToBase and ConvertedAmountToBase are a frozen snapshot taken at write time:
// ConvertedAmountToBase == Amount * RateUsedToBase, and later FX corrections never touch them.
// AccountAmount is the frozen effect on the account balance (the debit from FromAccountID for transfers),
// kept so that edits can subtract exactly what was applied.
// IsTransferRateManual is set only when a transfer's received amount or rate was given explicitly.
type Transaction struct {
	TransactionID         string           `json:"id"`
	UserID                string           `json:"userId"`
	Type                  TransactionType  `json:"type"`
	AccountID             string           `json:"accountId,omitempty"`
	FromAccountID         string           `json:"fromAccountId,omitempty"`
	ToAccountID           string           `json:"toAccountId,omitempty"`
	Amount                decimal.Decimal  `json:"amount"`
	CurrencyCode          CurrencyCode     `json:"currency"`
	BaseCurrency          CurrencyCode     `json:"baseCurrency"`
	RateUsedToBase        decimal.Decimal  `json:"rateUsedToBase"`
	ConvertedAmountToBase decimal.Decimal  `json:"convertedAmountToBase"`
	AccountAmount         decimal.Decimal  `json:"accountAmount"`
	RateUsedToAccount     decimal.Decimal  `json:"rateUsedToAccount"`
	ToAmount              *decimal.Decimal `json:"toAmount,omitempty"`
	ToCurrency            CurrencyCode     `json:"toCurrency,omitempty"`
	EffectiveRateFromTo   *decimal.Decimal `json:"effectiveRateFromTo,omitempty"`
	IsRateOverridden      bool             `json:"isRateOverridden"`
	IsTransferRateManual  bool             `json:"isTransferRateManual,omitempty"`
	CategoryID            string           `json:"categoryId,omitempty"`
	DebtID                string           `json:"debtId,omitempty"`
	CompensatesID         string           `json:"compensatesId,omitempty"`
	Note                  string           `json:"note,omitempty"`
	Date                  time.Time        `json:"date"`
	IdempotencyKey        string           `json:"idempotencyKey,omitempty"`
	ShowStatus            ShowStatus       `json:"showStatus"`
	DeletedAt             *time.Time       `json:"deletedAt,omitempty"`
	AuditFields
}

// IsActive reports whether the transaction is visible and counts towards budgets.
func (t Transaction) IsActive() bool {
	return t.ShowStatus != ShowDeleted
}

// AccountIDs lists every account the transaction moves money on.
func (t Transaction) AccountIDs() []string {
	if t.Type == Transfer {
		return []string{t.FromAccountID, t.ToAccountID}
	}
	return []string{t.AccountID}
}

// References reports whether the transaction touches accountID.
func (t Transaction) References(accountID string) bool {
	for _, id := range t.AccountIDs() {
		if id == accountID {
			return true
		}
	}
	return false
}

// Validate checks the shape of a transaction before it is persisted.
func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: unknown transaction type '%s'", apperrors.ErrValidation, t.Type)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: transaction amount must be positive", apperrors.ErrValidation)
	}
	if t.CurrencyCode == "" || t.BaseCurrency == "" {
		return fmt.Errorf("%w: currency and base currency are required", apperrors.ErrValidation)
	}
	switch t.Type {
	case Transfer:
		if t.FromAccountID == "" || t.ToAccountID == "" {
			return fmt.Errorf("%w: transfer requires both from and to accounts", apperrors.ErrValidation)
		}
		if t.FromAccountID == t.ToAccountID {
			return fmt.Errorf("%w: transfer accounts must differ", apperrors.ErrValidation)
		}
		if t.ToAmount == nil || !t.ToAmount.IsPositive() || t.ToCurrency == "" {
			return fmt.Errorf("%w: transfer requires a positive received amount", apperrors.ErrValidation)
		}
	default:
		if t.AccountID == "" {
			return fmt.Errorf("%w: %s requires an account", apperrors.ErrValidation, t.Type)
		}
	}
	if !t.ConvertedAmountToBase.Equal(t.Amount.Mul(t.RateUsedToBase)) {
		return fmt.Errorf("%w: base snapshot does not match amount * rate", apperrors.ErrValidation)
	}
	return nil
}
