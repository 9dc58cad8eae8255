package dto

import (
	"time"

	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateDebtRequest defines the input for opening a debt.
//
// PrincipalAmount may be omitted when PrincipalOriginalAmount and PrincipalOriginalCurrency
// are given; the principal is then converted from the original figures.
type CreateDebtRequest struct {
	Direction                 domain.DebtDirection `json:"direction" validate:"required,oneof=they_owe_me i_owe"`
	CounterpartyID            string               `json:"counterpartyId,omitempty"`
	CounterpartyName          string               `json:"counterpartyName,omitempty" validate:"required_without=CounterpartyID,max=100"`
	PrincipalAmount           decimal.Decimal      `json:"principalAmount"`
	PrincipalCurrency         string               `json:"principalCurrency" validate:"required"`
	PrincipalOriginalAmount   *decimal.Decimal     `json:"principalOriginalAmount,omitempty"`
	PrincipalOriginalCurrency string               `json:"principalOriginalCurrency,omitempty" validate:"required_with=PrincipalOriginalAmount"`
	RepaymentCurrency         string               `json:"repaymentCurrency,omitempty"`
	RepaymentAmount           *decimal.Decimal     `json:"repaymentAmount,omitempty"`
	RepaymentRateOnStart      *decimal.Decimal     `json:"repaymentRateOnStart,omitempty"`
	IsFixedRepaymentAmount    bool                 `json:"isFixedRepaymentAmount"`
	StartDate                 *time.Time           `json:"startDate,omitempty"`
	DueDate                   *time.Time           `json:"dueDate,omitempty"`
	// AccountID, when set, records the money leaving or entering an account as a linked transaction.
	AccountID string `json:"accountId,omitempty"`
	Comment   string `json:"comment,omitempty" validate:"max=500"`
}

// RecordPaymentRequest defines one repayment.
type RecordPaymentRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency" validate:"required"`
	PaymentDate  *time.Time      `json:"paymentDate,omitempty"`
	AccountID    string          `json:"accountId,omitempty"`
	Note         string          `json:"note,omitempty" validate:"max=500"`
}

// CreateCounterpartyRequest defines the input for registering a counterparty.
type CreateCounterpartyRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=100"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,max=32"`
	Comment     string `json:"comment,omitempty" validate:"max=500"`
}
