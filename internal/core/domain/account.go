package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType classifies an account for display; the ledger treats every type the same way.
type AccountType string

const (
	AccountTypeCash       AccountType = "cash"
	AccountTypeCard       AccountType = "card"
	AccountTypeBank       AccountType = "bank"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeInvestment AccountType = "investment"
)

// Account holds a balance in its own native currency.
// CurrentBalance is mutated exclusively by the transaction ledger.
type Account struct {
	AccountID      string          `json:"id"`
	UserID         string          `json:"userId"`
	Name           string          `json:"name"`
	AccountType    AccountType     `json:"accountType"`
	CurrencyCode   CurrencyCode    `json:"currency"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	ShowStatus     ShowStatus      `json:"showStatus"`
	LinkedGoalID   string          `json:"linkedGoalId,omitempty"` // opaque planner reference
	Description    string          `json:"description,omitempty"`
	AuditFields
}

// IsUsable reports whether new money movements may reference the account.
// Archived accounts stay usable; deleted ones do not.
func (a Account) IsUsable() bool {
	return a.ShowStatus != ShowDeleted
}
