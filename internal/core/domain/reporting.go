package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountAmount is one account's balance expressed both natively and in the reporting currency.
type AccountAmount struct {
	AccountID      string          `json:"accountID"`
	Name           string          `json:"name"`
	CurrencyCode   CurrencyCode    `json:"currency"`
	Balance        decimal.Decimal `json:"balance"`
	BaseAmount     decimal.Decimal `json:"baseAmount"`
	RateUsedToBase decimal.Decimal `json:"rateUsedToBase"`
}

// NetWorthReport sums account balances at the current mid rate. It is informational only.
type NetWorthReport struct {
	BaseCurrency CurrencyCode    `json:"baseCurrency"`
	AsOf         time.Time       `json:"asOf"`
	Accounts     []AccountAmount `json:"accounts"`
	Total        decimal.Decimal `json:"total"`
}

// CashFlowReport totals income and expense for a period from the frozen base snapshots.
type CashFlowReport struct {
	BaseCurrency CurrencyCode    `json:"baseCurrency"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Net          decimal.Decimal `json:"net"`
	// Skipped counts transactions whose snapshot is in another base currency.
	Skipped int `json:"skipped"`
}
