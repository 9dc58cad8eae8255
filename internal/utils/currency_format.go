package utils

import (
	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FormatWithCurrencyPrecision formats an amount with the minor units of a currency.
// Example: 12.3456 USD (2 minor units) returns "12.35"
// Example: 12.3456 JPY (0 minor units) returns "12"
func FormatWithCurrencyPrecision(amount decimal.Decimal, currency domain.Currency) string {
	return FormatWithPrecision(amount, currency.MinorUnits)
}

// FormatWithPrecision formats an amount with exactly precision fractional digits.
func FormatWithPrecision(amount decimal.Decimal, precision int32) string {
	return amount.StringFixed(precision)
}

// CurrencyFormatter formats amounts by currency code, falling back to the exact value
// for codes it does not know.
type CurrencyFormatter map[domain.CurrencyCode]domain.Currency

// NewCurrencyFormatter indexes currencies by code.
func NewCurrencyFormatter(currencies []domain.Currency) CurrencyFormatter {
	f := make(CurrencyFormatter, len(currencies))
	for _, c := range currencies {
		f[c.CurrencyCode] = c
	}
	return f
}

// Format renders amount followed by its currency code.
func (f CurrencyFormatter) Format(amount decimal.Decimal, code domain.CurrencyCode) string {
	if c, ok := f[code]; ok {
		return FormatWithCurrencyPrecision(amount, c) + " " + string(code)
	}
	return amount.String() + " " + string(code)
}
