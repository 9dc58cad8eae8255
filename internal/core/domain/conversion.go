package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionRequest describes one currency conversion.
type ConversionRequest struct {
	Amount decimal.Decimal
	From   CurrencyCode
	To     CurrencyCode
	// AsOf selects the rate records valid at that instant. Nil means now.
	AsOf *time.Time
	// OverrideRate is a manual From→To factor, used verbatim when set.
	OverrideRate *decimal.Decimal
	// Side is RateSideMid unless the conversion models an actual exchange.
	Side RateSide
}

// ConversionResult carries the converted amount together with the factor that produced it.
// ConvertedAmount is computed with the full-precision Factor; RateUsed is that factor
// rounded to RatePrecision places, the form snapshots freeze.
type ConversionResult struct {
	ConvertedAmount decimal.Decimal
	RateUsed        decimal.Decimal
	Factor          Rate
	IsOverridden    bool
	// Path lists the currencies the conversion went through, endpoints included.
	Path []CurrencyCode
}
