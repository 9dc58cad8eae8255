package dto

import (
	"time"

	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SaveFxRateRequest defines a new rate version for a currency pair.
// When bid and ask are absent but SpreadPercent is set they are derived around RateMid.
type SaveFxRateRequest struct {
	FromCurrency  string            `json:"fromCurrency" yaml:"from" validate:"required"`
	ToCurrency    string            `json:"toCurrency" yaml:"to" validate:"required"`
	RateMid       decimal.Decimal   `json:"rateMid" yaml:"mid"`
	RateBid       *decimal.Decimal  `json:"rateBid,omitempty" yaml:"bid,omitempty"`
	RateAsk       *decimal.Decimal  `json:"rateAsk,omitempty" yaml:"ask,omitempty"`
	Nominal       *decimal.Decimal  `json:"nominal,omitempty" yaml:"nominal,omitempty"`
	SpreadPercent *decimal.Decimal  `json:"spreadPercent,omitempty" yaml:"spread,omitempty"`
	Source        domain.RateSource `json:"source" yaml:"source" validate:"omitempty,oneof=central_bank market manual derived"`
	Date          *time.Time        `json:"date,omitempty" yaml:"date,omitempty"`
	EffectiveFrom *time.Time        `json:"effectiveFrom,omitempty" yaml:"effectiveFrom,omitempty"`
}

// CorrectFxRateRequest edits an existing rate version in place.
type CorrectFxRateRequest struct {
	RateMid       *decimal.Decimal `json:"rateMid,omitempty"`
	RateBid       *decimal.Decimal `json:"rateBid,omitempty"`
	RateAsk       *decimal.Decimal `json:"rateAsk,omitempty"`
	Nominal       *decimal.Decimal `json:"nominal,omitempty"`
	SpreadPercent *decimal.Decimal `json:"spreadPercent,omitempty"`
}

// RateFile is the document format accepted by bulk rate imports.
type RateFile struct {
	Currencies []CreateCurrencyRequest `yaml:"currencies"`
	Rates      []SaveFxRateRequest     `yaml:"rates"`
}
