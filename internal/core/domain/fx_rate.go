package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// RateSource records where an FX rate came from.
type RateSource string

const (
	RateSourceCentralBank RateSource = "central_bank"
	RateSourceMarket      RateSource = "market"
	RateSourceManual      RateSource = "manual"
	RateSourceDerived     RateSource = "derived"
)

// IsValid reports whether s is a current (non-legacy) source label.
func (s RateSource) IsValid() bool {
	switch s {
	case RateSourceCentralBank, RateSourceMarket, RateSourceManual, RateSourceDerived:
		return true
	}
	return false
}

// RateSide selects which quote of a record a conversion uses.
type RateSide string

const (
	// RateSideMid is used for informational conversions such as dashboards.
	RateSideMid RateSide = "mid"
	// RateSideSell means the holder sells the source currency to acquire the target; uses the bid.
	RateSideSell RateSide = "sell"
	// RateSideBuy means the holder buys the source currency paying in the target; uses the ask.
	RateSideBuy RateSide = "buy"
)

// Opposite returns the side seen from the other currency of the pair.
func (s RateSide) Opposite() RateSide {
	switch s {
	case RateSideSell:
		return RateSideBuy
	case RateSideBuy:
		return RateSideSell
	}
	return RateSideMid
}

// FxRate is one versioned, time-scoped quote: Nominal units of FromCurrency cost
// RateMid units of ToCurrency. The record is valid on [EffectiveFrom, EffectiveUntil).
type FxRate struct {
	FxRateID       string           `json:"id"`
	Date           time.Time        `json:"date"`
	FromCurrency   CurrencyCode     `json:"fromCurrency"`
	ToCurrency     CurrencyCode     `json:"toCurrency"`
	RateMid        decimal.Decimal  `json:"rateMid"`
	RateBid        *decimal.Decimal `json:"rateBid,omitempty"`
	RateAsk        *decimal.Decimal `json:"rateAsk,omitempty"`
	Nominal        decimal.Decimal  `json:"nominal"`
	SpreadPercent  decimal.Decimal  `json:"spreadPercent"`
	Source         RateSource       `json:"source"`
	IsOverridden   bool             `json:"isOverridden"`
	EffectiveFrom  time.Time        `json:"effectiveFrom"`
	EffectiveUntil *time.Time       `json:"effectiveUntil,omitempty"` // nil means still current
	Version        int              `json:"version"`
	AuditFields
}

// Validate checks the quote invariants: positive mid and nominal, bid ≤ mid ≤ ask, and a non-empty window.
func (r FxRate) Validate() error {
	if r.FromCurrency == "" || r.ToCurrency == "" {
		return fmt.Errorf("%w: rate currencies are required", apperrors.ErrValidation)
	}
	if r.FromCurrency == r.ToCurrency {
		return fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}
	if !r.RateMid.IsPositive() {
		return fmt.Errorf("%w: mid rate must be positive", apperrors.ErrValidation)
	}
	if !r.Nominal.IsPositive() {
		return fmt.Errorf("%w: nominal must be positive", apperrors.ErrValidation)
	}
	if r.RateBid != nil && (!r.RateBid.IsPositive() || r.RateBid.GreaterThan(r.RateMid)) {
		return fmt.Errorf("%w: bid rate %s must be positive and not above mid %s", apperrors.ErrValidation, r.RateBid, r.RateMid)
	}
	if r.RateAsk != nil && r.RateAsk.LessThan(r.RateMid) {
		return fmt.Errorf("%w: ask rate %s must not be below mid %s", apperrors.ErrValidation, r.RateAsk, r.RateMid)
	}
	if r.SpreadPercent.IsNegative() {
		return fmt.Errorf("%w: spread percent cannot be negative", apperrors.ErrValidation)
	}
	if r.EffectiveUntil != nil && !r.EffectiveUntil.After(r.EffectiveFrom) {
		return fmt.Errorf("%w: effective window is empty", apperrors.ErrValidation)
	}
	return nil
}

// IsEffectiveAt reports whether t falls inside [EffectiveFrom, EffectiveUntil).
func (r FxRate) IsEffectiveAt(t time.Time) bool {
	if t.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveUntil == nil || t.Before(*r.EffectiveUntil)
}

// Quote returns the per-lot price for the requested side, falling back to mid
// when the record carries no bid or ask.
func (r FxRate) Quote(side RateSide) decimal.Decimal {
	switch side {
	case RateSideSell:
		if r.RateBid != nil {
			return *r.RateBid
		}
	case RateSideBuy:
		if r.RateAsk != nil {
			return *r.RateAsk
		}
	}
	return r.RateMid
}

// UnitRate is the FromCurrency→ToCurrency factor for a single unit, nominal applied.
func (r FxRate) UnitRate(side RateSide) Rate {
	nominal := r.Nominal
	if !nominal.IsPositive() {
		nominal = decimal.NewFromInt(1)
	}
	return NewRate(r.Quote(side), nominal)
}

// FillSpread derives whichever of bid/ask/spread is missing so that stored records are complete.
// A spread is split evenly around mid.
func (r *FxRate) FillSpread() {
	hundred := decimal.NewFromInt(100)
	switch {
	case r.RateBid == nil && r.RateAsk == nil && r.SpreadPercent.IsPositive():
		half := r.RateMid.Mul(r.SpreadPercent).Div(hundred.Mul(decimal.NewFromInt(2)))
		bid := r.RateMid.Sub(half)
		ask := r.RateMid.Add(half)
		r.RateBid, r.RateAsk = &bid, &ask
	case r.RateBid != nil && r.RateAsk != nil && r.SpreadPercent.IsZero() && r.RateMid.IsPositive():
		r.SpreadPercent = r.RateAsk.Sub(*r.RateBid).Div(r.RateMid).Mul(hundred).Round(4)
	}
}
