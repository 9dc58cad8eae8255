package domain

import "github.com/shopspring/decimal"

// RatePrecision is the number of decimal places a rate is frozen with when it is snapshotted.
const RatePrecision int32 = 10

// Rate is a conversion factor kept as a fraction so that composing and inverting
// rates never loses precision before the final multiplication.
type Rate struct {
	Num decimal.Decimal
	Den decimal.Decimal
}

// IdentityRate converts a currency to itself.
var IdentityRate = Rate{Num: decimal.NewFromInt(1), Den: decimal.NewFromInt(1)}

// NewRate builds the factor num/den. den must be non-zero.
func NewRate(num, den decimal.Decimal) Rate {
	return Rate{Num: num, Den: den}
}

// Mul composes two rates: a from→x rate times an x→to rate gives from→to.
func (r Rate) Mul(other Rate) Rate {
	return Rate{Num: r.Num.Mul(other.Num), Den: r.Den.Mul(other.Den)}
}

// Inverse flips the direction of the rate.
func (r Rate) Inverse() Rate {
	return Rate{Num: r.Den, Den: r.Num}
}

// Apply converts amount with the full-precision fraction.
func (r Rate) Apply(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(r.Num).Div(r.Den)
}

// Decimal returns the factor rounded to RatePrecision places, the form stored on snapshots.
func (r Rate) Decimal() decimal.Decimal {
	return r.Num.DivRound(r.Den, RatePrecision)
}

// IsIdentity reports whether the rate is exactly 1.
func (r Rate) IsIdentity() bool {
	return r.Num.Equal(r.Den)
}
