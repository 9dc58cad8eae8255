package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usdUzsRate() domain.FxRate {
	return domain.FxRate{
		FxRateID:      "r1",
		FromCurrency:  "USD",
		ToCurrency:    "UZS",
		RateMid:       decimal.NewFromInt(12600),
		Nominal:       decimal.NewFromInt(1),
		Source:        domain.RateSourceCentralBank,
		EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFxRate_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.FxRate)
		valid  bool
	}{
		{name: "mid only", mutate: func(*domain.FxRate) {}, valid: true},
		{name: "ordered spread", valid: true, mutate: func(r *domain.FxRate) {
			r.RateBid = decimalPtr(decimal.NewFromInt(12550))
			r.RateAsk = decimalPtr(decimal.NewFromInt(12650))
		}},
		{name: "bid above mid", mutate: func(r *domain.FxRate) { r.RateBid = decimalPtr(decimal.NewFromInt(12700)) }},
		{name: "ask below mid", mutate: func(r *domain.FxRate) { r.RateAsk = decimalPtr(decimal.NewFromInt(12500)) }},
		{name: "same currency", mutate: func(r *domain.FxRate) { r.ToCurrency = "USD" }},
		{name: "zero mid", mutate: func(r *domain.FxRate) { r.RateMid = decimal.Zero }},
		{name: "zero nominal", mutate: func(r *domain.FxRate) { r.Nominal = decimal.Zero }},
		{name: "empty window", mutate: func(r *domain.FxRate) { r.EffectiveUntil = timePtr(r.EffectiveFrom) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := usdUzsRate()
			tt.mutate(&r)
			err := r.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			}
		})
	}
}

func TestFxRate_IsEffectiveAt(t *testing.T) {
	r := usdUzsRate()
	until := r.EffectiveFrom.AddDate(0, 1, 0)
	r.EffectiveUntil = &until

	assert.False(t, r.IsEffectiveAt(r.EffectiveFrom.Add(-time.Nanosecond)))
	assert.True(t, r.IsEffectiveAt(r.EffectiveFrom), "lower bound is inclusive")
	assert.True(t, r.IsEffectiveAt(until.Add(-time.Nanosecond)))
	assert.False(t, r.IsEffectiveAt(until), "upper bound is exclusive")

	r.EffectiveUntil = nil
	assert.True(t, r.IsEffectiveAt(r.EffectiveFrom.AddDate(10, 0, 0)), "open window is still current")
}

func TestFxRate_QuoteAndNominal(t *testing.T) {
	r := domain.FxRate{
		FromCurrency: "JPY",
		ToCurrency:   "UZS",
		RateMid:      decimal.NewFromInt(8500),
		RateBid:      decimalPtr(decimal.NewFromInt(8400)),
		Nominal:      decimal.NewFromInt(100),
	}
	assert.True(t, r.Quote(domain.RateSideSell).Equal(decimal.NewFromInt(8400)))
	assert.True(t, r.Quote(domain.RateSideBuy).Equal(decimal.NewFromInt(8500)), "missing ask falls back to mid")
	assert.True(t, r.UnitRate(domain.RateSideMid).Apply(decimal.NewFromInt(1)).Equal(decimal.NewFromInt(85)))
}

func TestFxRate_FillSpread(t *testing.T) {
	t.Run("derives bid and ask from spread", func(t *testing.T) {
		r := usdUzsRate()
		r.RateMid = decimal.NewFromInt(100)
		r.SpreadPercent = decimal.NewFromInt(2)
		r.FillSpread()
		require.NotNil(t, r.RateBid)
		require.NotNil(t, r.RateAsk)
		assert.True(t, r.RateBid.Equal(decimal.NewFromInt(99)))
		assert.True(t, r.RateAsk.Equal(decimal.NewFromInt(101)))
	})

	t.Run("derives spread from bid and ask", func(t *testing.T) {
		r := usdUzsRate()
		r.RateMid = decimal.NewFromInt(100)
		r.RateBid = decimalPtr(decimal.RequireFromString("99.5"))
		r.RateAsk = decimalPtr(decimal.RequireFromString("100.5"))
		r.FillSpread()
		assert.True(t, r.SpreadPercent.Equal(decimal.NewFromInt(1)))
	})
}

func TestRateSide_Opposite(t *testing.T) {
	assert.Equal(t, domain.RateSideBuy, domain.RateSideSell.Opposite())
	assert.Equal(t, domain.RateSideSell, domain.RateSideBuy.Opposite())
	assert.Equal(t, domain.RateSideMid, domain.RateSideMid.Opposite())
}
