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

func crossCurrencyDebt() domain.Debt {
	return domain.Debt{
		DebtID:               "d1",
		Direction:            domain.IOwe,
		PrincipalAmount:      decimal.NewFromInt(1000),
		PrincipalCurrency:    "USD",
		BaseCurrency:         "USD",
		RateOnStart:          decimal.NewFromInt(1),
		PrincipalBaseValue:   decimal.NewFromInt(1000),
		RepaymentCurrency:    "EUR",
		RepaymentRateOnStart: decimalPtr(decimal.RequireFromString("0.90")),
		Status:               domain.DebtActive,
	}
}

func payment(amount, toDebt, toRepayment string) domain.DebtPayment {
	return domain.DebtPayment{
		PaymentID:                  "p-" + amount,
		Amount:                     decimal.RequireFromString(amount),
		CurrencyCode:               "EUR",
		ConvertedAmountToDebt:      decimal.RequireFromString(toDebt),
		ConvertedAmountToRepayment: decimal.RequireFromString(toRepayment),
	}
}

func TestDebt_SettleVariableRateLoss(t *testing.T) {
	debt := crossCurrencyDebt()
	// EUR/USD moved from 0.90 to 0.95: 1000 USD now costs 950 EUR.
	debt.Payments = []domain.DebtPayment{payment("950", "1000", "950")}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, debt.Settle(now))

	assert.Equal(t, domain.DebtPaid, debt.Status)
	assert.Equal(t, now, *debt.SettledAt)
	assert.Equal(t, "-50", debt.FinalProfitLoss.String(), "payer paid 50 EUR more than priced")
	assert.Equal(t, domain.CurrencyCode("EUR"), debt.FinalProfitLossCurrency)
	assert.Equal(t, "0.95", debt.FinalRateUsed.String())
	assert.Equal(t, "950", debt.TotalPaidInRepaymentCurrency.String())
	assert.Equal(t, "-50", debt.UserProfitLoss().String(), "the owner is the payer of an i_owe debt")

	debt.Direction = domain.TheyOweMe
	assert.Equal(t, "50", debt.UserProfitLoss().String())
}

func TestDebt_SettleFixedRepayment(t *testing.T) {
	debt := crossCurrencyDebt()
	debt.IsFixedRepaymentAmount = true
	debt.RepaymentAmount = decimalPtr(decimal.NewFromInt(900))
	debt.Payments = []domain.DebtPayment{payment("500", "520", "500"), payment("400", "430", "400")}

	require.NoError(t, debt.Settle(time.Now()))
	assert.True(t, debt.FinalProfitLoss.IsZero(), "a fixed amount paid exactly carries no FX result")
}

func TestDebt_SettleGuards(t *testing.T) {
	debt := crossCurrencyDebt()
	debt.Payments = []domain.DebtPayment{payment("500", "526.3", "500")}
	assert.False(t, debt.IsSettleable())
	assert.ErrorIs(t, debt.Settle(time.Now()), apperrors.ErrDebtNotSettleable)
	assert.Equal(t, "473.7", debt.OutstandingAmount().String())

	debt.Payments = append(debt.Payments, payment("500", "526.3", "500"))
	require.NoError(t, debt.Settle(time.Now()))
	assert.True(t, debt.OutstandingAmount().IsZero(), "overpayment never shows as negative")
	assert.ErrorIs(t, debt.Settle(time.Now()), apperrors.ErrDebtAlreadySettled)
}

func TestDebt_Defaults(t *testing.T) {
	debt := domain.Debt{PrincipalAmount: decimal.NewFromInt(10), PrincipalCurrency: "UZS"}
	assert.Equal(t, domain.CurrencyCode("UZS"), debt.EffectiveRepaymentCurrency())
	assert.True(t, debt.EffectiveRepaymentRate().Equal(decimal.NewFromInt(1)))
	assert.True(t, debt.AgreedRepaymentAmount().Equal(decimal.NewFromInt(10)))
	assert.Equal(t, -1, debt.FindPayment("nope"))
}
