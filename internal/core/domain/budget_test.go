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

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriod(t *testing.T) {
	t.Run("weekly is monday to sunday", func(t *testing.T) {
		// 2024-05-15 is a Wednesday.
		start, end, err := domain.ResolvePeriod(domain.PeriodWeekly, day(2024, 5, 15).Add(15*time.Hour), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, day(2024, 5, 13), *start)
		assert.Equal(t, day(2024, 5, 19), *end)
	})

	t.Run("weekly on a sunday stays in the same week", func(t *testing.T) {
		start, end, err := domain.ResolvePeriod(domain.PeriodWeekly, day(2024, 5, 19), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, day(2024, 5, 13), *start)
		assert.Equal(t, day(2024, 5, 19), *end)
	})

	t.Run("monthly covers a leap february", func(t *testing.T) {
		start, end, err := domain.ResolvePeriod(domain.PeriodMonthly, day(2024, 2, 10), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, day(2024, 2, 1), *start)
		assert.Equal(t, day(2024, 2, 29), *end)
	})

	t.Run("custom range requires ordered bounds", func(t *testing.T) {
		_, _, err := domain.ResolvePeriod(domain.PeriodCustomRange, time.Now(), nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		from, to := day(2024, 3, 10), day(2024, 3, 1)
		_, _, err = domain.ResolvePeriod(domain.PeriodCustomRange, time.Now(), &from, &to)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("none has no bounds", func(t *testing.T) {
		start, end, err := domain.ResolvePeriod(domain.PeriodNone, time.Now(), nil, nil)
		require.NoError(t, err)
		assert.Nil(t, start)
		assert.Nil(t, end)
	})
}

func TestBudget_Matches(t *testing.T) {
	start, end := day(2024, 5, 1), day(2024, 5, 31)
	budget := domain.Budget{
		UserID:          "u1",
		CategoryIDs:     []string{"food", "cafe"},
		TransactionType: domain.Expense,
		StartDate:       &start,
		EndDate:         &end,
	}
	base := domain.Transaction{UserID: "u1", Type: domain.Expense, AccountID: "a1", CategoryID: "food", Date: day(2024, 5, 31).Add(23 * time.Hour), ShowStatus: domain.ShowActive}

	tests := []struct {
		name   string
		budget func(domain.Budget) domain.Budget
		txn    func(domain.Transaction) domain.Transaction
		want   bool
	}{
		{name: "end date is inclusive", want: true},
		{name: "other category", txn: func(t domain.Transaction) domain.Transaction { t.CategoryID = "rent"; return t }},
		{name: "other type", txn: func(t domain.Transaction) domain.Transaction { t.Type = domain.Income; return t }},
		{name: "outside window", txn: func(t domain.Transaction) domain.Transaction { t.Date = day(2024, 6, 1); return t }},
		{name: "deleted", txn: func(t domain.Transaction) domain.Transaction { t.ShowStatus = domain.ShowDeleted; return t }},
		{name: "compensation", txn: func(t domain.Transaction) domain.Transaction { t.CompensatesID = "x"; return t }},
		{name: "other user", txn: func(t domain.Transaction) domain.Transaction { t.UserID = "u2"; return t }},
		{name: "empty category list matches any", want: true,
			budget: func(b domain.Budget) domain.Budget { b.CategoryIDs = nil; return b },
			txn:    func(t domain.Transaction) domain.Transaction { t.CategoryID = "rent"; return t }},
		{name: "account filter matches transfer destination", want: true,
			budget: func(b domain.Budget) domain.Budget { b.AccountID = "a2"; b.TransactionType = ""; return b },
			txn: func(t domain.Transaction) domain.Transaction {
				t.Type, t.AccountID, t.FromAccountID, t.ToAccountID = domain.Transfer, "", "a1", "a2"
				return t
			}},
		{name: "account filter mismatch",
			budget: func(b domain.Budget) domain.Budget { b.AccountID = "a9"; return b }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, txn := budget, base
			if tt.budget != nil {
				b = tt.budget(b)
			}
			if tt.txn != nil {
				txn = tt.txn(txn)
			}
			assert.Equal(t, tt.want, b.Matches(txn))
		})
	}
}

func TestBudget_ApplyTotals(t *testing.T) {
	tests := []struct {
		name      string
		limit     string
		spent     string
		remaining string
		percent   string
		overspent bool
	}{
		{name: "under", limit: "200", spent: "50", remaining: "150", percent: "25"},
		{name: "rounded", limit: "300", spent: "100", remaining: "200", percent: "33.33"},
		{name: "clamped", limit: "100", spent: "300", remaining: "-200", percent: "125", overspent: true},
		{name: "exactly at limit", limit: "100", spent: "100", remaining: "0", percent: "100"},
		{name: "zero limit", limit: "0", spent: "10", remaining: "-10", percent: "0", overspent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := domain.Budget{LimitAmount: decimal.RequireFromString(tt.limit)}
			b.ApplyTotals(decimal.RequireFromString(tt.spent))
			assert.Equal(t, tt.remaining, b.RemainingAmount.String())
			assert.Equal(t, tt.percent, b.PercentUsed.String())
			assert.Equal(t, tt.overspent, b.IsOverspent)
		})
	}
}

func TestBudget_NextPeriod(t *testing.T) {
	start, end := day(2024, 1, 1), day(2024, 1, 31)
	b := domain.Budget{PeriodType: domain.PeriodMonthly, StartDate: &start, EndDate: &end}
	nextStart, nextEnd, err := b.NextPeriod()
	require.NoError(t, err)
	assert.Equal(t, day(2024, 2, 1), *nextStart)
	assert.Equal(t, day(2024, 2, 29), *nextEnd)

	b.PeriodType = domain.PeriodCustomRange
	b.EndDate = timePtr(day(2024, 1, 10))
	nextStart, nextEnd, err = b.NextPeriod()
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 11), *nextStart)
	assert.Equal(t, day(2024, 1, 20), *nextEnd)

	_, _, err = domain.Budget{PeriodType: domain.PeriodNone}.NextPeriod()
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
