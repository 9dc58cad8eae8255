package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// PeriodType decides how a budget's date window is resolved.
type PeriodType string

const (
	PeriodWeekly      PeriodType = "weekly"
	PeriodMonthly     PeriodType = "monthly"
	PeriodCustomRange PeriodType = "custom_range"
	PeriodNone        PeriodType = "none"
)

// RolloverMode decides what happens to the unspent remainder when a budget rolls into its next period.
type RolloverMode string

const (
	RolloverNone      RolloverMode = "none"
	RolloverCarryOver RolloverMode = "carry_over"
)

// MaxPercentUsed caps PercentUsed so that heavily overspent budgets still render sensibly.
var MaxPercentUsed = decimal.NewFromInt(125)

// Budget tracks a spending limit over a period and a category/account filter.
// SpentAmount, RemainingAmount, PercentUsed and IsOverspent are derived from the
// budget's entries and are never edited directly.
type Budget struct {
	BudgetID        string          `json:"id"`
	UserID          string          `json:"userId"`
	Name            string          `json:"name"`
	CategoryIDs     []string        `json:"categoryIds"`
	AccountID       string          `json:"accountId,omitempty"`
	TransactionType TransactionType `json:"transactionType,omitempty"`
	CurrencyCode    CurrencyCode    `json:"currency"`
	LimitAmount     decimal.Decimal `json:"limitAmount"`
	PeriodType      PeriodType      `json:"periodType"`
	StartDate       *time.Time      `json:"startDate,omitempty"`
	EndDate         *time.Time      `json:"endDate,omitempty"`
	SpentAmount     decimal.Decimal `json:"spentAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	PercentUsed     decimal.Decimal `json:"percentUsed"`
	IsOverspent     bool            `json:"isOverspent"`
	RolloverMode    RolloverMode    `json:"rolloverMode"`
	PreviousID      string          `json:"previousBudgetId,omitempty"`
	ShowStatus      ShowStatus      `json:"showStatus"`
	AuditFields
}

// BudgetEntry is the append-only record of one transaction counted against one budget.
// It freezes the conversion rate so historical totals survive later FX corrections.
// TransactionAmount and TransactionCurrency record what was converted, so a repeated
// application of an unchanged transaction can be recognised.
type BudgetEntry struct {
	EntryID                     string          `json:"id"`
	BudgetID                    string          `json:"budgetId"`
	TransactionID               string          `json:"transactionId"`
	AppliedAmountBudgetCurrency decimal.Decimal `json:"appliedAmountBudgetCurrency"`
	RateUsedTxnToBudget         decimal.Decimal `json:"rateUsedTxnToBudget"`
	TransactionAmount           decimal.Decimal `json:"transactionAmount"`
	TransactionCurrency         CurrencyCode    `json:"transactionCurrency"`
	SnapshottedAt               time.Time       `json:"snapshottedAt"`
}

// Reflects reports whether the entry was computed from txn's current amount and currency.
func (e BudgetEntry) Reflects(txn Transaction) bool {
	return e.TransactionCurrency == txn.CurrencyCode && e.TransactionAmount.Equal(txn.Amount)
}

// Matches reports whether txn is eligible to count against the budget.
func (b Budget) Matches(txn Transaction) bool {
	if !txn.IsActive() || txn.UserID != b.UserID || txn.CompensatesID != "" {
		return false
	}
	if b.TransactionType != "" && txn.Type != b.TransactionType {
		return false
	}
	if len(b.CategoryIDs) > 0 && !slices.Contains(b.CategoryIDs, txn.CategoryID) {
		return false
	}
	if b.AccountID != "" && !txn.References(b.AccountID) {
		return false
	}
	return b.Covers(txn.Date)
}

// Covers reports whether t falls inside the budget window; both bounds are inclusive days.
func (b Budget) Covers(t time.Time) bool {
	day := StartOfDay(t)
	if b.StartDate != nil && day.Before(StartOfDay(*b.StartDate)) {
		return false
	}
	if b.EndDate != nil && day.After(StartOfDay(*b.EndDate)) {
		return false
	}
	return true
}

// ApplyTotals derives the reporting fields from the sum of the budget's entries.
func (b *Budget) ApplyTotals(spent decimal.Decimal) {
	b.SpentAmount = spent
	b.RemainingAmount = b.LimitAmount.Sub(spent)
	b.IsOverspent = spent.GreaterThan(b.LimitAmount)
	b.PercentUsed = decimal.Zero
	if b.LimitAmount.IsPositive() {
		pct := spent.Div(b.LimitAmount).Mul(decimal.NewFromInt(100)).Round(2)
		switch {
		case pct.IsNegative():
			pct = decimal.Zero
		case pct.GreaterThan(MaxPercentUsed):
			pct = MaxPercentUsed
		}
		b.PercentUsed = pct
	}
}

// ResolvePeriod computes the inclusive window for a period type.
// Weekly is Monday–Sunday of selected, monthly the first–last day of its month,
// custom_range takes the caller's bounds and none has no bounds at all.
func ResolvePeriod(periodType PeriodType, selected time.Time, start, end *time.Time) (*time.Time, *time.Time, error) {
	switch periodType {
	case PeriodWeekly:
		day := StartOfDay(selected)
		offset := (int(day.Weekday()) + 6) % 7 // Monday == 0
		monday := day.AddDate(0, 0, -offset)
		sunday := monday.AddDate(0, 0, 6)
		return &monday, &sunday, nil
	case PeriodMonthly:
		day := StartOfDay(selected)
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		last := first.AddDate(0, 1, -1)
		return &first, &last, nil
	case PeriodCustomRange:
		if start == nil || end == nil {
			return nil, nil, fmt.Errorf("%w: custom range requires start and end dates", apperrors.ErrValidation)
		}
		s, e := StartOfDay(*start), StartOfDay(*end)
		if e.Before(s) {
			return nil, nil, fmt.Errorf("%w: end date is before start date", apperrors.ErrValidation)
		}
		return &s, &e, nil
	case PeriodNone:
		return nil, nil, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown period type '%s'", apperrors.ErrValidation, periodType)
}

// NextPeriod returns the window immediately following the budget's current one.
func (b Budget) NextPeriod() (*time.Time, *time.Time, error) {
	if b.EndDate == nil {
		return nil, nil, fmt.Errorf("%w: budget without an end date cannot roll over", apperrors.ErrValidation)
	}
	next := b.EndDate.AddDate(0, 0, 1)
	switch b.PeriodType {
	case PeriodWeekly, PeriodMonthly:
		return ResolvePeriod(b.PeriodType, next, nil, nil)
	case PeriodCustomRange:
		length := b.EndDate.Sub(*b.StartDate)
		end := next.Add(length)
		return ResolvePeriod(PeriodCustomRange, next, &next, &end)
	}
	return nil, nil, fmt.Errorf("%w: period type '%s' cannot roll over", apperrors.ErrValidation, b.PeriodType)
}

// StartOfDay truncates t to midnight in UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
