package dto

import (
	"time"

	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest defines the input for creating a budget.
type CreateBudgetRequest struct {
	Name            string                 `json:"name" validate:"required,max=100"`
	CategoryIDs     []string               `json:"categoryIds,omitempty"`
	AccountID       string                 `json:"accountId,omitempty"`
	TransactionType domain.TransactionType `json:"transactionType,omitempty" validate:"omitempty,oneof=income expense transfer"`
	CurrencyCode    string                 `json:"currency" validate:"required"`
	LimitAmount     decimal.Decimal        `json:"limitAmount"`
	PeriodType      domain.PeriodType      `json:"periodType" validate:"required,oneof=weekly monthly custom_range none"`
	// SelectedDate anchors weekly and monthly periods. Nil means today.
	SelectedDate *time.Time          `json:"selectedDate,omitempty"`
	StartDate    *time.Time          `json:"startDate,omitempty" validate:"required_if=PeriodType custom_range"`
	EndDate      *time.Time          `json:"endDate,omitempty" validate:"required_if=PeriodType custom_range"`
	RolloverMode domain.RolloverMode `json:"rolloverMode,omitempty" validate:"omitempty,oneof=none carry_over"`
}

// UpdateBudgetRequest patches a budget. Filter changes trigger a full recompute.
type UpdateBudgetRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=100"`
	LimitAmount *decimal.Decimal `json:"limitAmount,omitempty"`
	CategoryIDs []string         `json:"categoryIds,omitempty"`
	AccountID   *string          `json:"accountId,omitempty"`
}
