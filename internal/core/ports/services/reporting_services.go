package services

import (
	"context"
	"time"

	"github.com/SscSPs/money_ledger/internal/core/domain"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// NetWorth converts every non-deleted account balance to the base currency at the mid rate.
	NetWorth(ctx context.Context, session domain.Session, asOf time.Time) (*domain.NetWorthReport, error)

	// CashFlow totals income and expense for a period from the frozen base snapshots.
	CashFlow(ctx context.Context, session domain.Session, from, to time.Time) (*domain.CashFlowReport, error)
}
