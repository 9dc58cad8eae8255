package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	uow        portsrepo.TransactionManager
	conversion portssvc.ConversionSvc
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(uow portsrepo.TransactionManager, conversion portssvc.ConversionSvc, options ...ServiceOption) portssvc.ReportingService {
	return &reportingService{
		BaseService: newBaseService(options),
		uow:         uow,
		conversion:  conversion,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// NetWorth converts live balances, so unlike CashFlow it moves with every rate correction.
func (s *reportingService) NetWorth(ctx context.Context, session domain.Session, asOf time.Time) (*domain.NetWorthReport, error) {
	report := &domain.NetWorthReport{
		AsOf:     asOf,
		Accounts: []domain.AccountAmount{},
		Total:    decimal.Zero,
	}

	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		base, err := sessionBase(ctx, repos.Currencies, session)
		if err != nil {
			return err
		}
		report.BaseCurrency = base
		accounts, err := repos.Accounts.ListAccounts(ctx, session.UserID)
		if err != nil {
			return err
		}
		for _, account := range accounts {
			if account.ShowStatus == domain.ShowDeleted {
				continue
			}
			converted, err := s.conversion.ConvertInTx(ctx, repos, domain.ConversionRequest{
				Amount: account.CurrentBalance,
				From:   account.CurrencyCode,
				To:     base,
				AsOf:   &asOf,
				Side:   domain.RateSideMid,
			})
			if err != nil {
				return err
			}
			report.Accounts = append(report.Accounts, domain.AccountAmount{
				AccountID:      account.AccountID,
				Name:           account.Name,
				CurrencyCode:   account.CurrencyCode,
				Balance:        account.CurrentBalance,
				BaseAmount:     converted.ConvertedAmount,
				RateUsedToBase: converted.RateUsed,
			})
			report.Total = report.Total.Add(converted.ConvertedAmount)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to compute net worth",
			slog.String("user_id", session.UserID),
			slog.String("asOf", asOf.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to compute net worth: %w", err)
	}

	s.LogInfo(ctx, "Net worth report generated",
		slog.String("user_id", session.UserID),
		slog.Int("account_count", len(report.Accounts)),
		slog.String("total", report.Total.String()))
	return report, nil
}

// CashFlow reads only the frozen base snapshots. Transfers move money between the
// user's own accounts and are left out. A compensation whose original is deleted is left
// out as well, since the deleted original no longer counts.
func (s *reportingService) CashFlow(ctx context.Context, session domain.Session, from, to time.Time) (*domain.CashFlowReport, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: period end is before its start", apperrors.ErrValidation)
	}
	report := &domain.CashFlowReport{
		From:    from,
		To:      to,
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}

	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		base, err := sessionBase(ctx, repos.Currencies, session)
		if err != nil {
			return err
		}
		report.BaseCurrency = base
		all, err := repos.Transactions.ListTransactions(ctx, portsrepo.TransactionFilter{
			UserID:         session.UserID,
			IncludeDeleted: true,
		})
		if err != nil {
			return err
		}
		deleted := make(map[string]bool)
		for _, txn := range all {
			if !txn.IsActive() {
				deleted[txn.TransactionID] = true
			}
		}

		for _, txn := range all {
			if !txn.IsActive() || txn.Type == domain.Transfer || deleted[txn.CompensatesID] {
				continue
			}
			if txn.Date.Before(from) || txn.Date.After(to) {
				continue
			}
			if txn.BaseCurrency != base {
				report.Skipped++
				continue
			}
			if txn.Type == domain.Income {
				report.Income = report.Income.Add(txn.ConvertedAmountToBase)
			} else {
				report.Expense = report.Expense.Add(txn.ConvertedAmountToBase)
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to compute cash flow",
			slog.String("user_id", session.UserID),
			slog.String("from", from.Format(time.RFC3339)),
			slog.String("to", to.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to compute cash flow: %w", err)
	}

	report.Net = report.Income.Sub(report.Expense)
	if report.Skipped > 0 {
		s.GetLogger(ctx).Warn("Cash flow skipped transactions snapshotted in another base currency",
			slog.String("user_id", session.UserID),
			slog.Int("skipped", report.Skipped))
	}
	return report, nil
}
