package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// budgetService keeps budget entries in step with the transaction ledger.
// Entries are only written for active budgets; archived and deleted budgets keep what they had.
type budgetService struct {
	BaseService
	uow        portsrepo.TransactionManager
	conversion portssvc.ConversionSvc
	goals      portssvc.GoalLinkChecker
}

// NewBudgetService creates a new budget service. goals may be nil when no planner is wired,
// in which case no budget is considered linked.
func NewBudgetService(
	uow portsrepo.TransactionManager,
	conversion portssvc.ConversionSvc,
	goals portssvc.GoalLinkChecker,
	options ...ServiceOption,
) portssvc.BudgetSvcFacade {
	return &budgetService{
		BaseService: newBaseService(options),
		uow:         uow,
		conversion:  conversion,
		goals:       goals,
	}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

func (s *budgetService) CreateBudget(ctx context.Context, session domain.Session, req dto.CreateBudgetRequest) (*domain.Budget, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if req.LimitAmount.IsNegative() {
		return nil, fmt.Errorf("%w: budget limit cannot be negative", apperrors.ErrValidation)
	}
	selected := dateOrNow(req.SelectedDate, s.Now())
	start, end, err := domain.ResolvePeriod(req.PeriodType, selected, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	rollover := req.RolloverMode
	if rollover == "" {
		rollover = domain.RolloverNone
	}

	var budget domain.Budget
	err = s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		currency, err := normalizeCurrency(ctx, repos.Currencies, req.CurrencyCode)
		if err != nil {
			return err
		}
		if req.AccountID != "" {
			if _, err := findOwnedAccount(ctx, repos.Accounts, session.UserID, req.AccountID); err != nil {
				return err
			}
		}
		budget = domain.Budget{
			BudgetID:        uuid.NewString(),
			UserID:          session.UserID,
			Name:            req.Name,
			CategoryIDs:     req.CategoryIDs,
			AccountID:       req.AccountID,
			TransactionType: req.TransactionType,
			CurrencyCode:    currency,
			LimitAmount:     req.LimitAmount,
			PeriodType:      req.PeriodType,
			StartDate:       start,
			EndDate:         end,
			RolloverMode:    rollover,
			ShowStatus:      domain.ShowActive,
			AuditFields:     domain.NewAuditFields(session.UserID, s.Now()),
		}
		return s.syncBudgetInTx(ctx, repos, &budget)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create budget", slog.String("user_id", session.UserID))
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}

	s.LogInfo(ctx, "Budget created",
		slog.String("budget_id", budget.BudgetID),
		slog.String("spent", budget.SpentAmount.String()))
	s.publish(ctx, session, budget.BudgetID)
	return &budget, nil
}

func (s *budgetService) GetBudgetByID(ctx context.Context, session domain.Session, budgetID string) (*domain.Budget, error) {
	var budget *domain.Budget
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		var err error
		budget, err = findOwnedBudget(ctx, repos.Budgets, session.UserID, budgetID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return budget, nil
}

func (s *budgetService) ListBudgets(ctx context.Context, session domain.Session) ([]domain.Budget, error) {
	var budgets []domain.Budget
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		all, err := repos.Budgets.ListBudgets(ctx, session.UserID)
		if err != nil {
			return err
		}
		budgets = make([]domain.Budget, 0, len(all))
		for _, b := range all {
			if b.ShowStatus != domain.ShowDeleted {
				budgets = append(budgets, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

func (s *budgetService) ListBudgetEntries(ctx context.Context, session domain.Session, budgetID string) ([]domain.BudgetEntry, error) {
	var entries []domain.BudgetEntry
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		if _, err := findOwnedBudget(ctx, repos.Budgets, session.UserID, budgetID); err != nil {
			return err
		}
		var err error
		entries, err = repos.Budgets.ListBudgetEntries(ctx, budgetID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list budget entries: %w", err)
	}
	return entries, nil
}

func (s *budgetService) BudgetHasLinkedGoals(ctx context.Context, budgetID string) (bool, error) {
	if s.goals == nil {
		return false, nil
	}
	return s.goals.BudgetHasLinkedGoals(ctx, budgetID)
}

func (s *budgetService) UpdateBudget(ctx context.Context, session domain.Session, budgetID string, req dto.UpdateBudgetRequest) (*domain.Budget, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if req.LimitAmount != nil && req.LimitAmount.IsNegative() {
		return nil, fmt.Errorf("%w: budget limit cannot be negative", apperrors.ErrValidation)
	}

	var budget *domain.Budget
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		var err error
		budget, err = findOwnedBudget(ctx, repos.Budgets, session.UserID, budgetID)
		if err != nil {
			return err
		}
		if budget.ShowStatus == domain.ShowDeleted {
			return fmt.Errorf("%w: budget is deleted", apperrors.ErrConflict)
		}
		if req.Name != nil {
			budget.Name = *req.Name
		}
		if req.LimitAmount != nil {
			budget.LimitAmount = *req.LimitAmount
		}
		if req.CategoryIDs != nil {
			budget.CategoryIDs = req.CategoryIDs
		}
		if req.AccountID != nil {
			if *req.AccountID != "" {
				if _, err := findOwnedAccount(ctx, repos.Accounts, session.UserID, *req.AccountID); err != nil {
					return err
				}
			}
			budget.AccountID = *req.AccountID
		}
		budget.Touch(session.UserID, s.Now())
		if budget.ShowStatus != domain.ShowActive {
			return s.refreshTotals(ctx, repos, budget)
		}
		return s.syncBudgetInTx(ctx, repos, budget)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update budget", slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	s.publish(ctx, session, budgetID)
	return budget, nil
}

func (s *budgetService) RecomputeBudget(ctx context.Context, session domain.Session, budgetID string) (*domain.Budget, error) {
	var budget *domain.Budget
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		var err error
		budget, err = findOwnedBudget(ctx, repos.Budgets, session.UserID, budgetID)
		if err != nil {
			return err
		}
		return s.refreshTotals(ctx, repos, budget)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to recompute budget: %w", err)
	}
	s.LogDebug(ctx, "Budget recomputed",
		slog.String("budget_id", budgetID),
		slog.String("spent", budget.SpentAmount.String()))
	return budget, nil
}

func (s *budgetService) ArchiveBudget(ctx context.Context, session domain.Session, budgetID string) error {
	if err := s.setStatus(ctx, session, budgetID, domain.ShowArchived); err != nil {
		return fmt.Errorf("failed to archive budget: %w", err)
	}
	return nil
}

func (s *budgetService) DeleteBudget(ctx context.Context, session domain.Session, budgetID string) error {
	if err := s.setStatus(ctx, session, budgetID, domain.ShowDeleted); err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return nil
}

// setStatus resolves ownership before asking the planner about linked goals.
func (s *budgetService) setStatus(ctx context.Context, session domain.Session, budgetID string, status domain.ShowStatus) error {
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		_, err := findOwnedBudget(ctx, repos.Budgets, session.UserID, budgetID)
		return err
	})
	if err != nil {
		return err
	}
	linked, err := s.BudgetHasLinkedGoals(ctx, budgetID)
	if err != nil {
		return err
	}
	if linked {
		return apperrors.ErrBudgetHasLinkedGoals
	}
	err = s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		budget, err := findOwnedBudget(ctx, repos.Budgets, session.UserID, budgetID)
		if err != nil {
			return err
		}
		budget.ShowStatus = status
		budget.Touch(session.UserID, s.Now())
		return repos.Budgets.SaveBudget(ctx, *budget)
	})
	if err != nil {
		s.LogError(ctx, err, "Budget status change failed",
			slog.String("budget_id", budgetID),
			slog.String("status", string(status)))
		return err
	}
	s.LogInfo(ctx, "Budget status changed",
		slog.String("budget_id", budgetID),
		slog.String("status", string(status)))
	s.publish(ctx, session, budgetID)
	return nil
}

// RolloverBudget archives the budget and opens its next period. In carry_over mode the
// unspent remainder, never less than zero, is added to the next limit.
func (s *budgetService) RolloverBudget(ctx context.Context, session domain.Session, budgetID string) (*domain.Budget, error) {
	var next domain.Budget
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		current, err := findOwnedBudget(ctx, repos.Budgets, session.UserID, budgetID)
		if err != nil {
			return err
		}
		if current.ShowStatus != domain.ShowActive {
			return fmt.Errorf("%w: only active budgets roll over", apperrors.ErrConflict)
		}
		start, end, err := current.NextPeriod()
		if err != nil {
			return err
		}

		limit := current.LimitAmount
		if current.RolloverMode == domain.RolloverCarryOver {
			limit = limit.Add(decimal.Max(current.RemainingAmount, decimal.Zero))
		}

		now := s.Now()
		next = *current
		next.BudgetID = uuid.NewString()
		next.LimitAmount = limit
		next.StartDate = start
		next.EndDate = end
		next.PreviousID = current.BudgetID
		next.AuditFields = domain.NewAuditFields(session.UserID, now)
		next.ApplyTotals(decimal.Zero)

		current.ShowStatus = domain.ShowArchived
		current.Touch(session.UserID, now)
		if err := repos.Budgets.SaveBudget(ctx, *current); err != nil {
			return err
		}
		return s.syncBudgetInTx(ctx, repos, &next)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to roll over budget", slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to roll over budget: %w", err)
	}

	s.LogInfo(ctx, "Budget rolled over",
		slog.String("previous_budget_id", budgetID),
		slog.String("budget_id", next.BudgetID),
		slog.String("limit", next.LimitAmount.String()))
	s.publish(ctx, session, budgetID, next.BudgetID)
	return &next, nil
}

// ApplyTransactionToBudgets runs inside the ledger's unit of work. Applying the same
// transaction twice leaves entries and totals unchanged.
func (s *budgetService) ApplyTransactionToBudgets(ctx context.Context, repos portsrepo.Repositories, txn domain.Transaction) error {
	budgets, err := repos.Budgets.ListBudgets(ctx, txn.UserID)
	if err != nil {
		return err
	}
	for i := range budgets {
		budget := &budgets[i]
		if budget.ShowStatus != domain.ShowActive {
			continue
		}
		changed, err := s.syncEntry(ctx, repos, budget, txn)
		if err != nil {
			return err
		}
		if changed {
			if err := s.refreshTotals(ctx, repos, budget); err != nil {
				return err
			}
		}
	}
	return nil
}

// syncBudgetInTx reconciles every transaction of the owner against the budget and saves it.
func (s *budgetService) syncBudgetInTx(ctx context.Context, repos portsrepo.Repositories, budget *domain.Budget) error {
	txns, err := repos.Transactions.ListTransactions(ctx, portsrepo.TransactionFilter{
		UserID:         budget.UserID,
		IncludeDeleted: true,
	})
	if err != nil {
		return err
	}
	for _, txn := range txns {
		if _, err := s.syncEntry(ctx, repos, budget, txn); err != nil {
			return err
		}
	}
	return s.refreshTotals(ctx, repos, budget)
}

// syncEntry adds, rewrites or removes the (budget, txn) entry and reports whether it did any of those.
func (s *budgetService) syncEntry(ctx context.Context, repos portsrepo.Repositories, budget *domain.Budget, txn domain.Transaction) (bool, error) {
	existing, err := repos.Budgets.FindBudgetEntry(ctx, budget.BudgetID, txn.TransactionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return false, err
	}

	if !budget.Matches(txn) {
		if existing == nil {
			return false, nil
		}
		return true, repos.Budgets.DeleteBudgetEntry(ctx, budget.BudgetID, txn.TransactionID)
	}
	if existing != nil && existing.Reflects(txn) {
		return false, nil
	}

	rate, err := s.rateToBudget(ctx, repos, *budget, txn)
	if err != nil {
		return false, err
	}
	entry := domain.BudgetEntry{
		EntryID:                     uuid.NewString(),
		BudgetID:                    budget.BudgetID,
		TransactionID:               txn.TransactionID,
		AppliedAmountBudgetCurrency: txn.Amount.Mul(rate),
		RateUsedTxnToBudget:         rate,
		TransactionAmount:           txn.Amount,
		TransactionCurrency:         txn.CurrencyCode,
		SnapshottedAt:               s.Now(),
	}
	if existing != nil {
		entry.EntryID = existing.EntryID
	}
	return true, repos.Budgets.SaveBudgetEntry(ctx, entry)
}

// rateToBudget reuses the transaction's frozen base rate when the budget is kept in that
// base currency; otherwise it takes the mid rate on the transaction date.
func (s *budgetService) rateToBudget(ctx context.Context, repos portsrepo.Repositories, budget domain.Budget, txn domain.Transaction) (decimal.Decimal, error) {
	switch budget.CurrencyCode {
	case txn.CurrencyCode:
		return decimal.NewFromInt(1), nil
	case txn.BaseCurrency:
		return txn.RateUsedToBase, nil
	}
	result, err := s.conversion.ConvertInTx(ctx, repos, domain.ConversionRequest{
		Amount: txn.Amount,
		From:   txn.CurrencyCode,
		To:     budget.CurrencyCode,
		AsOf:   &txn.Date,
		Side:   domain.RateSideMid,
	})
	if err != nil {
		return decimal.Zero, err
	}
	return result.RateUsed, nil
}

func (s *budgetService) refreshTotals(ctx context.Context, repos portsrepo.Repositories, budget *domain.Budget) error {
	entries, err := repos.Budgets.ListBudgetEntries(ctx, budget.BudgetID)
	if err != nil {
		return err
	}
	spent := decimal.Zero
	for _, e := range entries {
		spent = spent.Add(e.AppliedAmountBudgetCurrency)
	}
	budget.ApplyTotals(spent)
	return repos.Budgets.SaveBudget(ctx, *budget)
}

func (s *budgetService) publish(ctx context.Context, session domain.Session, budgetIDs ...string) {
	s.Publish(ctx, portssvc.ChangeEvent{Kind: portssvc.ChangeBudgets, UserID: session.UserID, IDs: budgetIDs})
}

func findOwnedBudget(ctx context.Context, repo portsrepo.BudgetReader, userID, budgetID string) (*domain.Budget, error) {
	budget, err := repo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.UserID != userID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrBudgetNotFound, budgetID)
	}
	return budget, nil
}
