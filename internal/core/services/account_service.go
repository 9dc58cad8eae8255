package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_ledger/internal/dto"
	"github.com/SscSPs/money_ledger/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface.
// It never changes CurrentBalance after creation; only the transaction ledger does.
type accountService struct {
	BaseService
	uow portsrepo.TransactionManager
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(uow portsrepo.TransactionManager, options ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountService{BaseService: newBaseService(options), uow: uow}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// findOwnedAccount hides accounts of other users behind a not-found error.
func findOwnedAccount(ctx context.Context, repo portsrepo.AccountReader, userID, accountID string) (*domain.Account, error) {
	account, err := repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return account, nil
}

func (s *accountService) CreateAccount(ctx context.Context, session domain.Session, req dto.CreateAccountRequest) (*domain.Account, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	var account domain.Account
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		currency, err := normalizeCurrency(ctx, repos.Currencies, req.CurrencyCode)
		if err != nil {
			return err
		}
		account = domain.Account{
			AccountID:      uuid.NewString(),
			UserID:         session.UserID,
			Name:           req.Name,
			AccountType:    req.AccountType,
			CurrencyCode:   currency,
			InitialBalance: req.InitialBalance,
			CurrentBalance: req.InitialBalance,
			ShowStatus:     domain.ShowActive,
			LinkedGoalID:   req.LinkedGoalID,
			Description:    req.Description,
			AuditFields:    domain.NewAuditFields(session.UserID, s.Now()),
		}
		return repos.Accounts.SaveAccount(ctx, account)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create account",
			slog.String("user_id", session.UserID),
			slog.String("currency", req.CurrencyCode))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("currency", string(account.CurrencyCode)))
	s.Publish(ctx, portssvc.ChangeEvent{Kind: portssvc.ChangeAccounts, UserID: session.UserID, IDs: []string{account.AccountID}})
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, session domain.Session, accountID string) (*domain.Account, error) {
	var account *domain.Account
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		var err error
		account, err = findOwnedAccount(ctx, repos.Accounts, session.UserID, accountID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, session domain.Session) ([]domain.Account, error) {
	var accounts []domain.Account
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		all, err := repos.Accounts.ListAccounts(ctx, session.UserID)
		if err != nil {
			return err
		}
		accounts = make([]domain.Account, 0, len(all))
		for _, a := range all {
			if a.ShowStatus != domain.ShowDeleted {
				accounts = append(accounts, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, session domain.Session, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	account, err := s.mutate(ctx, session, accountID, func(a *domain.Account) error {
		if a.ShowStatus == domain.ShowDeleted {
			return apperrors.ErrAccountInactive
		}
		if req.Name != nil {
			a.Name = *req.Name
		}
		if req.AccountType != nil {
			a.AccountType = *req.AccountType
		}
		if req.LinkedGoalID != nil {
			a.LinkedGoalID = *req.LinkedGoalID
		}
		if req.Description != nil {
			a.Description = *req.Description
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

func (s *accountService) ArchiveAccount(ctx context.Context, session domain.Session, accountID string) error {
	_, err := s.mutate(ctx, session, accountID, func(a *domain.Account) error {
		if a.ShowStatus == domain.ShowDeleted {
			return apperrors.ErrAccountInactive
		}
		a.ShowStatus = domain.ShowArchived
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to archive account: %w", err)
	}
	return nil
}

// DeleteAccount soft-deletes: history keeps resolving the account, new movements are refused.
func (s *accountService) DeleteAccount(ctx context.Context, session domain.Session, accountID string) error {
	_, err := s.mutate(ctx, session, accountID, func(a *domain.Account) error {
		a.ShowStatus = domain.ShowDeleted
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func (s *accountService) PurgeAccount(ctx context.Context, session domain.Session, accountID string) error {
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		if _, err := findOwnedAccount(ctx, repos.Accounts, session.UserID, accountID); err != nil {
			return err
		}
		referenced, err := repos.Transactions.AccountHasTransactions(ctx, accountID)
		if err != nil {
			return err
		}
		if referenced {
			return apperrors.ErrAccountHasReferences
		}
		return repos.Accounts.DeleteAccount(ctx, accountID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to purge account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to purge account: %w", err)
	}
	s.LogInfo(ctx, "Account purged", slog.String("account_id", accountID))
	s.Publish(ctx, portssvc.ChangeEvent{Kind: portssvc.ChangeAccounts, UserID: session.UserID, IDs: []string{accountID}})
	return nil
}

// ReconcileAccount replays every transaction on the account, deleted ones included,
// because soft deletion never reverses a balance effect.
func (s *accountService) ReconcileAccount(ctx context.Context, session domain.Session, accountID string) (*dto.ReconcileAccountResult, error) {
	var result *dto.ReconcileAccountResult
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		account, err := findOwnedAccount(ctx, repos.Accounts, session.UserID, accountID)
		if err != nil {
			return err
		}
		txns, err := repos.Transactions.ListTransactions(ctx, portsrepo.TransactionFilter{
			UserID:         session.UserID,
			AccountID:      accountID,
			IncludeDeleted: true,
		})
		if err != nil {
			return err
		}
		expected := account.InitialBalance
		for _, txn := range txns {
			signed, err := accounting.CalculateSignedAmount(txn, accountID)
			if err != nil {
				return err
			}
			expected = expected.Add(signed)
		}
		result = &dto.ReconcileAccountResult{
			AccountID:       accountID,
			StoredBalance:   account.CurrentBalance,
			ExpectedBalance: expected,
			Difference:      account.CurrentBalance.Sub(expected),
			Transactions:    len(txns),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile account: %w", err)
	}
	if !result.InBalance() {
		s.GetLogger(ctx).Warn("Account balance drift detected",
			slog.String("account_id", accountID),
			slog.String("difference", result.Difference.String()))
	}
	return result, nil
}

func (s *accountService) mutate(ctx context.Context, session domain.Session, accountID string, fn func(*domain.Account) error) (*domain.Account, error) {
	var account *domain.Account
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		var err error
		account, err = findOwnedAccount(ctx, repos.Accounts, session.UserID, accountID)
		if err != nil {
			return err
		}
		if err := fn(account); err != nil {
			return err
		}
		account.Touch(session.UserID, s.Now())
		return repos.Accounts.SaveAccount(ctx, *account)
	})
	if err != nil {
		s.LogError(ctx, err, "Account update failed", slog.String("account_id", accountID))
		return nil, err
	}
	s.Publish(ctx, portssvc.ChangeEvent{Kind: portssvc.ChangeAccounts, UserID: session.UserID, IDs: []string{accountID}})
	return account, nil
}

// applyBalanceChanges adds each delta to its account's CurrentBalance within the caller's unit of work.
func applyBalanceChanges(ctx context.Context, repos portsrepo.Repositories, changes map[string]decimal.Decimal, userID string, now time.Time) error {
	for _, accountID := range sortedKeys(changes) {
		account, err := repos.Accounts.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		account.CurrentBalance = account.CurrentBalance.Add(changes[accountID])
		account.Touch(userID, now)
		if err := repos.Accounts.SaveAccount(ctx, *account); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
