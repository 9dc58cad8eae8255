package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_ledger/internal/dto"
	"github.com/SscSPs/money_ledger/internal/utils/accounting"
	"github.com/SscSPs/money_ledger/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 50

// transactionService is the only writer of account balances.
type transactionService struct {
	BaseService
	uow        portsrepo.TransactionManager
	conversion portssvc.ConversionSvc
	budgets    portssvc.BudgetApplier
}

// NewTransactionService creates a new transaction service. budgets may be nil when no
// budget tracking is wired.
func NewTransactionService(
	uow portsrepo.TransactionManager,
	conversion portssvc.ConversionSvc,
	budgets portssvc.BudgetApplier,
	options ...ServiceOption,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		BaseService: newBaseService(options),
		uow:         uow,
		conversion:  conversion,
		budgets:     budgets,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) CreateTransaction(ctx context.Context, session domain.Session, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	var (
		txn      *domain.Transaction
		replayed bool
	)
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		if req.IdempotencyKey != "" {
			existing, err := repos.Transactions.FindTransactionByIdempotencyKey(ctx, session.UserID, req.IdempotencyKey)
			if err == nil {
				txn, replayed = existing, true
				return nil
			}
			if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
		}
		var err error
		txn, err = s.CreateTransactionInTx(ctx, repos, session, req)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create transaction",
			slog.String("user_id", session.UserID),
			slog.String("type", string(req.Type)))
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if replayed {
		s.LogDebug(ctx, "Idempotent replay of transaction",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("idempotency_key", req.IdempotencyKey))
		return txn, nil
	}

	s.LogInfo(ctx, "Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("type", string(txn.Type)),
		slog.String("amount", txn.Amount.String()),
		slog.String("currency", string(txn.CurrencyCode)))
	s.publishMovement(ctx, *txn)
	return txn, nil
}

// CreateTransactionInTx builds, stores and applies a transaction inside the caller's unit of work.
// The idempotency key is stored but not checked here.
func (s *transactionService) CreateTransactionInTx(ctx context.Context, repos portsrepo.Repositories, session domain.Session, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	txn, err := s.buildTransaction(ctx, repos, session, req, nil)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	txn.TransactionID = uuid.NewString()
	txn.IdempotencyKey = req.IdempotencyKey
	txn.AuditFields = domain.NewAuditFields(session.UserID, now)

	if err := s.store(ctx, repos, nil, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) GetTransactionByID(ctx context.Context, session domain.Session, transactionID string) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		var err error
		txn, err = findOwnedTransaction(ctx, repos.Transactions, session.UserID, transactionID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, session domain.Session, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if err := dto.Validate(params); err != nil {
		return nil, err
	}

	var cursor *pagination.Cursor
	if params.NextToken != "" {
		c, err := pagination.DecodeToken(params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursor = &c
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	var all []domain.Transaction
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		var err error
		all, err = repos.Transactions.ListTransactions(ctx, portsrepo.TransactionFilter{
			UserID:         session.UserID,
			AccountID:      params.AccountID,
			Type:           params.Type,
			CategoryID:     params.CategoryID,
			DebtID:         params.DebtID,
			From:           params.From,
			To:             params.To,
			IncludeDeleted: params.IncludeDeleted,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	page := make([]domain.Transaction, 0, limit)
	var next *string
	for _, txn := range all {
		if cursor != nil && cursor.Precedes(txn.Date, txn.CreatedAt, txn.TransactionID) {
			continue
		}
		if len(page) == limit {
			last := page[len(page)-1]
			token := pagination.EncodeToken(last.Date, last.CreatedAt, last.TransactionID)
			next = &token
			break
		}
		page = append(page, txn)
	}
	return &dto.ListTransactionsResponse{Transactions: page, NextToken: next}, nil
}

func (s *transactionService) UpdateTransaction(ctx context.Context, session domain.Session, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	var updated *domain.Transaction
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		old, err := findOwnedTransaction(ctx, repos.Transactions, session.UserID, transactionID)
		if err != nil {
			return err
		}
		if !old.IsActive() {
			return apperrors.ErrTransactionDeleted
		}

		if !req.TouchesSettledFields() {
			next := *old
			if req.CategoryID != nil {
				next.CategoryID = *req.CategoryID
			}
			if req.Note != nil {
				next.Note = *req.Note
			}
			next.Touch(session.UserID, s.Now())
			if err := repos.Transactions.SaveTransaction(ctx, next); err != nil {
				return err
			}
			if err := s.applyBudgets(ctx, repos, next); err != nil {
				return err
			}
			updated = &next
			return nil
		}

		base, err := sessionBase(ctx, repos.Currencies, session)
		if err != nil {
			return err
		}
		session.BaseCurrency = base
		draft, frozenBase := patchedDraft(*old, req, session)
		next, err := s.buildTransaction(ctx, repos, session, draft, frozenBase)
		if err != nil {
			return err
		}
		if frozenBase != nil && old.IsRateOverridden && (old.Type != domain.Transfer || !old.IsTransferRateManual) {
			next.IsRateOverridden = true
		}
		next.TransactionID = old.TransactionID
		next.IdempotencyKey = old.IdempotencyKey
		next.CompensatesID = old.CompensatesID
		next.AuditFields = old.AuditFields
		next.Touch(session.UserID, s.Now())

		if err := s.store(ctx, repos, old, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.LogInfo(ctx, "Transaction updated", slog.String("transaction_id", transactionID))
	s.publishMovement(ctx, *updated)
	return updated, nil
}

func (s *transactionService) SoftDeleteTransaction(ctx context.Context, session domain.Session, transactionID string) error {
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		return s.SoftDeleteTransactionInTx(ctx, repos, session, transactionID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", transactionID))
	s.Publish(ctx,
		portssvc.ChangeEvent{Kind: portssvc.ChangeTransactions, UserID: session.UserID, IDs: []string{transactionID}},
		portssvc.ChangeEvent{Kind: portssvc.ChangeBudgets, UserID: session.UserID})
	return nil
}

// SoftDeleteTransactionInTx hides the transaction and drops its budget entries.
// The balance effect stays; deleting twice is a no-op.
func (s *transactionService) SoftDeleteTransactionInTx(ctx context.Context, repos portsrepo.Repositories, session domain.Session, transactionID string) error {
	txn, err := findOwnedTransaction(ctx, repos.Transactions, session.UserID, transactionID)
	if err != nil {
		return err
	}
	if !txn.IsActive() {
		return nil
	}
	now := s.Now()
	txn.ShowStatus = domain.ShowDeleted
	txn.DeletedAt = &now
	txn.Touch(session.UserID, now)
	if err := repos.Transactions.SaveTransaction(ctx, *txn); err != nil {
		return err
	}
	return s.applyBudgets(ctx, repos, *txn)
}

func (s *transactionService) CompensateTransaction(ctx context.Context, session domain.Session, transactionID string) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		var err error
		txn, err = s.CompensateTransactionInTx(ctx, repos, session, transactionID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to compensate transaction", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to compensate transaction: %w", err)
	}
	s.LogInfo(ctx, "Transaction compensated",
		slog.String("transaction_id", transactionID),
		slog.String("compensation_id", txn.TransactionID))
	s.publishMovement(ctx, *txn)
	return txn, nil
}

// CompensateTransactionInTx records the movement that cancels the original's balance effect.
// Income and expense reuse the original snapshot; a transfer runs back from destination to
// source and takes a fresh base snapshot at the original date.
func (s *transactionService) CompensateTransactionInTx(ctx context.Context, repos portsrepo.Repositories, session domain.Session, transactionID string) (*domain.Transaction, error) {
	original, err := findOwnedTransaction(ctx, repos.Transactions, session.UserID, transactionID)
	if err != nil {
		return nil, err
	}
	if original.CompensatesID != "" {
		return nil, fmt.Errorf("%w: a compensation cannot be compensated", apperrors.ErrValidation)
	}
	existing, err := repos.Transactions.ListTransactions(ctx, portsrepo.TransactionFilter{UserID: session.UserID, IncludeDeleted: true})
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if t.CompensatesID == original.TransactionID {
			return nil, fmt.Errorf("%w: transaction %s is already compensated by %s", apperrors.ErrConflict, original.TransactionID, t.TransactionID)
		}
	}
	for _, accountID := range original.AccountIDs() {
		if err := requireUsableAccount(ctx, repos.Accounts, session.UserID, accountID); err != nil {
			return nil, err
		}
	}

	now := s.Now()
	comp := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        session.UserID,
		CategoryID:    original.CategoryID,
		DebtID:        original.DebtID,
		CompensatesID: original.TransactionID,
		Note:          fmt.Sprintf("compensates %s", original.TransactionID),
		Date:          now,
		ShowStatus:    domain.ShowActive,
		AuditFields:   domain.NewAuditFields(session.UserID, now),
	}

	switch original.Type {
	case domain.Income, domain.Expense:
		comp.Type = domain.Expense
		if original.Type == domain.Expense {
			comp.Type = domain.Income
		}
		comp.AccountID = original.AccountID
		comp.Amount = original.Amount
		comp.CurrencyCode = original.CurrencyCode
		comp.AccountAmount = original.AccountAmount
		comp.RateUsedToAccount = original.RateUsedToAccount
		comp.BaseCurrency = original.BaseCurrency
		comp.RateUsedToBase = original.RateUsedToBase
		comp.ConvertedAmountToBase = original.ConvertedAmountToBase
		comp.IsRateOverridden = original.IsRateOverridden
	case domain.Transfer:
		if original.ToAmount == nil {
			return nil, fmt.Errorf("%w: transfer %s has no received amount", apperrors.ErrInternal, original.TransactionID)
		}
		sent := original.AccountAmount
		comp.Type = domain.Transfer
		comp.FromAccountID = original.ToAccountID
		comp.ToAccountID = original.FromAccountID
		comp.Amount = *original.ToAmount
		comp.CurrencyCode = original.ToCurrency
		comp.AccountAmount = *original.ToAmount
		comp.RateUsedToAccount = decimal.NewFromInt(1)
		comp.ToAmount = &sent
		comp.ToCurrency = original.CurrencyCode
		effective := comp.Amount.DivRound(sent, domain.RatePrecision)
		comp.EffectiveRateFromTo = &effective
		comp.IsRateOverridden = true
		comp.IsTransferRateManual = true

		base := original.BaseCurrency
		snapshot, err := s.conversion.ConvertInTx(ctx, repos, domain.ConversionRequest{
			Amount: comp.Amount,
			From:   comp.CurrencyCode,
			To:     base,
			AsOf:   &original.Date,
			Side:   domain.RateSideMid,
		})
		if err != nil {
			return nil, err
		}
		comp.BaseCurrency = base
		comp.RateUsedToBase = snapshot.RateUsed
		comp.ConvertedAmountToBase = comp.Amount.Mul(snapshot.RateUsed)
	default:
		return nil, fmt.Errorf("%w: unknown transaction type '%s'", apperrors.ErrValidation, original.Type)
	}

	if err := comp.Validate(); err != nil {
		return nil, err
	}
	if err := s.store(ctx, repos, nil, &comp); err != nil {
		return nil, err
	}
	return &comp, nil
}

// store persists next and moves balances by the difference between old's effect and next's.
func (s *transactionService) store(ctx context.Context, repos portsrepo.Repositories, old, next *domain.Transaction) error {
	newChanges, err := accounting.BalanceChanges(*next)
	if err != nil {
		return err
	}
	changes := newChanges
	if old != nil {
		oldChanges, err := accounting.BalanceChanges(*old)
		if err != nil {
			return err
		}
		changes = accounting.MergeChanges(accounting.ReversedChanges(oldChanges), newChanges)
	}

	if err := repos.Transactions.SaveTransaction(ctx, *next); err != nil {
		return err
	}
	if err := applyBalanceChanges(ctx, repos, changes, next.UserID, s.Now()); err != nil {
		return err
	}
	return s.applyBudgets(ctx, repos, *next)
}

func (s *transactionService) applyBudgets(ctx context.Context, repos portsrepo.Repositories, txn domain.Transaction) error {
	if s.budgets == nil {
		return nil
	}
	return s.budgets.ApplyTransactionToBudgets(ctx, repos, txn)
}

func (s *transactionService) publishMovement(ctx context.Context, txn domain.Transaction) {
	s.Publish(ctx,
		portssvc.ChangeEvent{Kind: portssvc.ChangeTransactions, UserID: txn.UserID, IDs: []string{txn.TransactionID}},
		portssvc.ChangeEvent{Kind: portssvc.ChangeAccounts, UserID: txn.UserID, IDs: txn.AccountIDs()},
		portssvc.ChangeEvent{Kind: portssvc.ChangeBudgets, UserID: txn.UserID})
}

// buildTransaction resolves accounts and currencies and takes every snapshot a transaction needs.
// frozenBase, when set and no explicit RateToBase is given, is reused as the base rate.
func (s *transactionService) buildTransaction(ctx context.Context, repos portsrepo.Repositories, session domain.Session, req dto.CreateTransactionRequest, frozenBase *decimal.Decimal) (*domain.Transaction, error) {
	base, err := sessionBase(ctx, repos.Currencies, session)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: transaction amount must be positive", apperrors.ErrValidation)
	}
	date := dateOrNow(req.Date, s.Now())

	txn := &domain.Transaction{
		UserID:       session.UserID,
		Type:         req.Type,
		Amount:       req.Amount,
		BaseCurrency: base,
		CategoryID:   req.CategoryID,
		DebtID:       req.DebtID,
		Note:         req.Note,
		Date:         date,
		ShowStatus:   domain.ShowActive,
	}

	switch req.Type {
	case domain.Transfer:
		if err := s.resolveTransfer(ctx, repos, session, req, txn); err != nil {
			return nil, err
		}
	case domain.Income, domain.Expense:
		account, err := findOwnedAccount(ctx, repos.Accounts, session.UserID, req.AccountID)
		if err != nil {
			return nil, err
		}
		if !account.IsUsable() {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountInactive, account.AccountID)
		}
		currency, err := currencyOrDefault(ctx, repos, req.CurrencyCode, account.CurrencyCode)
		if err != nil {
			return nil, err
		}
		txn.AccountID = account.AccountID
		txn.CurrencyCode = currency
		toAccount, err := s.conversion.ConvertInTx(ctx, repos, domain.ConversionRequest{
			Amount: req.Amount,
			From:   currency,
			To:     account.CurrencyCode,
			AsOf:   &date,
			Side:   domain.RateSideMid,
		})
		if err != nil {
			return nil, err
		}
		txn.AccountAmount = toAccount.ConvertedAmount
		txn.RateUsedToAccount = toAccount.RateUsed
	default:
		return nil, fmt.Errorf("%w: unknown transaction type '%s'", apperrors.ErrValidation, req.Type)
	}

	if req.RateToBase == nil && frozenBase != nil {
		txn.RateUsedToBase = *frozenBase
	} else {
		snapshot, err := s.conversion.ConvertInTx(ctx, repos, domain.ConversionRequest{
			Amount:       req.Amount,
			From:         txn.CurrencyCode,
			To:           txn.BaseCurrency,
			AsOf:         &date,
			OverrideRate: req.RateToBase,
			Side:         domain.RateSideMid,
		})
		if err != nil {
			return nil, err
		}
		txn.RateUsedToBase = snapshot.RateUsed
		txn.IsRateOverridden = txn.IsRateOverridden || snapshot.IsOverridden
	}
	txn.ConvertedAmountToBase = txn.Amount.Mul(txn.RateUsedToBase)

	if err := txn.Validate(); err != nil {
		return nil, err
	}
	return txn, nil
}

// resolveTransfer fills the two legs of a transfer. The amount is always in the source
// account's currency; the received amount comes from an explicit figure, a manual rate
// quoted as source units per destination unit, or the sell side of the stored rates.
func (s *transactionService) resolveTransfer(ctx context.Context, repos portsrepo.Repositories, session domain.Session, req dto.CreateTransactionRequest, txn *domain.Transaction) error {
	if req.FromAccountID == req.ToAccountID {
		return fmt.Errorf("%w: transfer accounts must differ", apperrors.ErrValidation)
	}
	from, err := findOwnedAccount(ctx, repos.Accounts, session.UserID, req.FromAccountID)
	if err != nil {
		return err
	}
	to, err := findOwnedAccount(ctx, repos.Accounts, session.UserID, req.ToAccountID)
	if err != nil {
		return err
	}
	for _, a := range []*domain.Account{from, to} {
		if !a.IsUsable() {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountInactive, a.AccountID)
		}
	}
	currency, err := currencyOrDefault(ctx, repos, req.CurrencyCode, from.CurrencyCode)
	if err != nil {
		return err
	}
	if currency != from.CurrencyCode {
		return fmt.Errorf("%w: transfer amount must be in the source account currency %s", apperrors.ErrValidation, from.CurrencyCode)
	}

	var received decimal.Decimal
	switch {
	case req.ToAmount != nil:
		if !req.ToAmount.IsPositive() {
			return fmt.Errorf("%w: received amount must be positive", apperrors.ErrValidation)
		}
		received = *req.ToAmount
		txn.IsRateOverridden = true
		txn.IsTransferRateManual = true
	case req.EffectiveRateFromTo != nil:
		if !req.EffectiveRateFromTo.IsPositive() {
			return fmt.Errorf("%w: transfer rate must be positive", apperrors.ErrValidation)
		}
		received = req.Amount.Div(*req.EffectiveRateFromTo)
		txn.IsRateOverridden = true
		txn.IsTransferRateManual = true
	default:
		converted, err := s.conversion.ConvertInTx(ctx, repos, domain.ConversionRequest{
			Amount: req.Amount,
			From:   from.CurrencyCode,
			To:     to.CurrencyCode,
			AsOf:   &txn.Date,
			Side:   domain.RateSideSell,
		})
		if err != nil {
			return err
		}
		received = converted.ConvertedAmount
	}
	effective := req.Amount.DivRound(received, domain.RatePrecision)

	txn.FromAccountID = from.AccountID
	txn.ToAccountID = to.AccountID
	txn.CurrencyCode = currency
	txn.AccountAmount = req.Amount
	txn.RateUsedToAccount = decimal.NewFromInt(1)
	txn.ToAmount = &received
	txn.ToCurrency = to.CurrencyCode
	txn.EffectiveRateFromTo = &effective
	return nil
}

// patchedDraft merges a patch over an existing transaction. The received amount of a
// transfer and the frozen base rate are carried over while the fields they depend on are unchanged.
func patchedDraft(old domain.Transaction, req dto.UpdateTransactionRequest, session domain.Session) (dto.CreateTransactionRequest, *decimal.Decimal) {
	draft := dto.CreateTransactionRequest{
		Type:          old.Type,
		AccountID:     old.AccountID,
		FromAccountID: old.FromAccountID,
		ToAccountID:   old.ToAccountID,
		Amount:        old.Amount,
		CurrencyCode:  string(old.CurrencyCode),
		RateToBase:    req.RateToBase,
		CategoryID:    old.CategoryID,
		DebtID:        old.DebtID,
		Note:          old.Note,
		Date:          &old.Date,
	}
	if req.Amount != nil {
		draft.Amount = *req.Amount
	}
	if req.CurrencyCode != nil {
		draft.CurrencyCode = *req.CurrencyCode
	}
	if req.AccountID != nil {
		draft.AccountID = *req.AccountID
	}
	if req.FromAccountID != nil {
		draft.FromAccountID = *req.FromAccountID
	}
	if req.ToAccountID != nil {
		draft.ToAccountID = *req.ToAccountID
	}
	if req.CategoryID != nil {
		draft.CategoryID = *req.CategoryID
	}
	if req.Note != nil {
		draft.Note = *req.Note
	}
	if req.Date != nil {
		draft.Date = req.Date
	}

	sameAccounts := draft.AccountID == old.AccountID && draft.FromAccountID == old.FromAccountID && draft.ToAccountID == old.ToAccountID
	sameCurrency := draft.CurrencyCode == string(old.CurrencyCode)
	sameDate := draft.Date.Equal(old.Date)

	if old.Type == domain.Transfer {
		switch {
		case req.ToAmount != nil:
			draft.ToAmount = req.ToAmount
		case req.EffectiveRateFromTo != nil:
			draft.EffectiveRateFromTo = req.EffectiveRateFromTo
		case sameAccounts && sameCurrency && draft.Amount.Equal(old.Amount):
			draft.ToAmount = old.ToAmount
		case sameAccounts && old.IsTransferRateManual:
			draft.EffectiveRateFromTo = old.EffectiveRateFromTo
		}
	}

	var frozenBase *decimal.Decimal
	if req.RateToBase == nil && sameCurrency && sameDate && old.BaseCurrency == session.BaseCurrency {
		rate := old.RateUsedToBase
		frozenBase = &rate
	}
	return draft, frozenBase
}

func findOwnedTransaction(ctx context.Context, repo portsrepo.TransactionReader, userID, transactionID string) (*domain.Transaction, error) {
	txn, err := repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
	}
	return txn, nil
}

func requireUsableAccount(ctx context.Context, repo portsrepo.AccountReader, userID, accountID string) error {
	account, err := findOwnedAccount(ctx, repo, userID, accountID)
	if err != nil {
		return err
	}
	if !account.IsUsable() {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountInactive, accountID)
	}
	return nil
}

func currencyOrDefault(ctx context.Context, repos portsrepo.Repositories, raw string, fallback domain.CurrencyCode) (domain.CurrencyCode, error) {
	if raw == "" {
		return fallback, nil
	}
	return normalizeCurrency(ctx, repos.Currencies, raw)
}

// dateOrNow returns t in UTC, or now when t is nil.
func dateOrNow(t *time.Time, now time.Time) time.Time {
	if t == nil {
		return now
	}
	return t.UTC()
}
