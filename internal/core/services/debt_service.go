package services

import (
	"context"
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

type debtService struct {
	BaseService
	uow        portsrepo.TransactionManager
	conversion portssvc.ConversionSvc
	recorder   portssvc.TransactionRecorder
}

// NewDebtService creates a new debt service. Money that actually enters or leaves an
// account is recorded through recorder in the same unit of work as the debt change.
func NewDebtService(
	uow portsrepo.TransactionManager,
	conversion portssvc.ConversionSvc,
	recorder portssvc.TransactionRecorder,
	options ...ServiceOption,
) portssvc.DebtSvcFacade {
	return &debtService{
		BaseService: newBaseService(options),
		uow:         uow,
		conversion:  conversion,
		recorder:    recorder,
	}
}

var _ portssvc.DebtSvcFacade = (*debtService)(nil)

func (s *debtService) CreateDebt(ctx context.Context, session domain.Session, req dto.CreateDebtRequest) (*domain.Debt, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	now := s.Now()
	start := dateOrNow(req.StartDate, now)

	var debt domain.Debt
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		base, err := sessionBase(ctx, repos.Currencies, session)
		if err != nil {
			return err
		}
		principalCurrency, err := normalizeCurrency(ctx, repos.Currencies, req.PrincipalCurrency)
		if err != nil {
			return err
		}
		debt = domain.Debt{
			DebtID:            uuid.NewString(),
			UserID:            session.UserID,
			Direction:         req.Direction,
			CounterpartyName:  req.CounterpartyName,
			PrincipalAmount:   req.PrincipalAmount,
			PrincipalCurrency: principalCurrency,
			BaseCurrency:      base,
			Status:            domain.DebtActive,
			Payments:          []domain.DebtPayment{},
			StartDate:         start,
			DueDate:           req.DueDate,
			Comment:           req.Comment,
			ShowStatus:        domain.ShowActive,
			AuditFields:       domain.NewAuditFields(session.UserID, now),
		}

		if req.CounterpartyID != "" {
			counterparty, err := findOwnedCounterparty(ctx, repos.Counterparties, session.UserID, req.CounterpartyID)
			if err != nil {
				return err
			}
			debt.CounterpartyID = counterparty.CounterpartyID
			if debt.CounterpartyName == "" {
				debt.CounterpartyName = counterparty.DisplayName
			}
		}

		if req.PrincipalOriginalAmount != nil {
			originalCurrency, err := normalizeCurrency(ctx, repos.Currencies, req.PrincipalOriginalCurrency)
			if err != nil {
				return err
			}
			debt.PrincipalOriginalAmount = req.PrincipalOriginalAmount
			debt.PrincipalOriginalCurrency = originalCurrency
			if debt.PrincipalAmount.IsZero() {
				converted, err := s.conversion.ConvertInTx(ctx, repos, domain.ConversionRequest{
					Amount: *req.PrincipalOriginalAmount,
					From:   originalCurrency,
					To:     principalCurrency,
					AsOf:   &start,
					Side:   domain.RateSideMid,
				})
				if err != nil {
					return err
				}
				debt.PrincipalAmount = converted.ConvertedAmount
			}
		}
		if !debt.PrincipalAmount.IsPositive() {
			return fmt.Errorf("%w: principal must be positive", apperrors.ErrValidation)
		}

		toBase, err := s.conversion.ConvertInTx(ctx, repos, domain.ConversionRequest{
			Amount: debt.PrincipalAmount,
			From:   principalCurrency,
			To:     base,
			AsOf:   &start,
			Side:   domain.RateSideMid,
		})
		if err != nil {
			return err
		}
		debt.RateOnStart = toBase.RateUsed
		debt.PrincipalBaseValue = debt.PrincipalAmount.Mul(debt.RateOnStart)

		if err := s.resolveRepaymentTerms(ctx, repos, &debt, req); err != nil {
			return err
		}

		if req.AccountID != "" {
			txnType := domain.Expense
			if debt.Direction == domain.IOwe {
				txnType = domain.Income
			}
			txn, err := s.recorder.CreateTransactionInTx(ctx, repos, session, dto.CreateTransactionRequest{
				Type:         txnType,
				AccountID:    req.AccountID,
				Amount:       debt.PrincipalAmount,
				CurrencyCode: string(principalCurrency),
				DebtID:       debt.DebtID,
				Note:         debtNote(debt),
				Date:         &start,
			})
			if err != nil {
				return err
			}
			debt.AccountID = req.AccountID
			debt.TransactionID = txn.TransactionID
		}

		return repos.Debts.SaveDebt(ctx, debt)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create debt",
			slog.String("user_id", session.UserID),
			slog.String("direction", string(req.Direction)))
		return nil, fmt.Errorf("failed to create debt: %w", err)
	}

	s.LogInfo(ctx, "Debt created",
		slog.String("debt_id", debt.DebtID),
		slog.String("principal", debt.PrincipalAmount.String()),
		slog.String("currency", string(debt.PrincipalCurrency)))
	s.publish(ctx, session, debt.DebtID, debt.TransactionID)
	return &debt, nil
}

// resolveRepaymentTerms fixes the repayment currency, the agreed repayment rate and, for
// fixed agreements, the repayment amount.
func (s *debtService) resolveRepaymentTerms(ctx context.Context, repos portsrepo.Repositories, debt *domain.Debt, req dto.CreateDebtRequest) error {
	repaymentCurrency := debt.PrincipalCurrency
	if req.RepaymentCurrency != "" {
		var err error
		repaymentCurrency, err = normalizeCurrency(ctx, repos.Currencies, req.RepaymentCurrency)
		if err != nil {
			return err
		}
	}
	debt.RepaymentCurrency = repaymentCurrency

	var rate decimal.Decimal
	switch {
	case req.RepaymentRateOnStart != nil:
		if !req.RepaymentRateOnStart.IsPositive() {
			return fmt.Errorf("%w: repayment rate must be positive", apperrors.ErrValidation)
		}
		rate = *req.RepaymentRateOnStart
	case repaymentCurrency == debt.PrincipalCurrency:
		rate = decimal.NewFromInt(1)
	default:
		converted, err := s.conversion.ConvertInTx(ctx, repos, domain.ConversionRequest{
			Amount: debt.PrincipalAmount,
			From:   debt.PrincipalCurrency,
			To:     repaymentCurrency,
			AsOf:   &debt.StartDate,
			Side:   domain.RateSideMid,
		})
		if err != nil {
			return err
		}
		rate = converted.RateUsed
	}
	debt.RepaymentRateOnStart = &rate

	debt.IsFixedRepaymentAmount = req.IsFixedRepaymentAmount
	switch {
	case req.RepaymentAmount != nil:
		if !req.RepaymentAmount.IsPositive() {
			return fmt.Errorf("%w: repayment amount must be positive", apperrors.ErrValidation)
		}
		amount := *req.RepaymentAmount
		debt.RepaymentAmount = &amount
	case req.IsFixedRepaymentAmount:
		amount := debt.PrincipalAmount.Mul(rate)
		debt.RepaymentAmount = &amount
	}
	return nil
}

func (s *debtService) GetDebtByID(ctx context.Context, session domain.Session, debtID string) (*domain.Debt, error) {
	var debt *domain.Debt
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		var err error
		debt, err = findOwnedDebt(ctx, repos.Debts, session.UserID, debtID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	return debt, nil
}

func (s *debtService) ListDebts(ctx context.Context, session domain.Session) ([]domain.Debt, error) {
	var debts []domain.Debt
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		all, err := repos.Debts.ListDebts(ctx, session.UserID)
		if err != nil {
			return err
		}
		debts = make([]domain.Debt, 0, len(all))
		for _, d := range all {
			if d.ShowStatus != domain.ShowDeleted {
				debts = append(debts, d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	return debts, nil
}

// RecordPayment converts the payment with the sell side of the stored rates towards the
// principal and repayment currencies and with the mid rate towards the base currency.
func (s *debtService) RecordPayment(ctx context.Context, session domain.Session, debtID string, req dto.RecordPaymentRequest) (*domain.Debt, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	var (
		debt    *domain.Debt
		payment domain.DebtPayment
	)
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		var err error
		debt, err = findActiveDebt(ctx, repos.Debts, session.UserID, debtID)
		if err != nil {
			return err
		}
		currency, err := normalizeCurrency(ctx, repos.Currencies, req.CurrencyCode)
		if err != nil {
			return err
		}
		date := dateOrNow(req.PaymentDate, s.Now())

		convert := func(to domain.CurrencyCode, side domain.RateSide) (*domain.ConversionResult, error) {
			return s.conversion.ConvertInTx(ctx, repos, domain.ConversionRequest{
				Amount: req.Amount,
				From:   currency,
				To:     to,
				AsOf:   &date,
				Side:   side,
			})
		}
		toDebt, err := convert(debt.PrincipalCurrency, domain.RateSideSell)
		if err != nil {
			return err
		}
		toRepayment, err := convert(debt.EffectiveRepaymentCurrency(), domain.RateSideSell)
		if err != nil {
			return err
		}
		toBase, err := convert(debt.BaseCurrency, domain.RateSideMid)
		if err != nil {
			return err
		}

		payment = domain.DebtPayment{
			PaymentID:                  uuid.NewString(),
			Amount:                     req.Amount,
			CurrencyCode:               currency,
			BaseCurrency:               debt.BaseCurrency,
			RateUsedToBase:             toBase.RateUsed,
			ConvertedAmountToBase:      req.Amount.Mul(toBase.RateUsed),
			RateUsedToDebt:             toDebt.RateUsed,
			ConvertedAmountToDebt:      toDebt.ConvertedAmount,
			RateUsedToRepayment:        toRepayment.RateUsed,
			ConvertedAmountToRepayment: toRepayment.ConvertedAmount,
			PaymentDate:                date,
			Note:                       req.Note,
		}

		if req.AccountID != "" {
			txnType := domain.Income
			if debt.Direction == domain.IOwe {
				txnType = domain.Expense
			}
			txn, err := s.recorder.CreateTransactionInTx(ctx, repos, session, dto.CreateTransactionRequest{
				Type:         txnType,
				AccountID:    req.AccountID,
				Amount:       req.Amount,
				CurrencyCode: string(currency),
				DebtID:       debt.DebtID,
				Note:         debtNote(*debt),
				Date:         &date,
			})
			if err != nil {
				return err
			}
			payment.AccountID = req.AccountID
			payment.TransactionID = txn.TransactionID
		}

		debt.Payments = append(debt.Payments, payment)
		debt.Touch(session.UserID, s.Now())
		return repos.Debts.SaveDebt(ctx, *debt)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record debt payment", slog.String("debt_id", debtID))
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.LogInfo(ctx, "Debt payment recorded",
		slog.String("debt_id", debtID),
		slog.String("payment_id", payment.PaymentID),
		slog.String("outstanding", debt.OutstandingAmount().String()))
	s.publish(ctx, session, debtID, payment.TransactionID)
	return debt, nil
}

// RemovePayment drops a payment. Its linked transaction is soft-deleted and compensated,
// so the account balance returns to where it was before the payment.
func (s *debtService) RemovePayment(ctx context.Context, session domain.Session, debtID, paymentID string) (*domain.Debt, error) {
	var (
		debt    *domain.Debt
		removed domain.DebtPayment
	)
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		var err error
		debt, err = findActiveDebt(ctx, repos.Debts, session.UserID, debtID)
		if err != nil {
			return err
		}
		idx := debt.FindPayment(paymentID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", apperrors.ErrDebtPaymentNotFound, paymentID)
		}
		removed = debt.Payments[idx]
		if err := s.reverseLinkedTransaction(ctx, repos, session, removed.TransactionID); err != nil {
			return err
		}
		debt.Payments = append(debt.Payments[:idx], debt.Payments[idx+1:]...)
		debt.Touch(session.UserID, s.Now())
		return repos.Debts.SaveDebt(ctx, *debt)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to remove debt payment",
			slog.String("debt_id", debtID),
			slog.String("payment_id", paymentID))
		return nil, fmt.Errorf("failed to remove payment: %w", err)
	}

	s.LogInfo(ctx, "Debt payment removed",
		slog.String("debt_id", debtID),
		slog.String("payment_id", paymentID))
	s.publish(ctx, session, debtID, removed.TransactionID)
	return debt, nil
}

func (s *debtService) SettleDebt(ctx context.Context, session domain.Session, debtID string) (*domain.Debt, error) {
	var debt *domain.Debt
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		var err error
		debt, err = findOwnedDebt(ctx, repos.Debts, session.UserID, debtID)
		if err != nil {
			return err
		}
		if debt.ShowStatus == domain.ShowDeleted {
			return fmt.Errorf("%w: %s", apperrors.ErrDebtNotFound, debtID)
		}
		now := s.Now()
		if err := debt.Settle(now); err != nil {
			return err
		}
		debt.Touch(session.UserID, now)
		return repos.Debts.SaveDebt(ctx, *debt)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to settle debt", slog.String("debt_id", debtID))
		return nil, fmt.Errorf("failed to settle debt: %w", err)
	}

	s.LogInfo(ctx, "Debt settled",
		slog.String("debt_id", debtID),
		slog.String("final_rate", debt.FinalRateUsed.String()),
		slog.String("profit_loss", debt.FinalProfitLoss.String()),
		slog.String("profit_loss_currency", string(debt.FinalProfitLossCurrency)))
	s.publish(ctx, session, debtID, "")
	return debt, nil
}

// DeleteDebt soft-deletes a debt without payments. A linked opening transaction is
// soft-deleted and compensated like a removed payment.
func (s *debtService) DeleteDebt(ctx context.Context, session domain.Session, debtID string) error {
	var debt *domain.Debt
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		var err error
		debt, err = findOwnedDebt(ctx, repos.Debts, session.UserID, debtID)
		if err != nil {
			return err
		}
		if debt.ShowStatus == domain.ShowDeleted {
			return nil
		}
		if len(debt.Payments) > 0 {
			return apperrors.ErrDebtHasPayments
		}
		if err := s.reverseLinkedTransaction(ctx, repos, session, debt.TransactionID); err != nil {
			return err
		}
		debt.ShowStatus = domain.ShowDeleted
		debt.Touch(session.UserID, s.Now())
		return repos.Debts.SaveDebt(ctx, *debt)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete debt", slog.String("debt_id", debtID))
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	s.LogInfo(ctx, "Debt deleted", slog.String("debt_id", debtID))
	s.publish(ctx, session, debtID, debt.TransactionID)
	return nil
}

func (s *debtService) reverseLinkedTransaction(ctx context.Context, repos portsrepo.Repositories, session domain.Session, transactionID string) error {
	if transactionID == "" {
		return nil
	}
	if err := s.recorder.SoftDeleteTransactionInTx(ctx, repos, session, transactionID); err != nil {
		return err
	}
	_, err := s.recorder.CompensateTransactionInTx(ctx, repos, session, transactionID)
	return err
}

func (s *debtService) publish(ctx context.Context, session domain.Session, debtID, transactionID string) {
	events := []portssvc.ChangeEvent{{Kind: portssvc.ChangeDebts, UserID: session.UserID, IDs: []string{debtID}}}
	if transactionID != "" {
		events = append(events,
			portssvc.ChangeEvent{Kind: portssvc.ChangeTransactions, UserID: session.UserID, IDs: []string{transactionID}},
			portssvc.ChangeEvent{Kind: portssvc.ChangeAccounts, UserID: session.UserID},
			portssvc.ChangeEvent{Kind: portssvc.ChangeBudgets, UserID: session.UserID})
	}
	s.Publish(ctx, events...)
}

func debtNote(debt domain.Debt) string {
	return fmt.Sprintf("debt %s: %s", debt.Direction, debt.CounterpartyName)
}

func findOwnedDebt(ctx context.Context, repo portsrepo.DebtRepository, userID, debtID string) (*domain.Debt, error) {
	debt, err := repo.FindDebtByID(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if debt.UserID != userID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDebtNotFound, debtID)
	}
	return debt, nil
}

// findActiveDebt returns a debt that still accepts payment changes.
func findActiveDebt(ctx context.Context, repo portsrepo.DebtRepository, userID, debtID string) (*domain.Debt, error) {
	debt, err := findOwnedDebt(ctx, repo, userID, debtID)
	if err != nil {
		return nil, err
	}
	if debt.ShowStatus == domain.ShowDeleted {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDebtNotFound, debtID)
	}
	if debt.Status == domain.DebtPaid {
		return nil, apperrors.ErrDebtAlreadySettled
	}
	return debt, nil
}
