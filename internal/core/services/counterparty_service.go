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
)

type counterpartyService struct {
	BaseService
	uow portsrepo.TransactionManager
}

// NewCounterpartyService creates a new counterparty service with the provided options
func NewCounterpartyService(uow portsrepo.TransactionManager, options ...ServiceOption) portssvc.CounterpartySvcFacade {
	return &counterpartyService{BaseService: newBaseService(options), uow: uow}
}

var _ portssvc.CounterpartySvcFacade = (*counterpartyService)(nil)

func (s *counterpartyService) CreateCounterparty(ctx context.Context, session domain.Session, req dto.CreateCounterpartyRequest) (*domain.Counterparty, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	counterparty := domain.Counterparty{
		CounterpartyID: uuid.NewString(),
		UserID:         session.UserID,
		DisplayName:    req.DisplayName,
		PhoneNumber:    req.PhoneNumber,
		Comment:        req.Comment,
		ShowStatus:     domain.ShowActive,
		AuditFields:    domain.NewAuditFields(session.UserID, s.Now()),
	}
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		return repos.Counterparties.SaveCounterparty(ctx, counterparty)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create counterparty", slog.String("user_id", session.UserID))
		return nil, fmt.Errorf("failed to create counterparty: %w", err)
	}
	s.LogInfo(ctx, "Counterparty created", slog.String("counterparty_id", counterparty.CounterpartyID))
	s.Publish(ctx, portssvc.ChangeEvent{Kind: portssvc.ChangeCounterparties, UserID: session.UserID, IDs: []string{counterparty.CounterpartyID}})
	return &counterparty, nil
}

func (s *counterpartyService) GetCounterpartyByID(ctx context.Context, session domain.Session, counterpartyID string) (*domain.Counterparty, error) {
	var counterparty *domain.Counterparty
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		var err error
		counterparty, err = findOwnedCounterparty(ctx, repos.Counterparties, session.UserID, counterpartyID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get counterparty: %w", err)
	}
	return counterparty, nil
}

func (s *counterpartyService) ListCounterparties(ctx context.Context, session domain.Session) ([]domain.Counterparty, error) {
	var counterparties []domain.Counterparty
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		var err error
		counterparties, err = repos.Counterparties.ListCounterparties(ctx, session.UserID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list counterparties: %w", err)
	}
	return counterparties, nil
}

func (s *counterpartyService) ArchiveCounterparty(ctx context.Context, session domain.Session, counterpartyID string) error {
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		counterparty, err := findOwnedCounterparty(ctx, repos.Counterparties, session.UserID, counterpartyID)
		if err != nil {
			return err
		}
		counterparty.ShowStatus = domain.ShowArchived
		counterparty.Touch(session.UserID, s.Now())
		return repos.Counterparties.SaveCounterparty(ctx, *counterparty)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to archive counterparty", slog.String("counterparty_id", counterpartyID))
		return fmt.Errorf("failed to archive counterparty: %w", err)
	}
	s.Publish(ctx, portssvc.ChangeEvent{Kind: portssvc.ChangeCounterparties, UserID: session.UserID, IDs: []string{counterpartyID}})
	return nil
}

func findOwnedCounterparty(ctx context.Context, repo portsrepo.CounterpartyRepository, userID, counterpartyID string) (*domain.Counterparty, error) {
	counterparty, err := repo.FindCounterpartyByID(ctx, counterpartyID)
	if err != nil {
		return nil, err
	}
	if counterparty.UserID != userID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrCounterpartyNotFound, counterpartyID)
	}
	return counterparty, nil
}
