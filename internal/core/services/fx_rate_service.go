package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fxRateService stores versioned rate records. Rates are supplied by a collaborator; nothing is fetched.
type fxRateService struct {
	BaseService
	uow        portsrepo.TransactionManager
	conversion portssvc.ConversionSvc
}

// NewFxRateService creates a new FX rate store service.
func NewFxRateService(uow portsrepo.TransactionManager, conversion portssvc.ConversionSvc, options ...ServiceOption) portssvc.FxRateSvcFacade {
	return &fxRateService{BaseService: newBaseService(options), uow: uow, conversion: conversion}
}

var _ portssvc.FxRateSvcFacade = (*fxRateService)(nil)

func (s *fxRateService) SaveFxRate(ctx context.Context, req dto.SaveFxRateRequest, userID string) (*domain.FxRate, error) {
	var rate *domain.FxRate
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		var err error
		rate, err = s.saveInTx(ctx, repos, req, userID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to save fx rate",
			slog.String("from", req.FromCurrency),
			slog.String("to", req.ToCurrency))
		return nil, fmt.Errorf("failed to save fx rate: %w", err)
	}
	s.LogInfo(ctx, "FX rate saved",
		slog.String("rate_id", rate.FxRateID),
		slog.String("pair", string(rate.FromCurrency)+"/"+string(rate.ToCurrency)),
		slog.String("mid", rate.RateMid.String()),
		slog.Int("version", rate.Version))
	s.Publish(ctx, portssvc.ChangeEvent{Kind: portssvc.ChangeFxRates, IDs: []string{rate.FxRateID}})
	return rate, nil
}

// saveInTx inserts a new version into the pair's timeline. The version in force just before
// it is closed at its effectiveFrom, and a backdated insert ends where the next version begins.
func (s *fxRateService) saveInTx(ctx context.Context, repos portsrepo.Repositories, req dto.SaveFxRateRequest, userID string) (*domain.FxRate, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	from, err := normalizeCurrency(ctx, repos.Currencies, req.FromCurrency)
	if err != nil {
		return nil, err
	}
	to, err := normalizeCurrency(ctx, repos.Currencies, req.ToCurrency)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	rate := domain.FxRate{
		FxRateID:     uuid.NewString(),
		FromCurrency: from,
		ToCurrency:   to,
		RateMid:      req.RateMid,
		RateBid:      req.RateBid,
		RateAsk:      req.RateAsk,
		Nominal:      decimal.NewFromInt(1),
		Source:       req.Source,
		AuditFields:  domain.NewAuditFields(userID, now),
	}
	if req.Nominal != nil {
		rate.Nominal = *req.Nominal
	}
	if req.SpreadPercent != nil {
		rate.SpreadPercent = *req.SpreadPercent
	}
	if rate.Source == "" {
		rate.Source = domain.RateSourceManual
	}
	rate.IsOverridden = rate.Source == domain.RateSourceManual

	switch {
	case req.EffectiveFrom != nil:
		rate.EffectiveFrom = req.EffectiveFrom.UTC()
	case req.Date != nil:
		rate.EffectiveFrom = req.Date.UTC()
	default:
		rate.EffectiveFrom = now
	}
	rate.Date = rate.EffectiveFrom
	if req.Date != nil {
		rate.Date = req.Date.UTC()
	}

	rate.FillSpread()
	if err := rate.Validate(); err != nil {
		return nil, err
	}

	history, err := repos.FxRates.FindFxRatesByPair(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var previous, next *domain.FxRate
	for i := range history {
		h := &history[i]
		if h.Version >= rate.Version {
			rate.Version = h.Version
		}
		switch {
		case h.EffectiveFrom.Equal(rate.EffectiveFrom):
			return nil, fmt.Errorf("%w: a %s→%s rate already starts at %s; correct it instead",
				apperrors.ErrDuplicate, from, to, rate.EffectiveFrom.Format(time.RFC3339))
		case h.EffectiveFrom.Before(rate.EffectiveFrom):
			previous = h
		case next == nil:
			next = h
		}
	}
	rate.Version++

	if next != nil {
		until := next.EffectiveFrom
		rate.EffectiveUntil = &until
	}
	if previous != nil && (previous.EffectiveUntil == nil || previous.EffectiveUntil.After(rate.EffectiveFrom)) {
		until := rate.EffectiveFrom
		previous.EffectiveUntil = &until
		previous.Touch(userID, now)
		if err := repos.FxRates.SaveFxRate(ctx, *previous); err != nil {
			return nil, err
		}
	}
	if err := repos.FxRates.SaveFxRate(ctx, rate); err != nil {
		return nil, err
	}
	return &rate, nil
}

// CorrectFxRate edits a version in place. Transactions, budget entries and payments keep
// the rate they froze when they were written.
func (s *fxRateService) CorrectFxRate(ctx context.Context, rateID string, req dto.CorrectFxRateRequest, userID string) (*domain.FxRate, error) {
	var rate *domain.FxRate
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		var err error
		rate, err = repos.FxRates.FindFxRateByID(ctx, rateID)
		if err != nil {
			return err
		}
		midChanged := req.RateMid != nil && !req.RateMid.Equal(rate.RateMid)
		if req.RateMid != nil {
			rate.RateMid = *req.RateMid
		}
		if req.Nominal != nil {
			rate.Nominal = *req.Nominal
		}
		switch {
		case req.RateBid != nil || req.RateAsk != nil:
			// A single supplied leg keeps the stored other one.
			if req.RateBid != nil {
				rate.RateBid = req.RateBid
			}
			if req.RateAsk != nil {
				rate.RateAsk = req.RateAsk
			}
			rate.SpreadPercent = decimal.Zero
			if req.SpreadPercent != nil {
				rate.SpreadPercent = *req.SpreadPercent
			}
		case req.SpreadPercent != nil:
			rate.SpreadPercent = *req.SpreadPercent
			rate.RateBid, rate.RateAsk = nil, nil
		case midChanged && rate.SpreadPercent.IsPositive():
			// The band follows mid.
			rate.RateBid, rate.RateAsk = nil, nil
		}
		rate.FillSpread()
		rate.Source = domain.RateSourceManual
		rate.IsOverridden = true
		rate.Touch(userID, s.Now())
		if err := rate.Validate(); err != nil {
			return err
		}
		return repos.FxRates.SaveFxRate(ctx, *rate)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to correct fx rate", slog.String("rate_id", rateID))
		return nil, fmt.Errorf("failed to correct fx rate: %w", err)
	}
	s.Publish(ctx, portssvc.ChangeEvent{Kind: portssvc.ChangeFxRates, IDs: []string{rateID}})
	return rate, nil
}

// ImportRates registers missing currencies, then saves every rate oldest first, all in one write.
// Rates that already exist for the same pair and start are skipped.
func (s *fxRateService) ImportRates(ctx context.Context, file dto.RateFile, userID string) (int, error) {
	currencySvc := &currencyService{BaseService: s.BaseService, uow: s.uow}
	rates := append([]dto.SaveFxRateRequest(nil), file.Rates...)
	sort.SliceStable(rates, func(i, j int) bool {
		return effectiveStart(rates[i]).Before(effectiveStart(rates[j]))
	})

	saved := 0
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		for _, req := range file.Currencies {
			if err := dto.Validate(req); err != nil {
				return err
			}
			if _, err := currencySvc.createInTx(ctx, repos, req, userID); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
				return err
			}
		}
		for i, req := range rates {
			_, err := s.saveInTx(ctx, repos, req, userID)
			if errors.Is(err, apperrors.ErrDuplicate) {
				continue
			}
			if err != nil {
				return fmt.Errorf("rate %d (%s→%s): %w", i+1, req.FromCurrency, req.ToCurrency, err)
			}
			saved++
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Rate import failed")
		return 0, fmt.Errorf("failed to import rates: %w", err)
	}
	s.LogInfo(ctx, "Rates imported", slog.Int("saved", saved), slog.Int("skipped", len(rates)-saved))
	if saved > 0 {
		s.Publish(ctx, portssvc.ChangeEvent{Kind: portssvc.ChangeFxRates})
	}
	return saved, nil
}

func effectiveStart(req dto.SaveFxRateRequest) time.Time {
	switch {
	case req.EffectiveFrom != nil:
		return *req.EffectiveFrom
	case req.Date != nil:
		return *req.Date
	}
	return time.Time{}
}

// GetFxRate returns the direct record valid at asOf, or a derived record when only a bridged path exists.
func (s *fxRateService) GetFxRate(ctx context.Context, from, to string, asOf *time.Time) (*domain.FxRate, error) {
	at := s.Now()
	if asOf != nil {
		at = *asOf
	}
	var rate *domain.FxRate
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		fromCode, err := normalizeCurrency(ctx, repos.Currencies, from)
		if err != nil {
			return err
		}
		toCode, err := normalizeCurrency(ctx, repos.Currencies, to)
		if err != nil {
			return err
		}
		if fromCode == toCode {
			return fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
		}
		rate, err = s.conversion.QuoteInTx(ctx, repos, fromCode, toCode, at)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get fx rate: %w", err)
	}
	return rate, nil
}

func (s *fxRateService) ListFxRateHistory(ctx context.Context, from, to string) ([]domain.FxRate, error) {
	var rates []domain.FxRate
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		fromCode, err := normalizeCurrency(ctx, repos.Currencies, from)
		if err != nil {
			return err
		}
		toCode, err := normalizeCurrency(ctx, repos.Currencies, to)
		if err != nil {
			return err
		}
		rates, err = repos.FxRates.FindFxRatesByPair(ctx, fromCode, toCode)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list fx rate history: %w", err)
	}
	if rates == nil {
		return []domain.FxRate{}, nil
	}
	return rates, nil
}
