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

type conversionService struct {
	BaseService
	uow    portsrepo.TransactionManager
	bridge domain.CurrencyCode
}

// NewConversionService creates the conversion service. Cross rates without a direct
// record are composed through bridge.
func NewConversionService(uow portsrepo.TransactionManager, bridge domain.CurrencyCode, options ...ServiceOption) portssvc.ConversionSvc {
	return &conversionService{BaseService: newBaseService(options), uow: uow, bridge: bridge}
}

var _ portssvc.ConversionSvc = (*conversionService)(nil)

func (s *conversionService) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	var result *domain.ConversionResult
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		from, err := normalizeCurrency(ctx, repos.Currencies, string(req.From))
		if err != nil {
			return err
		}
		to, err := normalizeCurrency(ctx, repos.Currencies, string(req.To))
		if err != nil {
			return err
		}
		req.From, req.To = from, to
		result, err = s.ConvertInTx(ctx, repos, req)
		return err
	})
	return result, err
}

func (s *conversionService) ConvertInTx(ctx context.Context, repos portsrepo.Repositories, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	if req.From == "" || req.To == "" {
		return nil, fmt.Errorf("%w: conversion requires both currencies", apperrors.ErrInvalidCurrencyCode)
	}

	if req.From == req.To {
		return &domain.ConversionResult{
			ConvertedAmount: req.Amount,
			RateUsed:        decimal.NewFromInt(1),
			Factor:          domain.IdentityRate,
			Path:            []domain.CurrencyCode{req.From},
		}, nil
	}

	if req.OverrideRate != nil {
		if !req.OverrideRate.IsPositive() {
			return nil, fmt.Errorf("%w: override rate must be positive", apperrors.ErrValidation)
		}
		return &domain.ConversionResult{
			ConvertedAmount: req.Amount.Mul(*req.OverrideRate),
			RateUsed:        *req.OverrideRate,
			Factor:          domain.NewRate(*req.OverrideRate, decimal.NewFromInt(1)),
			IsOverridden:    true,
			Path:            []domain.CurrencyCode{req.From, req.To},
		}, nil
	}

	asOf := s.Now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}
	side := req.Side
	if side == "" {
		side = domain.RateSideMid
	}

	factor, path, err := s.resolve(ctx, repos.FxRates, req.From, req.To, asOf, side)
	if err != nil {
		s.LogDebug(ctx, "No conversion path",
			slog.String("from", string(req.From)),
			slog.String("to", string(req.To)),
			slog.Time("as_of", asOf))
		return nil, err
	}

	return &domain.ConversionResult{
		ConvertedAmount: factor.Apply(req.Amount),
		RateUsed:        factor.Decimal(),
		Factor:          factor,
		Path:            path,
	}, nil
}

// resolve prefers a direct leg (a from→to record or the inverse of a to→from record)
// and otherwise composes from→bridge→to.
func (s *conversionService) resolve(ctx context.Context, repo portsrepo.FxRateReader, from, to domain.CurrencyCode, asOf time.Time, side domain.RateSide) (domain.Rate, []domain.CurrencyCode, error) {
	direct, ok, err := leg(ctx, repo, from, to, asOf, side)
	if err != nil {
		return domain.Rate{}, nil, err
	}
	if ok {
		return direct, []domain.CurrencyCode{from, to}, nil
	}

	if s.bridge != "" && from != s.bridge && to != s.bridge {
		toBridge, ok, err := leg(ctx, repo, from, s.bridge, asOf, side)
		if err != nil {
			return domain.Rate{}, nil, err
		}
		if ok {
			fromBridge, ok, err := leg(ctx, repo, s.bridge, to, asOf, side)
			if err != nil {
				return domain.Rate{}, nil, err
			}
			if ok {
				return toBridge.Mul(fromBridge), []domain.CurrencyCode{from, s.bridge, to}, nil
			}
		}
	}

	return domain.Rate{}, nil, fmt.Errorf("%w: %s→%s at %s", apperrors.ErrRateUnavailable, from, to, asOf.Format(time.RFC3339))
}

// leg finds a single-hop factor. A reverse record is inverted and read from the
// opposite side: selling `from` for `to` means buying `to` with `from`.
func leg(ctx context.Context, repo portsrepo.FxRateReader, from, to domain.CurrencyCode, asOf time.Time, side domain.RateSide) (domain.Rate, bool, error) {
	if from == to {
		return domain.IdentityRate, true, nil
	}
	rate, err := effectiveRate(ctx, repo, from, to, asOf)
	if err != nil {
		return domain.Rate{}, false, err
	}
	if rate != nil {
		return rate.UnitRate(side), true, nil
	}
	reverse, err := effectiveRate(ctx, repo, to, from, asOf)
	if err != nil {
		return domain.Rate{}, false, err
	}
	if reverse != nil {
		return reverse.UnitRate(side.Opposite()).Inverse(), true, nil
	}
	return domain.Rate{}, false, nil
}

// effectiveRate returns the direct from→to record valid at asOf, or nil. When windows
// overlap the record with the latest effectiveFrom wins.
func effectiveRate(ctx context.Context, repo portsrepo.FxRateReader, from, to domain.CurrencyCode, asOf time.Time) (*domain.FxRate, error) {
	rates, err := repo.FindFxRatesByPair(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for i := len(rates) - 1; i >= 0; i-- {
		if rates[i].IsEffectiveAt(asOf) {
			return &rates[i], nil
		}
	}
	return nil, nil
}

// QuoteInTx returns the direct record valid at asOf or, failing that, a derived record
// assembled from the resolved mid, sell and buy factors.
func (s *conversionService) QuoteInTx(ctx context.Context, repos portsrepo.Repositories, from, to domain.CurrencyCode, asOf time.Time) (*domain.FxRate, error) {
	direct, err := effectiveRate(ctx, repos.FxRates, from, to, asOf)
	if err != nil {
		return nil, err
	}
	if direct != nil {
		return direct, nil
	}

	mid, _, err := s.resolve(ctx, repos.FxRates, from, to, asOf, domain.RateSideMid)
	if err != nil {
		return nil, err
	}
	sell, _, err := s.resolve(ctx, repos.FxRates, from, to, asOf, domain.RateSideSell)
	if err != nil {
		return nil, err
	}
	buy, _, err := s.resolve(ctx, repos.FxRates, from, to, asOf, domain.RateSideBuy)
	if err != nil {
		return nil, err
	}
	bid, ask := sell.Decimal(), buy.Decimal()
	derived := &domain.FxRate{
		Date:          asOf,
		FromCurrency:  from,
		ToCurrency:    to,
		RateMid:       mid.Decimal(),
		Nominal:       decimal.NewFromInt(1),
		Source:        domain.RateSourceDerived,
		EffectiveFrom: asOf,
	}
	if !bid.Equal(derived.RateMid) || !ask.Equal(derived.RateMid) {
		derived.RateBid, derived.RateAsk = &bid, &ask
		derived.FillSpread()
	}
	return derived, nil
}
