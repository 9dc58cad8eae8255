package services

import (
	"context"
	"time"

	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/money_ledger/internal/dto"
)

// FxRateReaderSvc defines read operations for exchange rate data
type FxRateReaderSvc interface {
	// GetFxRate returns the direct from→to record valid at asOf (nil means now).
	GetFxRate(ctx context.Context, from, to string, asOf *time.Time) (*domain.FxRate, error)

	// ListFxRateHistory returns every version recorded for the pair, oldest first.
	ListFxRateHistory(ctx context.Context, from, to string) ([]domain.FxRate, error)
}

// FxRateWriterSvc defines write operations for exchange rate data
type FxRateWriterSvc interface {
	// SaveFxRate records a new version for the pair and closes the version it supersedes.
	SaveFxRate(ctx context.Context, req dto.SaveFxRateRequest, userID string) (*domain.FxRate, error)

	// CorrectFxRate edits a stored version. Snapshots already taken from it are unaffected.
	CorrectFxRate(ctx context.Context, rateID string, req dto.CorrectFxRateRequest, userID string) (*domain.FxRate, error)

	// ImportRates registers the currencies and saves the rates of a rate file in one write.
	ImportRates(ctx context.Context, file dto.RateFile, userID string) (int, error)
}

// FxRateSvcFacade combines all exchange rate-related service interfaces
type FxRateSvcFacade interface {
	FxRateReaderSvc
	FxRateWriterSvc
}

// ConversionSvc converts amounts between currencies. It never writes to the rate store.
type ConversionSvc interface {
	// Convert resolves a rate against the committed store contents.
	Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error)

	// ConvertInTx resolves a rate through repos bound to an open unit of work.
	ConvertInTx(ctx context.Context, repos repositories.Repositories, req domain.ConversionRequest) (*domain.ConversionResult, error)

	// QuoteInTx returns the direct record valid at asOf, or a record derived through the bridge currency.
	QuoteInTx(ctx context.Context, repos repositories.Repositories, from, to domain.CurrencyCode, asOf time.Time) (*domain.FxRate, error)
}
