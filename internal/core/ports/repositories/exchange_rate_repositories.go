package repositories

import (
	"context"

	"github.com/SscSPs/money_ledger/internal/core/domain"
)

// FxRateReader defines read operations for exchange rate data
type FxRateReader interface {
	// FindFxRateByID retrieves one rate record.
	FindFxRateByID(ctx context.Context, rateID string) (*domain.FxRate, error)

	// FindFxRatesByPair returns every version recorded for from→to, oldest effectiveFrom first.
	FindFxRatesByPair(ctx context.Context, from, to domain.CurrencyCode) ([]domain.FxRate, error)

	// ListFxRates returns every rate record in the store.
	ListFxRates(ctx context.Context) ([]domain.FxRate, error)
}

// FxRateWriter defines write operations for exchange rate data
type FxRateWriter interface {
	// SaveFxRate inserts or replaces a rate record.
	SaveFxRate(ctx context.Context, rate domain.FxRate) error
}

// FxRateRepository combines all exchange rate-related repository interfaces
type FxRateRepository interface {
	FxRateReader
	FxRateWriter
}
