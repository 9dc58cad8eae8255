package boltdb

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	bolt "go.etcd.io/bbolt"
)

// pairKeyTimeFormat sorts lexicographically in chronological order.
const pairKeyTimeFormat = "20060102T150405.000000000"

type fxRateRepository struct {
	tx *bolt.Tx
}

var _ repositories.FxRateRepository = (*fxRateRepository)(nil)

func pairPrefix(from, to domain.CurrencyCode) string {
	return string(from) + "/" + string(to) + "/"
}

func pairKey(rate domain.FxRate) string {
	return pairPrefix(rate.FromCurrency, rate.ToCurrency) + rate.EffectiveFrom.UTC().Format(pairKeyTimeFormat) + "/" + rate.FxRateID
}

func (r *fxRateRepository) FindFxRateByID(ctx context.Context, rateID string) (*domain.FxRate, error) {
	var rate domain.FxRate
	found, err := getJSON(r.tx, repositories.CollectionFxRates, rateID, &rate)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrFxRateNotFound, rateID)
	}
	return &rate, nil
}

// FindFxRatesByPair walks the pair index, which is ordered by effectiveFrom.
func (r *fxRateRepository) FindFxRatesByPair(ctx context.Context, from, to domain.CurrencyCode) ([]domain.FxRate, error) {
	index, err := bucket(r.tx, bucketFxRatePairs)
	if err != nil {
		return nil, err
	}
	var rates []domain.FxRate
	c := index.Cursor()
	prefix := []byte(pairPrefix(from, to))
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		rate, err := r.FindFxRateByID(ctx, string(v))
		if err != nil {
			return nil, fmt.Errorf("fx rate index entry %s is dangling: %w", k, err)
		}
		rates = append(rates, *rate)
	}
	return rates, nil
}

func (r *fxRateRepository) ListFxRates(ctx context.Context) ([]domain.FxRate, error) {
	rates, err := listJSON[domain.FxRate](r.tx, repositories.CollectionFxRates, "", nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rates, func(i, j int) bool {
		return pairKey(rates[i]) < pairKey(rates[j])
	})
	return rates, nil
}

// SaveFxRate stores the record and moves its pair index entry if effectiveFrom changed.
func (r *fxRateRepository) SaveFxRate(ctx context.Context, rate domain.FxRate) error {
	index, err := bucket(r.tx, bucketFxRatePairs)
	if err != nil {
		return err
	}
	var previous domain.FxRate
	found, err := getJSON(r.tx, repositories.CollectionFxRates, rate.FxRateID, &previous)
	if err != nil {
		return err
	}
	if found {
		if err := index.Delete([]byte(pairKey(previous))); err != nil {
			return err
		}
	}
	if err := putJSON(r.tx, repositories.CollectionFxRates, rate.FxRateID, rate); err != nil {
		return fmt.Errorf("failed to save fx rate %s: %w", rate.FxRateID, err)
	}
	return index.Put([]byte(pairKey(rate)), []byte(rate.FxRateID))
}
