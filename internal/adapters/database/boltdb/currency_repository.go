package boltdb

import (
	"context"
	"fmt"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	bolt "go.etcd.io/bbolt"
)

type currencyRepository struct {
	tx *bolt.Tx
}

var _ repositories.CurrencyRepository = (*currencyRepository)(nil)

func (r *currencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode domain.CurrencyCode) (*domain.Currency, error) {
	var currency domain.Currency
	found, err := getJSON(r.tx, repositories.CollectionCurrencies, string(currencyCode), &currency)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrCurrencyNotFound, currencyCode)
	}
	return &currency, nil
}

// ListCurrencies returns currencies ordered by code.
func (r *currencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	return listJSON[domain.Currency](r.tx, repositories.CollectionCurrencies, "", nil)
}

func (r *currencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	return putJSON(r.tx, repositories.CollectionCurrencies, string(currency.CurrencyCode), currency)
}
