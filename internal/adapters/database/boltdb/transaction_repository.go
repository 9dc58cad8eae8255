package boltdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	bolt "go.etcd.io/bbolt"
)

type transactionRepository struct {
	tx *bolt.Tx
}

var _ repositories.TransactionRepository = (*transactionRepository)(nil)

func idempotencyKey(userID, key string) string {
	return userID + "/" + key
}

func (r *transactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var txn domain.Transaction
	found, err := getJSON(r.tx, repositories.CollectionTransactions, transactionID, &txn)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
	}
	return &txn, nil
}

func (r *transactionRepository) FindTransactionByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Transaction, error) {
	b, err := bucket(r.tx, bucketIdempotency)
	if err != nil {
		return nil, err
	}
	id := b.Get([]byte(idempotencyKey(userID, key)))
	if id == nil {
		return nil, apperrors.ErrTransactionNotFound
	}
	return r.FindTransactionByID(ctx, string(id))
}

func (r *transactionRepository) ListTransactions(ctx context.Context, filter repositories.TransactionFilter) ([]domain.Transaction, error) {
	txns, err := listJSON(r.tx, repositories.CollectionTransactions, "", func(t domain.Transaction) bool {
		return matchesFilter(t, filter)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.After(txns[j].Date)
		}
		if !txns[i].CreatedAt.Equal(txns[j].CreatedAt) {
			return txns[i].CreatedAt.After(txns[j].CreatedAt)
		}
		return txns[i].TransactionID > txns[j].TransactionID
	})
	return txns, nil
}

func matchesFilter(t domain.Transaction, f repositories.TransactionFilter) bool {
	switch {
	case f.UserID != "" && t.UserID != f.UserID:
		return false
	case !f.IncludeDeleted && !t.IsActive():
		return false
	case f.AccountID != "" && !t.References(f.AccountID):
		return false
	case f.Type != "" && t.Type != f.Type:
		return false
	case f.CategoryID != "" && t.CategoryID != f.CategoryID:
		return false
	case f.DebtID != "" && t.DebtID != f.DebtID:
		return false
	case f.From != nil && t.Date.Before(*f.From):
		return false
	case f.To != nil && t.Date.After(*f.To):
		return false
	}
	return true
}

func (r *transactionRepository) AccountHasTransactions(ctx context.Context, accountID string) (bool, error) {
	txns, err := r.ListTransactions(ctx, repositories.TransactionFilter{AccountID: accountID, IncludeDeleted: true})
	if err != nil {
		return false, err
	}
	return len(txns) > 0, nil
}

func (r *transactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	if err := putJSON(r.tx, repositories.CollectionTransactions, txn.TransactionID, txn); err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}
	if txn.IdempotencyKey == "" {
		return nil
	}
	b, err := bucket(r.tx, bucketIdempotency)
	if err != nil {
		return err
	}
	return b.Put([]byte(idempotencyKey(txn.UserID, txn.IdempotencyKey)), []byte(txn.TransactionID))
}
