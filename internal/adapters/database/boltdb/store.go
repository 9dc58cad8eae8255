package boltdb

import (
	"context"
	"fmt"

	"github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	bolt "go.etcd.io/bbolt"
)

// Index and metadata bucket names. Entity buckets are named after their collection.
const (
	bucketMeta        = "meta"
	bucketIdempotency = "txn_idempotency"
	bucketFxRatePairs = "fx_rate_pairs"

	keySchemaVersion = "schema_version"
)

// Store is the bbolt-backed embedded store. Every unit of work is one bbolt transaction,
// so a write either commits entirely or leaves no trace.
type Store struct {
	db *bolt.DB
}

var (
	_ repositories.TransactionManager = (*Store)(nil)
	_ repositories.DocumentManager    = (*Store)(nil)
)

// New wraps an open database and creates any missing bucket.
func New(db *bolt.DB) (*Store, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		buckets := append([]string{bucketMeta, bucketIdempotency, bucketFxRatePairs}, repositories.Collections...)
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// Update runs fn in one exclusive read-write transaction.
func (s *Store) Update(ctx context.Context, fn func(repos repositories.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(reposFor(tx))
	})
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(repos repositories.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(reposFor(tx))
	})
}

// UpdateDocuments runs fn over the raw documents in one read-write transaction.
func (s *Store) UpdateDocuments(ctx context.Context, fn func(docs repositories.DocumentStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&documentStore{tx: tx})
	})
}

func reposFor(tx *bolt.Tx) repositories.Repositories {
	return repositories.Repositories{
		Accounts:       &accountRepository{tx: tx},
		Transactions:   &transactionRepository{tx: tx},
		FxRates:        &fxRateRepository{tx: tx},
		Budgets:        &budgetRepository{tx: tx},
		Debts:          &debtRepository{tx: tx},
		Counterparties: &counterpartyRepository{tx: tx},
		Currencies:     &currencyRepository{tx: tx},
	}
}
