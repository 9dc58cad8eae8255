package boltdb

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	bolt "go.etcd.io/bbolt"
)

type documentStore struct {
	tx *bolt.Tx
}

var _ repositories.DocumentStore = (*documentStore)(nil)

func (d *documentStore) SchemaVersion() (int, error) {
	b, err := bucket(d.tx, bucketMeta)
	if err != nil {
		return 0, err
	}
	raw := b.Get([]byte(keySchemaVersion))
	if raw == nil {
		return 1, nil
	}
	version, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("corrupt schema version %q: %w", raw, err)
	}
	return version, nil
}

func (d *documentStore) SetSchemaVersion(version int) error {
	b, err := bucket(d.tx, bucketMeta)
	if err != nil {
		return err
	}
	return b.Put([]byte(keySchemaVersion), []byte(strconv.Itoa(version)))
}

func (d *documentStore) ForEachDocument(collection string, fn func(key, doc []byte) error) error {
	b, err := bucket(d.tx, collection)
	if err != nil {
		return err
	}
	// bbolt forbids writes to a bucket while ForEach walks it, so keys are collected first.
	var keys [][]byte
	if err := b.ForEach(func(k, _ []byte) error {
		keys = append(keys, append([]byte(nil), k...))
		return nil
	}); err != nil {
		return err
	}
	for _, k := range keys {
		if err := fn(k, b.Get(k)); err != nil {
			return err
		}
	}
	return nil
}

func (d *documentStore) PutDocument(collection string, key, doc []byte) error {
	b, err := bucket(d.tx, collection)
	if err != nil {
		return err
	}
	return b.Put(key, doc)
}

// Reindex drops and rebuilds the idempotency and FX pair indexes.
func (d *documentStore) Reindex() error {
	for _, name := range []string{bucketIdempotency, bucketFxRatePairs} {
		if err := d.tx.DeleteBucket([]byte(name)); err != nil && err != bolt.ErrBucketNotFound {
			return fmt.Errorf("failed to drop index %s: %w", name, err)
		}
		if _, err := d.tx.CreateBucket([]byte(name)); err != nil {
			return fmt.Errorf("failed to create index %s: %w", name, err)
		}
	}

	idem := d.tx.Bucket([]byte(bucketIdempotency))
	err := d.ForEachDocument(repositories.CollectionTransactions, func(_, doc []byte) error {
		var txn domain.Transaction
		if err := json.Unmarshal(doc, &txn); err != nil {
			return err
		}
		if txn.IdempotencyKey == "" {
			return nil
		}
		return idem.Put([]byte(idempotencyKey(txn.UserID, txn.IdempotencyKey)), []byte(txn.TransactionID))
	})
	if err != nil {
		return fmt.Errorf("failed to rebuild idempotency index: %w", err)
	}

	pairs := d.tx.Bucket([]byte(bucketFxRatePairs))
	err = d.ForEachDocument(repositories.CollectionFxRates, func(_, doc []byte) error {
		var rate domain.FxRate
		if err := json.Unmarshal(doc, &rate); err != nil {
			return err
		}
		return pairs.Put([]byte(pairKey(rate)), []byte(rate.FxRateID))
	})
	if err != nil {
		return fmt.Errorf("failed to rebuild fx rate index: %w", err)
	}
	return nil
}
