package boltdb

import (
	"bytes"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

func bucket(tx *bolt.Tx, name string) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(name))
	if b == nil {
		return nil, fmt.Errorf("bucket %s not found", name)
	}
	return b, nil
}

// getJSON decodes the value stored under key. It reports false when the key is absent.
func getJSON(tx *bolt.Tx, bucketName, key string, value any) (bool, error) {
	b, err := bucket(tx, bucketName)
	if err != nil {
		return false, err
	}
	data := b.Get([]byte(key))
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", bucketName, key, err)
	}
	return true, nil
}

func putJSON(tx *bolt.Tx, bucketName, key string, value any) error {
	b, err := bucket(tx, bucketName)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return b.Put([]byte(key), data)
}

// listJSON decodes every value of a bucket whose key starts with prefix.
func listJSON[T any](tx *bolt.Tx, bucketName, prefix string, keep func(T) bool) ([]T, error) {
	b, err := bucket(tx, bucketName)
	if err != nil {
		return nil, err
	}
	var results []T
	c := b.Cursor()
	p := []byte(prefix)
	for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", bucketName, k, err)
		}
		if keep == nil || keep(item) {
			results = append(results, item)
		}
	}
	return results, nil
}
