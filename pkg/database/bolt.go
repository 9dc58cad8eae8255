package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// NewBoltDB opens the embedded database file, creating its directory when needed.
// timeout bounds the wait for the file lock held by another process.
func NewBoltDB(path string, timeout time.Duration) (*bolt.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	slog.Debug("Opened embedded database", slog.String("path", path))
	return db, nil
}

// CloseBoltDB closes the database and logs any failure.
func CloseBoltDB(db *bolt.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Error("Error closing embedded database", slog.String("error", err.Error()))
		return
	}
	slog.Debug("Embedded database closed", slog.String("path", db.Path()))
}
