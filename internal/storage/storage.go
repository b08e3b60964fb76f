// Package storage provides durable named blobs: one value per key, replaced
// wholesale on every write.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key holds no blob.
var ErrNotFound = errors.New("blob not found")

// Store reads and writes named blobs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Open returns the blob store for driver ("memory", "file" or "sqlite").
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", "file":
		return NewFileStore(path)
	case "sqlite":
		return OpenSQLite(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
