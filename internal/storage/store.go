// Package storage provides the named-blob persistence capability every
// repository is built on: a key maps to one JSON document.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no blob is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// MutateFunc receives the current blob (nil when absent) and returns the
// replacement. Returning write=false leaves the stored blob untouched.
type MutateFunc func(current []byte) (next []byte, write bool, err error)

// Store reads and writes named JSON blobs.
type Store interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the blob stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Update performs an atomic read-modify-write of the blob under key.
	Update(ctx context.Context, key string, fn MutateFunc) error
}
