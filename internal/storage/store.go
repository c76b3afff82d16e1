// Package storage defines the local key-value store that player data is
// persisted in. Values are opaque bytes; callers encode them as JSON.
package storage

import (
	"context"
	"errors"
)

var ErrEmptyKey = errors.New("storage: empty key")

// UpdateFunc receives the current value (ok=false when absent) and returns the
// value to store. Returning a nil slice deletes the key.
type UpdateFunc func(current []byte, ok bool) ([]byte, error)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Update applies fn atomically with respect to other writers of key.
	Update(ctx context.Context, key string, fn UpdateFunc) ([]byte, error)
	// Keys lists stored keys with the given prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
