// Package cache is the persistent key-value layer behind the aggregator.
//
// A Store holds opaque byte values under string keys. Set replaces the whole
// value atomically; there is no TTL or eviction, Clear is the only
// invalidation path. Cache wraps a Store with JSON encoding and the
// degrade-on-failure policy the aggregator relies on.
package cache

import (
	"context"
	"errors"
)

// ErrMiss is returned by Store.Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Store is a persistent key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
	Close() error
}

// BatchStore is implemented by stores that can replace several keys in one
// atomic write.
type BatchStore interface {
	Store
	SetMany(ctx context.Context, entries map[string][]byte) error
}
