package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// Cache encodes values as JSON on top of a Store. Read failures of any kind
// are reported as absent and write failures are logged, never returned, so a
// broken store degrades to an in-memory-only session.
type Cache struct {
	store Store
	log   *slog.Logger
}

// New wraps store.
func New(store Store, logger *slog.Logger) *Cache {
	return &Cache{
		store: store,
		log:   logger.With("component", "cache"),
	}
}

// Load decodes the value stored under key into dst. It reports false on a
// miss, a store error, or a value that does not decode into dst.
func (c *Cache) Load(ctx context.Context, key string, dst any) bool {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.log.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.WarnContext(ctx, "cache entry undecodable", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}

// Save replaces the value stored under key. It reports whether the write
// reached the store.
func (c *Cache) Save(ctx context.Context, key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.WarnContext(ctx, "cache entry unencodable", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	if err := c.store.Set(ctx, key, raw); err != nil {
		c.log.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}

// SaveAll replaces every key in entries. Stores implementing BatchStore
// write them atomically; otherwise keys are written one by one and a failing
// key does not stop the rest. It reports whether every key was written.
func (c *Cache) SaveAll(ctx context.Context, entries map[string]any) bool {
	encoded := make(map[string][]byte, len(entries))
	ok := true
	for key, v := range entries {
		raw, err := json.Marshal(v)
		if err != nil {
			c.log.WarnContext(ctx, "cache entry unencodable", slog.String("key", key), slog.String("error", err.Error()))
			ok = false
			continue
		}
		encoded[key] = raw
	}

	if bs, isBatch := c.store.(BatchStore); isBatch {
		if err := bs.SetMany(ctx, encoded); err != nil {
			c.log.WarnContext(ctx, "cache batch write failed", slog.Int("keys", len(encoded)), slog.String("error", err.Error()))
			return false
		}
		return ok
	}

	for key, raw := range encoded {
		if err := c.store.Set(ctx, key, raw); err != nil {
			c.log.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
			ok = false
		}
	}
	return ok
}

// Clear wipes every entry. Unlike Load and Save, failures are returned: a
// caller asking for invalidation needs to know it did not happen.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}
