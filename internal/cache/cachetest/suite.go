// Package cachetest holds the behavioural checks every cache.Store backend
// must pass.
package cachetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/pokecatalog/internal/cache"
)

// Run exercises a fresh store returned by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) cache.Store) {
	t.Helper()

	t.Run("round trip", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "movesData", []byte(`{"u/1":{"id":1}}`)))
		got, err := s.Get(ctx, "movesData")
		require.NoError(t, err)
		assert.JSONEq(t, `{"u/1":{"id":1}}`, string(got))
	})

	t.Run("unknown key misses", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, cache.ErrMiss)
	})

	t.Run("set replaces whole value", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "k", []byte("a much longer first value")))
		require.NoError(t, s.Set(ctx, "k", []byte("short")))
		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "short", string(got))
	})

	t.Run("clear removes everything", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		for _, k := range []string{"a", "b", "c"} {
			require.NoError(t, s.Set(ctx, k, []byte(k)))
		}
		require.NoError(t, s.Clear(ctx))
		for _, k := range []string{"a", "b", "c"} {
			_, err := s.Get(ctx, k)
			assert.ErrorIs(t, err, cache.ErrMiss, k)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		s := open(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.Error(t, s.Set(ctx, "k", []byte("v")))
		_, err := s.Get(ctx, "k")
		assert.Error(t, err)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				key := fmt.Sprintf("key-%d", i)
				assert.NoError(t, s.Set(ctx, key, []byte(key)))
			}()
		}
		wg.Wait()

		for i := range 8 {
			key := fmt.Sprintf("key-%d", i)
			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, key, string(got))
		}
	})
}

// RunBatch exercises the atomic multi-key write of a BatchStore.
func RunBatch(t *testing.T, open func(t *testing.T) cache.BatchStore) {
	t.Helper()

	t.Run("set many", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "movesData", []byte("old")))
		require.NoError(t, s.SetMany(ctx, map[string][]byte{
			"movesData":   []byte("new"),
			"catalogMeta": []byte(`{"limit":151}`),
		}))

		got, err := s.Get(ctx, "movesData")
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))

		meta, err := s.Get(ctx, "catalogMeta")
		require.NoError(t, err)
		assert.JSONEq(t, `{"limit":151}`, string(meta))
	})
}
