package testhelper

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedEntry writes a raw cache row, bypassing the store under test.
func SeedEntry(t *testing.T, pool *pgxpool.Pool, key string, value []byte) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO cache_entries (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value,
	)
	if err != nil {
		t.Fatalf("testhelper: seed %s: %v", key, err)
	}
}

// CountEntries returns the number of cache rows.
func CountEntries(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), `SELECT count(*) FROM cache_entries`).Scan(&n); err != nil {
		t.Fatalf("testhelper: count entries: %v", err)
	}
	return n
}
