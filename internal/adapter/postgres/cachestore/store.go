// Package cachestore implements cache.Store on PostgreSQL. Entries live in
// the cache_entries table created by the embedded migrations.
package cachestore

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/pokecatalog/internal/adapter/postgres"
)

const table = "cache_entries"

// Store provides cache persistence backed by PostgreSQL.
type Store struct {
	pool postgres.Pool
	tx   *postgres.TxManager
	sb   squirrel.StatementBuilderType
}

// New creates a store on pool. The store owns the pool and closes it on Close.
func New(pool postgres.Pool) *Store {
	return &Store{
		pool: pool,
		tx:   postgres.NewTxManager(pool),
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := s.sb.
		Select("value").
		From(table).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get: %w", err)
	}

	var value []byte
	err = postgres.QuerierFromCtx(ctx, s.pool).QueryRow(ctx, query, args...).Scan(&value)
	if err != nil {
		return nil, postgres.MapError(err, "get", key)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := s.sb.
		Insert(table).
		Columns("key", "value", "updated_at").
		Values(key, value, squirrel.Expr("now()")).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build set: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, s.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "set", key)
	}
	return nil
}

// SetMany writes every entry in one transaction; either all keys are
// replaced or none are.
func (s *Store) SetMany(ctx context.Context, entries map[string][]byte) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for key, value := range entries {
			if err := s.Set(ctx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Clear(ctx context.Context) error {
	query, args, err := s.sb.Delete(table).ToSql()
	if err != nil {
		return fmt.Errorf("build clear: %w", err)
	}
	if _, err := postgres.QuerierFromCtx(ctx, s.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "clear", "*")
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
