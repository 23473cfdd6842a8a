package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/pokecatalog/internal/cache"
)

// ErrSchemaMissing is returned when the cache table does not exist, i.e.
// migrations were not applied.
var ErrSchemaMissing = errors.New("cache schema missing")

// MapError converts pgx/pgconn errors to cache errors.
// context.DeadlineExceeded and context.Canceled are wrapped but not mapped.
func MapError(err error, op, key string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", op, key, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return cache.ErrMiss
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("%s %s: %w", op, key, ErrSchemaMissing)
		}
	}

	return fmt.Errorf("%s %s: %w", op, key, err)
}
