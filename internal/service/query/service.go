package query

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/pokecatalog/internal/config"
	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/service/aggregator"
	"github.com/heartmarshall/pokecatalog/pkg/pagination"
)

const suggestionCount = 3

type snapshotSource interface {
	Snapshot() (*aggregator.Snapshot, bool)
}

// ListResult is a page plus "did you mean" names for an empty search.
type ListResult struct {
	Result
	Suggestions []string `json:"suggestions,omitempty"`
}

// Service binds the query functions to the published snapshot and applies
// the configured page size bounds.
type Service struct {
	log          *slog.Logger
	snapshots    snapshotSource
	pageLimit    int
	maxPageLimit int
}

// NewService creates a query Service.
func NewService(logger *slog.Logger, snapshots snapshotSource, cfg config.CatalogConfig) *Service {
	return &Service{
		log:          logger.With("service", "query"),
		snapshots:    snapshots,
		pageLimit:    cfg.PageLimit,
		maxPageLimit: cfg.MaxPageLimit,
	}
}

// List returns one page of the filtered catalog. A zero limit uses the
// default page size; larger limits are clamped.
func (s *Service) List(ctx context.Context, q Query) (ListResult, error) {
	snap, ok := s.snapshots.Snapshot()
	if !ok {
		return ListResult{}, domain.ErrNotReady
	}

	q.Limit = pagination.Clamp(q.Limit, 1, s.maxPageLimit, s.pageLimit)
	res, err := Page(snap, q)
	if err != nil {
		return ListResult{}, err
	}

	out := ListResult{Result: res}
	if res.Total == 0 && q.Search != "" {
		out.Suggestions = Suggest(snap, q.Search, suggestionCount)
	}

	s.log.DebugContext(ctx, "catalog listed",
		slog.Int("page", q.Page),
		slog.Int("limit", q.Limit),
		slog.String("type", q.Type),
		slog.String("search", q.Search),
		slog.Int("total", res.Total),
	)
	return out, nil
}

// Types returns the type tags available for filtering.
func (s *Service) Types(ctx context.Context) ([]string, error) {
	snap, ok := s.snapshots.Snapshot()
	if !ok {
		return nil, domain.ErrNotReady
	}
	return Types(snap), nil
}
