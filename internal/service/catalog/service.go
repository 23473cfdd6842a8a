// Package catalog assembles entity detail views and keeps the persisted view
// state.
package catalog

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/service/aggregator"
)

type snapshotSource interface {
	Snapshot() (*aggregator.Snapshot, bool)
}

type cacheStore interface {
	Load(ctx context.Context, key string, dst any) bool
	Save(ctx context.Context, key string, v any) bool
}

// ViewState is the consumer state persisted across sessions.
type ViewState struct {
	ActivePage int `json:"active_page"`
}

// Service resolves entity details and owns the view state.
type Service struct {
	log        *slog.Logger
	snapshots  snapshotSource
	cache      cacheStore
	activePage atomic.Int64
}

// NewService creates a catalog Service. The active page starts at 1 until
// RestoreViewState runs.
func NewService(logger *slog.Logger, snapshots snapshotSource, cache cacheStore) *Service {
	s := &Service{
		log:       logger.With("service", "catalog"),
		snapshots: snapshots,
		cache:     cache,
	}
	s.activePage.Store(1)
	return s
}

// Detail returns the assembled view of the entity named key. key may be the
// entity name (case-insensitive) or its numeric id.
func (s *Service) Detail(ctx context.Context, key string) (Detail, error) {
	snap, ok := s.snapshots.Snapshot()
	if !ok {
		return Detail{}, domain.ErrNotReady
	}

	name := domain.NormalizeSearch(key)
	if name == "" {
		return Detail{}, domain.NewValidationError("name", "required")
	}
	id, byID := 0, false
	if n, err := strconv.Atoi(name); err == nil {
		id, byID = n, true
	}

	for _, ref := range snap.References {
		e, ok := snap.Entities.Get(ref.URL)
		if !ok {
			continue
		}
		if e.Name == name || (byID && e.ID == id) {
			return Assemble(snap, e), nil
		}
	}

	s.log.DebugContext(ctx, "entity not in catalog", slog.String("key", key))
	return Detail{}, domain.ErrNotFound
}

// ViewState returns the current view state.
func (s *Service) ViewState() ViewState {
	return ViewState{ActivePage: int(s.activePage.Load())}
}

// SetActivePage records page as the last viewed page and persists it. A
// persistence failure keeps the value in memory only.
func (s *Service) SetActivePage(ctx context.Context, page int) (ViewState, error) {
	if page < 1 {
		return ViewState{}, domain.NewValidationError("active_page", "must be >= 1")
	}
	s.activePage.Store(int64(page))
	if !s.cache.Save(ctx, domain.KeyActivePage, page) {
		s.log.WarnContext(ctx, "active page kept in memory only", slog.Int("page", page))
	}
	return s.ViewState(), nil
}

// RestoreViewState loads the persisted view state. A missing or invalid
// entry leaves the defaults in place.
func (s *Service) RestoreViewState(ctx context.Context) ViewState {
	var page int
	if s.cache.Load(ctx, domain.KeyActivePage, &page) && page >= 1 {
		s.activePage.Store(int64(page))
	}
	return s.ViewState()
}
