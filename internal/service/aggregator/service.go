// Package aggregator builds the catalog snapshot: it discovers the reference
// graph reachable from a window of the root index, fetches every distinct url
// once, distills the payloads, persists them, and publishes the result.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/pokecatalog/internal/adapter/provider/pokeapi"
	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/observe"
	"github.com/heartmarshall/pokecatalog/internal/transform"
)

const defaultRunTimeout = 5 * time.Minute

type indexSource interface {
	FetchIndex(ctx context.Context, offset, limit int) (domain.Index, error)
}

type cacheStore interface {
	Load(ctx context.Context, key string, dst any) bool
	Save(ctx context.Context, key string, v any) bool
	SaveAll(ctx context.Context, entries map[string]any) bool
	Clear(ctx context.Context) error
}

// Fetcher fetches urls with per-run deduplication.
type Fetcher interface {
	FetchAll(ctx context.Context, urls []string) pokeapi.Results
	FetchEntities(ctx context.Context, urls []string) (map[string]domain.RootEntity, map[string]error)
}

// FetcherFactory returns a fresh Fetcher. It is called once per run.
type FetcherFactory func() Fetcher

// Config controls what a run aggregates.
type Config struct {
	Window domain.Window
	// URLLimit overrides the cross-reference bound when positive.
	URLLimit   int
	RunTimeout time.Duration
	Policy     transform.Policy
}

// Status is a point-in-time view of the aggregator lifecycle.
type Status struct {
	State     domain.Readiness `json:"state"`
	RunID     string           `json:"run_id,omitempty"`
	Window    domain.Window    `json:"window"`
	URLLimit  int              `json:"url_limit,omitempty"`
	BuiltAt   *time.Time       `json:"built_at,omitempty"`
	FromCache []string         `json:"from_cache,omitempty"`
	Counts    map[string]int   `json:"counts,omitempty"`
	LastError string           `json:"last_error,omitempty"`
}

// Service owns the published snapshot and the run lifecycle.
type Service struct {
	log        *slog.Logger
	cache      cacheStore
	index      indexSource
	newFetcher FetcherFactory
	metrics    *observe.Metrics

	window     domain.Window
	urlLimit   int
	runTimeout time.Duration
	rulesets   map[domain.Category]transform.Ruleset
	levels     map[domain.Category]transform.Level

	snapshot atomic.Pointer[Snapshot]
	flight   singleflight.Group

	mu      sync.Mutex
	state   domain.Readiness
	lastErr error
	ready   chan struct{}

	baseCtx context.Context
	stop    context.CancelFunc
}

// NewService creates a Service. It fails only when the ruleset policy names
// an unknown category or level.
func NewService(
	logger *slog.Logger,
	cache cacheStore,
	index indexSource,
	newFetcher FetcherFactory,
	metrics *observe.Metrics,
	cfg Config,
) (*Service, error) {
	if err := cfg.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("aggregator: %w", err)
	}

	rulesets := make(map[domain.Category]transform.Ruleset, len(domain.Categories))
	levels := make(map[domain.Category]transform.Level, len(domain.Categories))
	for _, c := range domain.Categories {
		rs, err := cfg.Policy.Ruleset(c)
		if err != nil {
			return nil, fmt.Errorf("aggregator: %w", err)
		}
		rulesets[c] = rs
		levels[c] = rs.Level
	}

	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = defaultRunTimeout
	}
	if metrics == nil {
		metrics = observe.Nop()
	}

	baseCtx, stop := context.WithCancel(context.Background())
	return &Service{
		log:        logger.With("service", "aggregator"),
		cache:      cache,
		index:      index,
		newFetcher: newFetcher,
		metrics:    metrics,
		window:     cfg.Window,
		urlLimit:   cfg.URLLimit,
		runTimeout: cfg.RunTimeout,
		rulesets:   rulesets,
		levels:     levels,
		state:      domain.ReadinessNotReady,
		ready:      make(chan struct{}),
		baseCtx:    baseCtx,
		stop:       stop,
	}, nil
}

// Snapshot returns the published snapshot. ok is false until the first
// successful run.
func (s *Service) Snapshot() (*Snapshot, bool) {
	snap := s.snapshot.Load()
	return snap, snap != nil
}

// Readiness returns the current lifecycle state.
func (s *Service) Readiness() domain.Readiness {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the lifecycle state together with a summary of the
// published snapshot.
func (s *Service) Status() Status {
	s.mu.Lock()
	st := Status{State: s.state, Window: s.window}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	s.mu.Unlock()

	if snap, ok := s.Snapshot(); ok {
		builtAt := snap.BuiltAt
		st.RunID = snap.RunID.String()
		st.Window = snap.Window
		st.URLLimit = snap.URLLimit
		st.BuiltAt = &builtAt
		st.FromCache = snap.FromCache
		st.Counts = snap.Counts()
	}
	return st
}

// Wait blocks until a snapshot is published or ctx ends.
func (s *Service) Wait(ctx context.Context) (*Snapshot, error) {
	select {
	case <-s.ready:
		snap, _ := s.Snapshot()
		return snap, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Warm aggregates the configured window, serving from the cache where
// possible.
func (s *Service) Warm(ctx context.Context) (*Snapshot, error) {
	return s.Run(ctx, s.window)
}

// Refresh re-aggregates the configured window, ignoring cached entries. A
// refresh that arrives while a run for the window is in flight joins that run.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	return s.run(ctx, s.window, false)
}

// Run aggregates window w. Concurrent calls for the same window share one
// run, whether or not they would use the cache. The run itself is bounded by the run timeout and by Close, not by
// ctx; ctx only bounds how long the caller waits.
func (s *Service) Run(ctx context.Context, w domain.Window) (*Snapshot, error) {
	return s.run(ctx, w, true)
}

func (s *Service) run(ctx context.Context, w domain.Window, useCache bool) (*Snapshot, error) {
	if w.Limit < 1 || w.Offset < 0 {
		return nil, domain.NewValidationError("window", "offset must be >= 0 and limit >= 1")
	}

	key := fmt.Sprintf("%d:%d", w.Offset, w.Limit)
	ch := s.flight.DoChan(key, func() (any, error) {
		runCtx, cancel := context.WithTimeout(s.baseCtx, s.runTimeout)
		defer cancel()
		return s.execute(runCtx, w, useCache)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// execute runs one aggregation and moves the lifecycle state accordingly.
func (s *Service) execute(ctx context.Context, w domain.Window, useCache bool) (*Snapshot, error) {
	start := time.Now()
	s.setLoading()

	snap, err := s.build(ctx, w, useCache)
	if err != nil {
		s.setFailed(err)
		s.metrics.RecordRun(ctx, "failed", time.Since(start))
		s.log.ErrorContext(ctx, "aggregation failed",
			slog.Int("offset", w.Offset),
			slog.Int("limit", w.Limit),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.publish(snap)

	outcome := "ready"
	if len(snap.FromCache) > 0 {
		outcome = "cached"
	}
	s.metrics.RecordRun(ctx, outcome, time.Since(start))
	for c, n := range snap.Counts() {
		s.metrics.RecordCatalogSize(ctx, c, n)
	}
	s.log.InfoContext(ctx, "catalog published",
		slog.String("run_id", snap.RunID.String()),
		slog.Int("entities", len(snap.Entities)),
		slog.Int("url_limit", snap.URLLimit),
		slog.Int("cached_keys", len(snap.FromCache)),
		slog.Duration("took", time.Since(start)),
	)
	return snap, nil
}

// ClearCache wipes the persistent cache. The published snapshot is kept.
func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("aggregator: clear cache: %w", err)
	}
	s.log.InfoContext(ctx, "cache cleared")
	return nil
}

// Close cancels in-flight runs.
func (s *Service) Close() {
	s.stop()
}

func (s *Service) setLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.ReadinessReady {
		s.state = domain.ReadinessLoading
	}
}

// setFailed records err. A published snapshot keeps serving, so the state
// only becomes failed when there is nothing to serve.
func (s *Service) setFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if s.snapshot.Load() == nil {
		s.state = domain.ReadinessFailed
	}
}

func (s *Service) publish(snap *Snapshot) {
	first := s.snapshot.Swap(snap) == nil

	s.mu.Lock()
	s.state = domain.ReadinessReady
	s.lastErr = nil
	s.mu.Unlock()

	if first {
		close(s.ready)
	}
}
