package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/pokecatalog/internal/adapter/provider/pokeapi"
	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/transform"
	"github.com/heartmarshall/pokecatalog/pkg/ctxutil"
)

// run holds the state of a single build. Fields written by concurrent steps
// are guarded by mu.
type run struct {
	s       *Service
	id      uuid.UUID
	window  domain.Window
	log     *slog.Logger
	fetcher Fetcher

	meta     Meta
	useCache bool
	// partial is set when some root entities failed to fetch; categories
	// harvested from them are then incomplete and not persisted.
	partial bool

	mu        sync.Mutex
	persist   map[string]any
	fromCache []string
}

// build executes the pipeline for window w. Only an index failure, or the
// run context ending, is fatal; any other failure leaves the affected
// entries absent and keeps their category out of the cache.
func (s *Service) build(ctx context.Context, w domain.Window, useCache bool) (*Snapshot, error) {
	r := &run{
		s:        s,
		id:       uuid.New(),
		window:   w,
		fetcher:  s.newFetcher(),
		useCache: useCache,
		persist:  make(map[string]any),
	}
	ctx = ctxutil.WithRunID(ctx, r.id)
	r.log = s.log.With("run_id", r.id.String())

	if useCache && !s.cache.Load(ctx, domain.KeyMeta, &r.meta) {
		r.useCache = false
	}

	snap := &Snapshot{RunID: r.id, Window: w}

	// Steps 1, 2 and 6: index, root entities, entity lookup map.
	if err := r.entities(ctx, snap); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 3: harvest shared category references across all entities.
	harvest := harvestShared(snap)

	// Steps 4 and 5: per-entity encounters and versions alongside the shared
	// categories. Each category is independent; the group is the barrier.
	env := transform.Env{URLLimit: snap.URLLimit}
	var g errgroup.Group
	for _, c := range domain.SharedCategories {
		g.Go(func() error {
			m := r.category(ctx, c, harvest[c], env)
			switch c {
			case domain.CategoryAbilities:
				snap.Abilities = m
			case domain.CategoryMoves:
				snap.Moves = m
			case domain.CategoryItems:
				snap.Items = m
			}
			return nil
		})
	}
	g.Go(func() error {
		snap.Encounters, snap.Versions = r.encounters(ctx, snap, env)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 7: persist.
	r.save(ctx, snap.URLLimit)

	// Step 8 is the caller's publish.
	snap.BuiltAt = time.Now().UTC()
	snap.FromCache = r.fromCache
	slices.Sort(snap.FromCache)
	return snap, nil
}

// load reads key from the cache when the stored meta vouches for it.
func (r *run) load(ctx context.Context, key string, dst any) bool {
	if !r.useCache || !r.meta.covers(r.window, r.s.urlLimit, r.s.levels, key) {
		return false
	}
	ok := r.s.cache.Load(ctx, key, dst)
	result := "miss"
	if ok {
		result = "hit"
	}
	r.s.metrics.RecordCacheOp(ctx, "load", result)
	return ok
}

// hit records that the entries under keys were served from the cache.
func (r *run) hit(keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fromCache = append(r.fromCache, keys...)
}

// keep schedules v for persistence under key.
func (r *run) keep(key string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persist[key] = v
}

// entities fills the index window, url limit and entity map.
func (r *run) entities(ctx context.Context, snap *Snapshot) error {
	var (
		refs     []domain.Reference
		entities domain.LookupMap[domain.RootEntity]
	)
	if r.load(ctx, domain.KeyReferences, &refs) && r.load(ctx, domain.KeyEntities, &entities) {
		snap.References = refs
		snap.Entities = entities
		snap.URLLimit = r.meta.URLLimit
		r.hit(domain.KeyReferences, domain.KeyEntities)
		return nil
	}

	idx, err := r.s.index.FetchIndex(ctx, r.window.Offset, r.window.Limit)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexFetch, err)
	}

	refs = domain.DedupReferences(idx.Results)
	snap.References = refs
	snap.URLLimit = r.s.urlLimit
	if snap.URLLimit <= 0 {
		snap.URLLimit = maxEntityID(refs)
	}

	urls := make([]string, len(refs))
	for i, ref := range refs {
		urls[i] = ref.URL
	}
	fetched, errs := r.fetcher.FetchEntities(ctx, urls)
	snap.Entities = domain.LookupMap[domain.RootEntity](fetched)

	r.keep(domain.KeyReferences, refs)
	if len(errs) == 0 {
		r.keep(domain.KeyEntities, snap.Entities)
	} else {
		r.partial = true
		r.logFailures(ctx, "pokemon", errs)
	}
	return nil
}

// category resolves one shared category, from the cache or the network.
func (r *run) category(ctx context.Context, c domain.Category, refs []domain.Reference, env transform.Env) domain.LookupMap[domain.Record] {
	key := c.StorageKey()
	var m domain.LookupMap[domain.Record]
	if r.load(ctx, key, &m) {
		r.hit(key)
		return m
	}

	urls := make([]string, len(refs))
	for i, ref := range refs {
		urls[i] = ref.URL
	}
	res := r.fetcher.FetchAll(ctx, urls)
	m = r.transformAll(ctx, r.s.rulesets[c], urls, res, env)

	switch {
	case res.Failed():
		r.logFailures(ctx, c.String(), res.Errors)
	case !r.partial:
		r.keep(key, m)
	}
	return m
}

// encounters resolves the per-entity encounter lists and the versions they
// name. Versions are discovered from the raw encounter payloads, so a stale
// versions entry forces the encounters to be refetched too.
func (r *run) encounters(ctx context.Context, snap *Snapshot, env transform.Env) (domain.LookupMap[[]domain.Record], domain.LookupMap[domain.Record]) {
	encKey := domain.CategoryEncounters.StorageKey()
	verKey := domain.CategoryVersions.StorageKey()

	var (
		encounters domain.LookupMap[[]domain.Record]
		versions   domain.LookupMap[domain.Record]
	)
	if r.load(ctx, encKey, &encounters) && r.load(ctx, verKey, &versions) {
		r.hit(encKey, verKey)
		return encounters, versions
	}

	var urls []string
	for _, ref := range snap.References {
		e, ok := snap.Entities.Get(ref.URL)
		if !ok || e.EncountersURL == "" || slices.Contains(urls, e.EncountersURL) {
			continue
		}
		urls = append(urls, e.EncountersURL)
	}

	res := r.fetcher.FetchAll(ctx, urls)
	encounters = make(domain.LookupMap[[]domain.Record], len(res.Payloads))
	rs := r.s.rulesets[domain.CategoryEncounters]
	var versionURLs []string
	for i, u := range urls {
		raw, ok := res.Payloads[u]
		if !ok {
			continue
		}
		elemEnv := env
		elemEnv.Index = i
		recs, err := transform.TransformList(raw, rs, elemEnv)
		if err != nil {
			r.log.WarnContext(ctx, "encounters payload skipped", slog.String("url", u), slog.String("error", err.Error()))
			continue
		}
		encounters[u] = recs
		for _, vu := range versionURLsOf(raw) {
			if !slices.Contains(versionURLs, vu) {
				versionURLs = append(versionURLs, vu)
			}
		}
	}
	switch {
	case res.Failed():
		r.logFailures(ctx, domain.CategoryEncounters.String(), res.Errors)
	case !r.partial:
		r.keep(encKey, encounters)
	}

	vres := r.fetcher.FetchAll(ctx, versionURLs)
	versions = r.transformAll(ctx, r.s.rulesets[domain.CategoryVersions], versionURLs, vres, env)
	switch {
	case vres.Failed():
		r.logFailures(ctx, domain.CategoryVersions.String(), vres.Errors)
	case !res.Failed() && !r.partial:
		r.keep(verKey, versions)
	}
	return encounters, versions
}

// transformAll distills fetched payloads. A payload that is not an object
// is left out of the map.
func (r *run) transformAll(ctx context.Context, rs transform.Ruleset, urls []string, res pokeapi.Results, env transform.Env) domain.LookupMap[domain.Record] {
	m := make(domain.LookupMap[domain.Record], len(res.Payloads))
	for i, u := range urls {
		raw, ok := res.Payloads[u]
		if !ok {
			continue
		}
		if _, done := m[u]; done {
			continue
		}
		elemEnv := env
		elemEnv.Index = i
		rec, err := transform.Transform(raw, rs, elemEnv)
		if err != nil {
			r.log.WarnContext(ctx, "payload skipped", slog.String("url", u), slog.String("error", err.Error()))
			continue
		}
		m[u] = rec
	}
	return m
}

// save persists the scheduled entries. Meta is first narrowed to the entries
// that stay valid, then widened once the new entries are stored, so a
// partial write never leaves meta vouching for data it did not describe.
func (r *run) save(ctx context.Context, urlLimit int) {
	if len(r.persist) == 0 {
		return
	}

	meta := Meta{
		Window:   r.window,
		URLLimit: urlLimit,
		Levels:   r.s.levels,
		Keys:     slices.Clone(r.fromCache),
		BuiltAt:  time.Now().UTC(),
	}
	if !r.s.cache.Save(ctx, domain.KeyMeta, meta) {
		return
	}
	if !r.s.cache.SaveAll(ctx, r.persist) {
		r.s.metrics.RecordCacheOp(ctx, "save", "error")
		return
	}
	for key := range r.persist {
		meta.Keys = append(meta.Keys, key)
	}
	slices.Sort(meta.Keys)
	meta.Keys = slices.Compact(meta.Keys)
	if r.s.cache.Save(ctx, domain.KeyMeta, meta) {
		r.s.metrics.RecordCacheOp(ctx, "save", "ok")
	}
}

func (r *run) logFailures(ctx context.Context, what string, errs map[string]error) {
	for u, err := range errs {
		r.log.WarnContext(ctx, "fetch failed",
			slog.String("category", what),
			slog.String("url", u),
			slog.String("error", err.Error()),
		)
	}
	r.log.WarnContext(ctx, "category not persisted", slog.String("category", what), slog.Int("failures", len(errs)))
}

// harvestShared collects the de-duplicated references of every shared
// category across all entities, in index order.
func harvestShared(snap *Snapshot) map[domain.Category][]domain.Reference {
	var abilities, moves, items []domain.Reference
	for _, ref := range snap.References {
		e, ok := snap.Entities.Get(ref.URL)
		if !ok {
			continue
		}
		abilities = append(abilities, e.Abilities...)
		moves = append(moves, e.Moves...)
		items = append(items, e.HeldItems...)
	}
	return map[domain.Category][]domain.Reference{
		domain.CategoryAbilities: domain.DedupReferences(abilities),
		domain.CategoryMoves:     domain.DedupReferences(moves),
		domain.CategoryItems:     domain.DedupReferences(items),
	}
}

// versionURLsOf extracts the version urls named by a raw encounters list.
func versionURLsOf(raw json.RawMessage) []string {
	var elems []struct {
		VersionDetails []struct {
			Version domain.Reference `json:"version"`
		} `json:"version_details"`
	}
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	var out []string
	for _, e := range elems {
		for _, d := range e.VersionDetails {
			if d.Version.URL != "" && !slices.Contains(out, d.Version.URL) {
				out = append(out, d.Version.URL)
			}
		}
	}
	return out
}

func maxEntityID(refs []domain.Reference) int {
	limit := 0
	for _, ref := range refs {
		if id, ok := domain.ParseEntityID(ref.URL); ok && id > limit {
			limit = id
		}
	}
	return limit
}
