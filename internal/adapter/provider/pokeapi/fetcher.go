package pokeapi

import (
	"context"
	"encoding/json"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/heartmarshall/pokecatalog/internal/config"
	"github.com/heartmarshall/pokecatalog/internal/domain"
)

const (
	defaultBatchWait     = 5 * time.Millisecond
	defaultBatchCapacity = 100
)

// RawSource fetches one resource body by url.
type RawSource interface {
	FetchRaw(ctx context.Context, url string) (json.RawMessage, error)
}

// Results is the outcome of a FetchAll call. A url is in exactly one of the
// two maps.
type Results struct {
	Payloads map[string]json.RawMessage
	Errors   map[string]error
}

// Failed reports whether any url could not be fetched.
func (r Results) Failed() bool { return len(r.Errors) > 0 }

// Fetcher deduplicates fetches by url. Every distinct url is requested at
// most once for the lifetime of the Fetcher, including while a request for
// it is still in flight, so one Fetcher is created per aggregation run.
type Fetcher struct {
	loader *dataloader.Loader[string, json.RawMessage]
}

// NewFetcher creates a Fetcher on top of src. At most cfg.Concurrency
// requests run at once across all batches.
func NewFetcher(src RawSource, cfg config.FetchConfig) *Fetcher {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	wait := cfg.BatchWait
	if wait <= 0 {
		wait = defaultBatchWait
	}
	capacity := cfg.BatchCapacity
	if capacity < 1 {
		capacity = defaultBatchCapacity
	}

	return &Fetcher{
		loader: dataloader.NewBatchedLoader(
			newRawBatchFn(src, semaphore.NewWeighted(int64(concurrency))),
			dataloader.WithWait[string, json.RawMessage](wait),
			dataloader.WithBatchCapacity[string, json.RawMessage](capacity),
		),
	}
}

// Load fetches a single url through the dedup cache.
func (f *Fetcher) Load(ctx context.Context, url string) (json.RawMessage, error) {
	return f.loader.Load(ctx, url)()
}

// FetchAll fetches every url and waits for all of them. Failures are
// reported per url and never abort the others.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) Results {
	thunks := make([]dataloader.Thunk[json.RawMessage], len(urls))
	for i, u := range urls {
		thunks[i] = f.loader.Load(ctx, u)
	}

	res := Results{
		Payloads: make(map[string]json.RawMessage, len(urls)),
		Errors:   make(map[string]error),
	}
	for i, u := range urls {
		data, err := thunks[i]()
		if err != nil {
			res.Errors[u] = err
			continue
		}
		res.Payloads[u] = data
	}
	return res
}

// FetchEntities fetches and decodes root entities. Entities that fail to
// fetch or decode are reported in the error map.
func (f *Fetcher) FetchEntities(ctx context.Context, urls []string) (map[string]domain.RootEntity, map[string]error) {
	res := f.FetchAll(ctx, urls)

	entities := make(map[string]domain.RootEntity, len(res.Payloads))
	for u, raw := range res.Payloads {
		e, err := decodeEntity(raw)
		if err != nil {
			res.Errors[u] = err
			continue
		}
		entities[u] = e
	}
	return entities, res.Errors
}

func newRawBatchFn(src RawSource, sem *semaphore.Weighted) dataloader.BatchFunc[string, json.RawMessage] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[json.RawMessage] {
		results := make([]*dataloader.Result[json.RawMessage], len(keys))

		var g errgroup.Group
		for i, key := range keys {
			g.Go(func() error {
				if err := sem.Acquire(ctx, 1); err != nil {
					results[i] = &dataloader.Result[json.RawMessage]{Error: err}
					return nil
				}
				defer sem.Release(1)

				data, err := src.FetchRaw(ctx, key)
				results[i] = &dataloader.Result[json.RawMessage]{Data: data, Error: err}
				return nil
			})
		}
		_ = g.Wait()

		return results
	}
}
