package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/pokecatalog/internal/adapter/provider/pokeapi/pokeapitest"
	"github.com/heartmarshall/pokecatalog/internal/domain"
)

func TestFetcher_FetchAll_OneRequestPerURL(t *testing.T) {
	t.Parallel()

	srv := pokeapitest.NewServer(t)
	c := newTestClient(srv.URL)
	f := NewFetcher(c, testFetchConfig(srv.URL))

	tackle := srv.Abs(pokeapitest.PathTackle)
	ember := srv.Abs(pokeapitest.PathEmber)
	urls := []string{tackle, ember, tackle, tackle, ember}

	res := f.FetchAll(context.Background(), urls)

	assert.False(t, res.Failed())
	assert.Len(t, res.Payloads, 2)
	assert.Equal(t, 1, srv.Hits(pokeapitest.PathTackle))
	assert.Equal(t, 1, srv.Hits(pokeapitest.PathEmber))

	// A second call on the same fetcher is served from the loader cache.
	res = f.FetchAll(context.Background(), []string{tackle})
	assert.Contains(t, res.Payloads, tackle)
	assert.Equal(t, 1, srv.Hits(pokeapitest.PathTackle))
}

func TestFetcher_ConcurrentCallersShareInFlightRequests(t *testing.T) {
	t.Parallel()

	srv := pokeapitest.NewServer(t)
	c := newTestClient(srv.URL)
	f := NewFetcher(c, testFetchConfig(srv.URL))

	urls := []string{
		srv.Abs(pokeapitest.PathOvergrow),
		srv.Abs(pokeapitest.PathBlaze),
		srv.Abs(pokeapitest.PathTackle),
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := f.FetchAll(context.Background(), urls)
			assert.Len(t, res.Payloads, 3)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, srv.MaxHits())
	assert.Equal(t, 3, srv.TotalHits())
}

func TestFetcher_PartialFailure(t *testing.T) {
	t.Parallel()

	srv := pokeapitest.NewServer(t)
	srv.Fail(pokeapitest.PathEmber, http.StatusInternalServerError)
	c := newTestClient(srv.URL)
	f := NewFetcher(c, testFetchConfig(srv.URL))

	tackle := srv.Abs(pokeapitest.PathTackle)
	ember := srv.Abs(pokeapitest.PathEmber)
	missing := srv.Abs("/move/9999/")

	res := f.FetchAll(context.Background(), []string{tackle, ember, missing})

	assert.True(t, res.Failed())
	assert.Contains(t, res.Payloads, tackle)
	assert.NotContains(t, res.Payloads, ember)
	assert.ErrorIs(t, res.Errors[ember], ErrUnexpectedStatus)
	assert.ErrorIs(t, res.Errors[missing], domain.ErrNotFound)
}

func TestFetcher_FetchEntities(t *testing.T) {
	t.Parallel()

	srv := pokeapitest.NewServer(t)
	c := newTestClient(srv.URL)
	f := NewFetcher(c, testFetchConfig(srv.URL))

	bulba := srv.Abs(pokeapitest.PathBulbasaur)
	char := srv.Abs(pokeapitest.PathCharmander)

	entities, errs := f.FetchEntities(context.Background(), []string{bulba, char})

	require.Empty(t, errs)
	require.Len(t, entities, 2)
	assert.Equal(t, "bulbasaur", entities[bulba].Name)
	assert.Equal(t, 4, entities[char].ID)
}

type countingSource struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *countingSource) FetchRaw(ctx context.Context, url string) (json.RawMessage, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Millisecond):
	}
	return json.RawMessage(`{}`), nil
}

func TestFetcher_RespectsConcurrencyLimit(t *testing.T) {
	t.Parallel()

	src := &countingSource{}
	cfg := testFetchConfig("http://unused")
	cfg.Concurrency = 3
	cfg.BatchCapacity = 4
	f := NewFetcher(src, cfg)

	urls := make([]string, 20)
	for i := range urls {
		urls[i] = "http://unused/move/" + string(rune('a'+i)) + "/"
	}

	res := f.FetchAll(context.Background(), urls)

	assert.Len(t, res.Payloads, 20)
	assert.LessOrEqual(t, src.peak.Load(), int32(3))
}

func TestFetcher_CanceledContext(t *testing.T) {
	t.Parallel()

	src := &countingSource{}
	f := NewFetcher(src, testFetchConfig("http://unused"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.FetchAll(ctx, []string{"http://unused/a/", "http://unused/b/"})

	assert.Empty(t, res.Payloads)
	for _, err := range res.Errors {
		assert.True(t, errors.Is(err, context.Canceled))
	}
}
