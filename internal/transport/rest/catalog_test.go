package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/service/aggregator"
	"github.com/heartmarshall/pokecatalog/internal/service/catalog"
	"github.com/heartmarshall/pokecatalog/internal/service/query"
)

type queryMock struct {
	got   query.Query
	res   query.ListResult
	types []string
	err   error
}

func (m *queryMock) List(_ context.Context, q query.Query) (query.ListResult, error) {
	m.got = q
	return m.res, m.err
}

func (m *queryMock) Types(_ context.Context) ([]string, error) { return m.types, m.err }

type catalogMock struct {
	details map[string]catalog.Detail
	page    int
	err     error
}

func (m *catalogMock) Detail(_ context.Context, key string) (catalog.Detail, error) {
	if m.err != nil {
		return catalog.Detail{}, m.err
	}
	d, ok := m.details[key]
	if !ok {
		return catalog.Detail{}, fmt.Errorf("detail %s: %w", key, domain.ErrNotFound)
	}
	return d, nil
}

func (m *catalogMock) ViewState() catalog.ViewState { return catalog.ViewState{ActivePage: m.page} }

func (m *catalogMock) SetActivePage(_ context.Context, page int) (catalog.ViewState, error) {
	if page < 1 {
		return catalog.ViewState{}, domain.NewValidationError("active_page", "must be >= 1")
	}
	m.page = page
	return m.ViewState(), nil
}

type refresherMock struct {
	calls  int
	err    error
	status aggregator.Status
}

func (m *refresherMock) Refresh(_ context.Context) (*aggregator.Snapshot, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &aggregator.Snapshot{}, nil
}

func (m *refresherMock) Status() aggregator.Status { return m.status }

type fixture struct {
	query   *queryMock
	catalog *catalogMock
	agg     *refresherMock
	router  *Router
}

func newFixture() *fixture {
	f := &fixture{
		query:   &queryMock{},
		catalog: &catalogMock{page: 1, details: map[string]catalog.Detail{}},
		agg:     &refresherMock{status: aggregator.Status{State: domain.ReadinessReady}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewCatalogHandler(f.query, f.catalog, f.agg, logger)
	health := NewHealthHandler(f.agg, nil, "test")
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	f.router = NewRouter(h, health, metrics, "/metrics")
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func TestList_PassesQuery(t *testing.T) {
	f := newFixture()
	f.query.res = query.ListResult{Result: query.Result{
		Items:     []query.Item{{ID: 4, Name: "charmander", Loaded: true}},
		Total:     1,
		PageCount: 1,
		Page:      2,
		Limit:     5,
	}}

	rec := f.do(http.MethodGet, "/api/v1/pokemon?page=2&limit=5&type=fire&search=Char", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, query.Query{Page: 2, Limit: 5, Type: "fire", Search: "Char"}, f.query.got)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(1), body["page_count"])
	assert.NotContains(t, body, "suggestions")
}

func TestList_DefaultsToActivePage(t *testing.T) {
	f := newFixture()
	f.catalog.page = 3

	rec := f.do(http.MethodGet, "/api/v1/pokemon", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, f.query.got.Page)
	assert.Equal(t, 0, f.query.got.Limit)
}

func TestList_Suggestions(t *testing.T) {
	f := newFixture()
	f.query.res = query.ListResult{
		Result:      query.Result{Items: []query.Item{}, Page: 1, Limit: 20},
		Suggestions: []string{"charmander"},
	}

	rec := f.do(http.MethodGet, "/api/v1/pokemon?search=charmandr", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"suggestions":["charmander"]`)
}

func TestList_BadParams(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/v1/pokemon?page=x&limit=y", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Fields, 2)
	assert.Equal(t, "page", resp.Fields[0].Field)
	assert.Equal(t, "limit", resp.Fields[1].Field)
}

func TestList_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not ready", domain.ErrNotReady, http.StatusServiceUnavailable},
		{"validation", domain.NewValidationError("page", "must be >= 1"), http.StatusBadRequest},
		{"index", fmt.Errorf("%w: boom", domain.ErrIndexFetch), http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.query.err = tt.err

			rec := f.do(http.MethodGet, "/api/v1/pokemon?page=1", "")

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestList_NotReadySetsRetryAfter(t *testing.T) {
	f := newFixture()
	f.query.err = domain.ErrNotReady

	rec := f.do(http.MethodGet, "/api/v1/pokemon", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
}

func TestDetail(t *testing.T) {
	f := newFixture()
	f.catalog.details["bulbasaur"] = catalog.Detail{ID: 1, Name: "bulbasaur", Types: []string{"grass"}}

	rec := f.do(http.MethodGet, "/api/v1/pokemon/bulbasaur", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var d catalog.Detail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, 1, d.ID)
	assert.Equal(t, []string{"grass"}, d.Types)

	rec = f.do(http.MethodGet, "/api/v1/pokemon/missingno", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTypes(t *testing.T) {
	f := newFixture()
	f.query.types = []string{"fire", "grass"}

	rec := f.do(http.MethodGet, "/api/v1/types", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"types":["fire","grass"],"none":"none"}`, rec.Body.String())
}

func TestState_GetAndPut(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active_page":1}`, rec.Body.String())

	rec = f.do(http.MethodPut, "/api/v1/state", `{"active_page":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active_page":4}`, rec.Body.String())
	assert.Equal(t, 4, f.catalog.page)

	rec = f.do(http.MethodPut, "/api/v1/state", `{"active_page":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPut, "/api/v1/state", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 4, f.catalog.page)
}

func TestRefresh(t *testing.T) {
	f := newFixture()
	f.agg.status.Counts = map[string]int{"pokemon": 3}

	rec := f.do(http.MethodPost, "/api/v1/refresh", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.agg.calls)
	var st aggregator.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, domain.ReadinessReady, st.State)
	assert.Equal(t, 3, st.Counts["pokemon"])
}

func TestRefresh_IndexFailure(t *testing.T) {
	f := newFixture()
	f.agg.err = fmt.Errorf("%w: connection refused", domain.ErrIndexFetch)

	rec := f.do(http.MethodPost, "/api/v1/refresh", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRouter_MethodsAndRoutes(t *testing.T) {
	f := newFixture()

	assert.Equal(t, http.StatusMethodNotAllowed, f.do(http.MethodGet, "/api/v1/refresh", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/v1/nothing", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/live", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/ready", "").Code)
	assert.Equal(t, "# metrics", f.do(http.MethodGet, "/metrics", "").Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pokemon/pikachu", nil)
	assert.Equal(t, "GET /api/v1/pokemon/{name}", f.router.Route(req))
	assert.Equal(t, "", f.router.Route(httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil)))
}
