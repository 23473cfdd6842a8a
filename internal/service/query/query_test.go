package query

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/pokecatalog/internal/config"
	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/service/aggregator"
)

func ref(id int, name string) domain.Reference {
	return domain.Reference{Name: name, URL: fmt.Sprintf("https://pokeapi.co/api/v2/pokemon/%d/", id)}
}

func entity(id int, name string, types ...string) domain.RootEntity {
	e := domain.RootEntity{ID: id, Name: name}
	for _, t := range types {
		e.Types = append(e.Types, domain.Reference{Name: t})
	}
	return e
}

// testSnapshot has six entities; charizard's detail failed to load.
func testSnapshot() *aggregator.Snapshot {
	refs := []domain.Reference{
		ref(1, "bulbasaur"),
		ref(2, "ivysaur"),
		ref(4, "charmander"),
		ref(5, "charmeleon"),
		ref(6, "charizard"),
		ref(7, "squirtle"),
	}
	entities := domain.LookupMap[domain.RootEntity]{
		refs[0].URL: entity(1, "bulbasaur", "grass", "poison"),
		refs[1].URL: entity(2, "ivysaur", "grass", "poison"),
		refs[2].URL: entity(4, "charmander", "fire"),
		refs[3].URL: entity(5, "charmeleon", "fire"),
		refs[5].URL: entity(7, "squirtle", "water"),
	}
	return &aggregator.Snapshot{References: refs, Entities: entities}
}

func names(refs []domain.Reference) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Name
	}
	return out
}

func itemNames(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestByType(t *testing.T) {
	t.Parallel()
	snap := testSnapshot()

	tests := []struct {
		name string
		tag  string
		want []string
	}{
		{"none is identity", "none", names(snap.References)},
		{"empty is identity", "", names(snap.References)},
		{"fire", "fire", []string{"charmander", "charmeleon"}},
		{"case insensitive", "Grass", []string{"bulbasaur", "ivysaur"}},
		{"no match", "dragon", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, names(ByType(snap.References, snap.Entities, tt.tag)))
		})
	}
}

func TestByType_MissingEntityExcluded(t *testing.T) {
	t.Parallel()
	snap := testSnapshot()

	got := names(ByType(snap.References, snap.Entities, "fire"))
	assert.NotContains(t, got, "charizard")
}

func TestByNamePrefix(t *testing.T) {
	t.Parallel()
	snap := testSnapshot()

	tests := []struct {
		name string
		q    string
		want []string
	}{
		{"empty is identity", "", names(snap.References)},
		{"prefix", "char", []string{"charmander", "charmeleon", "charizard"}},
		{"case insensitive", "CHAR", []string{"charmander", "charmeleon", "charizard"}},
		{"position zero only", "saur", []string{}},
		{"full name", "squirtle", []string{"squirtle"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, names(ByNamePrefix(snap.References, snap.Entities, tt.q)))
		})
	}
}

func TestFilter_ComposesWithAnd(t *testing.T) {
	t.Parallel()
	snap := testSnapshot()

	assert.Equal(t, []string{"charmander", "charmeleon"}, names(Filter(snap.References, snap.Entities, "fire", "char")))
	assert.Empty(t, Filter(snap.References, snap.Entities, "water", "char"))
	assert.Equal(t, names(snap.References), names(Filter(snap.References, snap.Entities, "none", "")))
}

func TestPage(t *testing.T) {
	t.Parallel()
	snap := testSnapshot()

	res, err := Page(snap, Query{Page: 1, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Total)
	assert.Equal(t, 2, res.PageCount)
	assert.Equal(t, []string{"bulbasaur", "ivysaur", "charmander", "charmeleon"}, itemNames(res.Items))

	res, err = Page(snap, Query{Page: 2, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"charizard", "squirtle"}, itemNames(res.Items))
	assert.False(t, res.Items[0].Loaded)
	assert.Equal(t, 6, res.Items[0].ID)
	assert.True(t, res.Items[1].Loaded)
	assert.Equal(t, []string{"water"}, res.Items[1].Types)

	res, err = Page(snap, Query{Page: 3, Limit: 4})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 2, res.PageCount)
}

func TestPage_FilteredCountsDrivePageCount(t *testing.T) {
	t.Parallel()
	snap := testSnapshot()

	res, err := Page(snap, Query{Page: 1, Limit: 1, Search: "char"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.PageCount)
	assert.Equal(t, []string{"charmander"}, itemNames(res.Items))

	res, err = Page(snap, Query{Page: 1, Limit: 20, Type: "dragon"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0, res.PageCount)
	assert.NotNil(t, res.Items)
}

func TestPage_HugePage(t *testing.T) {
	t.Parallel()
	snap := testSnapshot()

	for _, limit := range []int{2, 4} {
		res, err := Page(snap, Query{Page: 1<<62 + 1, Limit: limit})
		require.NoError(t, err)
		assert.Empty(t, res.Items)
		assert.Equal(t, 6, res.Total)
	}

	res, err := Page(snap, Query{Page: 1, Limit: math.MaxInt})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PageCount)
	assert.Len(t, res.Items, 6)
}

func TestPage_Validation(t *testing.T) {
	t.Parallel()
	snap := testSnapshot()

	_, err := Page(snap, Query{Page: 0, Limit: 10})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Page(snap, Query{Page: 1, Limit: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"fire", "grass", "poison", "water"}, Types(testSnapshot()))
}

func TestSuggest(t *testing.T) {
	t.Parallel()
	snap := testSnapshot()

	got := Suggest(snap, "bulbsaur", 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "bulbasaur", got[0])

	assert.Empty(t, Suggest(snap, "zzzzzz", 3))
	assert.Empty(t, Suggest(snap, "", 3))
	assert.LessOrEqual(t, len(Suggest(snap, "char", 1)), 1)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

type snapshotStub struct {
	snap *aggregator.Snapshot
}

func (s snapshotStub) Snapshot() (*aggregator.Snapshot, bool) {
	return s.snap, s.snap != nil
}

func newTestService(snap *aggregator.Snapshot) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, snapshotStub{snap: snap}, config.CatalogConfig{PageLimit: 2, MaxPageLimit: 3})
}

func TestService_List_NotReady(t *testing.T) {
	t.Parallel()

	_, err := newTestService(nil).List(context.Background(), Query{Page: 1})
	assert.ErrorIs(t, err, domain.ErrNotReady)

	_, err = newTestService(nil).Types(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotReady)
}

func TestService_List_ClampsLimit(t *testing.T) {
	t.Parallel()
	svc := newTestService(testSnapshot())

	res, err := svc.List(context.Background(), Query{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Limit)
	assert.Len(t, res.Items, 2)

	res, err = svc.List(context.Background(), Query{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Limit)
	assert.Equal(t, 2, res.PageCount)
}

func TestService_List_SuggestsOnEmptySearch(t *testing.T) {
	t.Parallel()
	svc := newTestService(testSnapshot())

	res, err := svc.List(context.Background(), Query{Page: 1, Search: "bulbsaur"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "bulbasaur", res.Suggestions[0])

	res, err = svc.List(context.Background(), Query{Page: 1, Search: "bulba"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Empty(t, res.Suggestions)
}
