package query

import (
	"encoding/json"
	"slices"

	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/service/aggregator"
	"github.com/heartmarshall/pokecatalog/pkg/pagination"
)

// Query selects one page of the filtered catalog.
type Query struct {
	Page   int
	Limit  int
	Type   string
	Search string
}

// Item is one listed entity. Loaded is false when the entity failed to
// fetch; only the reference fields are set then.
type Item struct {
	ID      int             `json:"id,omitempty"`
	Name    string          `json:"name"`
	URL     string          `json:"url"`
	Types   []string        `json:"types,omitempty"`
	Sprites json.RawMessage `json:"sprites,omitempty"`
	Loaded  bool            `json:"loaded"`
}

// Result is one page of a query.
type Result struct {
	Items     []Item `json:"items"`
	Total     int    `json:"total"`
	PageCount int    `json:"page_count"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
}

// Page filters the snapshot and returns page q.Page of q.Limit items. Total
// and PageCount describe the filtered list. A page past the end yields no
// items.
func Page(snap *aggregator.Snapshot, q Query) (Result, error) {
	if err := pagination.ValidatePage(q.Page); err != nil {
		return Result{}, domain.NewValidationError("page", err.Error())
	}
	if q.Limit < 1 {
		return Result{}, domain.NewValidationError("limit", "must be >= 1")
	}

	filtered := Filter(snap.References, snap.Entities, q.Type, q.Search)
	total := len(filtered)

	res := Result{
		Items:     []Item{},
		Total:     total,
		PageCount: pagination.PageCount(total, q.Limit),
		Page:      q.Page,
		Limit:     q.Limit,
	}

	if q.Page > res.PageCount {
		return res, nil
	}
	offset := pagination.Offset(q.Page, q.Limit)
	for i := offset; i < total && pagination.IsIndexInBounds(offset, q.Limit, i); i++ {
		res.Items = append(res.Items, itemOf(filtered[i], snap.Entities))
	}
	return res, nil
}

// Types returns the distinct type tags of the loaded entities, sorted.
func Types(snap *aggregator.Snapshot) []string {
	seen := make(map[string]struct{})
	for _, e := range snap.Entities {
		for _, t := range e.Types {
			seen[t.Name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

func itemOf(ref domain.Reference, entities domain.LookupMap[domain.RootEntity]) Item {
	e, ok := entities.Get(ref.URL)
	if !ok {
		item := Item{Name: ref.Name, URL: ref.URL}
		if id, ok := domain.ParseEntityID(ref.URL); ok {
			item.ID = id
		}
		return item
	}
	types := make([]string, len(e.Types))
	for i, t := range e.Types {
		types[i] = t.Name
	}
	return Item{
		ID:      e.ID,
		Name:    e.Name,
		URL:     ref.URL,
		Types:   types,
		Sprites: e.Sprites,
		Loaded:  true,
	}
}
