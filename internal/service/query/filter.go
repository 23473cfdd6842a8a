// Package query answers list, filter and search queries against a published
// catalog snapshot. It never touches the network.
package query

import (
	"strings"

	"github.com/heartmarshall/pokecatalog/internal/domain"
)

// ByType keeps refs whose entity carries type tag. An empty tag or
// domain.TypeFilterNone is the identity. References whose entity is missing
// are excluded by an active filter.
func ByType(refs []domain.Reference, entities domain.LookupMap[domain.RootEntity], tag string) []domain.Reference {
	tag = domain.NormalizeTypeFilter(tag)
	if tag == domain.TypeFilterNone {
		return refs
	}
	out := make([]domain.Reference, 0, len(refs))
	for _, ref := range refs {
		e, ok := entities.Get(ref.URL)
		if !ok || !e.HasType(tag) {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// ByNamePrefix keeps refs whose name starts with q, ignoring case. An empty
// q is the identity. The entity name is used when the entity is loaded,
// otherwise the reference name.
func ByNamePrefix(refs []domain.Reference, entities domain.LookupMap[domain.RootEntity], q string) []domain.Reference {
	q = domain.NormalizeSearch(q)
	if q == "" {
		return refs
	}
	out := make([]domain.Reference, 0, len(refs))
	for _, ref := range refs {
		if strings.HasPrefix(strings.ToLower(nameOf(ref, entities)), q) {
			out = append(out, ref)
		}
	}
	return out
}

// Filter applies the type filter and the name prefix together. Relative
// order is preserved.
func Filter(refs []domain.Reference, entities domain.LookupMap[domain.RootEntity], tag, q string) []domain.Reference {
	return ByNamePrefix(ByType(refs, entities, tag), entities, q)
}

func nameOf(ref domain.Reference, entities domain.LookupMap[domain.RootEntity]) string {
	if e, ok := entities.Get(ref.URL); ok && e.Name != "" {
		return e.Name
	}
	return ref.Name
}
