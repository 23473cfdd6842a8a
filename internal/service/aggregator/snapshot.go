package aggregator

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/transform"
)

// Snapshot is one fully assembled catalog. It is published atomically and
// never mutated afterwards; the next successful run replaces it wholesale.
type Snapshot struct {
	RunID    uuid.UUID
	Window   domain.Window
	URLLimit int
	BuiltAt  time.Time

	// References is the de-duplicated index window in index order.
	References []domain.Reference
	Entities   domain.LookupMap[domain.RootEntity]

	Abilities domain.LookupMap[domain.Record]
	Moves     domain.LookupMap[domain.Record]
	Items     domain.LookupMap[domain.Record]
	// Encounters is keyed by the entity's encounters url.
	Encounters domain.LookupMap[[]domain.Record]
	Versions   domain.LookupMap[domain.Record]

	// FromCache lists the storage keys served from the persistent cache.
	FromCache []string
}

// Category returns the lookup map of a url-keyed category. Encounters are
// list-valued and served by the Encounters field instead.
func (s *Snapshot) Category(c domain.Category) domain.LookupMap[domain.Record] {
	switch c {
	case domain.CategoryAbilities:
		return s.Abilities
	case domain.CategoryMoves:
		return s.Moves
	case domain.CategoryItems:
		return s.Items
	case domain.CategoryVersions:
		return s.Versions
	}
	return nil
}

// Counts returns the number of records per category plus the entity count.
func (s *Snapshot) Counts() map[string]int {
	counts := map[string]int{"pokemon": len(s.Entities)}
	for _, c := range domain.Categories {
		if c == domain.CategoryEncounters {
			counts[c.String()] = len(s.Encounters)
			continue
		}
		counts[c.String()] = len(s.Category(c))
	}
	return counts
}

// Meta is persisted under domain.KeyMeta. It describes which cache entries
// belong to which window; entries not listed in Keys are never trusted.
type Meta struct {
	Window   domain.Window                       `json:"window"`
	URLLimit int                                 `json:"url_limit"`
	Levels   map[domain.Category]transform.Level `json:"levels"`
	Keys     []string                            `json:"keys"`
	BuiltAt  time.Time                           `json:"built_at"`
}

// covers reports whether the entry stored under key was written for the
// same window, url limit and ruleset levels.
func (m Meta) covers(w domain.Window, urlLimit int, levels map[domain.Category]transform.Level, key string) bool {
	if m.Window != w {
		return false
	}
	if urlLimit > 0 && m.URLLimit != urlLimit {
		return false
	}
	if !maps.Equal(m.Levels, levels) {
		return false
	}
	return slices.Contains(m.Keys, key)
}
