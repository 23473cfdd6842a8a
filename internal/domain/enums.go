package domain

// Category is a class of sub-resource referenced by root entities. The set is
// closed; every category has exactly one ruleset and one storage key.
type Category string

const (
	CategoryAbilities  Category = "abilities"
	CategoryMoves      Category = "moves"
	CategoryItems      Category = "items"
	CategoryEncounters Category = "encounters"
	CategoryVersions   Category = "versions"
)

// Categories lists every category in pipeline order.
var Categories = []Category{
	CategoryAbilities,
	CategoryMoves,
	CategoryItems,
	CategoryEncounters,
	CategoryVersions,
}

// SharedCategories are harvested globally across all root entities.
var SharedCategories = []Category{
	CategoryAbilities,
	CategoryMoves,
	CategoryItems,
}

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	switch c {
	case CategoryAbilities, CategoryMoves, CategoryItems, CategoryEncounters, CategoryVersions:
		return true
	}
	return false
}

// StorageKey is the persistent cache key holding the category's lookup map.
func (c Category) StorageKey() string {
	return string(c) + "Data"
}

// Storage keys that are not tied to a sub-resource category.
const (
	KeyEntities   = "pokemonData"
	KeyReferences = "urlsMap"
	KeyMeta       = "catalogMeta"
	KeyActivePage = "activePageNumber"
)

// Readiness is the lifecycle state of the aggregated catalog.
type Readiness string

const (
	ReadinessNotReady Readiness = "not_ready"
	ReadinessLoading  Readiness = "loading"
	ReadinessReady    Readiness = "ready"
	ReadinessFailed   Readiness = "failed"
)

func (r Readiness) String() string { return string(r) }

// TypeFilterNone is the identity type filter.
const TypeFilterNone = "none"
