package domain

import (
	"encoding/json"
	"fmt"
)

// Record is a distilled category record. It holds exactly the keys named by
// the category ruleset; values are JSON-compatible.
type Record map[string]any

// LookupMap maps a reference URL to its resolved value. Two references with
// the same URL resolve to the same stored value.
type LookupMap[V any] map[string]V

// Get returns the value stored for url. ok is false when the url is unknown,
// which consumers must render as "no enrichment available".
func (m LookupMap[V]) Get(url string) (V, bool) {
	v, ok := m[url]
	return v, ok
}

// DecodeRecord converts a Record into its typed view.
func DecodeRecord[T any](r Record) (T, error) {
	var out T
	raw, err := json.Marshal(r)
	if err != nil {
		return out, fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}

// Typed views over category records. Every field a ruleset may omit is
// optional.

// NamedValue is a {name} projection.
type NamedValue struct {
	Name string `json:"name"`
}

// Effect is the english effect text of a resource.
type Effect struct {
	Effect      *string `json:"effect,omitempty"`
	ShortEffect *string `json:"short_effect,omitempty"`
}

// Flavor is the english flavor text of a resource.
type Flavor struct {
	Text *string `json:"text,omitempty"`
}

// EffectChange is one historical effect change.
type EffectChange struct {
	Effect *string `json:"effect,omitempty"`
}

// PokemonSlot links an ability or item back to a root entity.
type PokemonSlot struct {
	IsHidden bool      `json:"is_hidden,omitempty"`
	Slot     int       `json:"slot,omitempty"`
	Pokemon  Reference `json:"pokemon"`
}

// StatChange is a stat delta applied by a move.
type StatChange struct {
	Change int       `json:"change"`
	Stat   Reference `json:"stat"`
}

// Ability is the typed view of an abilities record.
type Ability struct {
	ID                int            `json:"id"`
	Name              string         `json:"name"`
	EffectChanges     []EffectChange `json:"effect_changes,omitempty"`
	EffectEntries     *Effect        `json:"effect_entries,omitempty"`
	FlavorTextEntries *Flavor        `json:"flavor_text_entries,omitempty"`
	Pokemon           []PokemonSlot  `json:"pokemon,omitempty"`
}

// Move is the typed view of a moves record.
type Move struct {
	ID                int            `json:"id"`
	Name              string         `json:"name"`
	PP                *int           `json:"pp,omitempty"`
	Power             *int           `json:"power,omitempty"`
	Accuracy          *int           `json:"accuracy,omitempty"`
	EffectChance      *int           `json:"effect_chance,omitempty"`
	StatChanges       []StatChange   `json:"stat_changes,omitempty"`
	EffectChanges     []any          `json:"effect_changes,omitempty"`
	DamageClass       *NamedValue    `json:"damage_class,omitempty"`
	LearnedByPokemon  []Reference    `json:"learned_by_pokemon,omitempty"`
	EffectEntries     *Effect        `json:"effect_entries,omitempty"`
	FlavorTextEntries *Flavor        `json:"flavor_text_entries,omitempty"`
}

// Item is the typed view of an items record.
type Item struct {
	ID                int           `json:"id"`
	Name              string        `json:"name"`
	Cost              *int          `json:"cost,omitempty"`
	EffectEntries     *Effect       `json:"effect_entries,omitempty"`
	FlavorTextEntries *Flavor       `json:"flavor_text_entries,omitempty"`
	HeldByPokemon     []PokemonSlot `json:"held_by_pokemon,omitempty"`
}

// EncounterVersion is one game version an encounter appears in.
type EncounterVersion struct {
	VersionName string `json:"version_name"`
	MaxChance   int    `json:"max_chance,omitempty"`
}

// Encounter is the typed view of one encounters record element.
type Encounter struct {
	LocationArea   Reference          `json:"location_area"`
	VersionDetails []EncounterVersion `json:"version_details,omitempty"`
}

// Version is the typed view of a versions record.
type Version struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	VersionGroup *NamedValue `json:"version_group,omitempty"`
}
