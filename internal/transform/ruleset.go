package transform

import (
	"fmt"

	"github.com/heartmarshall/pokecatalog/internal/domain"
)

// Level selects how much of a category payload is distilled.
type Level string

const (
	// LevelFull applies the complete ruleset.
	LevelFull Level = "full"
	// LevelMinimal keeps only id and name.
	LevelMinimal Level = "minimal"
)

func (l Level) IsValid() bool {
	return l == LevelFull || l == LevelMinimal
}

var (
	effectEntries = localized(map[string]string{
		"effect":       "effect",
		"short_effect": "short_effect",
	})
	abilityFlavor = localized(map[string]string{"text": "flavor_text"})
	itemFlavor    = localized(map[string]string{"text": "text"})
)

var (
	abilitiesRules = []Rule{
		{Key: "id"},
		{Key: "name"},
		{Key: "effect_changes", Transform: effectChanges},
		{Key: "effect_entries", Transform: effectEntries},
		{Key: "flavor_text_entries", Transform: abilityFlavor},
		{Key: "pokemon", Transform: entityFilter(nestedPokemonURL)},
	}

	movesRules = []Rule{
		{Key: "id"},
		{Key: "name"},
		{Key: "pp"},
		{Key: "power"},
		{Key: "accuracy"},
		{Key: "effect_chance"},
		{Key: "stat_changes"},
		{Key: "effect_changes"},
		{Key: "damage_class", Transform: named},
		{Key: "learned_by_pokemon", Transform: entityFilter(selfURL)},
		{Key: "effect_entries", Transform: effectEntries},
		{Key: "flavor_text_entries", Transform: abilityFlavor},
	}

	itemsRules = []Rule{
		{Key: "id"},
		{Key: "name"},
		{Key: "cost"},
		{Key: "effect_entries", Transform: effectEntries},
		{Key: "flavor_text_entries", Transform: itemFlavor},
		{Key: "held_by_pokemon", Transform: entityFilter(nestedPokemonURL)},
	}

	encountersRules = []Rule{
		{Key: "location_area", Transform: reference},
		{Key: "version_details", Transform: versionDetails},
	}

	versionsRules = []Rule{
		{Key: "id"},
		{Key: "name"},
		{Key: "version_group", Transform: named},
	}

	minimalRules = []Rule{
		{Key: "id"},
		{Key: "name"},
	}
)

// RulesetFor returns the ruleset for category c at level l. Encounter
// elements carry no id or name, so their minimal level keeps the location.
func RulesetFor(c domain.Category, l Level) (Ruleset, error) {
	if !l.IsValid() {
		return Ruleset{}, fmt.Errorf("transform: unknown level %q", l)
	}

	var rules []Rule
	switch c {
	case domain.CategoryAbilities:
		rules = abilitiesRules
	case domain.CategoryMoves:
		rules = movesRules
	case domain.CategoryItems:
		rules = itemsRules
	case domain.CategoryEncounters:
		rules = encountersRules
		if l == LevelMinimal {
			rules = encountersRules[:1]
		}
	case domain.CategoryVersions:
		rules = versionsRules
	default:
		return Ruleset{}, fmt.Errorf("transform: unknown category %q", c)
	}

	if l == LevelMinimal && c != domain.CategoryEncounters {
		rules = minimalRules
	}
	return Ruleset{Category: c, Level: l, Rules: rules}, nil
}

// Policy assigns a level to each category. Categories without an entry use
// LevelFull.
type Policy map[domain.Category]Level

// Ruleset resolves the ruleset for c under the policy.
func (p Policy) Ruleset(c domain.Category) (Ruleset, error) {
	l, ok := p[c]
	if !ok {
		l = LevelFull
	}
	return RulesetFor(c, l)
}

// Validate checks every category and level named by the policy.
func (p Policy) Validate() error {
	for c, l := range p {
		if _, err := RulesetFor(c, l); err != nil {
			return err
		}
	}
	return nil
}
