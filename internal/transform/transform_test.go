package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/pokecatalog/internal/domain"
)

const movePayload = `{
	"id": 52,
	"name": "ember",
	"pp": 25,
	"power": 40,
	"accuracy": 100,
	"effect_chance": 10,
	"priority": 0,
	"stat_changes": [],
	"effect_changes": [],
	"damage_class": {"name": "special", "url": "https://pokeapi.co/api/v2/move-damage-class/3/"},
	"learned_by_pokemon": [
		{"name": "bulbasaur", "url": "https://pokeapi.co/api/v2/pokemon/1/"},
		{"name": "charmander", "url": "https://pokeapi.co/api/v2/pokemon/5/"},
		{"name": "vulpix-alola", "url": "https://pokeapi.co/api/v2/pokemon/500/"},
		{"name": "broken", "url": "https://pokeapi.co/api/v2/pokemon/abc/"}
	],
	"effect_entries": [
		{"effect": "Inflige des dégâts.", "short_effect": "Dégâts.", "language": {"name": "fr"}},
		{"effect": "Has a $effect_chance% chance to burn the target.", "short_effect": "Has a $effect_chance% chance to burn.", "language": {"name": "en"}}
	],
	"flavor_text_entries": [
		{"flavor_text": "A weak fire attack.", "language": {"name": "en"}}
	]
}`

func mustRuleset(t *testing.T, c domain.Category, l Level) Ruleset {
	t.Helper()
	rs, err := RulesetFor(c, l)
	require.NoError(t, err)
	return rs
}

func TestTransform_Moves(t *testing.T) {
	t.Parallel()

	rs := mustRuleset(t, domain.CategoryMoves, LevelFull)
	rec, err := Transform(json.RawMessage(movePayload), rs, Env{URLLimit: 151})
	require.NoError(t, err)

	assert.Equal(t, float64(52), rec["id"])
	assert.Equal(t, "ember", rec["name"])
	assert.Equal(t, float64(10), rec["effect_chance"])
	assert.NotContains(t, rec, "priority")
	assert.Equal(t, map[string]any{"name": "special"}, rec["damage_class"])
	assert.Equal(t, map[string]any{
		"effect":       "Has a $effect_chance% chance to burn the target.",
		"short_effect": "Has a $effect_chance% chance to burn.",
	}, rec["effect_entries"])
	assert.Equal(t, map[string]any{"text": "A weak fire attack."}, rec["flavor_text_entries"])

	for key := range rec {
		assert.Contains(t, rs.Keys(), key)
	}
}

func TestTransform_CrossReferenceFilter(t *testing.T) {
	t.Parallel()

	rs := mustRuleset(t, domain.CategoryMoves, LevelFull)
	rec, err := Transform(json.RawMessage(movePayload), rs, Env{URLLimit: 151})
	require.NoError(t, err)

	learned, ok := rec["learned_by_pokemon"].([]any)
	require.True(t, ok)
	require.Len(t, learned, 2)
	assert.Equal(t, "bulbasaur", learned[0].(map[string]any)["name"])
	assert.Equal(t, "charmander", learned[1].(map[string]any)["name"])
}

func TestTransform_Deterministic(t *testing.T) {
	t.Parallel()

	for _, c := range domain.Categories {
		if c == domain.CategoryEncounters {
			continue
		}
		rs := mustRuleset(t, c, LevelFull)
		first, err := Transform(json.RawMessage(movePayload), rs, Env{URLLimit: 151})
		require.NoError(t, err)
		second, err := Transform(json.RawMessage(movePayload), rs, Env{URLLimit: 151})
		require.NoError(t, err)
		assert.Equal(t, first, second, "category %s", c)
	}
}

func TestTransform_MissingLocaleYieldsEmptyObject(t *testing.T) {
	t.Parallel()

	payload := `{
		"id": 1,
		"name": "stench",
		"effect_entries": [{"effect": "Stinkt.", "short_effect": "Stinkt.", "language": {"name": "de"}}],
		"effect_changes": [{"effect_entries": [{"effect": "x", "language": {"name": "ja"}}]}]
	}`
	rs := mustRuleset(t, domain.CategoryAbilities, LevelFull)
	rec, err := Transform(json.RawMessage(payload), rs, Env{URLLimit: 151})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{}, rec["effect_entries"])
	assert.Equal(t, map[string]any{}, rec["flavor_text_entries"])
	assert.Equal(t, []any{map[string]any{}}, rec["effect_changes"])
}

func TestTransform_ShapeMismatchDegrades(t *testing.T) {
	t.Parallel()

	payload := `{
		"id": 7,
		"name": "weird",
		"damage_class": "special",
		"learned_by_pokemon": {"not": "a list"},
		"effect_entries": 12
	}`
	rs := mustRuleset(t, domain.CategoryMoves, LevelFull)
	rec, err := Transform(json.RawMessage(payload), rs, Env{URLLimit: 151})
	require.NoError(t, err)

	assert.NotContains(t, rec, "damage_class")
	assert.NotContains(t, rec, "learned_by_pokemon")
	assert.NotContains(t, rec, "pp")
	assert.Equal(t, map[string]any{}, rec["effect_entries"])
}

func TestTransform_NotAnObject(t *testing.T) {
	t.Parallel()

	rs := mustRuleset(t, domain.CategoryItems, LevelFull)
	for _, raw := range []string{`[1,2]`, `"x"`, `null`, `{broken`} {
		_, err := Transform(json.RawMessage(raw), rs, Env{})
		assert.ErrorIs(t, err, ErrNotObject, raw)
	}
}

func TestTransform_AbilitiesPokemonFilter(t *testing.T) {
	t.Parallel()

	payload := `{
		"id": 66,
		"name": "blaze",
		"pokemon": [
			{"is_hidden": false, "slot": 1, "pokemon": {"name": "charmander", "url": "https://pokeapi.co/api/v2/pokemon/4/"}},
			{"is_hidden": false, "slot": 1, "pokemon": {"name": "torchic", "url": "https://pokeapi.co/api/v2/pokemon/255/"}}
		]
	}`
	rs := mustRuleset(t, domain.CategoryAbilities, LevelFull)
	rec, err := Transform(json.RawMessage(payload), rs, Env{URLLimit: 151})
	require.NoError(t, err)

	ab, err := domain.DecodeRecord[domain.Ability](rec)
	require.NoError(t, err)
	require.Len(t, ab.Pokemon, 1)
	assert.Equal(t, "charmander", ab.Pokemon[0].Pokemon.Name)
}

func TestTransform_Items(t *testing.T) {
	t.Parallel()

	payload := `{
		"id": 1,
		"name": "master-ball",
		"cost": 0,
		"category": {"name": "standard-balls"},
		"flavor_text_entries": [{"text": "The best Poké Ball.", "language": {"name": "en"}}],
		"held_by_pokemon": [
			{"pokemon": {"name": "mew", "url": "https://pokeapi.co/api/v2/pokemon/151/"}, "version_details": []},
			{"pokemon": {"name": "celebi", "url": "https://pokeapi.co/api/v2/pokemon/251/"}, "version_details": []}
		]
	}`
	rs := mustRuleset(t, domain.CategoryItems, LevelFull)
	rec, err := Transform(json.RawMessage(payload), rs, Env{URLLimit: 151})
	require.NoError(t, err)

	item, err := domain.DecodeRecord[domain.Item](rec)
	require.NoError(t, err)
	require.NotNil(t, item.Cost)
	assert.Equal(t, 0, *item.Cost)
	require.NotNil(t, item.FlavorTextEntries)
	assert.Equal(t, "The best Poké Ball.", *item.FlavorTextEntries.Text)
	require.Len(t, item.HeldByPokemon, 1)
	assert.Equal(t, "mew", item.HeldByPokemon[0].Pokemon.Name)
	assert.NotContains(t, rec, "category")
}

func TestTransform_MinimalLevel(t *testing.T) {
	t.Parallel()

	rs := mustRuleset(t, domain.CategoryMoves, LevelMinimal)
	rec, err := Transform(json.RawMessage(movePayload), rs, Env{URLLimit: 151})
	require.NoError(t, err)
	assert.Equal(t, domain.Record{"id": float64(52), "name": "ember"}, rec)
}

func TestTransformList_Encounters(t *testing.T) {
	t.Parallel()

	payload := `[
		{
			"location_area": {"name": "pallet-town-area", "url": "https://pokeapi.co/api/v2/location-area/285/"},
			"version_details": [
				{"max_chance": 10, "version": {"name": "red", "url": "https://pokeapi.co/api/v2/version/1/"}, "encounter_details": []},
				{"max_chance": 5, "version": {"name": "blue", "url": "https://pokeapi.co/api/v2/version/2/"}}
			]
		},
		"garbage"
	]`
	rs := mustRuleset(t, domain.CategoryEncounters, LevelFull)
	recs, err := TransformList(json.RawMessage(payload), rs, Env{URLLimit: 151})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	enc, err := domain.DecodeRecord[domain.Encounter](recs[0])
	require.NoError(t, err)
	assert.Equal(t, "pallet-town-area", enc.LocationArea.Name)
	assert.Equal(t, []domain.EncounterVersion{
		{VersionName: "red", MaxChance: 10},
		{VersionName: "blue", MaxChance: 5},
	}, enc.VersionDetails)

	_, err = TransformList(json.RawMessage(`{}`), rs, Env{})
	assert.Error(t, err)
}

func TestRulesetFor(t *testing.T) {
	t.Parallel()

	for _, c := range domain.Categories {
		for _, l := range []Level{LevelFull, LevelMinimal} {
			rs, err := RulesetFor(c, l)
			require.NoError(t, err)
			assert.Equal(t, c, rs.Category)
			assert.NotEmpty(t, rs.Rules)
		}
	}

	_, err := RulesetFor("berries", LevelFull)
	assert.Error(t, err)
	_, err = RulesetFor(domain.CategoryMoves, "verbose")
	assert.Error(t, err)
}

func TestPolicy(t *testing.T) {
	t.Parallel()

	p := Policy{domain.CategoryItems: LevelMinimal}
	require.NoError(t, p.Validate())

	items, err := p.Ruleset(domain.CategoryItems)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, items.Keys())

	moves, err := p.Ruleset(domain.CategoryMoves)
	require.NoError(t, err)
	assert.Equal(t, LevelFull, moves.Level)

	assert.Error(t, Policy{domain.CategoryMoves: "verbose"}.Validate())
}
