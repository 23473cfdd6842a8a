package pokeapitest

// Paths of the fixture resources.
const (
	PathBulbasaur           = "/pokemon/1/"
	PathIvysaur             = "/pokemon/2/"
	PathCharmander          = "/pokemon/4/"
	PathBulbasaurEncounters = "/pokemon/1/encounters"
	PathOvergrow            = "/ability/65/"
	PathBlaze               = "/ability/66/"
	PathTackle              = "/move/33/"
	PathEmber               = "/move/52/"
	PathOranBerry           = "/item/132/"
	PathRed                 = "/version/1/"
)

// fixtures maps paths to bodies. BASE is replaced with the server url.
var fixtures = map[string]string{
	"/pokemon/1/": `{
		"id": 1, "name": "bulbasaur", "height": 7, "weight": 69,
		"sprites": {"front_default": "BASE/sprites/1.png"},
		"types": [
			{"slot": 1, "type": {"name": "grass", "url": "BASE/type/12/"}},
			{"slot": 2, "type": {"name": "poison", "url": "BASE/type/4/"}}
		],
		"stats": [
			{"base_stat": 45, "effort": 0, "stat": {"name": "hp", "url": "BASE/stat/1/"}},
			{"base_stat": 49, "effort": 0, "stat": {"name": "attack", "url": "BASE/stat/2/"}}
		],
		"abilities": [
			{"is_hidden": false, "slot": 1, "ability": {"name": "overgrow", "url": "BASE/ability/65/"}}
		],
		"moves": [
			{"move": {"name": "tackle", "url": "BASE/move/33/"}}
		],
		"held_items": [
			{"item": {"name": "oran-berry", "url": "BASE/item/132/"}}
		],
		"location_area_encounters": "BASE/pokemon/1/encounters"
	}`,
	"/pokemon/2/": `{
		"id": 2, "name": "ivysaur", "height": 10, "weight": 130,
		"sprites": {"front_default": null},
		"types": [
			{"slot": 1, "type": {"name": "grass", "url": "BASE/type/12/"}},
			{"slot": 2, "type": {"name": "poison", "url": "BASE/type/4/"}}
		],
		"stats": [{"base_stat": 60, "stat": {"name": "hp", "url": "BASE/stat/1/"}}],
		"abilities": [
			{"is_hidden": false, "slot": 1, "ability": {"name": "overgrow", "url": "BASE/ability/65/"}}
		],
		"moves": [
			{"move": {"name": "tackle", "url": "BASE/move/33/"}}
		],
		"held_items": [],
		"location_area_encounters": "BASE/pokemon/2/encounters"
	}`,
	"/pokemon/4/": `{
		"id": 4, "name": "charmander", "height": 6, "weight": 85,
		"types": [
			{"slot": 1, "type": {"name": "fire", "url": "BASE/type/10/"}}
		],
		"stats": [{"base_stat": 39, "stat": {"name": "hp", "url": "BASE/stat/1/"}}],
		"abilities": [
			{"is_hidden": false, "slot": 1, "ability": {"name": "blaze", "url": "BASE/ability/66/"}}
		],
		"moves": [
			{"move": {"name": "tackle", "url": "BASE/move/33/"}},
			{"move": {"name": "ember", "url": "BASE/move/52/"}}
		],
		"held_items": [],
		"location_area_encounters": "BASE/pokemon/4/encounters"
	}`,
	"/pokemon/1/encounters": `[
		{
			"location_area": {"name": "viridian-forest-area", "url": "BASE/location-area/321/"},
			"version_details": [
				{"max_chance": 10, "version": {"name": "red", "url": "BASE/version/1/"}}
			]
		}
	]`,
	"/pokemon/2/encounters": `[]`,
	"/pokemon/4/encounters": `[]`,
	"/ability/65/": `{
		"id": 65, "name": "overgrow",
		"effect_changes": [],
		"effect_entries": [
			{"effect": "Überall", "short_effect": "kurz", "language": {"name": "de", "url": "BASE/language/6/"}},
			{"effect": "Strengthens grass moves to inflict 1.5x damage at 1/3 max HP or less.", "short_effect": "Strengthens grass moves in a pinch.", "language": {"name": "en", "url": "BASE/language/9/"}}
		],
		"flavor_text_entries": [
			{"flavor_text": "Powers up Grass-\ntype moves in a pinch.", "language": {"name": "en", "url": "BASE/language/9/"}}
		],
		"pokemon": [
			{"is_hidden": false, "slot": 1, "pokemon": {"name": "bulbasaur", "url": "BASE/pokemon/1/"}},
			{"is_hidden": false, "slot": 1, "pokemon": {"name": "ivysaur", "url": "BASE/pokemon/2/"}},
			{"is_hidden": false, "slot": 1, "pokemon": {"name": "venusaur-mega", "url": "BASE/pokemon/10033/"}}
		]
	}`,
	"/ability/66/": `{
		"id": 66, "name": "blaze",
		"effect_changes": [],
		"effect_entries": [],
		"flavor_text_entries": [],
		"pokemon": [
			{"is_hidden": false, "slot": 1, "pokemon": {"name": "charmander", "url": "BASE/pokemon/4/"}}
		]
	}`,
	"/move/33/": `{
		"id": 33, "name": "tackle", "pp": 35, "power": 40, "accuracy": 100, "effect_chance": null,
		"stat_changes": [],
		"effect_changes": [],
		"damage_class": {"name": "physical", "url": "BASE/move-damage-class/2/"},
		"learned_by_pokemon": [
			{"name": "bulbasaur", "url": "BASE/pokemon/1/"},
			{"name": "charmander", "url": "BASE/pokemon/4/"},
			{"name": "rattata", "url": "BASE/pokemon/19/"}
		],
		"effect_entries": [
			{"effect": "Inflicts regular damage.", "short_effect": "Inflicts regular damage with no additional effect.", "language": {"name": "en", "url": "BASE/language/9/"}}
		],
		"flavor_text_entries": [
			{"flavor_text": "A physical attack.", "language": {"name": "en", "url": "BASE/language/9/"}}
		]
	}`,
	"/move/52/": `{
		"id": 52, "name": "ember", "pp": 25, "power": 40, "accuracy": 100, "effect_chance": 10,
		"stat_changes": [],
		"effect_changes": [],
		"damage_class": {"name": "special", "url": "BASE/move-damage-class/3/"},
		"learned_by_pokemon": [
			{"name": "charmander", "url": "BASE/pokemon/4/"}
		],
		"effect_entries": [
			{"effect": "Has a $effect_chance% chance to burn the target.", "short_effect": "Has a $effect_chance% chance to burn the target.", "language": {"name": "en", "url": "BASE/language/9/"}}
		],
		"flavor_text_entries": []
	}`,
	"/item/132/": `{
		"id": 132, "name": "oran-berry", "cost": 20,
		"effect_entries": [
			{"effect": "Restores 10 HP.", "short_effect": "Restores 10 HP.", "language": {"name": "en", "url": "BASE/language/9/"}}
		],
		"flavor_text_entries": [
			{"text": "A hold item that restores 10 HP.", "language": {"name": "en", "url": "BASE/language/9/"}}
		],
		"held_by_pokemon": [
			{"pokemon": {"name": "bulbasaur", "url": "BASE/pokemon/1/"}, "version_details": []}
		]
	}`,
	"/version/1/": `{
		"id": 1, "name": "red",
		"names": [],
		"version_group": {"name": "red-blue", "url": "BASE/version-group/1/"}
	}`,
}
