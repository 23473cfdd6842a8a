package pokeapi

import (
	"encoding/json"
	"fmt"

	"github.com/heartmarshall/pokecatalog/internal/domain"
)

// apiPokemon is the subset of the /pokemon/{id} payload the catalog keeps.
type apiPokemon struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Height    int             `json:"height"`
	Weight    int             `json:"weight"`
	Sprites   json.RawMessage `json:"sprites"`
	Types     []apiTypeSlot   `json:"types"`
	Stats     []apiStat       `json:"stats"`
	Abilities []apiAbility    `json:"abilities"`
	Moves     []apiMove       `json:"moves"`
	HeldItems []apiHeldItem   `json:"held_items"`

	LocationAreaEncounters string `json:"location_area_encounters"`
}

type apiTypeSlot struct {
	Slot int              `json:"slot"`
	Type domain.Reference `json:"type"`
}

type apiStat struct {
	BaseStat int              `json:"base_stat"`
	Stat     domain.Reference `json:"stat"`
}

type apiAbility struct {
	IsHidden bool             `json:"is_hidden"`
	Slot     int              `json:"slot"`
	Ability  domain.Reference `json:"ability"`
}

type apiMove struct {
	Move domain.Reference `json:"move"`
}

type apiHeldItem struct {
	Item domain.Reference `json:"item"`
}

// decodeEntity maps the API payload onto a RootEntity. Reference lists keep
// payload order; slices are never nil.
func decodeEntity(body []byte) (domain.RootEntity, error) {
	var p apiPokemon
	if err := json.Unmarshal(body, &p); err != nil {
		return domain.RootEntity{}, fmt.Errorf("pokeapi: decode entity: %w", err)
	}

	e := domain.RootEntity{
		ID:            p.ID,
		Name:          p.Name,
		Height:        p.Height,
		Weight:        p.Weight,
		Sprites:       p.Sprites,
		Types:         make([]domain.Reference, 0, len(p.Types)),
		Stats:         make([]domain.Stat, 0, len(p.Stats)),
		Abilities:     make([]domain.Reference, 0, len(p.Abilities)),
		Moves:         make([]domain.Reference, 0, len(p.Moves)),
		HeldItems:     make([]domain.Reference, 0, len(p.HeldItems)),
		EncountersURL: p.LocationAreaEncounters,
	}
	for _, t := range p.Types {
		e.Types = append(e.Types, t.Type)
	}
	for _, s := range p.Stats {
		e.Stats = append(e.Stats, domain.Stat{Name: s.Stat.Name, BaseStat: s.BaseStat})
	}
	for _, a := range p.Abilities {
		e.Abilities = append(e.Abilities, a.Ability)
	}
	for _, m := range p.Moves {
		e.Moves = append(e.Moves, m.Move)
	}
	for _, h := range p.HeldItems {
		e.HeldItems = append(e.HeldItems, h.Item)
	}
	if len(e.Sprites) == 0 || string(e.Sprites) == "null" {
		e.Sprites = nil
	}
	return e, nil
}
