package catalog

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/service/aggregator"
)

// Detail is the assembled view of one root entity with its references
// resolved against the category maps.
type Detail struct {
	ID        int                `json:"id"`
	Name      string             `json:"name"`
	Height    int                `json:"height"`
	Weight    int                `json:"weight"`
	Sprites   json.RawMessage    `json:"sprites,omitempty"`
	Types     []string           `json:"types"`
	Stats     []domain.Stat      `json:"stats"`
	Abilities []AbilityView      `json:"abilities"`
	Moves     []MoveView         `json:"moves"`
	HeldItems []ItemView         `json:"held_items"`
	Locations []VersionLocations `json:"locations"`
}

// AbilityView is a resolved ability. Known is false when the ability record
// is absent; only Name and URL are set then.
type AbilityView struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Known       bool   `json:"known"`
	Effect      string `json:"effect,omitempty"`
	ShortEffect string `json:"short_effect,omitempty"`
	Flavor      string `json:"flavor,omitempty"`
}

// MoveView is a resolved move.
type MoveView struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Known       bool   `json:"known"`
	PP          *int   `json:"pp,omitempty"`
	Power       *int   `json:"power,omitempty"`
	Accuracy    *int   `json:"accuracy,omitempty"`
	DamageClass string `json:"damage_class,omitempty"`
	ShortEffect string `json:"short_effect,omitempty"`
	Flavor      string `json:"flavor,omitempty"`
}

// ItemView is a resolved held item.
type ItemView struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Known       bool   `json:"known"`
	Cost        *int   `json:"cost,omitempty"`
	ShortEffect string `json:"short_effect,omitempty"`
	Flavor      string `json:"flavor,omitempty"`
}

// VersionLocations lists where an entity is encountered in one game version.
type VersionLocations struct {
	Version      string   `json:"version"`
	VersionGroup string   `json:"version_group,omitempty"`
	Locations    []string `json:"locations"`
}

// Assemble resolves e against snap. Missing category records degrade to
// entries with Known=false.
func Assemble(snap *aggregator.Snapshot, e domain.RootEntity) Detail {
	d := Detail{
		ID:        e.ID,
		Name:      e.Name,
		Height:    e.Height,
		Weight:    e.Weight,
		Sprites:   e.Sprites,
		Types:     make([]string, len(e.Types)),
		Stats:     slices.Clone(e.Stats),
		Abilities: make([]AbilityView, len(e.Abilities)),
		Moves:     make([]MoveView, len(e.Moves)),
		HeldItems: make([]ItemView, len(e.HeldItems)),
	}
	if d.Stats == nil {
		d.Stats = []domain.Stat{}
	}
	for i, t := range e.Types {
		d.Types[i] = t.Name
	}
	for i, ref := range e.Abilities {
		d.Abilities[i] = abilityView(snap, ref)
	}
	for i, ref := range e.Moves {
		d.Moves[i] = moveView(snap, ref)
	}
	for i, ref := range e.HeldItems {
		d.HeldItems[i] = itemView(snap, ref)
	}
	d.Locations = locations(snap, e)
	return d
}

func abilityView(snap *aggregator.Snapshot, ref domain.Reference) AbilityView {
	v := AbilityView{Name: ref.Name, URL: ref.URL}
	rec, ok := snap.Abilities.Get(ref.URL)
	if !ok {
		return v
	}
	a, err := domain.DecodeRecord[domain.Ability](rec)
	if err != nil {
		return v
	}
	v.Known = true
	if a.EffectEntries != nil {
		v.Effect = deref(a.EffectEntries.Effect)
		v.ShortEffect = deref(a.EffectEntries.ShortEffect)
	}
	if a.FlavorTextEntries != nil {
		v.Flavor = CleanFlavorText(deref(a.FlavorTextEntries.Text))
	}
	return v
}

func moveView(snap *aggregator.Snapshot, ref domain.Reference) MoveView {
	v := MoveView{Name: ref.Name, URL: ref.URL}
	rec, ok := snap.Moves.Get(ref.URL)
	if !ok {
		return v
	}
	m, err := domain.DecodeRecord[domain.Move](rec)
	if err != nil {
		return v
	}
	v.Known = true
	v.PP = m.PP
	v.Power = m.Power
	v.Accuracy = m.Accuracy
	if m.DamageClass != nil {
		v.DamageClass = m.DamageClass.Name
	}
	if m.EffectEntries != nil {
		v.ShortEffect = ExpandEffectChance(deref(m.EffectEntries.ShortEffect), m.EffectChance)
	}
	if m.FlavorTextEntries != nil {
		v.Flavor = CleanFlavorText(deref(m.FlavorTextEntries.Text))
	}
	return v
}

func itemView(snap *aggregator.Snapshot, ref domain.Reference) ItemView {
	v := ItemView{Name: ref.Name, URL: ref.URL}
	rec, ok := snap.Items.Get(ref.URL)
	if !ok {
		return v
	}
	it, err := domain.DecodeRecord[domain.Item](rec)
	if err != nil {
		return v
	}
	v.Known = true
	v.Cost = it.Cost
	if it.EffectEntries != nil {
		v.ShortEffect = deref(it.EffectEntries.ShortEffect)
	}
	if it.FlavorTextEntries != nil {
		v.Flavor = CleanFlavorText(deref(it.FlavorTextEntries.Text))
	}
	return v
}

// locations groups the entity's encounter areas by game version. Versions
// appear in version id order when their record is known, then by first
// appearance.
func locations(snap *aggregator.Snapshot, e domain.RootEntity) []VersionLocations {
	out := []VersionLocations{}
	recs, ok := snap.Encounters.Get(e.EncountersURL)
	if !ok {
		return out
	}

	var order []string
	areas := make(map[string][]string)
	for _, rec := range recs {
		enc, err := domain.DecodeRecord[domain.Encounter](rec)
		if err != nil {
			continue
		}
		for _, vd := range enc.VersionDetails {
			if _, seen := areas[vd.VersionName]; !seen {
				order = append(order, vd.VersionName)
			}
			areas[vd.VersionName] = append(areas[vd.VersionName], enc.LocationArea.Name)
		}
	}

	versions := versionsByName(snap)
	slices.SortStableFunc(order, func(a, b string) int {
		va, aok := versions[a]
		vb, bok := versions[b]
		switch {
		case aok && bok:
			return cmp.Compare(va.ID, vb.ID)
		case aok:
			return -1
		case bok:
			return 1
		}
		return 0
	})

	for _, name := range order {
		vl := VersionLocations{Version: name, Locations: uniqueLabels(areas[name])}
		if v, ok := versions[name]; ok && v.VersionGroup != nil {
			vl.VersionGroup = v.VersionGroup.Name
		}
		out = append(out, vl)
	}
	return out
}

func versionsByName(snap *aggregator.Snapshot) map[string]domain.Version {
	out := make(map[string]domain.Version, len(snap.Versions))
	for _, rec := range snap.Versions {
		v, err := domain.DecodeRecord[domain.Version](rec)
		if err != nil || v.Name == "" {
			continue
		}
		out[v.Name] = v
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
