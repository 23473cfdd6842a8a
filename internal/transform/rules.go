package transform

import (
	"encoding/json"

	"github.com/heartmarshall/pokecatalog/internal/domain"
)

// Locale is the language tag kept from language-tagged arrays.
const Locale = "en"

type languageTagged struct {
	Language struct {
		Name string `json:"name"`
	} `json:"language"`
}

// localeEntry returns the first element of a language-tagged array whose
// language is Locale.
func localeEntry(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	for _, e := range entries {
		var tag languageTagged
		if err := json.Unmarshal(e, &tag); err != nil {
			continue
		}
		if tag.Language.Name != Locale {
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(e, &fields); err != nil {
			continue
		}
		return fields, true
	}
	return nil, false
}

// localized projects the locale entry of a language-tagged array onto an
// object. fields maps output keys to entry keys. A missing locale entry yields
// an empty object.
func localized(fields map[string]string) Func {
	return func(raw json.RawMessage, _ Env) (any, bool) {
		out := map[string]any{}
		entry, ok := localeEntry(raw)
		if !ok {
			return out, true
		}
		for outKey, srcKey := range fields {
			var s string
			if err := json.Unmarshal(entry[srcKey], &s); err == nil {
				out[outKey] = s
			}
		}
		return out, true
	}
}

// effectChanges maps each historical change to {effect} in Locale.
func effectChanges(raw json.RawMessage, _ Env) (any, bool) {
	var changes []struct {
		EffectEntries json.RawMessage `json:"effect_entries"`
	}
	out := []any{}
	if err := json.Unmarshal(raw, &changes); err != nil {
		return out, true
	}
	project := localized(map[string]string{"effect": "effect"})
	for _, c := range changes {
		v, _ := project(c.EffectEntries, Env{})
		out = append(out, v)
	}
	return out, true
}

// named projects an object onto {name}.
func named(raw json.RawMessage, _ Env) (any, bool) {
	var v struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(raw, &v); err != nil || v.Name == nil {
		return nil, false
	}
	return map[string]any{"name": *v.Name}, true
}

// reference projects an object onto {name, url}.
func reference(raw json.RawMessage, _ Env) (any, bool) {
	var ref domain.Reference
	if err := json.Unmarshal(raw, &ref); err != nil || ref.URL == "" {
		return nil, false
	}
	return map[string]any{"name": ref.Name, "url": ref.URL}, true
}

// versionDetails flattens encounter version details to
// [{version_name, max_chance}].
func versionDetails(raw json.RawMessage, _ Env) (any, bool) {
	var details []struct {
		MaxChance int              `json:"max_chance"`
		Version   domain.Reference `json:"version"`
	}
	out := []any{}
	if err := json.Unmarshal(raw, &details); err != nil {
		return out, true
	}
	for _, d := range details {
		if d.Version.Name == "" {
			continue
		}
		out = append(out, map[string]any{
			"version_name": d.Version.Name,
			"max_chance":   d.MaxChance,
		})
	}
	return out, true
}

// entityFilter keeps list elements whose root-entity id is within
// env.URLLimit. urlOf extracts the entity url from an element; elements whose
// id does not parse are excluded.
func entityFilter(urlOf func(map[string]json.RawMessage) string) Func {
	return func(raw json.RawMessage, env Env) (any, bool) {
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, false
		}
		out := []any{}
		for _, e := range elems {
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(e, &fields); err != nil {
				continue
			}
			id, ok := domain.ParseEntityID(urlOf(fields))
			if !ok || id > env.URLLimit {
				continue
			}
			var v any
			if err := json.Unmarshal(e, &v); err != nil {
				continue
			}
			out = append(out, v)
		}
		return out, true
	}
}

// selfURL reads the element's own url field.
func selfURL(fields map[string]json.RawMessage) string {
	var s string
	_ = json.Unmarshal(fields["url"], &s)
	return s
}

// nestedPokemonURL reads the url of the element's pokemon reference.
func nestedPokemonURL(fields map[string]json.RawMessage) string {
	var ref domain.Reference
	_ = json.Unmarshal(fields["pokemon"], &ref)
	return ref.URL
}
