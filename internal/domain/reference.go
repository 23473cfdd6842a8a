package domain

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// Reference points at a remote resource. It is never the resource itself;
// URL is the identity key.
type Reference struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Index is one page of the root-entity index endpoint.
type Index struct {
	Count   int         `json:"count"`
	Results []Reference `json:"results"`
}

// Stat is a single base stat of a root entity.
type Stat struct {
	Name     string `json:"name"`
	BaseStat int    `json:"base_stat"`
}

// RootEntity is a fully fetched creature record. Instances are built once per
// aggregation run and never mutated afterwards.
type RootEntity struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Height        int             `json:"height"`
	Weight        int             `json:"weight"`
	Sprites       json.RawMessage `json:"sprites,omitempty"`
	Types         []Reference     `json:"types"`
	Stats         []Stat          `json:"stats"`
	Abilities     []Reference     `json:"abilities"`
	Moves         []Reference     `json:"moves"`
	HeldItems     []Reference     `json:"held_items"`
	EncountersURL string          `json:"encounters_url,omitempty"`
}

// HasType reports whether e carries a type reference named tag.
func (e RootEntity) HasType(tag string) bool {
	for _, t := range e.Types {
		if t.Name == tag {
			return true
		}
	}
	return false
}

// Window is the (offset, limit) slice of the root index that forms the loaded
// universe.
type Window struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

var (
	entityIDPattern   = regexp.MustCompile(`/pokemon/(\d+)(?:/|$)`)
	trailingIDPattern = regexp.MustCompile(`/(\d+)/?$`)
)

// ParseEntityID extracts the root-entity id from a /pokemon/<id> url.
// ok is false when the url does not carry a parsable entity id.
func ParseEntityID(url string) (int, bool) {
	return matchID(entityIDPattern, url)
}

// ParseResourceID extracts the trailing numeric id of any resource url.
func ParseResourceID(url string) (int, bool) {
	return matchID(trailingIDPattern, url)
}

func matchID(re *regexp.Regexp, url string) (int, bool) {
	m := re.FindStringSubmatch(url)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// DedupReferences returns refs with later duplicates (by URL) removed,
// preserving first-seen order.
func DedupReferences(refs []Reference) []Reference {
	seen := make(map[string]struct{}, len(refs))
	out := make([]Reference, 0, len(refs))
	for _, r := range refs {
		if r.URL == "" {
			continue
		}
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	return out
}
