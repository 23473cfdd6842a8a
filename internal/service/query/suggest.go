package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/service/aggregator"
)

// suggestThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const suggestThreshold = 0.75

type suggestion struct {
	name  string
	score float64
}

// Suggest returns up to n entity names that resemble q, best match first.
// Names sounding like q (same Double Metaphone code) rank above plain
// spelling similarity.
func Suggest(snap *aggregator.Snapshot, q string, n int) []string {
	q = domain.NormalizeSearch(q)
	if q == "" || n <= 0 {
		return []string{}
	}
	qCodes := metaphoneCodes(q)

	var found []suggestion
	seen := make(map[string]struct{}, len(snap.References))
	for _, ref := range snap.References {
		name := strings.ToLower(nameOf(ref, snap.Entities))
		if _, dup := seen[name]; dup || name == "" {
			continue
		}
		seen[name] = struct{}{}

		score := bestScore(q, name)
		if shareCode(qCodes, metaphoneCodes(name)) {
			score += 0.1
		}
		if score >= suggestThreshold {
			found = append(found, suggestion{name: name, score: score})
		}
	}

	slices.SortFunc(found, func(a, b suggestion) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})

	out := make([]string, 0, min(n, len(found)))
	for i := 0; i < len(found) && i < n; i++ {
		out = append(out, found[i].name)
	}
	return out
}

// bestScore compares q against the full name and against the name prefix of
// the same length, so partial input still matches long names.
func bestScore(q, name string) float64 {
	score := matchr.JaroWinkler(q, name, false)
	if len(name) > len(q) {
		if s := matchr.JaroWinkler(q, name[:len(q)], false); s > score {
			score = s
		}
	}
	return score
}

func metaphoneCodes(s string) []string {
	p, alt := matchr.DoubleMetaphone(strings.ReplaceAll(s, "-", " "))
	var codes []string
	if p != "" {
		codes = append(codes, p)
	}
	if alt != "" && alt != p {
		codes = append(codes, alt)
	}
	return codes
}

func shareCode(a, b []string) bool {
	for _, c := range a {
		if slices.Contains(b, c) {
			return true
		}
	}
	return false
}
