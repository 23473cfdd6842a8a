// Package transform distills raw catalog payloads into category records.
//
// A Ruleset is an ordered list of rules. Each rule names one key of the raw
// payload; a rule without a transform copies the raw value verbatim, a rule
// with one stores the transform's result. Keys not named by any rule are
// dropped. Transforms degrade instead of failing: a value with an unexpected
// shape yields a documented fallback or is omitted.
package transform

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heartmarshall/pokecatalog/internal/domain"
)

// ErrNotObject is returned when a payload is not a JSON object.
var ErrNotObject = errors.New("payload is not a JSON object")

// Env carries the per-call inputs every transform may consult.
type Env struct {
	// Index is the position of the payload within its source list.
	Index int
	// URLLimit is the highest root-entity id in the loaded universe.
	URLLimit int
}

// Func computes the distilled value for one key. raw is nil when the key is
// absent from the payload. ok=false omits the key from the record.
type Func func(raw json.RawMessage, env Env) (value any, ok bool)

// Rule maps one payload key into the record. A nil Transform copies the raw
// value verbatim.
type Rule struct {
	Key       string
	Transform Func
}

// Ruleset is the single ordered rule list for a category.
type Ruleset struct {
	Category domain.Category
	Level    Level
	Rules    []Rule
}

// Keys returns the record keys the ruleset may produce, in declared order.
func (rs Ruleset) Keys() []string {
	keys := make([]string, len(rs.Rules))
	for i, r := range rs.Rules {
		keys[i] = r.Key
	}
	return keys
}

// Transform applies rs to a single raw object. The result is a pure function
// of raw, rs and env.
func Transform(raw json.RawMessage, rs Ruleset, env Env) (domain.Record, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("transform %s: %w", rs.Category, ErrNotObject)
	}

	rec := make(domain.Record, len(rs.Rules))
	for _, rule := range rs.Rules {
		value, present := obj[rule.Key]

		if rule.Transform == nil {
			if !present {
				continue
			}
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				continue
			}
			rec[rule.Key] = v
			continue
		}

		if !present {
			value = nil
		}
		if v, ok := rule.Transform(value, env); ok {
			rec[rule.Key] = v
		}
	}
	return rec, nil
}

// TransformList applies rs to every element of a list-shaped payload. Elements
// that are not objects are skipped. A payload that is not a list is an error.
func TransformList(raw json.RawMessage, rs Ruleset, env Env) ([]domain.Record, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("transform %s: payload is not a JSON list", rs.Category)
	}

	out := make([]domain.Record, 0, len(elems))
	for i, elem := range elems {
		elemEnv := env
		elemEnv.Index = i
		rec, err := Transform(elem, rs, elemEnv)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
