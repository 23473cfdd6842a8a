package domain

import (
	"strings"
	"unicode"
)

// NormalizeSearch prepares a name query for prefix matching: it trims
// surrounding whitespace, lowercases, and collapses inner whitespace runs to a
// single hyphen so "mr mime" matches "mr-mime".
func NormalizeSearch(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteByte('-')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeTypeFilter maps an absent type filter to TypeFilterNone and
// lowercases the rest.
func NormalizeTypeFilter(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return TypeFilterNone
	}
	return tag
}
