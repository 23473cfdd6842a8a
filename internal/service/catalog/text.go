package catalog

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// numberedSuffix matches a name ending in "-<digits>..." and captures what
// precedes the last such suffix.
var numberedSuffix = regexp.MustCompile(`^(.*)-\d.*$`)

// flavorReplacements are applied in order; later pairs see the output of
// earlier ones.
var flavorReplacements = [][2]string{
	{"\f", "\n"},
	{"\u00ad\n", ""},
	{"\u00ad", ""},
	{" -\n", " - "},
	{"-\n", "-"},
	{"\n", " "},
}

// LocationLabel turns a location-area name into a display label:
// "sinnoh-route-201-area" becomes "Sinnoh Route".
func LocationLabel(area string) string {
	s := area
	for range 2 {
		if m := numberedSuffix.FindStringSubmatch(s); m != nil {
			s = m[1]
		}
	}
	s = strings.TrimSuffix(s, "-area")

	// Casers are stateful and must not be shared between goroutines.
	caser := cases.Title(language.English)
	words := strings.Split(s, "-")
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// uniqueLabels maps areas to labels, dropping repeated labels.
func uniqueLabels(areas []string) []string {
	out := make([]string, 0, len(areas))
	for _, a := range areas {
		l := LocationLabel(a)
		if l == "" || slices.Contains(out, l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// CleanFlavorText normalizes game flavor text: form feeds and line breaks
// become spaces, soft hyphens are dropped and hyphenated line breaks are
// joined.
func CleanFlavorText(s string) string {
	for _, r := range flavorReplacements {
		s = strings.ReplaceAll(s, r[0], r[1])
	}
	return s
}

// ExpandEffectChance substitutes the "$effect_chance%" placeholder. Text is
// returned unchanged when the chance is unknown.
func ExpandEffectChance(s string, chance *int) string {
	if chance == nil {
		return s
	}
	return strings.ReplaceAll(s, "$effect_chance%", strconv.Itoa(*chance)+"%")
}
