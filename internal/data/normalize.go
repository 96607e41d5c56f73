package data

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// yoFold maps ё onto е so both spellings resolve to the same key. Other
// letters pass through untouched; й keeps its breve.
var yoFold = runes.Map(func(r rune) rune {
	switch r {
	case 'ё':
		return 'е'
	case 'Ё':
		return 'Е'
	}
	return r
})

// NormalizeName produces the canonical lookup key for an item name:
// lowercase, ё→е, letters and digits only.
func NormalizeName(name string) string {
	folded, _, err := transform.String(yoFold, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
