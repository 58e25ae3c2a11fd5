package ism

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugTransformer decomposes accented characters and strips combining
// marks so latin-script names survive the ascii filter below.
var slugTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives an ascii identifier from a field name: transliterate
// where unicode normalization allows, keep alphanumerics, lowercase.
// Names with no ascii representation (e.g. pure CJK) fall back to the
// lowercased original so the expression is at least stable.
func Slugify(name string) string {
	normalized, _, err := transform.String(slugTransformer, name)
	if err != nil {
		normalized = name
	}

	var b strings.Builder
	for _, r := range normalized {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		}
	}

	if b.Len() == 0 {
		return strings.ToLower(name)
	}
	return b.String()
}
