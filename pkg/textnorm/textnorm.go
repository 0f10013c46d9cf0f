// Package textnorm canonicalizes text before keyword matching and
// fingerprinting: Unicode decomposition, diacritic stripping and lowercasing.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the lowercased, accent-stripped form of s. Normalizing an
// already-normalized string is a no-op. On a transform error the diacritics
// are kept and only the lowercasing applies.
func Normalize(s string) string {
	// transform.Transformer values are not safe for concurrent use; build the
	// chain per call.
	stripper := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(stripper, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Truncate caps s at max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
