// Package strings provides the text canonicalization used wherever guest
// identity is compared: spreadsheet headers, scanned codes and search.
package strings

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeKey returns the comparison key for s: surrounding whitespace
// trimmed, accents stripped, lower-cased.
//
// Two inputs share a key iff they differ only by case, diacritics or
// surrounding whitespace. NormalizeKey is total and idempotent.
//
// Example:
//
//	NormalizeKey(" Évènement ") // "evenement"
//	NormalizeKey("ID d'Inscription") // "id d'inscription"
func NormalizeKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.TrimSpace(out)
}
