package extract

import (
	"strings"
	"unicode"
)

var comparisonReplacer = strings.NewReplacer(
	"＝", "=",
	"≠", "!=",
	"≤", "<=",
	"≥", ">=",
	"⩽", "<=",
	"⩾", ">=",
)

// Normalize canonicalizes an equation fragment for substring matching:
// lowercase, subscript digits for 1 and 2 mapped to ASCII, every whitespace
// rune removed, and comparison symbols folded to their ASCII forms. The
// result is suitable for tests like strings.Contains(norm, "h1=h2").
// Normalize is pure and idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "₁", "1")
	s = strings.ReplaceAll(s, "₂", "2")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}

	return comparisonReplacer.Replace(b.String())
}
