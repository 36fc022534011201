package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// Process prepares a name for scoring: full-width forms are narrowed, case
// is folded, and every run of non-alphanumeric characters becomes a single
// space. "ISS (ZARYA)" and "iss zarya" process to the same string.
func Process(s string) string {
	s = cases.Fold().String(width.Fold.String(s))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}
