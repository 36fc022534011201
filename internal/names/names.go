// Package names turns free-text catalog fields into the forms used for
// matching and filtering: alias sets for satellite names and canonical
// values for operator attributes.
package names

import (
	"sort"
	"strings"

	"golang.org/x/text/width"
)

// Unknown is the canonical value for a missing attribute.
const Unknown = "Unknown"

// Canonicalize splits a raw catalog display name into its candidate aliases.
//
// Full-width punctuation is folded to half-width first. The name is split on
// commas; a segment holding both "(" and ")" contributes the text before the
// first "(" and the text between that "(" and the last ")". Nested parentheses
// are not parsed further. The result is deduplicated and sorted, and is empty
// when the name is blank.
func Canonicalize(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	folded := width.Fold.String(raw)

	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		seen[s] = struct{}{}
	}

	for _, segment := range strings.Split(folded, ",") {
		open := strings.Index(segment, "(")
		closing := strings.LastIndex(segment, ")")
		if open < 0 || closing < 0 {
			add(segment)
			continue
		}
		add(segment[:open])
		if closing > open {
			add(segment[open+1 : closing])
		} else {
			// ")" before "(": keep whatever follows the opening paren.
			add(strings.TrimRight(segment[open+1:], ")"))
		}
	}

	aliases := make([]string, 0, len(seen))
	for s := range seen {
		aliases = append(aliases, s)
	}
	sort.Strings(aliases)
	return aliases
}

// NormalizeCategory returns an order-insensitive canonical form of a
// slash-delimited category string such as "Military/Government".
func NormalizeCategory(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return Unknown
	}

	seen := make(map[string]struct{})
	var parts []string
	for _, p := range strings.Split(raw, "/") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return Unknown
	}

	sort.Strings(parts)
	return strings.Join(parts, "/")
}

// NormalizeCountry trims a country value, mapping blanks to Unknown.
func NormalizeCountry(raw string) string {
	s := strings.TrimSpace(width.Fold.String(raw))
	if s == "" {
		return Unknown
	}
	return s
}
