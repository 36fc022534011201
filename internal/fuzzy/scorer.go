package fuzzy

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/antzucaro/matchr"
)

// Scorer rates the similarity of two processed strings from 0 to 100.
type Scorer func(a, b string) float64

// Scorer names accepted by ScorerByName.
const (
	ScorerWeighted    = "weighted"
	ScorerJaroWinkler = "jaro_winkler"
)

// ScorerByName returns the scorer registered under name.
func ScorerByName(name string) (Scorer, error) {
	switch name {
	case "", ScorerWeighted:
		return WeightedRatio, nil
	case ScorerJaroWinkler:
		return JaroWinkler, nil
	default:
		return nil, fmt.Errorf("unknown scorer %q", name)
	}
}

// Ratio is the Levenshtein similarity normalized by the longer string.
func Ratio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(longest))
}

// PartialRatio scores the shorter string against the best-aligned window of
// the longer one.
func PartialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	s := string(short)
	var best float64
	for i := 0; i+len(short) <= len(long); i++ {
		r := Ratio(s, string(long[i:i+len(short)]))
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio compares the strings with their words sorted.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(strings.Fields(a)), sortedTokens(strings.Fields(b)))
}

// TokenSetRatio compares the shared words of both strings against each
// string's remainder, so "terra eos" and "eos" score highly.
func TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}

	sect := sortedTokens(common)
	combinedA := strings.TrimSpace(sect + " " + sortedTokens(onlyA))
	combinedB := strings.TrimSpace(sect + " " + sortedTokens(onlyB))

	best := Ratio(combinedA, combinedB)
	if sect != "" {
		best = math.Max(best, Ratio(sect, combinedA))
		best = math.Max(best, Ratio(sect, combinedB))
	}
	return best
}

// WeightedRatio takes the best of the plain, partial and token ratios,
// discounting the partial and token variants so only an identical string
// scores 100.
func WeightedRatio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}

	const tokenScale = 0.95
	best := Ratio(a, b)

	lenRatio := float64(max(la, lb)) / float64(min(la, lb))
	if lenRatio < 1.5 {
		best = math.Max(best, TokenSortRatio(a, b)*tokenScale)
		best = math.Max(best, TokenSetRatio(a, b)*tokenScale)
		return best
	}

	partialScale := 0.9
	if lenRatio >= 8 {
		partialScale = 0.6
	}
	best = math.Max(best, PartialRatio(a, b)*partialScale)
	best = math.Max(best, TokenSortRatio(a, b)*tokenScale*partialScale)
	best = math.Max(best, TokenSetRatio(a, b)*tokenScale*partialScale)
	return best
}

// JaroWinkler scales the Jaro-Winkler similarity to 0-100.
func JaroWinkler(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return 100 * matchr.JaroWinkler(a, b, false)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		set[t] = struct{}{}
	}
	return set
}

func sortedTokens(tokens []string) string {
	out := make([]string, len(tokens))
	copy(out, tokens)
	sort.Strings(out)
	return strings.Join(out, " ")
}
