// Package fuzzy scores a query name against a set of candidate aliases and
// picks the best one.
package fuzzy

import (
	"math"
	"sort"
)

// Candidates is an alias set prepared for repeated matching. Aliases are held
// in lexicographic order, which is also the tie-break order.
type Candidates struct {
	aliases   []string
	processed []string
	exact     map[string]int // processed form -> first index
}

// NewCandidates sorts and preprocesses aliases. Duplicate aliases are kept
// once.
func NewCandidates(aliases []string) *Candidates {
	sorted := make([]string, len(aliases))
	copy(sorted, aliases)
	sort.Strings(sorted)

	c := &Candidates{
		aliases:   make([]string, 0, len(sorted)),
		processed: make([]string, 0, len(sorted)),
		exact:     make(map[string]int, len(sorted)),
	}
	for i, a := range sorted {
		if i > 0 && sorted[i-1] == a {
			continue
		}
		p := Process(a)
		if _, ok := c.exact[p]; !ok && p != "" {
			c.exact[p] = len(c.aliases)
		}
		c.aliases = append(c.aliases, a)
		c.processed = append(c.processed, p)
	}
	return c
}

// Len returns the number of distinct aliases.
func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.aliases)
}

// Match is the winning alias for a query.
type Match struct {
	Alias string
	Score int
}

// Matcher finds the best candidate for a query with a fixed scorer.
type Matcher struct {
	scorer Scorer
}

// NewMatcher returns a Matcher using scorer, or WeightedRatio when nil.
func NewMatcher(scorer Scorer) *Matcher {
	if scorer == nil {
		scorer = WeightedRatio
	}
	return &Matcher{scorer: scorer}
}

// BestMatch returns the highest-scoring alias for query. A best score below
// cutoff, an empty query or an empty candidate set is no match. Equal scores
// go to the lexicographically smallest alias.
func (m *Matcher) BestMatch(query string, c *Candidates, cutoff int) (Match, bool) {
	if c.Len() == 0 {
		return Match{}, false
	}
	cutoff = min(max(cutoff, 0), 100)

	q := Process(query)
	if q == "" {
		return Match{}, false
	}

	// An alias identical after processing always wins.
	if i, ok := c.exact[q]; ok {
		return Match{Alias: c.aliases[i], Score: 100}, true
	}

	best, bestScore := -1, -1
	for i, p := range c.processed {
		score := int(math.Round(m.scorer(q, p)))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if bestScore < cutoff {
		return Match{}, false
	}
	return Match{Alias: c.aliases[best], Score: bestScore}, true
}

var defaultMatcher = NewMatcher(WeightedRatio)

// BestMatch matches with the weighted-ratio scorer.
func BestMatch(query string, c *Candidates, cutoff int) (Match, bool) {
	return defaultMatcher.BestMatch(query, c, cutoff)
}
