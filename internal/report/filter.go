// Package report filters reconciled records and renders them for display.
package report

import (
	"sort"

	"github.com/kansaiyets/Satellite-tracker/internal/propagation"
	"github.com/kansaiyets/Satellite-tracker/internal/reconcile"
)

// Filter selects records for display. Zero values match everything.
type Filter struct {
	Country  string `json:"country,omitempty"`
	Category string `json:"category,omitempty"`
	MinScore int    `json:"min_score,omitempty"`
}

// Match reports whether r passes every predicate. Country and category
// compare exactly against the normalized values.
func (f Filter) Match(r reconcile.MatchRecord) bool {
	if f.Country != "" && r.Country != f.Country {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	return r.Score >= f.MinScore
}

// Apply returns the records passing f, in their original order.
func (f Filter) Apply(records []reconcile.MatchRecord) []reconcile.MatchRecord {
	out := make([]reconcile.MatchRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Options lists the values the country and category filters can take.
type Options struct {
	Countries  []string `json:"countries" yaml:"countries"`
	Categories []string `json:"categories" yaml:"categories"`
}

// OptionsFor collects the distinct countries and categories in records,
// sorted.
func OptionsFor(records []reconcile.MatchRecord) Options {
	countries := make(map[string]struct{})
	categories := make(map[string]struct{})
	for _, r := range records {
		countries[r.Country] = struct{}{}
		categories[r.Category] = struct{}{}
	}
	return Options{
		Countries:  sortedKeys(countries),
		Categories: sortedKeys(categories),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Targets converts records into propagation inputs.
func Targets(records []reconcile.MatchRecord) []propagation.Target {
	targets := make([]propagation.Target, len(records))
	for i, r := range records {
		targets[i] = propagation.Target{
			Key:   r.ObjectID,
			Name:  r.TLEName,
			Line1: r.Line1,
			Line2: r.Line2,
		}
	}
	return targets
}
