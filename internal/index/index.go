// Package index maps catalog aliases back to the catalog entries that
// produced them so a reconciliation pass canonicalizes each entry once.
package index

import (
	"sort"
	"sync/atomic"

	"github.com/kansaiyets/Satellite-tracker/internal/catalog"
	"github.com/kansaiyets/Satellite-tracker/internal/fuzzy"
	"github.com/kansaiyets/Satellite-tracker/internal/names"
)

// Stats counts the work done building and querying an Index.
type Stats struct {
	Entries      int // catalog entries seen
	Canonicalize int // calls to the name canonicalizer
	Skipped      int // entries with no usable name
	Aliases      int // distinct aliases registered
	Collisions   int // aliases already owned by an earlier entry
	Resolves     int // Resolve calls
}

// Index maps every alias to the catalog entry that registered it first.
// It is read-only after Build and safe for concurrent lookups.
type Index struct {
	owners     map[string]*catalog.Entry
	order      []string // registration order
	candidates *fuzzy.Candidates
	stats      Stats
	resolves   atomic.Int64
}

// Build canonicalizes every entry once and registers its aliases. The index
// keeps pointers into entries; the slice must not be modified afterwards.
//
// When two entries produce the same alias the first one registered keeps it.
func Build(entries []catalog.Entry) *Index {
	idx := &Index{
		owners: make(map[string]*catalog.Entry, len(entries)*2),
	}

	for i := range entries {
		e := &entries[i]
		idx.stats.Entries++
		idx.stats.Canonicalize++
		aliases := names.Canonicalize(e.Name)
		if len(aliases) == 0 {
			idx.stats.Skipped++
			continue
		}
		for _, a := range aliases {
			if _, taken := idx.owners[a]; taken {
				idx.stats.Collisions++
				continue
			}
			idx.owners[a] = e
			idx.order = append(idx.order, a)
		}
	}
	idx.stats.Aliases = len(idx.order)

	sorted := make([]string, len(idx.order))
	copy(sorted, idx.order)
	sort.Strings(sorted)
	idx.candidates = fuzzy.NewCandidates(sorted)

	return idx
}

// Candidates returns the preprocessed alias set for fuzzy matching.
func (idx *Index) Candidates() *fuzzy.Candidates {
	return idx.candidates
}

// Resolve returns the catalog entry owning alias.
func (idx *Index) Resolve(alias string) (*catalog.Entry, bool) {
	idx.resolves.Add(1)
	e, ok := idx.owners[alias]
	return e, ok
}

// Aliases returns the registered aliases in registration order.
func (idx *Index) Aliases() []string {
	out := make([]string, len(idx.order))
	copy(out, idx.order)
	return out
}

// Len returns the number of registered aliases.
func (idx *Index) Len() int {
	return len(idx.order)
}

// Stats returns build and lookup counters.
func (idx *Index) Stats() Stats {
	s := idx.stats
	s.Resolves = int(idx.resolves.Load())
	return s
}
