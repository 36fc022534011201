package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kansaiyets/Satellite-tracker/internal/catalog"
)

func TestBuildRegistersEveryAlias(t *testing.T) {
	entries := []catalog.Entry{
		{Row: 0, Name: "Terra (EOS AM-1)"},
		{Row: 1, Name: "Aqua (EOS PM-1), EOS-PM"},
	}
	idx := Build(entries)

	assert.ElementsMatch(t, []string{"EOS AM-1", "Terra", "Aqua", "EOS PM-1", "EOS-PM"}, idx.Aliases())
	assert.Equal(t, 5, idx.Len())
	assert.Equal(t, 5, idx.Candidates().Len())

	e, ok := idx.Resolve("EOS AM-1")
	require.True(t, ok)
	assert.Same(t, &entries[0], e)

	e, ok = idx.Resolve("EOS-PM")
	require.True(t, ok)
	assert.Same(t, &entries[1], e)

	_, ok = idx.Resolve("Landsat 8")
	assert.False(t, ok)
}

func TestBuildFirstRegistrationWins(t *testing.T) {
	entries := []catalog.Entry{
		{Row: 0, Name: "Shared, First Only"},
		{Row: 1, Name: "Second Only (Shared)"},
	}
	idx := Build(entries)

	e, ok := idx.Resolve("Shared")
	require.True(t, ok)
	assert.Equal(t, 0, e.Row)

	e, ok = idx.Resolve("Second Only")
	require.True(t, ok)
	assert.Equal(t, 1, e.Row)

	assert.Equal(t, 1, idx.Stats().Collisions)
	assert.Equal(t, 3, idx.Len())
}

func TestBuildSkipsNamelessEntries(t *testing.T) {
	idx := Build([]catalog.Entry{{Name: ""}, {Name: "  "}, {Name: "ISS"}})
	st := idx.Stats()
	assert.Equal(t, 3, st.Entries)
	assert.Equal(t, 2, st.Skipped)
	assert.Equal(t, 1, st.Aliases)
}

func TestBuildEmpty(t *testing.T) {
	idx := Build(nil)
	assert.Zero(t, idx.Len())
	assert.Zero(t, idx.Candidates().Len())
}

func TestAliasesRegistrationOrder(t *testing.T) {
	idx := Build([]catalog.Entry{{Name: "Zulu"}, {Name: "Alpha"}})
	assert.Equal(t, []string{"Zulu", "Alpha"}, idx.Aliases())
}

func TestStatsCountWork(t *testing.T) {
	entries := make([]catalog.Entry, 50)
	for i := range entries {
		entries[i] = catalog.Entry{Row: i, Name: "Sat " + string(rune('A'+i%26)) + string(rune('a'+i/26))}
	}
	idx := Build(entries)
	for i := 0; i < 7; i++ {
		idx.Resolve("Sat Aa")
	}

	st := idx.Stats()
	assert.Equal(t, 50, st.Canonicalize)
	assert.Equal(t, 7, st.Resolves)
}
