package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kansaiyets/Satellite-tracker/internal/propagation"
	"github.com/kansaiyets/Satellite-tracker/internal/reconcile"
)

var records = []reconcile.MatchRecord{
	{TLEName: "TERRA", MatchedName: "Terra", Score: 100, ObjectID: "1999-068A", Country: "USA", Category: "Government", Line1: "l1a", Line2: "l2a"},
	{TLEName: "HIMAWARI-8", MatchedName: "Himawari 8", Score: 93, ObjectID: "2014-060A", Country: "Japan", Category: "Civil/Government"},
	{TLEName: "STARLINK-1007", MatchedName: "Starlink-1007", Score: 91, ObjectID: "2019-074A", Country: "USA", Category: "Commercial"},
	{TLEName: "MYSTERY", MatchedName: "Mystery", Score: 90, ObjectID: "2020-001A", Country: "Unknown", Category: "Unknown"},
}

func TestFilterApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero filter keeps all", Filter{}, []string{"1999-068A", "2014-060A", "2019-074A", "2020-001A"}},
		{"country", Filter{Country: "USA"}, []string{"1999-068A", "2019-074A"}},
		{"category exact", Filter{Category: "Civil/Government"}, []string{"2014-060A"}},
		{"category is not a substring match", Filter{Category: "Government"}, []string{"1999-068A"}},
		{"min score", Filter{MinScore: 92}, []string{"1999-068A", "2014-060A"}},
		{"combined", Filter{Country: "USA", MinScore: 95}, []string{"1999-068A"}},
		{"nothing", Filter{Country: "France"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(records)
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ObjectID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	before := len(records)
	_ = Filter{Country: "USA"}.Apply(records)
	assert.Len(t, records, before)
	assert.Equal(t, "TERRA", records[0].TLEName)
}

func TestOptionsFor(t *testing.T) {
	opts := OptionsFor(records)
	assert.Equal(t, []string{"Japan", "USA", "Unknown"}, opts.Countries)
	assert.Equal(t, []string{"Civil/Government", "Commercial", "Government", "Unknown"}, opts.Categories)

	empty := OptionsFor(nil)
	assert.Empty(t, empty.Countries)
	assert.Empty(t, empty.Categories)
}

func TestTargets(t *testing.T) {
	targets := Targets(records[:1])
	require.Len(t, targets, 1)
	assert.Equal(t, propagation.Target{Key: "1999-068A", Name: "TERRA", Line1: "l1a", Line2: "l2a"}, targets[0])
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "TABLE": FormatTable, "json": FormatJSON, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, records[:2]))

	var decoded []reconcile.MatchRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, records[:2], decoded)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, records[:1]))

	out := buf.String()
	assert.Contains(t, out, "tle_name: TERRA")
	assert.Contains(t, out, "match_score: 100")
	assert.Contains(t, out, "country: USA")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, MatchTable(records)))

	out := buf.String()
	upper := strings.ToUpper(out)
	for _, h := range []string{"TLE NAME", "MATCHED NAME", "SCORE", "OBJECT ID", "CATEGORY", "PERIGEE"} {
		assert.Contains(t, upper, h)
	}
	assert.Contains(t, out, "HIMAWARI-8")
	assert.Contains(t, out, "1999-068A")
	assert.Contains(t, out, "Civil/Government")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, map[string]int{"count": 3}))
	assert.JSONEq(t, `{"count": 3}`, buf.String())
}

func TestPositionTable(t *testing.T) {
	table := PositionTable([]propagation.SatellitePosition{{
		Key:      "1998-067A",
		Name:     "ISS (ZARYA)",
		Position: propagation.Position{Lat: 12.34567, Lon: -45.6, AltKm: 418.24},
		Trail:    make([]propagation.Position, 3),
	}})

	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"1998-067A", "ISS (ZARYA)", "12.3457", "-45.6000", "418.2", "3"}, table.Rows[0])
	assert.Len(t, table.Align, len(table.Headers))
}
