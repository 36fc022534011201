package tle

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

const (
	issLine1      = "1 25544U 98067A   24100.50000000  .00016717  00000-0  10270-3 0  9005"
	issLine2      = "2 25544  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    09"
	starlinkLine1 = "1 44713U 19074A   24100.50000000  .00001000  00000-0  10000-4 0  9995"
	starlinkLine2 = "2 44713  53.0000 200.0000 0001500  90.0000 270.0000 15.06000000    05"
)

func TestParseThreeLine(t *testing.T) {
	data := "ISS (ZARYA)\n" + issLine1 + "\n" + issLine2 + "\n" +
		"0 STARLINK-1007\r\n" + starlinkLine1 + "\r\n" + starlinkLine2 + "\r\n"

	ds, err := ParseThreeLine(strings.NewReader(data), testLogger)
	require.NoError(t, err)
	require.Len(t, ds.Entries, 2)
	assert.Equal(t, FormatThreeLine, ds.Format)
	assert.Zero(t, ds.Skipped)

	iss := ds.Entries[0]
	assert.Equal(t, "ISS (ZARYA)", iss.Name)
	assert.Equal(t, "1998-067A", iss.ObjectID)
	assert.Equal(t, "2024-04-09T12:00:00.000000", iss.Epoch)
	assert.Equal(t, issLine1, iss.Line1)
	assert.Equal(t, issLine2, iss.Line2)
	assert.Equal(t, "51.6400", iss.Inclination)
	assert.Equal(t, "15.50000000", iss.MeanMotion)
	assert.Equal(t, "LEO", iss.OrbitClass)
	assert.NotEmpty(t, iss.Apoapsis)
	assert.NotEmpty(t, iss.Periapsis)

	assert.Equal(t, "STARLINK-1007", ds.Entries[1].Name)
	assert.Equal(t, "2019-074A", ds.Entries[1].ObjectID)

	year, ok := iss.Year()
	assert.True(t, ok)
	assert.Equal(t, 2024, year)
}

func TestParseThreeLineSkipsMalformed(t *testing.T) {
	data := "BROKEN\nnot a tle line\n" +
		"ISS (ZARYA)\n" + issLine1 + "\n" + issLine2 + "\n"

	ds, err := ParseThreeLine(strings.NewReader(data), testLogger)
	require.NoError(t, err)
	require.Len(t, ds.Entries, 1)
	assert.Equal(t, "ISS (ZARYA)", ds.Entries[0].Name)
	assert.Positive(t, ds.Skipped)
}

func TestParseThreeLineCountsTrailingFragment(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
	}{
		{"name only", "STARLINK-1007\n"},
		{"name and line1", "STARLINK-1007\n" + starlinkLine1 + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "ISS (ZARYA)\n" + issLine1 + "\n" + issLine2 + "\n" + tt.fragment

			ds, err := ParseThreeLine(strings.NewReader(data), testLogger)
			require.NoError(t, err)
			require.Len(t, ds.Entries, 1)
			assert.Equal(t, 1, ds.Skipped)
		})
	}
}

func TestParseCSV(t *testing.T) {
	data := "OBJECT_NAME,OBJECT_ID,EPOCH,TLE_LINE1,TLE_LINE2,CLASS_OF_ORBIT,MEAN_MOTION,INCLINATION,APOAPSIS,PERIAPSIS\n" +
		"TERRA,1999-068A,2023-10-01T12:00:00.000000,l1,l2,LEO,14.57,98.2,705,703\n" +
		",2000-001A,2023-10-01T12:00:00,l1,l2,,,,,\n" +
		"HALF,2001-001A,2023-10-01T12:00:00,l1,,,,,,\n" +
		"NOLINES,,2022-01-01T00:00:00,,,,,,,\n"

	ds, err := ParseCSV(strings.NewReader(data), testLogger)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, ds.Format)
	assert.Equal(t, 2, ds.Skipped)
	require.Len(t, ds.Entries, 2)

	terra := ds.Entries[0]
	assert.Equal(t, Entry{
		Name:        "TERRA",
		ObjectID:    "1999-068A",
		Epoch:       "2023-10-01T12:00:00.000000",
		Line1:       "l1",
		Line2:       "l2",
		OrbitClass:  "LEO",
		MeanMotion:  "14.57",
		Inclination: "98.2",
		Apoapsis:    "705",
		Periapsis:   "703",
	}, terra)
	assert.Equal(t, "1999-068A", terra.Key())

	noLines := ds.Entries[1]
	assert.Equal(t, "", noLines.ObjectID)
	assert.Equal(t, "NOLINES", noLines.Key())
}

func TestParseCSVSynthesizesObjectID(t *testing.T) {
	data := "OBJECT_NAME,NORAD_CAT_ID,EPOCH,TLE_LINE1,TLE_LINE2\n" +
		"ISS (ZARYA),25544,2024-04-09T12:00:00," + issLine1 + "," + issLine2 + "\n" +
		"MYSTERY,99999,2024-04-09T12:00:00,,\n"

	ds, err := ParseCSV(strings.NewReader(data), testLogger)
	require.NoError(t, err)
	require.Len(t, ds.Entries, 2)
	assert.Equal(t, "1998-067A", ds.Entries[0].ObjectID)
	assert.Equal(t, "99999", ds.Entries[1].ObjectID)
}

func TestParseCSVMissingNameColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("OBJECT_ID,EPOCH\n1,2\n"), testLogger)
	assert.ErrorIs(t, err, ErrMissingNameColumn)
}

func TestParseDetectsForm(t *testing.T) {
	csvData := "OBJECT_NAME,OBJECT_ID,EPOCH,TLE_LINE1,TLE_LINE2\nISS,1998-067A,2024-04-09T12:00:00," + issLine1 + "," + issLine2 + "\n"
	ds, err := Parse(strings.NewReader(csvData), testLogger)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, ds.Format)
	assert.Len(t, ds.Entries, 1)

	tleData := "ISS (ZARYA)\n" + issLine1 + "\n" + issLine2 + "\n"
	ds, err = Parse(strings.NewReader(tleData), testLogger)
	require.NoError(t, err)
	assert.Equal(t, FormatThreeLine, ds.Format)
	assert.Len(t, ds.Entries, 1)
}

func TestParseEpoch(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"24100.50000000", time.Date(2024, 4, 9, 12, 0, 0, 0, time.UTC)},
		{"57001.00000000", time.Date(1957, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"00001.00000000", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseEpoch(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}

	_, err := parseEpoch("24")
	assert.Error(t, err)
	_, err = parseEpoch("xx100.5")
	assert.Error(t, err)
}

func TestEntryYearFallsBackToElementLine(t *testing.T) {
	e := Entry{Name: "ISS", Epoch: "garbage", Line1: issLine1}
	year, ok := e.Year()
	assert.True(t, ok)
	assert.Equal(t, 2024, year)

	_, ok = Entry{Name: "X"}.Year()
	assert.False(t, ok)
}
