package temporal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPlausible(t *testing.T) {
	tests := []struct {
		name       string
		tleYear    int
		tleOK      bool
		launchYear int
		launchOK   bool
		want       bool
	}{
		{"observed before launch", 2010, true, 2015, true, false},
		{"observed in launch year", 2015, true, 2015, true, true},
		{"observed after launch", 2023, true, 1999, true, true},
		{"launch year unknown", 1960, true, 0, false, true},
		{"tle year unknown", 0, false, 2015, true, true},
		{"both unknown", 0, false, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPlausible(tt.tleYear, tt.tleOK, tt.launchYear, tt.launchOK))
		})
	}
}

func TestEpochYear(t *testing.T) {
	tests := []struct {
		epoch  string
		want   int
		wantOK bool
	}{
		{"2023-10-01T12:34:56.000000", 2023, true},
		{"1999", 1999, true},
		{"24100.50000000", 2024, true},
		{"57001.00000000", 1957, true},
		{"98067.12345678", 1998, true},
		{"56365.00000000", 2056, true},
		{"", 0, false},
		{"abc", 0, false},
		{"20", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.epoch, func(t *testing.T) {
			got, ok := EpochYear(tt.epoch)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestElementLineYear(t *testing.T) {
	y, ok := ElementLineYear("1 25544U 98067A   24100.50000000  .00016717  00000-0  10270-3 0  9005")
	assert.True(t, ok)
	assert.Equal(t, 2024, y)

	y, ok = ElementLineYear("1 00005U 58002B   99001.00000000  .00000023  00000-0  28098-4 0  4753")
	assert.True(t, ok)
	assert.Equal(t, 1999, y)

	_, ok = ElementLineYear("short")
	assert.False(t, ok)

	_, ok = ElementLineYear("2 25544  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    09")
	assert.False(t, ok)
}

func TestExpandTwoDigitYear(t *testing.T) {
	assert.Equal(t, 2000, ExpandTwoDigitYear(0))
	assert.Equal(t, 2056, ExpandTwoDigitYear(56))
	assert.Equal(t, 1957, ExpandTwoDigitYear(57))
	assert.Equal(t, 1999, ExpandTwoDigitYear(99))
}
