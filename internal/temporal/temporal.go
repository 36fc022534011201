// Package temporal decides whether an orbital observation can belong to a
// catalogued satellite given when that satellite was launched.
package temporal

import "strings"

// PivotYear splits two-digit TLE years: 57-99 are 1957-1999, 00-56 are 2000-2056.
const PivotYear = 57

// ExpandTwoDigitYear maps a two-digit TLE year onto a four-digit year.
func ExpandTwoDigitYear(yy int) int {
	if yy >= PivotYear {
		return 1900 + yy
	}
	return 2000 + yy
}

// EpochYear extracts the year from an epoch string. ISO-like timestamps
// ("2023-10-01T12:00:00") give their leading four digits; raw TLE epoch
// fields ("23274.50000000") give their two-digit year expanded around
// PivotYear.
func EpochYear(epoch string) (int, bool) {
	epoch = strings.TrimSpace(epoch)
	if y, ok := digits(epoch, 4); ok {
		// Five leading digits is the YYDDD form, not a four-digit year.
		if len(epoch) == 4 || !isDigit(epoch[4]) {
			return y, true
		}
	}
	if len(epoch) >= 5 {
		if _, ok := digits(epoch, 5); ok {
			yy, _ := digits(epoch, 2)
			return ExpandTwoDigitYear(yy), true
		}
	}
	return 0, false
}

// ElementLineYear reads the epoch year from columns 19-20 of TLE line 1.
func ElementLineYear(line1 string) (int, bool) {
	if len(line1) < 20 || !strings.HasPrefix(line1, "1 ") {
		return 0, false
	}
	yy, ok := digits(line1[18:20], 2)
	if !ok {
		return 0, false
	}
	return ExpandTwoDigitYear(yy), true
}

// IsPlausible reports whether an observation in tleYear can belong to a
// satellite launched in launchYear. Unknown years never reject a match.
func IsPlausible(tleYear int, tleOK bool, launchYear int, launchOK bool) bool {
	if !tleOK || !launchOK {
		return true
	}
	return tleYear >= launchYear
}

func digits(s string, n int) (int, bool) {
	if len(s) < n {
		return 0, false
	}
	v := 0
	for i := 0; i < n; i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		v = v*10 + int(s[i]-'0')
	}
	return v, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
