// Package tle reads orbital element feeds in CSV and three-line text form.
package tle

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kansaiyets/Satellite-tracker/internal/temporal"
)

// CSV column headers of the tabular feed.
const (
	ColumnObjectName  = "OBJECT_NAME"
	ColumnObjectID    = "OBJECT_ID"
	ColumnNoradID     = "NORAD_CAT_ID"
	ColumnEpoch       = "EPOCH"
	ColumnLine1       = "TLE_LINE1"
	ColumnLine2       = "TLE_LINE2"
	ColumnOrbitClass  = "CLASS_OF_ORBIT"
	ColumnMeanMotion  = "MEAN_MOTION"
	ColumnInclination = "INCLINATION"
	ColumnApoapsis    = "APOAPSIS"
	ColumnPeriapsis   = "PERIAPSIS"
)

// EpochLayout is how epochs decoded from element lines are rendered.
const EpochLayout = "2006-01-02T15:04:05.000000"

// ErrMissingNameColumn is returned when a CSV header lacks OBJECT_NAME.
var ErrMissingNameColumn = errors.New("orbital elements header has no OBJECT_NAME column")

// Parse detects the physical form of data and parses it accordingly.
func Parse(r io.Reader, logger *slog.Logger) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}
	if isCSV(data) {
		return ParseCSV(bytes.NewReader(data), logger)
	}
	return ParseThreeLine(bytes.NewReader(data), logger)
}

func isCSV(data []byte) bool {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	line = bytes.TrimPrefix(line, []byte("\ufeff"))
	return bytes.Contains(line, []byte(ColumnObjectName)) && bytes.IndexByte(line, ',') >= 0
}

// ParseCSV reads the tabular feed. Rows without a name, or with only one of
// the two element lines, are skipped and counted.
func ParseCSV(r io.Reader, logger *slog.Logger) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("TLE data is empty")
		}
		return nil, fmt.Errorf("reading TLE header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		cols[strings.ToUpper(h)] = i
	}
	if _, ok := cols[ColumnObjectName]; !ok {
		return nil, ErrMissingNameColumn
	}

	ds := &Dataset{Format: FormatCSV}
	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				logger.Debug("skipping unreadable TLE row", "row", row, "error", err)
				ds.Skipped++
				continue
			}
			return nil, fmt.Errorf("reading TLE row %d: %w", row, err)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		e := Entry{
			Name:        field(ColumnObjectName),
			ObjectID:    field(ColumnObjectID),
			Epoch:       field(ColumnEpoch),
			Line1:       field(ColumnLine1),
			Line2:       field(ColumnLine2),
			OrbitClass:  field(ColumnOrbitClass),
			MeanMotion:  field(ColumnMeanMotion),
			Inclination: field(ColumnInclination),
			Apoapsis:    field(ColumnApoapsis),
			Periapsis:   field(ColumnPeriapsis),
		}
		if e.Name == "" {
			logger.Debug("skipping TLE row without name", "row", row)
			ds.Skipped++
			continue
		}
		if (e.Line1 == "") != (e.Line2 == "") {
			logger.Debug("skipping TLE row with a single element line", "row", row, "name", e.Name)
			ds.Skipped++
			continue
		}
		if e.ObjectID == "" {
			e.ObjectID = synthesizeObjectID(e.Line1, field(ColumnNoradID))
		}
		ds.Entries = append(ds.Entries, e)
	}

	if ds.Skipped > 0 {
		logger.Warn("skipped malformed TLE rows", "skipped", ds.Skipped, "parsed", len(ds.Entries))
	}
	return ds, nil
}

// ParseThreeLine reads 3-line NORAD TLE format from r.
// Malformed entries are skipped with a warning log.
func ParseThreeLine(r io.Reader, logger *slog.Logger) (*Dataset, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}

	ds := &Dataset{Format: FormatThreeLine}
	i := 0
	for i+2 < len(lines) {
		name := lines[i]
		line1 := lines[i+1]
		line2 := lines[i+2]

		// Validate line prefixes.
		if !strings.HasPrefix(line1, "1 ") || !strings.HasPrefix(line2, "2 ") {
			// Try to find next valid triplet.
			logger.Warn("skipping malformed TLE entry", "line_index", i, "name", name)
			ds.Skipped++
			i++
			continue
		}
		if len(line1) < 32 {
			logger.Warn("skipping TLE entry with short line1", "name", name)
			ds.Skipped++
			i += 3
			continue
		}

		// 3LE files prefix the name line with "0 ".
		name = strings.TrimSpace(strings.TrimPrefix(name, "0 "))

		epochField := strings.TrimSpace(line1[18:32])
		epoch := epochField
		if t, err := parseEpoch(epochField); err == nil {
			epoch = t.Format(EpochLayout)
		} else {
			logger.Debug("keeping raw TLE epoch", "epoch_str", epochField, "name", name, "error", err)
		}

		e := Entry{
			Name:     name,
			ObjectID: synthesizeObjectID(line1, ""),
			Epoch:    epoch,
			Line1:    line1,
			Line2:    line2,
		}
		fillOrbitalParameters(&e)
		ds.Entries = append(ds.Entries, e)
		i += 3
	}
	if i < len(lines) {
		logger.Warn("skipping truncated TLE entry at end of input", "line_index", i, "lines", len(lines)-i)
		ds.Skipped++
	}

	return ds, nil
}

// synthesizeObjectID builds an id from the international designator in
// columns 10-17 of line 1 ("98067A" becomes "1998-067A"), falling back to
// the NORAD catalog number.
func synthesizeObjectID(line1, noradID string) string {
	if len(line1) >= 17 {
		desig := strings.TrimSpace(line1[9:17])
		if len(desig) >= 6 {
			if yy, err := strconv.Atoi(desig[:2]); err == nil {
				return fmt.Sprintf("%d-%s", temporal.ExpandTwoDigitYear(yy), desig[2:])
			}
		}
	}
	if noradID != "" {
		return noradID
	}
	if len(line1) >= 7 {
		if n, err := strconv.Atoi(strings.TrimSpace(line1[2:7])); err == nil {
			return strconv.Itoa(n)
		}
	}
	return ""
}

const (
	earthMu       = 398600.4418 // km^3/s^2
	earthRadiusKm = 6378.137
)

// fillOrbitalParameters derives the secondary columns the CSV feed carries
// from line 2: inclination, mean motion, apoapsis and periapsis altitudes.
func fillOrbitalParameters(e *Entry) {
	l2 := e.Line2
	if len(l2) < 63 {
		return
	}
	e.Inclination = strings.TrimSpace(l2[8:16])
	e.MeanMotion = strings.TrimSpace(l2[52:63])

	ecc, err := strconv.ParseFloat("0."+strings.TrimSpace(l2[26:33]), 64)
	if err != nil {
		return
	}
	revsPerDay, err := strconv.ParseFloat(e.MeanMotion, 64)
	if err != nil || revsPerDay <= 0 {
		return
	}
	n := revsPerDay * 2 * math.Pi / 86400.0
	a := math.Cbrt(earthMu / (n * n))
	apo := a*(1+ecc) - earthRadiusKm
	peri := a*(1-ecc) - earthRadiusKm
	e.Apoapsis = strconv.FormatFloat(apo, 'f', 3, 64)
	e.Periapsis = strconv.FormatFloat(peri, 'f', 3, 64)
	e.OrbitClass = classifyOrbit(apo, peri, ecc)
}

// classifyOrbit uses the UCS orbit classes.
func classifyOrbit(apoKm, periKm, ecc float64) string {
	switch {
	case ecc > 0.25:
		return "Elliptical"
	case apoKm < 2000:
		return "LEO"
	case math.Abs(apoKm-35786) < 1000 && math.Abs(periKm-35786) < 1000:
		return "GEO"
	default:
		return "MEO"
	}
}

// parseEpoch converts a TLE epoch string in YYDDD.DDDDDDDD format to time.Time.
// Year 00-56 → 2000s, 57-99 → 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	yearStr := s[:2]
	dayStr := s[2:]

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", yearStr, err)
	}
	year = temporal.ExpandTwoDigitYear(year)

	dayOfYear, err := strconv.ParseFloat(dayStr, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", dayStr, err)
	}

	// Start of the year, then add fractional days.
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	// dayOfYear is 1-based: day 1 = Jan 1.
	dur := time.Duration((dayOfYear - 1) * float64(24*time.Hour))
	t = t.Add(dur)

	return t, nil
}
