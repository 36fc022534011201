// Package catalog reads the UCS satellite registry.
package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Column headers of the UCS export.
const (
	ColumnName       = "Name of Satellite, Alternate Names"
	ColumnCountry    = "Country of Operator"
	ColumnUsers      = "Users"
	ColumnPurpose    = "Purpose"
	ColumnLaunchYear = "Launch Year"
	ColumnLaunchDate = "Date of Launch"
)

// Older exports label the country column differently.
var columnAliases = map[string]string{
	"Country of Operator/Owner": ColumnCountry,
}

var yearPattern = regexp.MustCompile(`\b(1[89]\d\d|2\d\d\d)\b`)

// ErrMissingNameColumn is returned when the header has no satellite name column.
var ErrMissingNameColumn = errors.New("catalog header has no " + strconv.Quote(ColumnName) + " column")

// Parse reads a tab-separated UCS export from r. Input that is not valid
// UTF-8 is decoded as ISO-8859-1, the encoding UCS publishes in. A header
// without tabs is read as comma-separated.
//
// Rows that cannot be read are skipped and counted; a missing header or name
// column fails the whole parse.
func Parse(r io.Reader, logger *slog.Logger) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading catalog data: %w", err)
	}
	if !utf8.Valid(raw) {
		raw, err = charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding catalog data: %w", err)
		}
	}
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = detectDelimiter(raw)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog data is empty")
		}
		return nil, fmt.Errorf("reading catalog header: %w", err)
	}
	cols := indexColumns(header)
	if _, ok := cols[ColumnName]; !ok {
		return nil, ErrMissingNameColumn
	}

	ds := &Dataset{}
	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				logger.Debug("skipping unreadable catalog row", "row", row, "error", err)
				ds.Skipped++
				continue
			}
			return nil, fmt.Errorf("reading catalog row %d: %w", row, err)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		entry := Entry{
			Row:     len(ds.Entries),
			Name:    field(ColumnName),
			Country: field(ColumnCountry),
			Users:   field(ColumnUsers),
			Purpose: field(ColumnPurpose),
		}
		if _, ok := cols[ColumnLaunchYear]; ok {
			entry.LaunchYear, entry.LaunchYearOK = ParseYear(field(ColumnLaunchYear))
		} else {
			entry.LaunchYear, entry.LaunchYearOK = yearFromDate(field(ColumnLaunchDate))
		}
		ds.Entries = append(ds.Entries, entry)
	}

	if ds.Skipped > 0 {
		logger.Warn("skipped unreadable catalog rows", "skipped", ds.Skipped, "parsed", len(ds.Entries))
	}
	return ds, nil
}

// ParseYear reads a launch year such as "1999" or "1999.0".
func ParseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, y > 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func yearFromDate(s string) (int, bool) {
	m := yearPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return y, true
}

func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.IndexByte(line, '\t') >= 0 {
		return '\t'
	}
	return ','
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if canonical, ok := columnAliases[h]; ok {
			h = canonical
		}
		if _, dup := cols[h]; dup {
			continue
		}
		cols[h] = i
	}
	return cols
}
