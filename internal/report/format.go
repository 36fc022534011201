package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/kansaiyets/Satellite-tracker/internal/propagation"
	"github.com/kansaiyets/Satellite-tracker/internal/reconcile"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates s as a Format. Empty selects FormatTable.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, json, yaml", s)
	}
}

// Formatter writes data to w.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the Formatter for format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// JSONFormatter outputs JSON.
type JSONFormatter struct {
	Indent string
}

// Format implements Formatter.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	return enc.Encode(data)
}

// YAMLFormatter outputs YAML.
type YAMLFormatter struct{}

// Format implements Formatter.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	out, err := yaml.MarshalWithOptions(data,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// Table is data laid out for TableFormatter.
type Table struct {
	Headers []string
	Rows    [][]string
	Align   []tw.Align // optional, per column
}

// TableFormatter renders a Table with tablewriter. Anything else falls back
// to JSON.
type TableFormatter struct{}

// Format implements Formatter.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	t, ok := data.(Table)
	if !ok {
		return (&JSONFormatter{Indent: "  "}).Format(w, data)
	}

	config := tablewriter.Config{}
	if len(t.Align) > 0 {
		config.Header.Alignment = tw.CellAlignment{PerColumn: t.Align}
		config.Row.Alignment = tw.CellAlignment{PerColumn: t.Align}
	}
	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))

	headers := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = h
	}
	table.Header(headers...)

	for _, row := range t.Rows {
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = c
		}
		if err := table.Append(cells...); err != nil {
			return fmt.Errorf("appending row: %w", err)
		}
	}
	return table.Render()
}

// MatchTable lays out records with one column per displayed field,
// including the raw element lines.
func MatchTable(records []reconcile.MatchRecord) Table {
	t := Table{
		Headers: []string{
			"TLE Name", "Matched Name", "Score", "Object ID", "Epoch",
			"Country", "Category", "Purpose", "Orbit Class", "Mean Motion",
			"Inclination", "Apogee", "Perigee", "TLE Line 1", "TLE Line 2",
		},
		Align: []tw.Align{
			tw.AlignLeft, tw.AlignLeft, tw.AlignRight, tw.AlignLeft, tw.AlignLeft,
			tw.AlignLeft, tw.AlignLeft, tw.AlignLeft, tw.AlignLeft, tw.AlignRight,
			tw.AlignRight, tw.AlignRight, tw.AlignRight, tw.AlignLeft, tw.AlignLeft,
		},
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.TLEName, r.MatchedName, strconv.Itoa(r.Score), r.ObjectID, r.Epoch,
			r.Country, r.Category, r.Purpose, r.OrbitClass, r.MeanMotion,
			r.Inclination, r.Apogee, r.Perigee, r.Line1, r.Line2,
		})
	}
	return t
}

// PositionTable lays out current positions, one row per satellite.
func PositionTable(positions []propagation.SatellitePosition) Table {
	t := Table{
		Headers: []string{"Object ID", "Name", "Latitude", "Longitude", "Altitude (km)", "Trail Points"},
		Align: []tw.Align{
			tw.AlignLeft, tw.AlignLeft, tw.AlignRight, tw.AlignRight, tw.AlignRight, tw.AlignRight,
		},
	}
	for _, p := range positions {
		t.Rows = append(t.Rows, []string{
			p.Key,
			p.Name,
			strconv.FormatFloat(p.Position.Lat, 'f', 4, 64),
			strconv.FormatFloat(p.Position.Lon, 'f', 4, 64),
			strconv.FormatFloat(p.Position.AltKm, 'f', 1, 64),
			strconv.Itoa(len(p.Trail)),
		})
	}
	return t
}
