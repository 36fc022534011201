package propagation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/kansaiyets/Satellite-tracker/internal/transform"
)

// satellite.Propagate takes the Satellite by value, so SGP4 error codes raised
// during propagation never reach the caller. Failures are detected from the
// output instead: NaN/Inf or a radius no orbit can have.

// SGP4Propagator wraps go-satellite for one element set.
type SGP4Propagator struct {
	sat satellite.Satellite
}

// NewSGP4Propagator initializes SGP4 from element lines. The lines are
// validated first because go-satellite calls log.Fatal on malformed input.
func NewSGP4Propagator(line1, line2 string) (*SGP4Propagator, error) {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)
	if err := validateTLELines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid element lines: %w", err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed: code=%d %s", sat.Error, sat.ErrorStr)
	}
	return &SGP4Propagator{sat: sat}, nil
}

func validateTLELines(line1, line2 string) error {
	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if !strings.HasPrefix(line1, "1 ") {
		return fmt.Errorf("line1 must start with '1 ', got %q", line1[:2])
	}
	if !strings.HasPrefix(line2, "2 ") {
		return fmt.Errorf("line2 must start with '2 ', got %q", line2[:2])
	}
	return validateTLEFields(line1, line2)
}

// tleField is one numeric column as go-satellite's ParseTLE reads it.
type tleField struct {
	name  string
	line  int
	value func(line string) string
	isInt bool
}

func despace(s string) string { return strings.Replace(s, " ", "", 2) }

// tleFields mirrors the column slices and rewrites of satellite.ParseTLE.
var tleFields = []tleField{
	{name: "catalog number", line: 1, isInt: true, value: func(l string) string { return strings.TrimSpace(l[2:7]) }},
	{name: "epoch year", line: 1, isInt: true, value: func(l string) string { return l[18:20] }},
	{name: "epoch day", line: 1, value: func(l string) string { return l[20:32] }},
	{name: "mean motion first derivative", line: 1, value: func(l string) string { return despace(l[33:43]) }},
	{name: "mean motion second derivative", line: 1, value: func(l string) string { return despace(l[44:45] + "." + l[45:50] + "e" + l[50:52]) }},
	{name: "bstar", line: 1, value: func(l string) string { return despace(l[53:54] + "." + l[54:59] + "e" + l[59:61]) }},
	{name: "inclination", line: 2, value: func(l string) string { return despace(l[8:16]) }},
	{name: "right ascension", line: 2, value: func(l string) string { return despace(l[17:25]) }},
	{name: "eccentricity", line: 2, value: func(l string) string { return "." + l[26:33] }},
	{name: "argument of perigee", line: 2, value: func(l string) string { return despace(l[34:42]) }},
	{name: "mean anomaly", line: 2, value: func(l string) string { return despace(l[43:51]) }},
	{name: "mean motion", line: 2, value: func(l string) string { return despace(l[52:63]) }},
}

// validateTLEFields checks every column go-satellite parses, since its
// parser calls log.Fatal on the first one that fails.
func validateTLEFields(line1, line2 string) error {
	for _, f := range tleFields {
		line := line1
		if f.line == 2 {
			line = line2
		}
		s := f.value(line)
		var err error
		if f.isInt {
			_, err = strconv.ParseInt(s, 10, 0)
		} else {
			_, err = strconv.ParseFloat(s, 64)
		}
		if err != nil {
			return fmt.Errorf("line%d %s %q is not a number", f.line, f.name, s)
		}
	}
	return nil
}

// MinTrailStep is the finest trail spacing. go-satellite propagates to
// whole seconds.
const MinTrailStep = time.Second

// TEME returns the position at t in the TEME frame (km). t is truncated to
// the whole second.
func (p *SGP4Propagator) TEME(t time.Time) (transform.PositionTEME, error) {
	t = t.UTC().Truncate(time.Second)
	pos, _ := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) ||
		math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) || math.IsInf(pos.Z, 0) {
		return transform.PositionTEME{}, fmt.Errorf("sgp4 propagation failed at %s: output is NaN/Inf", t.Format(time.RFC3339))
	}

	return transform.PositionTEME{X: pos.X, Y: pos.Y, Z: pos.Z}, nil
}

// At returns the geodetic position at t, truncated to the whole second.
func (p *SGP4Propagator) At(t time.Time) (Position, error) {
	t = t.UTC().Truncate(time.Second)
	teme, err := p.TEME(t)
	if err != nil {
		return Position{}, err
	}

	ecef := transform.TEMEToECEF(teme, transform.GMST(t))
	if !transform.ValidateECEF(ecef) {
		mag := math.Sqrt(ecef.X*ecef.X+ecef.Y*ecef.Y+ecef.Z*ecef.Z) / 1000.0
		return Position{}, fmt.Errorf("sgp4 propagation failed at %s: unreasonable position magnitude %.1f km", t.Format(time.RFC3339), mag)
	}

	g := transform.ECEFToGeodetic(ecef)
	return Position{Time: t, Lat: g.LatDeg, Lon: g.LonDeg, AltKm: g.AltKm}, nil
}

// Trail returns the n positions before t spaced by step, oldest first.
func (p *SGP4Propagator) Trail(t time.Time, n int, step time.Duration) ([]Position, error) {
	if n <= 0 {
		return nil, nil
	}
	if step < MinTrailStep {
		return nil, fmt.Errorf("trail step %s is below %s", step, MinTrailStep)
	}
	trail := make([]Position, 0, n)
	for i := n; i >= 1; i-- {
		pos, err := p.At(t.Add(-time.Duration(i) * step))
		if err != nil {
			return nil, err
		}
		trail = append(trail, pos)
	}
	return trail, nil
}

// Propagate computes the position of the element set at t.
func Propagate(line1, line2 string, at time.Time) (Position, error) {
	p, err := NewSGP4Propagator(line1, line2)
	if err != nil {
		return Position{}, err
	}
	return p.At(at)
}

// Trail computes n positions of the element set before at, oldest first.
func Trail(line1, line2 string, at time.Time, n int, step time.Duration) ([]Position, error) {
	p, err := NewSGP4Propagator(line1, line2)
	if err != nil {
		return nil, err
	}
	return p.Trail(at, n, step)
}
