package propagation

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"
)

// Real ISS and Starlink elements; they propagate reasonably near April 2024.
const (
	issLine1      = "1 25544U 98067A   24100.50000000  .00016717  00000-0  10270-3 0  9005"
	issLine2      = "2 25544  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    09"
	starlinkLine1 = "1 44713U 19074A   24100.50000000  .00001000  00000-0  10000-4 0  9995"
	starlinkLine2 = "2 44713  53.0000 200.0000 0001500  90.0000 270.0000 15.06000000    05"
)

// Malformed numeric columns at full line length.
var (
	badInclinationLine2 = issLine2[:8] + " 51.64XX" + issLine2[16:]
	badBstarLine1       = issLine1[:53] + " 1X270-3" + issLine1[61:]
	badEpochLine1       = issLine1[:18] + "2A" + issLine1[20:]
)

// Highly elliptical orbit (e=0.7, 3.8 day period) at apogee on its epoch.
const (
	heoLine1 = "1 99999U 24001A   24100.50000000  .00000000  00000-0  00000-0 0  9990"
	heoLine2 = "2 99999  28.5000 100.0000 7000000 270.0000 180.0000  0.37800000    00"
)

var (
	testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	target     = time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
)

func TestPropagate(t *testing.T) {
	pos, err := Propagate(issLine1, issLine2, target)
	if err != nil {
		t.Fatalf("Propagate failed: %v", err)
	}

	if !pos.Time.Equal(target) {
		t.Errorf("time = %v, want %v", pos.Time, target)
	}
	// Inclination bounds the sub-point latitude, plus the geodetic offset.
	if math.Abs(pos.Lat) > 52.0 {
		t.Errorf("lat = %.2f, exceeds inclination 51.64 by more than the geodetic offset", pos.Lat)
	}
	if pos.Lon < -180 || pos.Lon > 180 {
		t.Errorf("lon = %.2f out of range", pos.Lon)
	}
	// Mean motion 15.5 rev/day puts the ISS near 400 km.
	if pos.AltKm < 300 || pos.AltKm > 500 {
		t.Errorf("alt = %.1f km, expected ~400 km", pos.AltKm)
	}
}

func TestPropagateTEMEMagnitude(t *testing.T) {
	prop, err := NewSGP4Propagator(issLine1, issLine2)
	if err != nil {
		t.Fatalf("NewSGP4Propagator failed: %v", err)
	}
	teme, err := prop.TEME(target)
	if err != nil {
		t.Fatalf("TEME failed: %v", err)
	}
	mag := math.Sqrt(teme.X*teme.X + teme.Y*teme.Y + teme.Z*teme.Z)
	if mag < 6500 || mag > 7000 {
		t.Errorf("TEME position magnitude = %.1f km, expected ~6780 km", mag)
	}
}

func TestPropagateInvalidTLE(t *testing.T) {
	tests := []struct {
		name         string
		line1, line2 string
	}{
		{"garbage", "invalid line 1", "invalid line 2"},
		{"swapped", issLine2, issLine1},
		{"empty", "", ""},
		{"non-numeric inclination", issLine1, badInclinationLine2},
		{"non-numeric bstar", badBstarLine1, issLine2},
		{"non-numeric epoch year", badEpochLine1, issLine2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Propagate(tt.line1, tt.line2, target); err == nil {
				t.Fatal("expected error for invalid element lines, got nil")
			}
		})
	}
}

func TestPropagateHighlyElliptical(t *testing.T) {
	pos, err := Propagate(heoLine1, heoLine2, target)
	if err != nil {
		t.Fatalf("Propagate failed: %v", err)
	}
	// Apogee radius a(1+e) is about 137000 km.
	if pos.AltKm < 100000 || pos.AltKm > 150000 {
		t.Errorf("alt = %.0f km, expected near apogee ~131000 km", pos.AltKm)
	}
}

func TestPropagateTruncatesToSecond(t *testing.T) {
	pos, err := Propagate(issLine1, issLine2, target.Add(750*time.Millisecond))
	if err != nil {
		t.Fatalf("Propagate failed: %v", err)
	}
	if !pos.Time.Equal(target) {
		t.Errorf("time = %v, want %v", pos.Time, target)
	}
}

func TestTrail(t *testing.T) {
	step := 2 * time.Minute
	trail, err := Trail(issLine1, issLine2, target, 5, step)
	if err != nil {
		t.Fatalf("Trail failed: %v", err)
	}
	if len(trail) != 5 {
		t.Fatalf("got %d trail points, want 5", len(trail))
	}
	for i, p := range trail {
		want := target.Add(-time.Duration(5-i) * step)
		if !p.Time.Equal(want) {
			t.Errorf("point %d: time = %v, want %v", i, p.Time, want)
		}
	}

	none, err := Trail(issLine1, issLine2, target, 0, step)
	if err != nil || none != nil {
		t.Errorf("zero-length trail = %v, %v", none, err)
	}

	if _, err := Trail(issLine1, issLine2, target, 3, 500*time.Millisecond); err == nil {
		t.Error("expected error for sub-second step, got nil")
	}
}

func TestWorkerPoolPositions(t *testing.T) {
	pool := NewWorkerPool(Config{Workers: 4, TrailPoints: 3, TrailStep: time.Minute}, testLogger)

	targets := []Target{
		{Key: "1998-067A", Name: "ISS (ZARYA)", Line1: issLine1, Line2: issLine2},
		{Key: "broken", Name: "BROKEN", Line1: "1 bad", Line2: "2 bad"},
		{Key: "bad-field", Name: "BAD FIELD", Line1: issLine1, Line2: badInclinationLine2},
		{Key: "2019-074A", Name: "STARLINK-1007", Line1: starlinkLine1, Line2: starlinkLine2},
		{Key: "2024-001A", Name: "HEO", Line1: heoLine1, Line2: heoLine2},
	}

	positions, failed := pool.Positions(context.Background(), targets, target)
	if failed != 2 {
		t.Errorf("failed = %d, want 2", failed)
	}
	if len(positions) != 3 {
		t.Fatalf("got %d positions, want 3", len(positions))
	}
	if positions[0].Key != "1998-067A" || positions[1].Key != "2019-074A" || positions[2].Key != "2024-001A" {
		t.Errorf("order = %s, %s, %s; want input order", positions[0].Key, positions[1].Key, positions[2].Key)
	}
	for _, p := range positions {
		if len(p.Trail) != 3 {
			t.Errorf("%s: trail length %d, want 3", p.Key, len(p.Trail))
		}
	}
}

func TestWorkerPoolSubSecondStep(t *testing.T) {
	pool := NewWorkerPool(Config{Workers: 1, TrailPoints: 2, TrailStep: 200 * time.Millisecond}, testLogger)
	positions, failed := pool.Positions(context.Background(), []Target{{Key: "ISS", Line1: issLine1, Line2: issLine2}}, target)
	if failed != 0 || len(positions) != 1 {
		t.Fatalf("got %d positions, %d failed", len(positions), failed)
	}
	trail := positions[0].Trail
	if got := trail[1].Time.Sub(trail[0].Time); got != MinTrailStep {
		t.Errorf("trail spacing = %v, want %v", got, MinTrailStep)
	}
}

func TestWorkerPoolEmpty(t *testing.T) {
	pool := NewWorkerPool(Config{}, testLogger)
	positions, failed := pool.Positions(context.Background(), nil, target)
	if positions != nil || failed != 0 {
		t.Errorf("got %v, %d for empty batch", positions, failed)
	}
}

func TestWorkerPoolCancellation(t *testing.T) {
	pool := NewWorkerPool(Config{Workers: 2}, testLogger)

	targets := make([]Target, 100)
	for i := range targets {
		targets[i] = Target{Key: "ISS", Line1: issLine1, Line2: issLine2}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	positions, failed := pool.Positions(ctx, targets, target)
	if len(positions) != 0 || failed != 0 {
		t.Errorf("expected nothing with cancelled context, got %d positions, %d failed", len(positions), failed)
	}
}

func BenchmarkPositions1000(b *testing.B) {
	targets := make([]Target, 1000)
	for i := range targets {
		targets[i] = Target{Key: "ISS", Line1: issLine1, Line2: issLine2}
	}
	pool := NewWorkerPool(Config{Workers: 4}, testLogger)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Positions(ctx, targets, target)
	}
}
