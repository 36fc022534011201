// Package propagation computes map positions of matched satellites with SGP4.
package propagation

import (
	"runtime"
	"time"
)

// Position is a satellite's sub-point and altitude at one instant.
type Position struct {
	Time  time.Time `json:"time" yaml:"time"`
	Lat   float64   `json:"lat" yaml:"lat"`
	Lon   float64   `json:"lon" yaml:"lon"`
	AltKm float64   `json:"alt_km" yaml:"alt_km"`
}

// Target identifies one set of elements to propagate.
type Target struct {
	Key   string // orbital identity, carried through to the output
	Name  string
	Line1 string
	Line2 string
}

// SatellitePosition is the propagated state of one Target. Trail holds the
// preceding positions, oldest first.
type SatellitePosition struct {
	Key      string     `json:"object_id" yaml:"object_id"`
	Name     string     `json:"name" yaml:"name"`
	Position Position   `json:"position" yaml:"position"`
	Trail    []Position `json:"trail,omitempty" yaml:"trail,omitempty"`
}

// Config controls batch propagation.
type Config struct {
	Workers     int           // worker pool size (default: runtime.NumCPU())
	TrailPoints int           // past positions per satellite; 0 disables trails
	TrailStep   time.Duration // spacing between trail points (default: 1m, minimum 1s)
}

func (c Config) withDefaults() Config {
	if c.Workers < 1 {
		c.Workers = runtime.NumCPU()
	}
	if c.TrailPoints < 0 {
		c.TrailPoints = 0
	}
	if c.TrailStep <= 0 {
		c.TrailStep = time.Minute
	}
	c.TrailStep = max(c.TrailStep, MinTrailStep)
	return c
}
