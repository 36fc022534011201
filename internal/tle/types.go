package tle

import (
	"time"

	"github.com/kansaiyets/Satellite-tracker/internal/temporal"
)

// Entry represents a single satellite's orbital element record.
// Secondary orbital parameters are carried through as the feed wrote them.
type Entry struct {
	Name        string
	ObjectID    string
	Epoch       string
	Line1       string
	Line2       string
	OrbitClass  string
	MeanMotion  string
	Inclination string
	Apoapsis    string
	Periapsis   string
}

// Key returns the identity of the entry: the object id when present,
// otherwise the name.
func (e Entry) Key() string {
	if e.ObjectID != "" {
		return e.ObjectID
	}
	return e.Name
}

// Year returns the observation year of the entry. The epoch string is tried
// first; the two-digit year field of element line 1 is the fallback.
func (e Entry) Year() (int, bool) {
	if y, ok := temporal.EpochYear(e.Epoch); ok {
		return y, true
	}
	return temporal.ElementLineYear(e.Line1)
}

// Format identifies the physical form a dataset was read from.
type Format string

const (
	FormatCSV       Format = "csv"
	FormatThreeLine Format = "3le"
)

// Dataset represents a complete set of orbital elements from a source.
type Dataset struct {
	Source    string
	Format    Format
	FetchedAt time.Time
	Entries   []Entry
	Skipped   int // records dropped while parsing
}
