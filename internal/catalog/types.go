package catalog

import "time"

// Entry is one row of the UCS satellite registry.
// Fields hold the raw source text; normalization happens downstream.
type Entry struct {
	Row          int // position in the source collection
	Name         string
	Country      string
	Users        string
	Purpose      string
	LaunchYear   int
	LaunchYearOK bool
}

// Dataset is a parsed registry snapshot.
type Dataset struct {
	Source    string
	FetchedAt time.Time
	Entries   []Entry
	Skipped   int // rows dropped because they could not be read at all
}
