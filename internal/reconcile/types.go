package reconcile

import "time"

// Outcome is the terminal state of one orbital entry in a pass.
type Outcome string

const (
	OutcomeNoCandidates     Outcome = "no_candidates"
	OutcomeAccepted         Outcome = "accepted"
	OutcomeRejectedScore    Outcome = "rejected_score"
	OutcomeRejectedTemporal Outcome = "rejected_temporal"
	OutcomeDuplicate        Outcome = "duplicate"
)

// MatchRecord joins one orbital entry with the catalog entry it matched.
type MatchRecord struct {
	TLEName     string `json:"tle_name" yaml:"tle_name"`
	MatchedName string `json:"matched_name" yaml:"matched_name"`
	CatalogName string `json:"catalog_name" yaml:"catalog_name"`
	Score       int    `json:"match_score" yaml:"match_score"`
	ObjectID    string `json:"object_id" yaml:"object_id"`
	Epoch       string `json:"epoch" yaml:"epoch"`
	Country     string `json:"country" yaml:"country"`
	Category    string `json:"category" yaml:"category"`
	Purpose     string `json:"purpose" yaml:"purpose"`
	OrbitClass  string `json:"orbit_class" yaml:"orbit_class"`
	MeanMotion  string `json:"mean_motion" yaml:"mean_motion"`
	Inclination string `json:"inclination" yaml:"inclination"`
	Apogee      string `json:"apogee" yaml:"apogee"`
	Perigee     string `json:"perigee" yaml:"perigee"`
	Line1       string `json:"tle_line1" yaml:"tle_line1"`
	Line2       string `json:"tle_line2" yaml:"tle_line2"`
	CatalogRow  int    `json:"catalog_row" yaml:"catalog_row"`
}

// Stats summarizes a pass. Counts of orbital outcomes add up to
// OrbitalEntries.
type Stats struct {
	CatalogEntries   int `json:"catalog_entries" yaml:"catalog_entries"`
	CatalogSkipped   int `json:"catalog_skipped" yaml:"catalog_skipped"`
	Aliases          int `json:"aliases" yaml:"aliases"`
	AliasCollisions  int `json:"alias_collisions" yaml:"alias_collisions"`
	OrbitalEntries   int `json:"orbital_entries" yaml:"orbital_entries"`
	OrbitalSkipped   int `json:"orbital_skipped" yaml:"orbital_skipped"`
	Accepted         int `json:"accepted" yaml:"accepted"`
	NoCandidates     int `json:"no_candidates" yaml:"no_candidates"`
	RejectedScore    int `json:"rejected_score" yaml:"rejected_score"`
	RejectedTemporal int `json:"rejected_temporal" yaml:"rejected_temporal"`
	Duplicates       int `json:"duplicates" yaml:"duplicates"`
	Canonicalized    int `json:"canonicalized" yaml:"canonicalized"`
	IndexLookups     int `json:"index_lookups" yaml:"index_lookups"`
}

// Skipped is the total number of rows dropped as malformed.
func (s Stats) Skipped() int {
	return s.CatalogSkipped + s.OrbitalSkipped
}

func (s *Stats) count(o Outcome) {
	switch o {
	case OutcomeAccepted:
		s.Accepted++
	case OutcomeNoCandidates:
		s.NoCandidates++
	case OutcomeRejectedScore:
		s.RejectedScore++
	case OutcomeRejectedTemporal:
		s.RejectedTemporal++
	case OutcomeDuplicate:
		s.Duplicates++
	}
}

// Result is the output of one reconciliation pass.
type Result struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Duration    time.Duration `json:"duration_ns" yaml:"duration_ns"`
	Cutoff      int           `json:"cutoff" yaml:"cutoff"`
	Records     []MatchRecord `json:"records" yaml:"records"`
	Stats       Stats         `json:"stats" yaml:"stats"`
}
