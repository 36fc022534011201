// Package reconcile joins the UCS registry with the orbital element feed.
//
// A pass builds the alias index once over the whole catalog, then resolves
// each orbital entry independently against it: fuzzy match, alias owner
// lookup, launch-year plausibility. Each orbital identity yields at most one
// MatchRecord and records come out in orbital input order.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kansaiyets/Satellite-tracker/internal/catalog"
	"github.com/kansaiyets/Satellite-tracker/internal/fuzzy"
	"github.com/kansaiyets/Satellite-tracker/internal/index"
	"github.com/kansaiyets/Satellite-tracker/internal/metrics"
	"github.com/kansaiyets/Satellite-tracker/internal/names"
	"github.com/kansaiyets/Satellite-tracker/internal/temporal"
	"github.com/kansaiyets/Satellite-tracker/internal/tle"
)

// DefaultCutoff is the minimum match score accepted when none is configured.
const DefaultCutoff = 90

// CatalogSource supplies the UCS registry.
type CatalogSource interface {
	FetchCatalog(ctx context.Context) (*catalog.Dataset, error)
}

// OrbitalSource supplies the orbital element feed.
type OrbitalSource interface {
	FetchOrbitalElements(ctx context.Context) (*tle.Dataset, error)
}

// Config holds reconciliation settings.
type Config struct {
	Cutoff  int          // minimum accepted score, 0-100
	Workers int          // parallel lookups; 1 runs sequentially
	Scorer  fuzzy.Scorer // nil selects fuzzy.WeightedRatio
}

// Engine runs reconciliation passes.
type Engine struct {
	catalog CatalogSource
	orbital OrbitalSource
	matcher *fuzzy.Matcher
	config  Config
	logger  *slog.Logger
}

// NewEngine creates an Engine reading from the given sources. Either source
// may be nil when only Reconcile is used. A nil logger logs to slog.Default().
func NewEngine(cat CatalogSource, orb OrbitalSource, config Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Workers < 1 {
		config.Workers = runtime.NumCPU()
	}
	config.Cutoff = min(max(config.Cutoff, 0), 100)
	return &Engine{
		catalog: cat,
		orbital: orb,
		matcher: fuzzy.NewMatcher(config.Scorer),
		config:  config,
		logger:  logger,
	}
}

// Run fetches both collections and reconciles them. Failure to load either
// collection aborts the pass with a *FetchError.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.catalog == nil || e.orbital == nil {
		return nil, fmt.Errorf("engine has no sources configured")
	}

	cat, err := e.catalog.FetchCatalog(ctx)
	if err == nil && len(cat.Entries) == 0 {
		err = ErrEmptyCollection
	}
	if err != nil {
		metrics.IncFetchFailures("catalog")
		return nil, &FetchError{Source: "catalog", Err: err}
	}

	orb, err := e.orbital.FetchOrbitalElements(ctx)
	if err == nil && len(orb.Entries) == 0 {
		err = ErrEmptyCollection
	}
	if err != nil {
		metrics.IncFetchFailures("orbital")
		return nil, &FetchError{Source: "orbital", Err: err}
	}

	res, err := e.Reconcile(ctx, cat.Entries, orb.Entries)
	if err != nil {
		return nil, err
	}

	res.Stats.CatalogSkipped += cat.Skipped
	res.Stats.OrbitalSkipped += orb.Skipped
	metrics.AddSkippedRows("catalog", cat.Skipped)
	metrics.AddSkippedRows("orbital", orb.Skipped)

	return res, nil
}

// Reconcile matches every orbital entry against the catalog. Malformed rows
// are skipped and counted; only context cancellation returns an error.
//
// The catalog slice is referenced, not copied, and must not be modified
// while the pass runs.
func (e *Engine) Reconcile(ctx context.Context, entries []catalog.Entry, orbital []tle.Entry) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	idx := index.Build(entries)
	is := idx.Stats()

	e.logger.Debug("candidate index built",
		"run_id", runID,
		"catalog_entries", is.Entries,
		"aliases", is.Aliases,
		"collisions", is.Collisions,
		"skipped", is.Skipped,
	)

	outcomes := make([]Outcome, len(orbital))
	records := make([]MatchRecord, len(orbital))

	// Repeated identities are resolved once, at their first position.
	seen := make(map[string]struct{}, len(orbital))
	var todo []int
	for i, o := range orbital {
		key := o.Key()
		if key != "" {
			if _, dup := seen[key]; dup {
				outcomes[i] = OutcomeDuplicate
				continue
			}
			seen[key] = struct{}{}
		}
		todo = append(todo, i)
	}

	if err := e.evaluateAll(ctx, idx, orbital, todo, records, outcomes); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Cutoff:      e.config.Cutoff,
		Stats: Stats{
			CatalogEntries:  is.Entries,
			CatalogSkipped:  is.Skipped,
			Aliases:         is.Aliases,
			AliasCollisions: is.Collisions,
			OrbitalEntries:  len(orbital),
		},
	}
	res.Stats.Canonicalized = is.Canonicalize
	res.Stats.IndexLookups = idx.Stats().Resolves
	for i, o := range outcomes {
		res.Stats.count(o)
		if o == OutcomeAccepted {
			res.Records = append(res.Records, records[i])
		}
	}
	res.Duration = time.Since(start)

	metrics.RecordReconcile(res.Duration, len(res.Records))
	metrics.AddOutcomes(string(OutcomeAccepted), res.Stats.Accepted)
	metrics.AddOutcomes(string(OutcomeNoCandidates), res.Stats.NoCandidates)
	metrics.AddOutcomes(string(OutcomeRejectedScore), res.Stats.RejectedScore)
	metrics.AddOutcomes(string(OutcomeRejectedTemporal), res.Stats.RejectedTemporal)
	metrics.AddOutcomes(string(OutcomeDuplicate), res.Stats.Duplicates)
	metrics.AddSkippedRows("catalog", is.Skipped)

	e.logger.Info("reconciliation complete",
		"run_id", runID,
		"orbital_entries", len(orbital),
		"matched", res.Stats.Accepted,
		"no_candidates", res.Stats.NoCandidates,
		"rejected_score", res.Stats.RejectedScore,
		"rejected_temporal", res.Stats.RejectedTemporal,
		"duplicates", res.Stats.Duplicates,
		"cutoff", e.config.Cutoff,
		"duration_ms", res.Duration.Milliseconds(),
	)

	return res, nil
}

// evaluateAll resolves the orbital entries at positions todo. Workers write
// into the slot of the entry they resolved, so the result order never
// depends on completion order.
func (e *Engine) evaluateAll(ctx context.Context, idx *index.Index, orbital []tle.Entry, todo []int, records []MatchRecord, outcomes []Outcome) error {
	if e.config.Workers <= 1 || len(todo) < 2 {
		for _, i := range todo {
			if err := ctx.Err(); err != nil {
				return err
			}
			records[i], outcomes[i] = e.evaluate(idx, orbital[i])
		}
		return nil
	}

	jobs := make(chan int, e.config.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < e.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				records[i], outcomes[i] = e.evaluate(idx, orbital[i])
			}
		}()
	}

	var err error
feed:
	for _, i := range todo {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return err
}

// evaluate walks one orbital entry through match, ownership and launch-year
// checks.
func (e *Engine) evaluate(idx *index.Index, o tle.Entry) (MatchRecord, Outcome) {
	candidates := idx.Candidates()
	if o.Name == "" || candidates.Len() == 0 {
		return MatchRecord{}, OutcomeNoCandidates
	}

	m, ok := e.matcher.BestMatch(o.Name, candidates, e.config.Cutoff)
	if !ok {
		return MatchRecord{}, OutcomeRejectedScore
	}

	owner, ok := idx.Resolve(m.Alias)
	if !ok {
		// Every candidate comes from the index; reaching this is a bug.
		e.logger.Error("matched alias has no owner", "alias", m.Alias)
		return MatchRecord{}, OutcomeRejectedScore
	}

	tleYear, tleOK := o.Year()
	if !temporal.IsPlausible(tleYear, tleOK, owner.LaunchYear, owner.LaunchYearOK) {
		e.logger.Debug("match rejected: observed before launch",
			"tle_name", o.Name,
			"alias", m.Alias,
			"tle_year", tleYear,
			"launch_year", owner.LaunchYear,
		)
		return MatchRecord{}, OutcomeRejectedTemporal
	}

	return MatchRecord{
		TLEName:     o.Name,
		MatchedName: m.Alias,
		CatalogName: owner.Name,
		Score:       m.Score,
		ObjectID:    o.ObjectID,
		Epoch:       o.Epoch,
		Country:     names.NormalizeCountry(owner.Country),
		Category:    names.NormalizeCategory(owner.Users),
		Purpose:     owner.Purpose,
		OrbitClass:  o.OrbitClass,
		MeanMotion:  o.MeanMotion,
		Inclination: o.Inclination,
		Apogee:      o.Apoapsis,
		Perigee:     o.Periapsis,
		Line1:       o.Line1,
		Line2:       o.Line2,
		CatalogRow:  owner.Row,
	}, OutcomeAccepted
}

// Reconcile runs a single sequential pass with the default scorer.
func Reconcile(ctx context.Context, entries []catalog.Entry, orbital []tle.Entry, cutoff int, logger *slog.Logger) (*Result, error) {
	return NewEngine(nil, nil, Config{Cutoff: cutoff, Workers: 1}, logger).Reconcile(ctx, entries, orbital)
}
