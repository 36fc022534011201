package propagation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kansaiyets/Satellite-tracker/internal/metrics"
)

// WorkerPool propagates batches of targets on a fixed number of goroutines.
type WorkerPool struct {
	config Config
	logger *slog.Logger
}

// NewWorkerPool creates a WorkerPool.
func NewWorkerPool(config Config, logger *slog.Logger) *WorkerPool {
	return &WorkerPool{
		config: config.withDefaults(),
		logger: logger,
	}
}

type propagateResult struct {
	position SatellitePosition
	err      error
}

// Positions propagates every target to at. Targets that fail are logged,
// counted in failed and omitted; the rest keep their input order. A
// cancelled context stops the batch early and returns what finished.
func (wp *WorkerPool) Positions(ctx context.Context, targets []Target, at time.Time) (positions []SatellitePosition, failed int) {
	if len(targets) == 0 {
		return nil, 0
	}

	start := time.Now()
	results := make([]propagateResult, len(targets))
	done := make([]bool, len(targets))

	jobs := make(chan int, wp.config.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < wp.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = wp.propagateSingle(targets[i], at)
				done[i] = true
			}
		}()
	}

	for i := range targets {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	positions = make([]SatellitePosition, 0, len(targets))
	for i, r := range results {
		if !done[i] {
			continue
		}
		if r.err != nil {
			failed++
			wp.logger.Warn("propagation failed",
				"object_id", targets[i].Key,
				"name", targets[i].Name,
				"error", r.err,
			)
			continue
		}
		positions = append(positions, r.position)
	}

	duration := time.Since(start)
	metrics.RecordPropagation(duration, len(positions), failed)
	wp.logger.Debug("propagation complete",
		"success", len(positions),
		"errors", failed,
		"duration_ms", duration.Milliseconds(),
	)

	return positions, failed
}

func (wp *WorkerPool) propagateSingle(t Target, at time.Time) propagateResult {
	prop, err := NewSGP4Propagator(t.Line1, t.Line2)
	if err != nil {
		return propagateResult{err: err}
	}

	pos, err := prop.At(at)
	if err != nil {
		return propagateResult{err: err}
	}

	trail, err := prop.Trail(at, wp.config.TrailPoints, wp.config.TrailStep)
	if err != nil {
		return propagateResult{err: err}
	}

	return propagateResult{
		position: SatellitePosition{
			Key:      t.Key,
			Name:     t.Name,
			Position: pos,
			Trail:    trail,
		},
	}
}
