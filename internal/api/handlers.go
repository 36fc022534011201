package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kansaiyets/Satellite-tracker/internal/propagation"
	"github.com/kansaiyets/Satellite-tracker/internal/reconcile"
	"github.com/kansaiyets/Satellite-tracker/internal/report"
)

// Bounds on a single positions request.
const (
	maxTrailPoints = 120
	maxPositions   = 200000 // satellites * (trail + 1)
)

type matchesResponse struct {
	RunID       string                  `json:"run_id"`
	GeneratedAt time.Time               `json:"generated_at"`
	Cutoff      int                     `json:"cutoff"`
	Filter      report.Filter           `json:"filter"`
	Count       int                     `json:"count"`
	Stats       reconcile.Stats         `json:"stats"`
	Records     []reconcile.MatchRecord `json:"records"`
}

type positionsResponse struct {
	RunID     string                          `json:"run_id"`
	At        time.Time                       `json:"at"`
	Count     int                             `json:"count"`
	Omitted   int                             `json:"omitted"`
	Positions []propagation.SatellitePosition `json:"positions"`
}

type reconcileResponse struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	DurationMS  int64           `json:"duration_ms"`
	Count       int             `json:"count"`
	Stats       reconcile.Stats `json:"stats"`
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	res, ok := s.result(w)
	if !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records := filter.Apply(res.Records)
	writeJSON(w, http.StatusOK, matchesResponse{
		RunID:       res.RunID,
		GeneratedAt: res.GeneratedAt,
		Cutoff:      res.Cutoff,
		Filter:      filter,
		Count:       len(records),
		Stats:       res.Stats,
		Records:     records,
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	res, ok := s.result(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.OptionsFor(res.Records))
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	res, ok := s.result(w)
	if !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	cfg := s.config.Propagation
	if v := q.Get("trail"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxTrailPoints {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("trail must be an integer between 0 and %d", maxTrailPoints))
			return
		}
		cfg.TrailPoints = n
	}
	if v := q.Get("step"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < propagation.MinTrailStep {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("step must be a duration of at least %s such as 30s or 2m", propagation.MinTrailStep))
			return
		}
		cfg.TrailStep = d
	}
	at := time.Now().UTC()
	if v := q.Get("at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "at must be an RFC 3339 timestamp")
			return
		}
		at = t.UTC()
	}

	records := filter.Apply(res.Records)
	if n := len(records) * (cfg.TrailPoints + 1); n > maxPositions {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":         fmt.Sprintf("request would compute %d positions; narrow the filter or shorten the trail", n),
			"max_positions": maxPositions,
		})
		return
	}

	pool := propagation.NewWorkerPool(cfg, s.logger)
	positions, failed := pool.Positions(r.Context(), report.Targets(records), at)
	writeJSON(w, http.StatusOK, positionsResponse{
		RunID:     res.RunID,
		At:        at,
		Count:     len(positions),
		Omitted:   failed,
		Positions: positions,
	})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusNotImplemented, "reconciliation is not configured")
		return
	}

	res, err := s.store.Refresh(func() (*reconcile.Result, error) {
		return s.runner.Run(r.Context())
	})
	if err != nil {
		s.logger.Error("reconcile request failed", "component", "api", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, reconcile.ErrSourceUnavailable) {
			status = http.StatusBadGateway
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, reconcileResponse{
		RunID:       res.RunID,
		GeneratedAt: res.GeneratedAt,
		DurationMS:  res.Duration.Milliseconds(),
		Count:       len(res.Records),
		Stats:       res.Stats,
	})
}

// result returns the current result or writes 503.
func (s *Server) result(w http.ResponseWriter) (*reconcile.Result, bool) {
	res := s.store.Get()
	if res == nil {
		writeError(w, http.StatusServiceUnavailable, "no reconciliation result loaded yet")
		return nil, false
	}
	return res, true
}

func parseFilter(r *http.Request) (report.Filter, error) {
	q := r.URL.Query()
	f := report.Filter{
		Country:  q.Get("country"),
		Category: q.Get("category"),
	}
	if v := q.Get("min_score"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			return f, errors.New("min_score must be an integer between 0 and 100")
		}
		f.MinScore = n
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
