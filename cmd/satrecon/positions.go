package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kansaiyets/Satellite-tracker/internal/config"
	"github.com/kansaiyets/Satellite-tracker/internal/propagation"
	"github.com/kansaiyets/Satellite-tracker/internal/report"
)

type positionsOutput struct {
	RunID     string                          `json:"run_id" yaml:"run_id"`
	At        time.Time                       `json:"at" yaml:"at"`
	Count     int                             `json:"count" yaml:"count"`
	Omitted   int                             `json:"omitted" yaml:"omitted"`
	Positions []propagation.SatellitePosition `json:"positions" yaml:"positions"`
}

func newPositionsCmd(a *app) *cobra.Command {
	var (
		d  displayFlags
		at string
	)

	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Reconcile both sources and print current positions of the matches",
		Long: `Positions runs a reconciliation pass, applies the display filters and
propagates every remaining record with SGP4. Records whose elements fail to
propagate are left out and counted.`,
		Example: `  satrecon positions --country Japan
  satrecon positions --trail 10 --step 30s -o json
  satrecon positions --at 2024-04-10T12:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := report.ParseFormat(d.format)
			if err != nil {
				return err
			}
			if step, _ := cmd.Flags().GetDuration("step"); step < propagation.MinTrailStep {
				return fmt.Errorf("invalid --step %s: must be at least %s", step, propagation.MinTrailStep)
			}
			when := time.Now().UTC()
			if at != "" {
				if when, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
			}

			res, err := a.run(cmd)
			if err != nil {
				return err
			}
			records := d.filter.Apply(res.Records)

			pool := propagation.NewWorkerPool(propagation.Config{
				Workers:     a.cfg.Propagation.Workers,
				TrailPoints: a.cfg.Propagation.TrailPoints,
				TrailStep:   a.cfg.Propagation.TrailStep,
			}, a.logger)
			positions, failed := pool.Positions(cmd.Context(), report.Targets(records), when)
			if failed > 0 {
				a.logger.Warn("some records could not be propagated", "omitted", failed, "count", len(positions))
			}

			var out any = positionsOutput{
				RunID:     res.RunID,
				At:        when,
				Count:     len(positions),
				Omitted:   failed,
				Positions: positions,
			}
			if format == report.FormatTable {
				out = report.PositionTable(positions)
			}
			return report.NewFormatter(format).Format(cmd.OutOrStdout(), out)
		},
	}
	d.register(cmd)
	cmd.Flags().StringVar(&at, "at", "", "propagate to this RFC 3339 time instead of now")
	cmd.Flags().Int("trail", 0, "number of past positions to include per satellite")
	cmd.Flags().Duration("step", time.Minute, "spacing between trail positions")
	mustBind(a.v, config.KeyPropTrailPoints, cmd.Flags().Lookup("trail"))
	mustBind(a.v, config.KeyPropTrailStep, cmd.Flags().Lookup("step"))
	return cmd
}
