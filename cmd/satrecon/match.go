package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kansaiyets/Satellite-tracker/internal/reconcile"
	"github.com/kansaiyets/Satellite-tracker/internal/report"
)

// displayFlags are the pass-through filters and output format shared by the
// match and positions commands.
type displayFlags struct {
	filter report.Filter
	format string
}

func (d *displayFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.filter.Country, "country", "", "only show records whose operator country equals this value")
	cmd.Flags().StringVar(&d.filter.Category, "category", "", "only show records whose normalized operator category equals this value")
	cmd.Flags().IntVar(&d.filter.MinScore, "min-score", 0, "only show records scoring at least this much")
	cmd.Flags().StringVarP(&d.format, "format", "o", string(report.FormatTable), "output format: table, json, yaml")
}

type matchOutput struct {
	RunID       string                  `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time               `json:"generated_at" yaml:"generated_at"`
	Cutoff      int                     `json:"cutoff" yaml:"cutoff"`
	Count       int                     `json:"count" yaml:"count"`
	Stats       reconcile.Stats         `json:"stats" yaml:"stats"`
	Records     []reconcile.MatchRecord `json:"records" yaml:"records"`
}

func newMatchCmd(a *app) *cobra.Command {
	var d displayFlags

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Reconcile both sources and print the matched records",
		Example: `  satrecon match
  satrecon match --country USA --min-score 95 -o json
  satrecon match --catalog-file ucs.txt --tle-file active.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := report.ParseFormat(d.format)
			if err != nil {
				return err
			}

			res, err := a.run(cmd)
			if err != nil {
				return err
			}
			records := d.filter.Apply(res.Records)

			var out any = matchOutput{
				RunID:       res.RunID,
				GeneratedAt: res.GeneratedAt,
				Cutoff:      res.Cutoff,
				Count:       len(records),
				Stats:       res.Stats,
				Records:     records,
			}
			if format == report.FormatTable {
				out = report.MatchTable(records)
			}
			return report.NewFormatter(format).Format(cmd.OutOrStdout(), out)
		},
	}
	d.register(cmd)
	return cmd
}

// run performs one reconciliation pass with the configured sources.
func (a *app) run(cmd *cobra.Command) (*reconcile.Result, error) {
	engine, err := a.engine()
	if err != nil {
		return nil, err
	}
	res, err := engine.Run(cmd.Context())
	if err != nil {
		a.logger.Error("reconciliation failed", "error", err)
		return nil, err
	}
	return res, nil
}
