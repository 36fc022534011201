package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kansaiyets/Satellite-tracker/internal/config"
	"github.com/kansaiyets/Satellite-tracker/internal/fuzzy"
	"github.com/kansaiyets/Satellite-tracker/internal/reconcile"
	"github.com/kansaiyets/Satellite-tracker/internal/source"
)

// app carries state shared by all commands once configuration is loaded.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "satrecon",
		Short: "Reconcile satellite registry names with orbital element feeds",
		Long: `satrecon matches entries of the UCS satellite database to CelesTrak
orbital elements by fuzzy name comparison, rejects matches whose element
epoch predates the launch year, and prints or serves the joined records
together with current positions.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is ./satrecon.yaml or $HOME/satrecon.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Int("cutoff", reconcile.DefaultCutoff, "minimum match score (0-100)")
	flags.Int("workers", 0, "parallel lookups (default: number of CPUs)")
	flags.String("scorer", fuzzy.ScorerWeighted, "name similarity scorer: weighted, jaro_winkler")
	flags.String("catalog-file", "", "read the UCS registry from a local file instead of the network")
	flags.String("tle-file", "", "read orbital elements from a local file instead of the network")
	flags.String("cache-dir", "", "directory for downloaded source copies")

	mustBind(a.v, config.KeyConfigFile, flags.Lookup("config"))
	mustBind(a.v, config.KeyLogLevel, flags.Lookup("log-level"))
	mustBind(a.v, config.KeyCutoff, flags.Lookup("cutoff"))
	mustBind(a.v, config.KeyScorer, flags.Lookup("scorer"))
	mustBind(a.v, config.KeyCatalogFile, flags.Lookup("catalog-file"))
	mustBind(a.v, config.KeyTLEFile, flags.Lookup("tle-file"))
	mustBind(a.v, config.KeyWorkers, flags.Lookup("workers"))
	mustBind(a.v, config.KeyCacheDir, flags.Lookup("cache-dir"))

	root.AddCommand(
		newMatchCmd(a),
		newPositionsCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) load() error {
	bootstrap := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	cfg, err := config.Load(a.v, bootstrap)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	if cfg.File != "" {
		a.logger.Debug("using config file", "path", cfg.File)
	}
	return nil
}

// engine wires the configured sources into a reconciliation engine.
func (a *app) engine() (*reconcile.Engine, error) {
	scorer, err := fuzzy.ScorerByName(a.cfg.Reconcile.Scorer)
	if err != nil {
		return nil, err
	}

	src := a.cfg.Sources
	var catFetcher, orbFetcher source.Fetcher
	catName, orbName := src.CatalogURL, src.TLEURL

	if src.CatalogFile != "" {
		catFetcher, catName = source.NewFileFetcher(src.CatalogFile), src.CatalogFile
	} else {
		catFetcher = source.NewCachedFetcher(
			source.NewHTTPFetcher(src.CatalogURL, a.logger),
			source.NewCache(filepath.Join(src.CacheDir, "catalog"), "ucs", src.CacheMaxFiles),
			src.CacheMaxAge,
			a.logger,
		)
	}

	if src.TLEFile != "" {
		orbFetcher, orbName = source.NewFileFetcher(src.TLEFile), src.TLEFile
	} else {
		orbFetcher = source.NewCachedFetcher(
			source.NewHTTPFetcher(src.TLEURL, a.logger, src.TLEExtraURLs...),
			source.NewCache(filepath.Join(src.CacheDir, "tle"), "tle", src.CacheMaxFiles),
			src.CacheMaxAge,
			a.logger,
		)
	}

	return reconcile.NewEngine(
		source.NewCatalogSource(catFetcher, catName, a.logger),
		source.NewOrbitalSource(orbFetcher, orbName, a.logger),
		reconcile.Config{
			Cutoff:  a.cfg.Reconcile.Cutoff,
			Workers: a.cfg.Reconcile.Workers,
			Scorer:  scorer,
		},
		a.logger,
	), nil
}

// mustBind binds flag to key. Unchanged flags do not override defaults,
// environment or config file values.
func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}
