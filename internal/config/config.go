// Package config loads satrecon settings from flags, environment, .env files
// and an optional YAML file, in that order of precedence.
//
// Every key can be set through an environment variable named after it with
// a SATRECON_ prefix, dots replaced by underscores: reconcile.cutoff is read
// from SATRECON_RECONCILE_CUTOFF. Invalid values are logged and replaced by
// their defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kansaiyets/Satellite-tracker/internal/auth"
	"github.com/kansaiyets/Satellite-tracker/internal/fuzzy"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "SATRECON"

// Keys.
const (
	KeyConfigFile = "config"
	KeyLogLevel   = "log.level"

	KeyCutoff  = "reconcile.cutoff"
	KeyWorkers = "reconcile.workers"
	KeyScorer  = "reconcile.scorer"

	KeyCatalogURL   = "catalog.url"
	KeyCatalogFile  = "catalog.file"
	KeyTLEURL       = "tle.url"
	KeyTLEExtraURLs = "tle.extra_urls"
	KeyTLEFile      = "tle.file"

	KeyCacheDir      = "cache.dir"
	KeyCacheMaxAge   = "cache.max_age"
	KeyCacheMaxFiles = "cache.max_files"

	KeyPropWorkers     = "propagation.workers"
	KeyPropTrailPoints = "propagation.trail_points"
	KeyPropTrailStep   = "propagation.trail_step"

	KeyAddr            = "server.addr"
	KeyTrustProxy      = "server.trust_proxy"
	KeyRefreshInterval = "server.refresh_interval"

	KeyAuthEnabled = "auth.enabled"
	KeyAuthToken   = "auth.token"
)

// Default source locations.
const (
	DefaultCatalogURL = "https://www.ucsusa.org/sites/default/files/2024-01/UCS-Satellite-Database%205-1-2023%20%28text%29.txt"
	DefaultTLEURL     = "https://celestrak.org/NORAD/elements/gp.php?GROUP=active&FORMAT=csv"
)

// Config is the resolved configuration.
type Config struct {
	File     string // config file used, if any
	LogLevel slog.Level

	Reconcile   ReconcileConfig
	Sources     SourceConfig
	Propagation PropagationConfig
	Server      ServerConfig
	Auth        auth.Config
}

// ReconcileConfig controls the matching pass.
type ReconcileConfig struct {
	Cutoff  int
	Workers int
	Scorer  string
}

// SourceConfig locates the two input documents. A file path, when set,
// replaces the URL and bypasses the cache.
type SourceConfig struct {
	CatalogURL    string
	CatalogFile   string
	TLEURL        string
	TLEExtraURLs  []string
	TLEFile       string
	CacheDir      string
	CacheMaxAge   time.Duration
	CacheMaxFiles int
}

// PropagationConfig controls position computation.
type PropagationConfig struct {
	Workers     int
	TrailPoints int
	TrailStep   time.Duration
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr            string
	TrustProxy      bool
	RefreshInterval time.Duration // 0 disables periodic refresh
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyCutoff, 90)
	v.SetDefault(KeyWorkers, runtime.NumCPU())
	v.SetDefault(KeyScorer, fuzzy.ScorerWeighted)
	v.SetDefault(KeyCatalogURL, DefaultCatalogURL)
	v.SetDefault(KeyCatalogFile, "")
	v.SetDefault(KeyTLEURL, DefaultTLEURL)
	v.SetDefault(KeyTLEExtraURLs, []string{})
	v.SetDefault(KeyTLEFile, "")
	v.SetDefault(KeyCacheDir, "/tmp/satrecon/cache")
	v.SetDefault(KeyCacheMaxAge, "24h")
	v.SetDefault(KeyCacheMaxFiles, 5)
	v.SetDefault(KeyPropWorkers, runtime.NumCPU())
	v.SetDefault(KeyPropTrailPoints, 0)
	v.SetDefault(KeyPropTrailStep, "1m")
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyTrustProxy, false)
	v.SetDefault(KeyRefreshInterval, "0s")
	v.SetDefault(KeyAuthEnabled, false)
	v.SetDefault(KeyAuthToken, "")

	return v
}

// Load reads .env files and the config file into v and resolves a Config.
func Load(v *viper.Viper, logger *slog.Logger) (*Config, error) {
	loadEnvFiles()

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	r := resolver{v: v, logger: logger}
	cfg := &Config{
		File:     v.ConfigFileUsed(),
		LogLevel: r.level(KeyLogLevel, slog.LevelInfo),
		Reconcile: ReconcileConfig{
			Cutoff:  r.int(KeyCutoff, 90, 0, 100),
			Workers: r.int(KeyWorkers, runtime.NumCPU(), 1, 1024),
			Scorer:  r.scorer(KeyScorer),
		},
		Sources: SourceConfig{
			CatalogURL:    r.str(KeyCatalogURL, DefaultCatalogURL),
			CatalogFile:   strings.TrimSpace(v.GetString(KeyCatalogFile)),
			TLEURL:        r.str(KeyTLEURL, DefaultTLEURL),
			TLEExtraURLs:  r.list(KeyTLEExtraURLs),
			TLEFile:       strings.TrimSpace(v.GetString(KeyTLEFile)),
			CacheDir:      r.str(KeyCacheDir, "/tmp/satrecon/cache"),
			CacheMaxAge:   r.duration(KeyCacheMaxAge, 24*time.Hour, 0),
			CacheMaxFiles: r.int(KeyCacheMaxFiles, 5, 1, 1000),
		},
		Propagation: PropagationConfig{
			Workers:     r.int(KeyPropWorkers, runtime.NumCPU(), 1, 1024),
			TrailPoints: r.int(KeyPropTrailPoints, 0, 0, 1440),
			TrailStep:   r.duration(KeyPropTrailStep, time.Minute, time.Second),
		},
		Server: ServerConfig{
			Addr:            r.str(KeyAddr, ":8080"),
			TrustProxy:      r.bool(KeyTrustProxy, false),
			RefreshInterval: r.duration(KeyRefreshInterval, 0, 0),
		},
		Auth: auth.Config{
			Enabled: r.bool(KeyAuthEnabled, false),
			Token:   v.GetString(KeyAuthToken),
		},
	}

	if cfg.Auth.Enabled && cfg.Auth.Token == "" {
		return nil, errors.New(EnvPrefix + "_AUTH_TOKEN is required when auth is enabled")
	}

	return cfg, nil
}

// loadEnvFiles loads .env then .env.local. Variables already set in the
// environment are not overridden.
func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
}

func readConfigFile(v *viper.Viper) error {
	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", file, err)
		}
		return nil
	}

	v.SetConfigName("satrecon")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

// resolver reads typed values and falls back to defaults with a warning.
type resolver struct {
	v      *viper.Viper
	logger *slog.Logger
}

func (r resolver) warn(key, value string, def any) {
	r.logger.Warn("invalid config value, using default",
		"key", key,
		"env", envName(key),
		"value", value,
		"default", def,
	)
}

func (r resolver) str(key, def string) string {
	s := strings.TrimSpace(r.v.GetString(key))
	if s == "" {
		return def
	}
	return s
}

func (r resolver) int(key string, def, lo, hi int) int {
	s := strings.TrimSpace(r.v.GetString(key))
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		r.warn(key, s, def)
		return def
	}
	return n
}

func (r resolver) bool(key string, def bool) bool {
	s := strings.TrimSpace(r.v.GetString(key))
	b, err := strconv.ParseBool(s)
	if err != nil {
		r.warn(key, s, def)
		return def
	}
	return b
}

func (r resolver) duration(key string, def, floor time.Duration) time.Duration {
	s := strings.TrimSpace(r.v.GetString(key))
	d, err := time.ParseDuration(s)
	if err != nil || d < floor {
		r.warn(key, s, def.String())
		return def
	}
	return d
}

func (r resolver) level(key string, def slog.Level) slog.Level {
	s := strings.TrimSpace(r.v.GetString(key))
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		r.warn(key, s, def.String())
		return def
	}
	return l
}

func (r resolver) scorer(key string) string {
	s := strings.ToLower(strings.TrimSpace(r.v.GetString(key)))
	if s == "" {
		return fuzzy.ScorerWeighted
	}
	if _, err := fuzzy.ScorerByName(s); err != nil {
		r.warn(key, s, fuzzy.ScorerWeighted)
		return fuzzy.ScorerWeighted
	}
	return s
}

// list accepts YAML sequences as well as comma-separated strings.
func (r resolver) list(key string) []string {
	var out []string
	for _, item := range r.v.GetStringSlice(key) {
		for _, s := range strings.Split(item, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}
