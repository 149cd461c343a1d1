// Package config centralizes the crawler's runtime configuration: default
// values, environment variable parsing, and an optional TOML overlay file.
// This is the single source of truth consulted by the CLI, the pipeline
// runner, and the scheduler.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	mcperrors "github.com/mcpcrawl/mcpcrawl/pkg/errors"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// =============================================================================
// Default Values - Single Source of Truth
// =============================================================================

const (
	// DefaultEnabled keeps the crawler off in a fresh deployment; an
	// operator must run the `enable` CLI command before the first run.
	DefaultEnabled = false

	// DefaultMaxCandidates caps how many candidates a single run will carry
	// past discovery, keeping a default run small and predictable.
	DefaultMaxCandidates = 50

	// DefaultConcurrency is the worker-pool width for discovery, scraping,
	// and analysis stages.
	DefaultConcurrency = 8

	// DefaultIntelligencePool is the worker-pool width for the intelligence
	// collector, kept small because each worker spawns a subprocess.
	DefaultIntelligencePool = 4

	// DefaultRunTimeout bounds a single orchestrated run end-to-end.
	DefaultRunTimeout = 30 * time.Minute

	// DefaultLogLevel is used when CRAWLER_LOG_LEVEL is unset or invalid.
	DefaultLogLevel = "info"

	// DefaultScheduleInterval is how often the scheduler triggers a run
	// when scheduling is enabled.
	DefaultScheduleInterval = 24 * time.Hour
)

// DefaultEcosystems are always discovered, regardless of CRAWLER_EXTRA_ECOSYSTEMS.
var DefaultEcosystems = []model.Ecosystem{
	model.EcosystemNPM, model.EcosystemPyPI, model.EcosystemCargo, model.EcosystemGo,
}

// ExtraEcosystems are gated behind CRAWLER_EXTRA_ECOSYSTEMS; each exercises
// one additional registry integration.
var ExtraEcosystems = map[string]model.Ecosystem{
	"rubygems":  model.EcosystemRubyGems,
	"maven":     model.EcosystemMaven,
	"packagist": model.EcosystemPackagist,
}

// Config is the fully-resolved runtime configuration for one process.
type Config struct {
	Enabled bool

	GitHubToken string
	DBURL       string
	DBPath      string
	LogLevel    string

	MaxCandidates     int
	Concurrency       int
	IntelligencePool  int
	RunTimeout        time.Duration
	ScheduleInterval  time.Duration
	ScheduleEnabled   bool
	Ecosystems        []model.Ecosystem

	RedisURL        string
	ArchiveMongoURL string

	// validated tracks whether Validate has run successfully.
	validated bool
}

// Load reads the process environment (and, if CRAWLER_CONFIG_FILE names a
// readable TOML file, that file as a lower-precedence overlay) into a
// Config, applies defaults, and validates it.
//
// Precedence, highest first: explicit environment variables, the TOML file,
// then built-in defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Enabled:          DefaultEnabled,
		LogLevel:         DefaultLogLevel,
		MaxCandidates:    DefaultMaxCandidates,
		Concurrency:      DefaultConcurrency,
		IntelligencePool: DefaultIntelligencePool,
		RunTimeout:       DefaultRunTimeout,
		ScheduleInterval: DefaultScheduleInterval,
		Ecosystems:       append([]model.Ecosystem(nil), DefaultEcosystems...),
	}

	if path := os.Getenv("CRAWLER_CONFIG_FILE"); path != "" {
		if err := applyTOMLFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileOverlay mirrors the subset of Config fields an operator may set from
// a TOML file; field names match the lowercase TOML keys below.
type fileOverlay struct {
	Enabled          *bool    `toml:"enabled"`
	LogLevel         string   `toml:"log_level"`
	MaxCandidates    int      `toml:"max_candidates"`
	Concurrency      int      `toml:"concurrency"`
	IntelligencePool int      `toml:"intelligence_pool"`
	RunTimeoutSecs   int      `toml:"run_timeout_seconds"`
	ExtraEcosystems  []string `toml:"extra_ecosystems"`
}

func applyTOMLFile(cfg *Config, path string) error {
	var overlay fileOverlay
	if _, err := toml.DecodeFile(path, &overlay); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return mcperrors.Wrap(mcperrors.ErrCodeInvalidInput, err, "parse config file %s", path)
	}

	if overlay.Enabled != nil {
		cfg.Enabled = *overlay.Enabled
	}
	if overlay.LogLevel != "" {
		cfg.LogLevel = overlay.LogLevel
	}
	if overlay.MaxCandidates > 0 {
		cfg.MaxCandidates = overlay.MaxCandidates
	}
	if overlay.Concurrency > 0 {
		cfg.Concurrency = overlay.Concurrency
	}
	if overlay.IntelligencePool > 0 {
		cfg.IntelligencePool = overlay.IntelligencePool
	}
	if overlay.RunTimeoutSecs > 0 {
		cfg.RunTimeout = time.Duration(overlay.RunTimeoutSecs) * time.Second
	}
	if len(overlay.ExtraEcosystems) > 0 {
		cfg.Ecosystems = mergeExtraEcosystems(cfg.Ecosystems, overlay.ExtraEcosystems)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("CRAWLER_ENABLED"); ok {
		cfg.Enabled = parseBool(v, cfg.Enabled)
	}
	cfg.GitHubToken = envOr("CRAWLER_GITHUB_TOKEN", cfg.GitHubToken)
	cfg.DBURL = envOr("CRAWLER_DB_URL", cfg.DBURL)
	cfg.DBPath = envOr("CRAWLER_DB_PATH", cfg.DBPath)
	cfg.LogLevel = envOr("CRAWLER_LOG_LEVEL", cfg.LogLevel)
	cfg.RedisURL = envOr("CRAWLER_REDIS_URL", cfg.RedisURL)
	cfg.ArchiveMongoURL = envOr("CRAWLER_ARCHIVE_MONGO_URL", cfg.ArchiveMongoURL)

	if v := os.Getenv("CRAWLER_MAX_CANDIDATES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxCandidates = n
		}
	}
	if v := os.Getenv("CRAWLER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}
	if v := os.Getenv("CRAWLER_INTELLIGENCE_POOL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.IntelligencePool = n
		}
	}
	if v := os.Getenv("CRAWLER_RUN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RunTimeout = d
		}
	}
	if v := os.Getenv("CRAWLER_EXTRA_ECOSYSTEMS"); v != "" {
		cfg.Ecosystems = mergeExtraEcosystems(cfg.Ecosystems, strings.Split(v, ","))
	}
}

func mergeExtraEcosystems(base []model.Ecosystem, names []string) []model.Ecosystem {
	have := make(map[model.Ecosystem]bool, len(base))
	for _, e := range base {
		have[e] = true
	}
	result := append([]model.Ecosystem(nil), base...)
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		eco, ok := ExtraEcosystems[n]
		if !ok || have[eco] {
			continue
		}
		have[eco] = true
		result = append(result, eco)
	}
	return result
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// Validate checks that required fields are present and values are sane.
// Idempotent: calling it more than once has the same effect as once.
func (c *Config) Validate() error {
	if c.validated {
		return nil
	}
	if c.MaxCandidates <= 0 {
		return mcperrors.New(mcperrors.ErrCodeInvalidInput, "max candidates must be positive, got %d", c.MaxCandidates)
	}
	if c.Concurrency <= 0 {
		return mcperrors.New(mcperrors.ErrCodeInvalidInput, "concurrency must be positive, got %d", c.Concurrency)
	}
	if c.IntelligencePool <= 0 {
		return mcperrors.New(mcperrors.ErrCodeInvalidInput, "intelligence pool must be positive, got %d", c.IntelligencePool)
	}
	if c.RunTimeout <= 0 {
		return mcperrors.New(mcperrors.ErrCodeInvalidInput, "run timeout must be positive, got %s", c.RunTimeout)
	}
	for _, e := range c.Ecosystems {
		if !e.Valid() {
			return mcperrors.New(mcperrors.ErrCodeInvalidInput, "unknown ecosystem %q", e)
		}
	}
	if c.DBURL == "" && c.DBPath == "" {
		c.DBPath = defaultDBPath()
	}
	c.validated = true
	return nil
}

func defaultDBPath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "mcpcrawl.db"
		}
		dir = home + "/.local/share"
	}
	return fmt.Sprintf("%s/mcpcrawl/mcpcrawl.db", dir)
}
