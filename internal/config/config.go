// Package config loads and validates showcrawl configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/showcrawl/internal/adapter"
	"github.com/JakeFAU/showcrawl/internal/sources"
)

// EnvPrefix prefixes environment overrides, e.g. SHOWCRAWL_OUTPUT_PATH.
const EnvPrefix = "SHOWCRAWL"

// Config captures every knob of a run.
type Config struct {
	Output   OutputConfig     `mapstructure:"output"`
	Fetch    FetchConfig      `mapstructure:"fetch"`
	Headless HeadlessConfig   `mapstructure:"headless"`
	PubSub   PubSubConfig     `mapstructure:"pubsub"`
	Metrics  MetricsConfig    `mapstructure:"metrics"`
	Logging  LoggingConfig    `mapstructure:"logging"`
	Timezone string           `mapstructure:"timezone"`
	Adapters []sources.Config `mapstructure:"adapters"`
}

// OutputConfig names where snapshots go.
type OutputConfig struct {
	// Path is a local file or a gs://bucket/object URI.
	Path string `mapstructure:"path"`
	// OverridesPath is an optional YAML image override table.
	OverridesPath string         `mapstructure:"overrides_path"`
	Postgres      PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig enables the optional Postgres mirror when DSN is set.
type PostgresConfig struct {
	DSN        string `mapstructure:"dsn"`
	ShowsTable string `mapstructure:"shows_table"`
	RunsTable  string `mapstructure:"runs_table"`
}

// FetchConfig configures the fetch harness shared by adapters.
type FetchConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	JitterMin         time.Duration `mapstructure:"jitter_min"`
	JitterMax         time.Duration `mapstructure:"jitter_max"`
	UserAgent         string        `mapstructure:"user_agent"`
	BatchSize         int           `mapstructure:"batch_size"`
	BatchPause        time.Duration `mapstructure:"batch_pause"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// HeadlessConfig configures the headless rendering subsystem.
type HeadlessConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxParallel int           `mapstructure:"max_parallel"`
	NavTimeout  time.Duration `mapstructure:"nav_timeout"`

	// WaitSelector and Settle tune when the rendered DOM is captured.
	WaitSelector string        `mapstructure:"wait_selector"`
	Settle       time.Duration `mapstructure:"settle"`
	ScrollToEnd  bool          `mapstructure:"scroll_to_end"`
}

// PubSubConfig holds metadata for snapshot notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// MetricsConfig controls the node-exporter textfile written after each run.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.path", "shows.json")
	v.SetDefault("output.overrides_path", "")
	v.SetDefault("output.postgres.dsn", "")
	v.SetDefault("output.postgres.shows_table", "shows")
	v.SetDefault("output.postgres.runs_table", "snapshot_runs")
	v.SetDefault("fetch.timeout", adapter.DefaultTimeout)
	v.SetDefault("fetch.jitter_min", adapter.DefaultJitterMin)
	v.SetDefault("fetch.jitter_max", adapter.DefaultJitterMax)
	v.SetDefault("fetch.user_agent", "showcrawl/0.1")
	v.SetDefault("fetch.batch_size", adapter.DefaultBatchSize)
	v.SetDefault("fetch.batch_pause", adapter.DefaultBatchPause)
	v.SetDefault("fetch.requests_per_second", 2.0)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout", 30*time.Second)
	v.SetDefault("headless.wait_selector", "body")
	v.SetDefault("headless.settle", 500*time.Millisecond)
	v.SetDefault("headless.scroll_to_end", false)
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic", "")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.development", false)
	v.SetDefault("timezone", "UTC")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Output.Path) == "" {
		return fmt.Errorf("output.path is required")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0")
	}
	if c.Fetch.JitterMin < 0 || c.Fetch.JitterMax < c.Fetch.JitterMin {
		return fmt.Errorf("fetch.jitter_min must be >= 0 and <= fetch.jitter_max")
	}
	if c.Fetch.BatchSize <= 0 {
		return fmt.Errorf("fetch.batch_size must be > 0")
	}
	if c.Fetch.BatchPause < 0 {
		return fmt.Errorf("fetch.batch_pause must be >= 0")
	}
	if c.Fetch.RequestsPerSecond < 0 {
		return fmt.Errorf("fetch.requests_per_second must be >= 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.PubSub.Topic != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when pubsub.topic is set")
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Adapters))
	for i, a := range c.Adapters {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("adapters[%d]: %w", i, err)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("adapters[%d]: duplicate adapter name %q", i, a.Name)
		}
		seen[a.Name] = struct{}{}
		if a.NeedsHeadless() && !c.Headless.Enabled {
			return fmt.Errorf("adapters[%d]: adapter %q renders pages but headless.enabled is false", i, a.Name)
		}
	}
	return nil
}

// Location resolves the configured timezone. Yearless listing dates are
// placed relative to "now" in this zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ClientConfig converts the fetch section into harness settings.
func (c Config) ClientConfig() adapter.ClientConfig {
	return adapter.ClientConfig{
		Timeout:    c.Fetch.Timeout,
		JitterMin:  c.Fetch.JitterMin,
		JitterMax:  c.Fetch.JitterMax,
		BatchSize:  c.Fetch.BatchSize,
		BatchPause: c.Fetch.BatchPause,
	}
}
