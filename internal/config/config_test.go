package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/showcrawl/internal/adapter"
	"github.com/JakeFAU/showcrawl/internal/sources"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
output:
  path: gs://shows-bucket/shows.json
  overrides_path: overrides.yaml
  postgres:
    dsn: postgres://localhost/shows
    shows_table: listings
fetch:
  timeout: 20s
  jitter_min: 100ms
  jitter_max: 200ms
  user_agent: test-agent
  batch_size: 4
  batch_pause: 1s
  requests_per_second: 0.5
headless:
  enabled: true
  max_parallel: 2
  nav_timeout: 40s
pubsub:
  project_id: proj
  topic: snapshots
metrics:
  textfile: /var/lib/node_exporter/showcrawl.prom
logging:
  development: true
timezone: America/Chicago
adapters:
  - name: hall
    kind: listing
    url: https://hall.example/calendar
    venue: The Hall
    render: true
    tags: [music]
    selectors:
      item: li.event
      title: h3
      date: time
      date_attr: datetime
      link: a
    detail:
      price: .price
  - name: club-feed
    kind: feed
    url: https://club.example/rss
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gs://shows-bucket/shows.json", cfg.Output.Path)
	assert.Equal(t, "overrides.yaml", cfg.Output.OverridesPath)
	assert.Equal(t, "postgres://localhost/shows", cfg.Output.Postgres.DSN)
	assert.Equal(t, "listings", cfg.Output.Postgres.ShowsTable)
	assert.Equal(t, "snapshot_runs", cfg.Output.Postgres.RunsTable)
	assert.Equal(t, 20*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 4, cfg.Fetch.BatchSize)
	assert.InDelta(t, 0.5, cfg.Fetch.RequestsPerSecond, 1e-9)
	assert.Equal(t, 40*time.Second, cfg.Headless.NavTimeout)
	assert.Equal(t, "snapshots", cfg.PubSub.Topic)
	assert.True(t, cfg.Logging.Development)

	require.Len(t, cfg.Adapters, 2)
	hall := cfg.Adapters[0]
	assert.Equal(t, sources.KindListing, hall.Kind)
	assert.True(t, hall.Render)
	assert.Equal(t, []string{"music"}, hall.Tags)
	assert.Equal(t, "datetime", hall.Selectors.DateAttr)
	assert.Equal(t, ".price", hall.Detail.Price)
	assert.Equal(t, sources.KindFeed, cfg.Adapters[1].Kind)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", loc.String())

	assert.Equal(t, adapter.ClientConfig{
		Timeout:    20 * time.Second,
		JitterMin:  100 * time.Millisecond,
		JitterMax:  200 * time.Millisecond,
		BatchSize:  4,
		BatchPause: time.Second,
	}, cfg.ClientConfig())
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "shows.json", cfg.Output.Path)
	assert.Equal(t, adapter.DefaultClientConfig(), cfg.ClientConfig())
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.False(t, cfg.Headless.Enabled)
	assert.Equal(t, "body", cfg.Headless.WaitSelector)
	assert.Equal(t, 500*time.Millisecond, cfg.Headless.Settle)
	assert.Empty(t, cfg.Adapters)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SHOWCRAWL_OUTPUT_PATH", "/tmp/env-shows.json")
	t.Setenv("SHOWCRAWL_FETCH_BATCH_SIZE", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env-shows.json", cfg.Output.Path)
	assert.Equal(t, 3, cfg.Fetch.BatchSize)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Output:   OutputConfig{Path: "shows.json"},
			Fetch:    FetchConfig{Timeout: time.Second, BatchSize: 1},
			Timezone: "UTC",
		}
	}
	feed := func(name string) sources.Config {
		return sources.Config{Name: name, Kind: sources.KindFeed, URL: "https://x.example/rss"}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "missing output", mutate: func(c *Config) { c.Output.Path = "" }, want: "output.path"},
		{name: "invalid timeout", mutate: func(c *Config) { c.Fetch.Timeout = 0 }, want: "fetch.timeout"},
		{name: "inverted jitter", mutate: func(c *Config) {
			c.Fetch.JitterMin = time.Second
			c.Fetch.JitterMax = time.Millisecond
		}, want: "fetch.jitter_min"},
		{name: "invalid batch size", mutate: func(c *Config) { c.Fetch.BatchSize = 0 }, want: "fetch.batch_size"},
		{name: "negative rps", mutate: func(c *Config) { c.Fetch.RequestsPerSecond = -1 }, want: "fetch.requests_per_second"},
		{name: "headless missing max parallel", mutate: func(c *Config) { c.Headless.Enabled = true }, want: "headless.max_parallel"},
		{name: "topic without project", mutate: func(c *Config) { c.PubSub.Topic = "t" }, want: "pubsub.project_id"},
		{name: "unknown timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, want: "timezone"},
		{name: "duplicate adapters", mutate: func(c *Config) {
			c.Adapters = []sources.Config{feed("a"), feed("a")}
		}, want: "duplicate adapter name"},
		{name: "unknown kind", mutate: func(c *Config) {
			a := feed("a")
			a.Kind = "pdf"
			c.Adapters = []sources.Config{a}
		}, want: "unknown kind"},
		{name: "render without headless", mutate: func(c *Config) {
			a := feed("a")
			a.Render = true
			c.Adapters = []sources.Config{a}
		}, want: "headless.enabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	require.NoError(t, base().Validate())
}
