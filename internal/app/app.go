// Package app builds the long-lived services of a run from configuration and
// holds them for the CLI commands.
package app

import (
	"context"
	"fmt"

	gpubsub "cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/JakeFAU/showcrawl/internal/adapter"
	"github.com/JakeFAU/showcrawl/internal/clock/system"
	"github.com/JakeFAU/showcrawl/internal/config"
	collyfetcher "github.com/JakeFAU/showcrawl/internal/fetcher/colly"
	"github.com/JakeFAU/showcrawl/internal/fetcher/headless"
	"github.com/JakeFAU/showcrawl/internal/hash/sha256"
	"github.com/JakeFAU/showcrawl/internal/id/uuid"
	"github.com/JakeFAU/showcrawl/internal/orchestrator"
	"github.com/JakeFAU/showcrawl/internal/pipeline"
	"github.com/JakeFAU/showcrawl/internal/policy/ratelimit"
	"github.com/JakeFAU/showcrawl/internal/publisher"
	pubsubpublisher "github.com/JakeFAU/showcrawl/internal/publisher/pubsub"
	"github.com/JakeFAU/showcrawl/internal/show"
	"github.com/JakeFAU/showcrawl/internal/snapshot"
	"github.com/JakeFAU/showcrawl/internal/sources"
	"github.com/JakeFAU/showcrawl/internal/storage"
	"github.com/JakeFAU/showcrawl/internal/storage/postgres"
)

// App holds the services shared by the CLI commands.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *adapter.Registry
	pipeline *pipeline.Pipeline
	closers  []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

// New wires every service described by cfg. It fails fast when a configured
// destination or adapter cannot be built; anything opened so far is closed.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *App, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clock := system.New(loc)

	deps, err := a.buildClients(cfg)
	if err != nil {
		return nil, err
	}
	deps.Clock = clock
	deps.Logger = logger.Named("adapter")
	a.registry, err = sources.Build(cfg.Adapters, deps)
	if err != nil {
		return nil, fmt.Errorf("build adapters: %w", err)
	}

	overrides, err := snapshot.LoadOverrides(cfg.Output.OverridesPath)
	if err != nil {
		return nil, err
	}

	writer, err := a.buildWriter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pub, err := a.buildPublisher(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a.pipeline, err = pipeline.New(pipeline.Deps{
		Orchestrator:    orchestrator.New(logger),
		Assembler:       snapshot.NewAssembler(overrides),
		Writer:          writer,
		Clock:           clock,
		IDs:             uuid.New(),
		Logger:          logger,
		Publisher:       pub,
		Topic:           cfg.PubSub.Topic,
		Hasher:          sha256.New(),
		MetricsTextfile: cfg.Metrics.Textfile,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("application services initialized",
		zap.Strings("adapters", a.registry.Names()),
		zap.String("output", cfg.Output.Path),
		zap.Bool("headless", cfg.Headless.Enabled),
		zap.Bool("postgres_mirror", cfg.Output.Postgres.DSN != ""),
		zap.Bool("notifications", pub != nil),
	)
	return a, nil
}

func (a *App) buildClients(cfg config.Config) (sources.Deps, error) {
	limiter := ratelimit.New(ratelimit.Config{DefaultRPS: cfg.Fetch.RequestsPerSecond, DefaultBurst: 1})
	fetchLogger := a.logger.Named("fetch")

	static := adapter.NewClient(
		collyfetcher.New(collyfetcher.Config{UserAgent: cfg.Fetch.UserAgent, Timeout: cfg.Fetch.Timeout}),
		cfg.ClientConfig(),
		adapter.WithLimiter(limiter),
		adapter.WithLogger(fetchLogger),
	)
	deps := sources.Deps{Static: static}
	if !cfg.Headless.Enabled {
		return deps, nil
	}

	browser, err := headless.NewChromedp(headless.Config{
		MaxParallel:       cfg.Headless.MaxParallel,
		UserAgent:         cfg.Fetch.UserAgent,
		NavigationTimeout: cfg.Headless.NavTimeout,
		WaitSelector:      cfg.Headless.WaitSelector,
		Settle:            cfg.Headless.Settle,
		ScrollToEnd:       cfg.Headless.ScrollToEnd,
	})
	if err != nil {
		return sources.Deps{}, fmt.Errorf("init headless fetcher: %w", err)
	}
	a.addCloser("headless", func() error {
		browser.Close()
		return nil
	})

	renderCfg := cfg.ClientConfig()
	if cfg.Headless.NavTimeout > renderCfg.Timeout {
		renderCfg.Timeout = cfg.Headless.NavTimeout
	}
	deps.Rendered = adapter.NewClient(browser, renderCfg,
		adapter.WithLimiter(limiter),
		adapter.WithLogger(fetchLogger),
	)
	return deps, nil
}

func (a *App) buildWriter(ctx context.Context, cfg config.Config) (storage.Writer, error) {
	primary, closePrimary, err := storage.Open(ctx, cfg.Output.Path)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	a.addCloser("output", closePrimary)

	if cfg.Output.Postgres.DSN == "" {
		return primary, nil
	}
	mirror, err := postgres.New(ctx, postgres.Config{
		DSN:        cfg.Output.Postgres.DSN,
		ShowsTable: cfg.Output.Postgres.ShowsTable,
		RunsTable:  cfg.Output.Postgres.RunsTable,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres mirror: %w", err)
	}
	a.addCloser("postgres", func() error {
		mirror.Close()
		return nil
	})
	return storage.NewMulti(primary, mirror), nil
}

func (a *App) buildPublisher(ctx context.Context, cfg config.Config) (publisher.Publisher, error) {
	if cfg.PubSub.Topic == "" {
		return nil, nil
	}
	client, err := gpubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	pub := pubsubpublisher.New(client)
	a.addCloser("pubsub", pub.Close)
	return pub, nil
}

func (a *App) addCloser(name string, fn func() error) {
	a.closers = append(a.closers, namedCloser{name: name, close: fn})
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// AdapterNames lists registered adapters in run order.
func (a *App) AdapterNames() []string {
	return a.registry.Names()
}

// Run executes every registered adapter and persists the snapshot.
func (a *App) Run(ctx context.Context) (pipeline.Report, error) {
	return a.pipeline.Run(ctx, a.registry.All())
}

// RunAdapter fetches a single adapter and returns its raw candidates without
// normalizing or persisting them.
func (a *App) RunAdapter(ctx context.Context, name string) ([]show.CandidateRecord, error) {
	ad, err := a.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	records, err := ad.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("adapter %q: %w", name, err)
	}
	if records == nil {
		records = []show.CandidateRecord{}
	}
	return records, nil
}

// Close releases services in reverse order of construction.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Warn("error closing service", zap.String("service", c.name), zap.Error(err))
		}
	}
	a.closers = nil
	// Sync errors on stderr/stdout are expected and not actionable.
	_ = a.logger.Sync() //nolint:errcheck // best effort flush
}
