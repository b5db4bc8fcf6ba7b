// Package cmd defines and implements the CLI commands for the showcrawl executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/showcrawl/internal/app"
	"github.com/JakeFAU/showcrawl/internal/config"
	"github.com/JakeFAU/showcrawl/internal/logging"
	"github.com/JakeFAU/showcrawl/internal/pipeline"
	"github.com/JakeFAU/showcrawl/internal/show"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App is what the commands need from the service container. Tests inject a
// fake through newApp.
type App interface {
	Close()
	Logger() *zap.Logger
	AdapterNames() []string
	Run(ctx context.Context) (pipeline.Report, error)
	RunAdapter(ctx context.Context, name string) ([]show.CandidateRecord, error)
}

// newApp is the application factory.
var newApp = func(ctx context.Context, cfgPath string) (App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync() //nolint:errcheck // best effort flush
		return nil, err
	}
	return a, nil
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "showcrawl",
		Short: "Collects upcoming shows from venue sites into one snapshot.",
		Long: `showcrawl runs a fixed set of venue adapters concurrently, normalizes and
deduplicates what they find, and writes a single ordered snapshot of upcoming
shows. A failing venue is reported in the snapshot instead of failing the run.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context(), cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); SHOWCRAWL_* environment variables override it")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newAdapterCmd())
	return cmd
}

// resolveApp returns the App built by the root pre-run. Commands close it
// themselves: cobra skips post-run hooks when RunE fails.
func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point. It exits non-zero when the command fails.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "showcrawl:", err)
		os.Exit(1)
	}
}
