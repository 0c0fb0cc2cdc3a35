package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/config"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/infrastructure"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/operations"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts"
)

// ShutdownTimeout bounds the flush of telemetry at the end of a run
const ShutdownTimeout = 10 * time.Second

// Application wires the configuration, logger, telemetry and pipeline
// runner of one command invocation
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Runner    *operations.Runner
}

// Override adjusts a loaded configuration, typically from command flags
type Override func(cfg *config.Config)

// NewApplication loads the configuration at configPath (defaults and
// environment only when empty), applies the overrides and builds the
// components of a run.
func NewApplication(configPath string, overrides ...Override) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Paths.Resolve()
	resolveOutputFiles(cfg)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("commit", contracts.GitCommit),
		slog.String("config", configPath))

	if err := cfg.Paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	cfg.Paths.LogPathResolution(logger)

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	runner, err := operations.NewRunner(cfg, logger, telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: telemetry,
		Runner:    runner,
	}, nil
}

// resolveOutputFiles places a relative log file under the base directory
// and relative trace and metrics files in the logs directory
func resolveOutputFiles(cfg *config.Config) {
	if f := cfg.Logging.FilePath; f != "" && !filepath.IsAbs(f) && cfg.Paths.BaseDir != "" {
		cfg.Logging.FilePath = filepath.Join(cfg.Paths.BaseDir, f)
	}
	dir := cfg.Paths.LogsDir
	if dir == "" {
		return
	}
	if f := cfg.Telemetry.MetricsFile; f != "" && !filepath.IsAbs(f) {
		cfg.Telemetry.MetricsFile = filepath.Join(dir, f)
	}
	if f := cfg.Telemetry.TraceFile; f != "" && !filepath.IsAbs(f) {
		cfg.Telemetry.TraceFile = filepath.Join(dir, f)
	}
}

// Step is one pipeline operation run by Run
type Step func(ctx context.Context, r *operations.Runner) (*operations.Summary, error)

// Run executes step until it finishes or the process is interrupted, then
// writes the run summary into summaryDir and shuts down telemetry. The
// returned error is the step's fatal error, if any.
func (a *Application) Run(step Step, summaryDir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureRunID(ctx)

	summary, runErr := step(ctx, a.Runner)
	if runErr != nil {
		a.Logger.ErrorContext(ctx, "run_failed", slog.String("error", runErr.Error()))
	}
	if summary != nil {
		if _, err := a.Runner.Finish(ctx, summary, summaryDir); err != nil {
			a.Logger.ErrorContext(ctx, "failed to write run summary", slog.String("error", err.Error()))
		}
		for _, o := range summary.Failed() {
			a.Logger.WarnContext(ctx, "entity_failed",
				slog.String("step", o.Step),
				slog.String("entity", o.Entity),
				slog.String("reason", o.Reason))
		}
	}

	a.Stop(ctx)
	return runErr
}

// Stop flushes telemetry and closes the log file
func (a *Application) Stop(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down telemetry", slog.String("error", err.Error()))
	}
	a.Logger.InfoContext(ctx, "Application shutdown complete")
	infrastructure.CloseLogFile()
}
