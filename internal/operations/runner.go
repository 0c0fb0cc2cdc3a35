package operations

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/aggregation"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/config"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/dataprocessing"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/exporter"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/infrastructure"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/validation"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// Runner drives the pipeline steps. Everything a step needs comes from the
// configuration and collaborators passed to NewRunner.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	telemetry *infrastructure.Telemetry
	writer    *exporter.CSVWriter
	preflight *validation.Preflight
}

// NewRunner creates a runner. A nil telemetry records nothing.
func NewRunner(cfg *config.Config, logger *slog.Logger, telemetry *infrastructure.Telemetry) (*Runner, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger = infrastructure.WithComponent(logger, "operations")
	if telemetry == nil {
		var err error
		telemetry, err = infrastructure.InitializeTelemetry(config.TelemetryConfig{}, logger)
		if err != nil {
			return nil, err
		}
	}
	return &Runner{
		cfg:       cfg,
		logger:    logger,
		telemetry: telemetry,
		writer:    exporter.NewCSVWriter(logger),
		preflight: validation.NewPreflight(logger),
	}, nil
}

// Config returns the configuration the runner was built with
func (r *Runner) Config() *config.Config {
	return r.cfg
}

// entityFunc processes one entity and fills in its outcome
type entityFunc func(ctx context.Context, o *Outcome) error

// runEntity runs fn inside a span and records its outcome. Entity errors
// are recorded and swallowed; fatal and cancellation errors are returned.
func (r *Runner) runEntity(ctx context.Context, summary *Summary, step, entity string, fn entityFunc) error {
	if err := ctx.Err(); err != nil {
		return NewCancellationError(step, err)
	}

	ctx, span := r.telemetry.StartEntitySpan(ctx, step, entity)
	defer span.End()

	start := time.Now()
	o := Outcome{Step: step, Entity: entity, Status: StatusSucceeded}
	err := fn(ctx, &o)
	elapsed := time.Since(start)

	if err != nil {
		o.Status = StatusFailed
		o.Reason = err.Error()
		infrastructure.RecordError(ctx, err)
		r.logEntityError(ctx, step, entity, err)
	} else {
		r.logEntityComplete(ctx, o, elapsed)
	}
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"cea.status": o.Status,
		"cea.rows":   o.Rows,
	})
	summary.Record(o)
	r.telemetry.RecordEntity(ctx, step, o.Status, o.Rows, elapsed)

	if IsFatal(err) {
		return err
	}
	return nil
}

// writeTable writes t to path and records the file on the summary and outcome
func (r *Runner) writeTable(summary *Summary, o *Outcome, path string, t *domain.Table) error {
	rows, err := r.writer.WriteTable(path, t)
	if err != nil {
		return err
	}
	if err := summary.AddFile(path, rows); err != nil {
		return err
	}
	if o != nil {
		o.Rows += rows
		o.Outputs = append(o.Outputs, path)
	}
	return nil
}

// Finish stamps the summary and writes it to dir as summary.json
func (r *Runner) Finish(ctx context.Context, summary *Summary, dir string) (string, error) {
	summary.Complete()
	path := filepath.Join(dir, config.SummaryFile)
	if err := summary.SaveToFile(path); err != nil {
		return "", err
	}
	r.logger.InfoContext(ctx, "run_summary_written",
		slog.String("path", path),
		slog.Int("successes", summary.Successes),
		slog.Int("failures", summary.Failures),
		slog.Int("skipped", summary.Skipped))
	return path, nil
}

func (r *Runner) mergeConfig() aggregation.MergeConfig {
	return aggregation.MergeConfig{
		KeyLevels:   r.cfg.Aggregation.KeyLevels,
		NonAdditive: r.cfg.Aggregation.NonAdditive,
	}
}

func (r *Runner) stateInputs() dataprocessing.StateInputs {
	in := dataprocessing.DefaultStateInputs()
	in.Sheet = r.cfg.Extraction.StateSheet
	in.FallbackListRange = r.cfg.Extraction.StateListRange
	return in
}

func (r *Runner) costLayout() dataprocessing.CostSummaryLayout {
	layout := dataprocessing.DefaultCostSummaryLayout()
	layout.Sheet = r.cfg.Extraction.CostSheet
	return layout
}

func beginRun(ctx context.Context, operation string) (context.Context, *Summary) {
	ctx = infrastructure.EnsureRunID(ctx)
	return ctx, NewSummary(infrastructure.GetRunID(ctx), operation)
}
