package operations

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/infrastructure"
)

// logStepStart logs the start of a step
func (r *Runner) logStepStart(ctx context.Context, step string, attrs ...slog.Attr) {
	args := []any{slog.String("step", step), slog.String("name", StepName(step))}
	for _, a := range attrs {
		args = append(args, a)
	}
	r.logger.InfoContext(ctx, "step_start", args...)
}

// logStepComplete logs the end of a step with its entity counts
func (r *Runner) logStepComplete(ctx context.Context, step string, summary *Summary, duration time.Duration) {
	r.logger.InfoContext(ctx, "step_complete",
		slog.String("step", step),
		slog.Int("successes", summary.Successes),
		slog.Int("failures", summary.Failures),
		slog.Int("skipped", summary.Skipped),
		slog.Duration("duration", duration))
}

// logEntityComplete logs one entity outcome
func (r *Runner) logEntityComplete(ctx context.Context, o Outcome, duration time.Duration) {
	r.logger.InfoContext(ctx, "entity_complete",
		slog.String("step", o.Step),
		slog.String("entity", o.Entity),
		slog.String("status", o.Status),
		slog.Int("rows", o.Rows),
		slog.Duration("duration", duration))
}

// logEntityError logs a failed entity. Processing continues with the next one.
func (r *Runner) logEntityError(ctx context.Context, step, entity string, err error) {
	logger := infrastructure.WithError(r.logger, err)
	if err == nil {
		logger = logger.With("error", "unknown error")
	}
	logger.ErrorContext(ctx, "entity_error",
		slog.String("step", step),
		slog.String("entity", entity),
		slog.String("error_type", string(apperrors.TypeOf(err))))
}
