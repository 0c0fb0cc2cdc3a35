package operations

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/aggregation"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/config"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/costmap"
	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/files"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/reshape"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

func (r *Runner) preflightAssemble(controlFile, outDir string) error {
	if err := r.preflight.ControlFile(controlFile); err != nil {
		return err
	}
	return r.preflight.OutputDirectory(outDir)
}

// recordIssues attaches skipped control-file rows to the summary
func (r *Runner) recordIssues(ctx context.Context, summary *Summary, path string, issues []costmap.RowIssue) {
	for _, issue := range issues {
		summary.Warn("%s line %d skipped: %s", path, issue.Line, issue.Reason)
	}
	r.telemetry.RecordSkippedRows(ctx, path, len(issues))
}

// AssembleHVAC builds the base/target comparison of every state and
// building in the cost map. For each year pair the table extracted for the
// target year is filtered to the base and target years, each side is
// reduced, and the two sides are joined into {state}_{building}.csv. The
// joined tables, prefixed with State and Building, are stacked into
// aggregate_hvac.csv.
func (r *Runner) AssembleHVAC(ctx context.Context) (*Summary, error) {
	ctx, summary := beginRun(ctx, StepAssembleHVAC)
	start := time.Now()
	paths := r.cfg.Paths
	r.logStepStart(ctx, StepAssembleHVAC,
		slog.String("cost_map", paths.CostMapFile),
		slog.String("input", paths.HVACDir),
		slog.String("output", paths.HVACOutputDir))

	if err := r.preflightAssemble(paths.CostMapFile, paths.HVACOutputDir); err != nil {
		return summary, NewFatalError(StepAssembleHVAC, "preflight failed", err)
	}
	m, issues, err := costmap.LoadCostMapFile(paths.CostMapFile, r.logger)
	if err != nil {
		return summary, NewFatalError(StepAssembleHVAC, "failed to load cost map", err)
	}
	r.recordIssues(ctx, summary, paths.CostMapFile, issues)

	mergeCfg := r.mergeConfig()
	var aggregate []*domain.Table
	for _, state := range m.States {
		for _, building := range r.cfg.Extraction.Buildings {
			entity := files.HVACTableName(state, building)
			err := r.runEntity(ctx, summary, StepAssembleHVAC, entity, func(ctx context.Context, o *Outcome) error {
				joined, err := r.assembleBuilding(m.Pairs(state), state, building, mergeCfg)
				if err != nil {
					return err
				}
				if err := r.writeTable(summary, o, files.OutputPath(paths.HVACOutputDir, entity), joined); err != nil {
					return err
				}
				labeled, err := aggregation.InsertStateBuilding(joined, state, building)
				if err != nil {
					return err
				}
				aggregate = append(aggregate, labeled)
				return nil
			})
			if err != nil {
				return summary, err
			}
		}
	}

	if len(aggregate) == 0 {
		return summary, NewFatalError(StepAssembleHVAC, "no state and building could be assembled", nil)
	}
	combined, err := aggregation.Concatenate(aggregate...)
	if err != nil {
		return summary, NewFatalError(StepAssembleHVAC, "failed to combine assembled tables", err)
	}
	if err := r.writeTable(summary, nil, files.OutputPath(paths.HVACOutputDir, config.AggregateHVACFile), combined); err != nil {
		return summary, NewFatalError(StepAssembleHVAC, "failed to write aggregate table", err)
	}

	r.logStepComplete(ctx, StepAssembleHVAC, summary, time.Since(start))
	return summary, nil
}

// assembleBuilding reduces and joins the base and target sides of one
// state and building
func (r *Runner) assembleBuilding(pairs []domain.YearPair, state, building string, cfg aggregation.MergeConfig) (*domain.Table, error) {
	if len(pairs) == 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("no year pairs for %s", state))
	}

	var base, target []*domain.Table
	for _, p := range pairs {
		path := files.HVACTablePath(r.cfg.Paths.HVACDir, p.Target, state, building)
		raw, err := files.ReadTable(path, 0)
		if err != nil {
			return nil, err
		}
		b, err := aggregation.FilterYear(raw, p.Base)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		t, err := aggregation.FilterYear(raw, p.Target)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		r.logger.Debug("filtered comparison years",
			slog.String("file", path),
			slog.Int("base", p.Base),
			slog.Int("target", p.Target),
			slog.Int("base_rows", b.Len()),
			slog.Int("target_rows", t.Len()))
		base = append(base, b)
		target = append(target, t)
	}

	baseAgg, err := aggregation.Concat(base, domain.RoleBase, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate base side: %w", err)
	}
	targetAgg, err := aggregation.Concat(target, domain.RoleTarget, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate target side: %w", err)
	}
	return aggregation.Join(baseAgg, targetAgg)
}

// AssembleEnvelope stacks the lighting and envelope costs of every state and
// target year in the target map and pivots climate zones into columns,
// writing light_envelope_cost.csv.
func (r *Runner) AssembleEnvelope(ctx context.Context) (*Summary, error) {
	ctx, summary := beginRun(ctx, StepAssembleEnvelope)
	start := time.Now()
	paths := r.cfg.Paths
	r.logStepStart(ctx, StepAssembleEnvelope,
		slog.String("target_map", paths.TargetMapFile),
		slog.String("input", paths.CostDir),
		slog.String("output", paths.EnvelopeOutputDir))

	if err := r.preflightAssemble(paths.TargetMapFile, paths.EnvelopeOutputDir); err != nil {
		return summary, NewFatalError(StepAssembleEnvelope, "preflight failed", err)
	}
	m, issues, err := costmap.LoadTargetMapFile(paths.TargetMapFile, r.logger)
	if err != nil {
		return summary, NewFatalError(StepAssembleEnvelope, "failed to load target map", err)
	}
	r.recordIssues(ctx, summary, paths.TargetMapFile, issues)

	var long []*domain.Table
	for _, state := range m.States {
		err := r.runEntity(ctx, summary, StepAssembleEnvelope, state, func(ctx context.Context, o *Outcome) error {
			t, err := r.assembleState(state, m.Years[state])
			if err != nil {
				return err
			}
			o.Rows = t.Len()
			long = append(long, t)
			return nil
		})
		if err != nil {
			return summary, err
		}
	}

	if len(long) == 0 {
		return summary, NewFatalError(StepAssembleEnvelope, "no state could be assembled", nil)
	}
	combined, err := aggregation.Concatenate(long...)
	if err != nil {
		return summary, NewFatalError(StepAssembleEnvelope, "failed to combine state tables", err)
	}
	wide, err := reshape.Pivot(combined, reshape.EnvelopePivot())
	if err != nil {
		return summary, NewFatalError(StepAssembleEnvelope, "failed to pivot climate zones", err)
	}
	out := files.OutputPath(paths.EnvelopeOutputDir, config.LightEnvelopeCostFile)
	if err := r.writeTable(summary, nil, out, wide); err != nil {
		return summary, NewFatalError(StepAssembleEnvelope, "failed to write envelope table", err)
	}

	r.logStepComplete(ctx, StepAssembleEnvelope, summary, time.Since(start))
	return summary, nil
}

// assembleState reads the cost summary of every target year of one state,
// keeps the lighting and envelope rows and tags them with State and CodeYear
func (r *Runner) assembleState(state string, years []int) (*domain.Table, error) {
	if len(years) == 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("no target years for %s", state))
	}

	yearly := make([]*domain.Table, 0, len(years))
	for _, year := range years {
		path := files.CostTablePath(r.cfg.Paths.CostDir, year, state)
		raw, err := files.ReadTable(path, 0)
		if err != nil {
			return nil, err
		}
		kept, err := aggregation.FilterDeviceTypes(raw, domain.DeviceHVAC, domain.DeviceTotal)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		coerced, err := aggregation.CoerceNumeric(kept, domain.ColCost)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		tagged := aggregation.WithConstant(coerced, domain.ColState, state)
		tagged = aggregation.WithConstant(tagged, domain.ColCodeYear, strconv.Itoa(year))
		yearly = append(yearly, aggregation.FillMissing(tagged, "0"))
	}
	return aggregation.Concatenate(yearly...)
}
