package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/dataprocessing"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/files"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/report"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/workbook"
)

// statesFunc processes every state of an open workbook
type statesFunc func(ctx context.Context, wb *workbook.Workbook, states []string, zoneCounts map[string]int) error

// withWorkbook opens the workbook at path, resolves its states and hands
// them to fn. A workbook that cannot be opened or read fails as one entity.
func (r *Runner) withWorkbook(ctx context.Context, summary *Summary, step, path string, fn statesFunc) error {
	var (
		wb         *workbook.Workbook
		states     []string
		zoneCounts map[string]int
	)
	err := r.runEntity(ctx, summary, step, path, func(ctx context.Context, o *Outcome) error {
		var err error
		wb, err = workbook.Open(path, workbook.Options{
			Recalculate: r.cfg.Extraction.Recalculate,
			StateSheet:  r.cfg.Extraction.StateSheet,
			StateCell:   r.cfg.Extraction.StateCell,
		}, r.logger)
		if err != nil {
			return err
		}
		in := r.stateInputs()
		if states, err = dataprocessing.ResolveStates(wb, in, r.logger); err != nil {
			return err
		}
		if zoneCounts, err = dataprocessing.ReadZoneCounts(wb, in); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if wb != nil {
			wb.Close()
		}
		return err
	}
	if wb == nil || states == nil {
		if wb != nil {
			wb.Close()
		}
		return nil
	}
	defer func() {
		if cerr := wb.Close(); cerr != nil {
			r.logger.Warn("failed to close workbook", slog.String("path", path), slog.String("error", cerr.Error()))
		}
	}()

	if err := fn(ctx, wb, states, zoneCounts); err != nil {
		return err
	}

	if r.cfg.Extraction.SaveWorkbooks {
		if err := wb.Save(); err != nil {
			summary.Warn("failed to save workbook %s: %v", path, err)
		}
	}
	return nil
}

// ExtractHVAC extracts the HVAC prototype sheets of every state in the
// workbook at workbookPath into {outDir}/{state}_{building}.csv.
func (r *Runner) ExtractHVAC(ctx context.Context, workbookPath, outDir string) (*Summary, error) {
	ctx, summary := beginRun(ctx, StepExtractHVAC)
	start := time.Now()
	r.logStepStart(ctx, StepExtractHVAC, slog.String("workbook", workbookPath), slog.String("output", outDir))

	extraction := dataprocessing.HVACExtraction{
		Buildings: r.cfg.Extraction.Buildings,
		Layout:    dataprocessing.DefaultHVACSheetLayout(),
		Inputs:    r.stateInputs(),
	}

	var entries []report.Entry
	err := r.withWorkbook(ctx, summary, StepExtractHVAC, workbookPath,
		func(ctx context.Context, wb *workbook.Workbook, states []string, zoneCounts map[string]int) error {
			for _, state := range states {
				err := r.runEntity(ctx, summary, StepExtractHVAC, state, func(ctx context.Context, o *Outcome) error {
					tables, err := dataprocessing.ExtractStateHVAC(wb, state, zoneCounts, extraction, r.logger)
					if err != nil {
						return err
					}
					if len(tables) == 0 {
						o.Status = StatusSkipped
						o.Reason = "state has no abbreviation or climate zone count"
						return nil
					}
					for _, building := range extraction.Buildings {
						t, ok := tables[building]
						if !ok {
							continue
						}
						path := files.OutputPath(outDir, files.HVACTableName(state, building))
						if err := r.writeTable(summary, o, path, t); err != nil {
							return err
						}
						entries = append(entries, report.Entry{State: state, Building: building, Table: t})
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	if err != nil {
		return summary, err
	}

	if r.cfg.Report.Heatmap && len(entries) > 0 {
		if err := r.heatmap(ctx, summary, entries, outDir); err != nil {
			return summary, err
		}
	}

	r.logStepComplete(ctx, StepExtractHVAC, summary, time.Since(start))
	return summary, nil
}

func (r *Runner) heatmap(ctx context.Context, summary *Summary, entries []report.Entry, outDir string) error {
	path := r.cfg.Report.HeatmapFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(outDir, path)
	}
	return r.runEntity(ctx, summary, StepHeatmap, path, func(ctx context.Context, o *Outcome) error {
		m, skipped := report.ReplacementCostMatrix(entries, r.logger)
		for _, e := range skipped {
			summary.Warn("heatmap skipped %s %s: no %q column", e.State, e.Building, report.ColReplacementCost)
		}
		title := fmt.Sprintf("Change in replacement cost (%s)", filepath.Base(outDir))
		if err := report.SaveHeatmap(m, title, path); err != nil {
			return err
		}
		o.Outputs = append(o.Outputs, path)
		return summary.AddFile(path, 0)
	})
}

// ExtractCost extracts the Cost Est Summary of every state in the workbook
// at workbookPath into {outDir}/{state}.csv.
func (r *Runner) ExtractCost(ctx context.Context, workbookPath, outDir string) (*Summary, error) {
	ctx, summary := beginRun(ctx, StepExtractCost)
	start := time.Now()
	r.logStepStart(ctx, StepExtractCost, slog.String("workbook", workbookPath), slog.String("output", outDir))

	layout := r.costLayout()
	err := r.withWorkbook(ctx, summary, StepExtractCost, workbookPath,
		func(ctx context.Context, wb *workbook.Workbook, states []string, _ map[string]int) error {
			for _, state := range states {
				err := r.runEntity(ctx, summary, StepExtractCost, state, func(ctx context.Context, o *Outcome) error {
					t, err := dataprocessing.ExtractStateCost(wb, state, layout, r.logger)
					if err != nil {
						return err
					}
					return r.writeTable(summary, o, filepath.Join(outDir, state+".csv"), t)
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	if err != nil {
		return summary, err
	}

	r.logStepComplete(ctx, StepExtractCost, summary, time.Since(start))
	return summary, nil
}

// ExtractAll discovers the workbooks of the input directory and runs the
// requested extractors (both when steps is empty) into one directory per
// code year. A failing workbook does not stop the others.
func (r *Runner) ExtractAll(ctx context.Context, steps ...string) (*Summary, error) {
	ctx, summary := beginRun(ctx, "extract")
	start := time.Now()
	input := r.cfg.Paths.InputDir
	r.logStepStart(ctx, "extract", slog.String("input", input))

	hvac, cost := len(steps) == 0, len(steps) == 0
	for _, s := range steps {
		switch s {
		case StepExtractHVAC:
			hvac = true
		case StepExtractCost:
			cost = true
		default:
			return summary, NewFatalError("extract", fmt.Sprintf("unknown extraction step %q", s), nil)
		}
	}

	patterns := []string{"*.xlsm"}
	if r.cfg.Extraction.IncludeXLSX {
		patterns = append(patterns, "*.xlsx")
	}
	if _, err := r.preflight.InputDirectory(input, patterns...); err != nil {
		return summary, NewFatalError("extract", "preflight failed", err)
	}
	for _, dir := range []string{r.cfg.Paths.HVACDir, r.cfg.Paths.CostDir} {
		if err := r.preflight.OutputDirectory(dir); err != nil {
			return summary, NewFatalError("extract", "preflight failed", err)
		}
	}

	workbooks, unnamed, err := files.NewDiscovery(input, r.cfg.Extraction.IncludeXLSX).FindYearWorkbooks()
	if err != nil {
		return summary, NewFatalError("extract", "failed to discover workbooks", err)
	}
	for _, f := range unnamed {
		summary.Record(Outcome{Step: "extract", Entity: f.Path, Status: StatusSkipped, Reason: "file name carries no code year"})
		r.logger.WarnContext(ctx, "workbook_skipped", slog.String("path", f.Path), slog.String("reason", "no code year"))
	}
	if len(workbooks) == 0 {
		summary.Warn("no workbooks found in %s", input)
	}

	for _, wb := range workbooks {
		if hvac {
			s, err := r.ExtractHVAC(ctx, wb.Path, files.YearDir(r.cfg.Paths.HVACDir, wb.Year))
			summary.Merge(s)
			if err != nil {
				return summary, err
			}
		}
		if cost {
			s, err := r.ExtractCost(ctx, wb.Path, files.YearDir(r.cfg.Paths.CostDir, wb.Year))
			summary.Merge(s)
			if err != nil {
				return summary, err
			}
		}
	}

	r.logStepComplete(ctx, "extract", summary, time.Since(start))
	return summary, nil
}
