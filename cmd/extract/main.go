// Command extract reads every State CE Analysis workbook of the input
// directory and writes the per-state HVAC and cost summary tables, one
// directory per code year.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/app"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/config"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/operations"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	inDir := flag.String("input", "", "directory searched for .xlsm workbooks (default from config)")
	hvacOut := flag.String("hvac-out", "", "root directory of the HVAC tables (default from config)")
	costOut := flag.String("cost-out", "", "root directory of the cost summary tables (default from config)")
	only := flag.String("only", "", "run a single extractor: hvac or cost")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString("extract"))
		return
	}

	steps, err := extractionSteps(*only)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	a, err := app.NewApplication(*configPath, func(cfg *config.Config) {
		app.SetPath(&cfg.Paths.InputDir, *inDir)
		app.SetPath(&cfg.Paths.HVACDir, *hvacOut)
		app.SetPath(&cfg.Paths.CostDir, *costOut)
	})
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	summaryDir := a.Config.Paths.HVACDir
	if len(steps) == 1 && steps[0] == operations.StepExtractCost {
		summaryDir = a.Config.Paths.CostDir
	}
	err = a.Run(func(ctx context.Context, r *operations.Runner) (*operations.Summary, error) {
		return r.ExtractAll(ctx, steps...)
	}, summaryDir)
	if err != nil {
		os.Exit(1)
	}
}

func extractionSteps(only string) ([]string, error) {
	switch only {
	case "":
		return nil, nil
	case "hvac":
		return []string{operations.StepExtractHVAC}, nil
	case "cost":
		return []string{operations.StepExtractCost}, nil
	}
	return nil, fmt.Errorf("invalid -only value %q: want hvac or cost", only)
}
