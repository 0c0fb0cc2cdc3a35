// Command assemble-envelope stacks the lighting and envelope costs of every
// state and target year in the target map and writes them, one column per
// climate zone, to light_envelope_cost.csv.
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
	mapFile := flag.String("map", "", "target map CSV (State,Target Year...)")
	inDir := flag.String("input", "", "root directory of the extracted cost summary tables")
	outDir := flag.String("output", "", "directory for light_envelope_cost.csv")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString("assemble-envelope"))
		return
	}

	a, err := app.NewApplication(*configPath, func(cfg *config.Config) {
		app.SetPath(&cfg.Paths.TargetMapFile, *mapFile)
		app.SetPath(&cfg.Paths.CostDir, *inDir)
		app.SetPath(&cfg.Paths.EnvelopeOutputDir, *outDir)
	})
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	err = a.Run(func(ctx context.Context, r *operations.Runner) (*operations.Summary, error) {
		return r.AssembleEnvelope(ctx)
	}, a.Config.Paths.EnvelopeOutputDir)
	if err != nil {
		os.Exit(1)
	}
}
