// Command assemble-hvac joins the extracted base and target HVAC tables of
// every state and building in the cost map and writes the per-building
// comparisons plus aggregate_hvac.csv.
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
	mapFile := flag.String("map", "", "cost map CSV (State,Year,Base Year)")
	inDir := flag.String("input", "", "root directory of the extracted HVAC tables")
	outDir := flag.String("output", "", "directory for the joined tables")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString("assemble-hvac"))
		return
	}

	a, err := app.NewApplication(*configPath, func(cfg *config.Config) {
		app.SetPath(&cfg.Paths.CostMapFile, *mapFile)
		app.SetPath(&cfg.Paths.HVACDir, *inDir)
		app.SetPath(&cfg.Paths.HVACOutputDir, *outDir)
	})
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	err = a.Run(func(ctx context.Context, r *operations.Runner) (*operations.Summary, error) {
		return r.AssembleHVAC(ctx)
	}, a.Config.Paths.HVACOutputDir)
	if err != nil {
		os.Exit(1)
	}
}
