// Package app builds and runs one pipeline command.
//
// NewApplication loads the configuration (defaults, then the YAML file,
// then CEA_* environment variables, then command-line overrides),
// initializes logging and telemetry, ensures the output directories exist
// and creates the operations runner. Run executes one step with interrupt
// handling, writes summary.json and flushes telemetry:
//
//	a, err := app.NewApplication(*configPath, func(cfg *config.Config) {
//		cfg.Paths.CostMapFile = *mapFile
//	})
//	err = a.Run(func(ctx context.Context, r *operations.Runner) (*operations.Summary, error) {
//		return r.AssembleHVAC(ctx)
//	}, a.Config.Paths.HVACOutputDir)
package app
