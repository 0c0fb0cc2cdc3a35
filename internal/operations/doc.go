// Package operations drives the pipeline steps end to end.
//
// A Runner is built from a configuration, a logger and optional telemetry;
// it holds no other state. Each step returns a Summary listing one Outcome
// per entity (workbook, state, or state and building) and the files it
// wrote with their checksums:
//
//	runner, err := operations.NewRunner(cfg, logger, telemetry)
//	summary, err := runner.ExtractAll(ctx)
//	summary, err = runner.AssembleHVAC(ctx)
//	summary, err = runner.AssembleEnvelope(ctx)
//
// A failing entity is logged, recorded as failed and skipped; the run goes
// on with the next one. Only fatal errors end a run early: an unreadable or
// malformed control file, a cancelled context, or a final table that cannot
// be written. IsFatal reports whether an error is one of those.
package operations
