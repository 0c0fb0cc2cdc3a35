// Package shared holds helpers used across the pipeline packages.
//
// The testutil subpackage provides a capturing slog handler so tests can
// assert on warnings such as skipped control-file rows:
//
//	logger, handler := testutil.NewTestLogger(t)
//	costmap.LoadCostMap(r, "master.csv", logger)
//	testutil.AssertLogContains(t, handler, slog.LevelWarn, "skipping")
package shared
