// Package dataprocessing extracts cost tables from State CE Analysis workbooks.
//
// # HVAC prototype sheets
//
// Each prototype sheet holds a grid whose columns repeat in blocks. A block
// starts at a column labelled "Code", takes its year from the label right
// after it, and its climate zone from the label right after the nearest
// preceding "Climate Zone" marker. The block ends at the next marker column
// or at the edge of the grid. Extraction happens in two passes:
//
//	blocks, err := dataprocessing.LocateBlocks(grid.Labels) // typed descriptors, validated
//	table, err := dataprocessing.ExtractBlocks(measures, grid, 3)
//
// The result is a long table indexed by (Measure, Climate Zone, Year).
// Keys are not unique: several blocks can map to the same key.
//
// # Cost Est Summary
//
// ParseCostSummary reads the fixed-layout summary sheet into a table indexed
// by (Building, Year, DeviceType, ClimateZone) with a single Cost column.
//
// # States
//
// Workbooks are driven by a state selector on the State Inputs sheet.
// ResolveStates lists the states to process and ExtractStateHVAC and
// ExtractStateCost switch the selector before reading.
package dataprocessing
