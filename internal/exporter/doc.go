// Package exporter writes pipeline tables and run summaries to disk.
//
// CSVWriter writes a domain.Table with its index levels as leading columns,
// the layout read back by files.ReadTable:
//
//	w := exporter.NewCSVWriter(logger)
//	n, err := w.WriteTable("hvac_assembled_cost/Texas_HVAC Small Office Proto.csv", table)
//
// Checksum and WriteJSON produce the run summary that lists every output
// file with its BLAKE2b-256 digest.
package exporter
