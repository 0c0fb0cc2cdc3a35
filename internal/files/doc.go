// Package files provides workbook discovery and the on-disk layout of the
// intermediate tables.
//
// Extractors write one directory per code year; assemblers read them back:
//
//	hvac_data_CE/2018/Texas_HVAC Small Office Proto.csv
//	cost_data_CE/2018/Texas.csv
//
// Discovery finds the input workbooks and derives their code year from the
// file name:
//
//	d := files.NewDiscovery("inputs", false)
//	workbooks, unnamed, err := d.FindYearWorkbooks()
package files
