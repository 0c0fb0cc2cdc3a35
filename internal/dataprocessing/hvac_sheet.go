package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// RangeReader reads a rectangular cell region of a sheet. Rows are padded to
// the width of the region.
type RangeReader interface {
	ReadRange(sheet, ref string) ([][]string, error)
}

// DefaultBuildings lists the HVAC prototype sheets of a State CE Analysis workbook.
var DefaultBuildings = []string{
	"HVAC Small Office Proto",
	"HVAC Large Office Proto",
	"HVAC Standalone Retail Proto",
	"HVAC Primary School Proto",
	"HVAC Small Hotel Proto",
	"HVAC Mid-rise Apartment Proto",
}

// HVACSheetLayout locates the data of an HVAC prototype sheet
type HVACSheetLayout struct {
	LabelRow       int            // sheet row holding the column labels
	LastRow        int            // last body row
	MeasureColumn  string         // column of measure names
	FirstColumn    string         // first column of the data region
	MarkerColumn   string         // column flagging rows to keep
	MarkerRows     int            // number of marker cells scanned
	KeepToken      string         // marker value of a kept row
	StopToken      string         // marker text ending the scan
	HeaderRowCount int            // label row plus the two sub-header rows
	HeaderOffsets  []int          // body offsets of the sub-header rows
	LastColumns    map[int]string // last data column by climate zone count
}

// DefaultHVACSheetLayout matches the prototype sheets of the 90.1 workbooks.
func DefaultHVACSheetLayout() HVACSheetLayout {
	return HVACSheetLayout{
		LabelRow:       8,
		LastRow:        160,
		MeasureColumn:  "B",
		FirstColumn:    "I",
		MarkerColumn:   "A",
		MarkerRows:     200,
		KeepToken:      "x",
		StopToken:      "VBA",
		HeaderRowCount: 3,
		HeaderOffsets:  []int{1, 2},
		LastColumns:    map[int]string{1: "R", 2: "AB", 3: "AL", 4: "AV", 5: "BF"},
	}
}

// DataRange returns the data region for a state with the given number of
// climate zones, e.g. "I8:AB160" for two zones.
func (l HVACSheetLayout) DataRange(zones int) (string, error) {
	last, ok := l.LastColumns[zones]
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("no data range for %d climate zones", zones))
	}
	return fmt.Sprintf("%s%d:%s%d", l.FirstColumn, l.LabelRow, last, l.LastRow), nil
}

// SelectRows turns the marker column into the body offsets to keep: the
// sub-header rows first, then every row flagged with the keep token, up to
// the first cell containing the stop token. markers[i] is sheet row i+1.
func (l HVACSheetLayout) SelectRows(markers []string) ([]int, error) {
	rows := append([]int(nil), l.HeaderOffsets...)
	for i, m := range markers {
		if strings.Contains(m, l.StopToken) {
			break
		}
		if strings.TrimSpace(m) != l.KeepToken {
			continue
		}
		offset := i - l.LabelRow
		if offset < 0 {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("row %d is flagged above the label row %d", i+1, l.LabelRow))
		}
		rows = append(rows, offset)
	}
	return rows, nil
}

// ParseHVACSheet extracts one prototype sheet into the long
// (Measure, Climate Zone, Year) table. zones is the climate zone count of the
// state currently selected in the workbook.
func ParseHVACSheet(r RangeReader, sheet string, zones int, layout HVACSheetLayout, logger *slog.Logger) (*domain.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dataRange, err := layout.DataRange(zones)
	if err != nil {
		return nil, err
	}

	markerRef := fmt.Sprintf("%s1:%s%d", layout.MarkerColumn, layout.MarkerColumn, layout.MarkerRows)
	markerRows, err := r.ReadRange(sheet, markerRef)
	if err != nil {
		return nil, fmt.Errorf("failed to read marker column: %w", err)
	}
	keep, err := layout.SelectRows(flatten(markerRows))
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	measureRef := fmt.Sprintf("%s%d:%s%d", layout.MeasureColumn, layout.LabelRow+1, layout.MeasureColumn, layout.LastRow)
	measureRows, err := r.ReadRange(sheet, measureRef)
	if err != nil {
		return nil, fmt.Errorf("failed to read measure column: %w", err)
	}
	measureCol := flatten(measureRows)

	region, err := r.ReadRange(sheet, dataRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read data range %s: %w", dataRange, err)
	}
	if len(region) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("sheet %q: empty data range %s", sheet, dataRange), nil)
	}

	body := region[1:]
	grid := domain.RawGrid{Labels: region[0]}
	measures := make([]string, 0, len(keep))
	for _, offset := range keep {
		if offset >= len(body) || offset >= len(measureCol) {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("sheet %q: flagged row offset %d is outside the data range", sheet, offset))
		}
		grid.Rows = append(grid.Rows, body[offset])
		measures = append(measures, measureCol[offset])
	}

	table, err := ExtractBlocks(measures, grid, layout.HeaderRowCount)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	logger.Debug("extracted prototype sheet",
		slog.String("sheet", sheet),
		slog.Int("climate_zones", zones),
		slog.Int("kept_rows", len(keep)),
		slog.Int("rows", table.Len()))
	return table, nil
}

func flatten(rows [][]string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		if len(r) > 0 {
			out[i] = r[0]
		}
	}
	return out
}

func parseCount(s string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f != math.Trunc(f) || f < 0 {
		return 0, false
	}
	return int(f), true
}
