package dataprocessing

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// DeviceGroup is the first column of a device type's climate zone columns
type DeviceGroup struct {
	Type  domain.DeviceType
	Start int
}

// CostSummaryLayout locates the building blocks of the Cost Est Summary sheet
type CostSummaryLayout struct {
	Sheet        string
	Range        string
	BlockStarts  []int
	Devices      []DeviceGroup
	ZonesPerType int
	FirstYear    int
	LastYear     int
}

// DefaultCostSummaryLayout matches the Cost Est Summary sheet of the 90.1 workbooks.
func DefaultCostSummaryLayout() CostSummaryLayout {
	return CostSummaryLayout{
		Sheet:       "Cost Est Summary",
		Range:       "B20:X312",
		BlockStarts: []int{0, 50, 99, 148, 197, 246},
		Devices: []DeviceGroup{
			{Type: domain.DeviceHVAC, Start: 1},
			{Type: domain.DeviceLighting, Start: 6},
			{Type: domain.DeviceEnvelope, Start: 13},
			{Type: domain.DeviceTotal, Start: 18},
		},
		ZonesPerType: 5,
		FirstYear:    -1,
		LastYear:     41,
	}
}

// costRows returns the grid rows, relative to a block start, that hold the
// cost of each year from FirstYear: the first-cost row, the year-zero row,
// forty annual rows, then the residual row.
func costRows() []int {
	rows := []int{3, 2}
	for r := 5; r < 45; r++ {
		rows = append(rows, r)
	}
	return append(rows, 46)
}

// isBlankZone reports whether a zone header marks an unused column
func isBlankZone(zone string) bool {
	if zone == "" {
		return true
	}
	f, err := strconv.ParseFloat(zone, 64)
	return err == nil && f == 0
}

// ParseCostSummary extracts the cost summary grid of one state into a table
// indexed by (Building, Year, DeviceType, ClimateZone) with a Cost column.
// Rows follow the sheet: building block, device type, zone, then year.
func ParseCostSummary(grid [][]string, layout CostSummaryLayout, logger *slog.Logger) (*domain.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	offsets := costRows()
	years := layout.LastYear - layout.FirstYear + 1
	if years != len(offsets) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("year axis %d..%d has %d entries, cost rows have %d", layout.FirstYear, layout.LastYear, years, len(offsets)))
	}

	cell := func(r, c int) string {
		if r < 0 || r >= len(grid) || c < 0 || c >= len(grid[r]) {
			return ""
		}
		return grid[r][c]
	}

	out := domain.NewTable(
		[]string{domain.ColBuilding, domain.ColYear, domain.ColDeviceType, domain.ColZone},
		[]string{domain.ColCost})

	lastOffset := offsets[len(offsets)-1]
	for _, start := range layout.BlockStarts {
		if start+lastOffset >= len(grid) {
			return nil, apperrors.NewBlockLayoutError(
				fmt.Sprintf("building block at row %d needs %d rows, grid has %d", start, lastOffset+1, len(grid)-start))
		}
		building := strings.TrimSpace(cell(start, 0))

		for _, dev := range layout.Devices {
			for z := 0; z < layout.ZonesPerType; z++ {
				col := dev.Start + z
				zone := strings.TrimSpace(cell(start+1, col))
				if isBlankZone(zone) {
					continue
				}
				for i, off := range offsets {
					year := strconv.Itoa(layout.FirstYear + i)
					out.Rows = append(out.Rows, domain.Row{
						Key:    []string{building, year, string(dev.Type), zone},
						Values: []string{cell(start+off, col)},
					})
				}
			}
		}
	}

	if out.Len() == 0 {
		return nil, apperrors.NewBlockLayoutError("cost summary has no climate zone columns")
	}

	logger.Debug("extracted cost summary",
		slog.Int("blocks", len(layout.BlockStarts)),
		slog.Int("rows", out.Len()))
	return out, nil
}
