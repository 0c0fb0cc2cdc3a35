package dataprocessing

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// Header markers that delimit blocks in a prototype sheet.
const (
	MarkerCode        = "Code"
	MarkerClimateZone = "Climate Zone"
)

// LocateBlocks resolves every block start in labels into a Block. All blocks
// are validated before any is returned; a start with no preceding climate
// zone marker or no year column is a block layout error.
func LocateBlocks(labels []string) ([]domain.Block, error) {
	var starts, ends, zones []int
	for i, label := range labels {
		hasCode := strings.Contains(label, MarkerCode)
		hasZone := strings.Contains(label, MarkerClimateZone)
		if hasCode {
			starts = append(starts, i)
		}
		if hasCode || hasZone {
			ends = append(ends, i)
		}
		if hasZone {
			zones = append(zones, i)
		}
	}
	// sentinel so every start has an admissible end
	ends = append(ends, len(labels))

	blocks := make([]domain.Block, 0, len(starts))
	for _, start := range starts {
		zoneCol := -1
		for i := len(zones) - 1; i >= 0; i-- {
			if zones[i] < start {
				zoneCol = zones[i]
				break
			}
		}
		if zoneCol < 0 {
			return nil, apperrors.NewBlockLayoutError(
				fmt.Sprintf("block at column %d has no preceding %q marker", start, MarkerClimateZone)).
				WithContext("column", start)
		}
		if start+1 >= len(labels) {
			return nil, apperrors.NewBlockLayoutError(
				fmt.Sprintf("block at column %d has no year column", start)).
				WithContext("column", start)
		}

		end := ends[sort.SearchInts(ends, start+1)]
		year, _, _ := strings.Cut(labels[start+1], ".")

		blocks = append(blocks, domain.Block{
			Start: start,
			End:   end,
			Zone:  labels[zoneCol+1],
			Year:  year,
		})
	}
	return blocks, nil
}

// JoinHeaders builds one column name per grid column from the two sub-header
// rows. Missing cells count as blank.
func JoinHeaders(grid domain.RawGrid) []string {
	headers := make([]string, grid.Width())
	for i := range headers {
		top := strings.TrimSpace(grid.Cell(0, i))
		bottom := strings.TrimSpace(grid.Cell(1, i))
		headers[i] = strings.TrimSpace(top + " " + bottom)
	}
	return headers
}

// ExtractBlocks cuts every block out of grid and stacks them into one long
// table indexed by (Measure, Climate Zone, Year). measures holds the measure
// label of every body row. Rows before headerRowCount-1 are header rows and
// are skipped. Column names that differ between blocks are unioned in
// first-seen order; cells a block does not carry are left blank. A header
// repeated inside one block gets a ".N" suffix for its N-th repeat.
func ExtractBlocks(measures []string, grid domain.RawGrid, headerRowCount int) (*domain.Table, error) {
	if len(measures) != len(grid.Rows) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("measure column has %d rows, grid has %d", len(measures), len(grid.Rows)))
	}
	if headerRowCount < 1 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("header row count must be positive, got %d", headerRowCount))
	}

	blocks, err := LocateBlocks(grid.Labels)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, apperrors.NewBlockLayoutError(fmt.Sprintf("no %q marker in %d columns", MarkerCode, grid.Width()))
	}
	headers := JoinHeaders(grid)

	// column union across blocks
	var columns []string
	position := make(map[string]int)
	blockCols := make([][]int, len(blocks))
	for b, blk := range blocks {
		blockCols[b] = make([]int, blk.End-blk.Start)
		seen := make(map[string]int)
		for c := blk.Start; c < blk.End; c++ {
			name := headers[c]
			// repeated headers within a block become "name.1", "name.2", ...
			if n := seen[headers[c]]; n > 0 {
				name = fmt.Sprintf("%s.%d", headers[c], n)
			}
			seen[headers[c]]++
			pos, ok := position[name]
			if !ok {
				pos = len(columns)
				position[name] = pos
				columns = append(columns, name)
			}
			blockCols[b][c-blk.Start] = pos
		}
	}

	out := domain.NewTable([]string{domain.ColMeasure, domain.ColClimateZone, domain.ColYear}, columns)
	first := headerRowCount - 1
	for b, blk := range blocks {
		for r := first; r < len(grid.Rows); r++ {
			values := make([]string, len(columns))
			for c := blk.Start; c < blk.End; c++ {
				values[blockCols[b][c-blk.Start]] = grid.Cell(r, c)
			}
			out.Rows = append(out.Rows, domain.Row{
				Key:    []string{measures[r], blk.Zone, blk.Year},
				Values: values,
			})
		}
	}
	return out, nil
}
