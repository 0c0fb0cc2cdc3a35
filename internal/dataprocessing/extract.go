package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// Workbook is the view of a State CE Analysis workbook the extractors need
type Workbook interface {
	RangeReader
	StateList() ([]string, bool, error)
	SelectedState() (string, error)
	SelectState(name string) error
	Recalculates() bool
}

// StateInputs locates the state tables on the state sheet
type StateInputs struct {
	Sheet             string
	AbbreviationRange string
	ZoneCountRange    string
	// FallbackListRange is read when the selector carries no drop-down list.
	FallbackListRange string
}

// DefaultStateInputs matches the State Inputs sheet of the 90.1 workbooks
func DefaultStateInputs() StateInputs {
	return StateInputs{
		Sheet:             "State Inputs",
		AbbreviationRange: "B9:B60",
		ZoneCountRange:    "F9:F60",
	}
}

// ResolveStates returns the states to extract. Without recalculation only
// the currently selected state has valid cached values, so it is the only
// one returned; a warning is logged when the selector lists more.
func ResolveStates(wb Workbook, in StateInputs, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !wb.Recalculates() {
		current, err := wb.SelectedState()
		if err != nil {
			return nil, fmt.Errorf("failed to read selected state: %w", err)
		}
		if current == "" {
			return nil, apperrors.NewValidationError("no state selected in workbook")
		}
		listed, ok, err := wb.StateList()
		switch {
		case err != nil:
			logger.Warn("failed to read state list", slog.String("error", err.Error()))
		case ok && len(listed) > 1:
			logger.Warn("recalculation disabled, extracting the selected state only",
				slog.String("state", current),
				slog.Int("listed_states", len(listed)))
		}
		return []string{current}, nil
	}

	states, ok, err := wb.StateList()
	if err != nil {
		return nil, err
	}
	if ok {
		return states, nil
	}
	if in.FallbackListRange == "" {
		return nil, apperrors.NewValidationError("state selector has no drop-down list and no fallback range is configured")
	}
	rows, err := wb.ReadRange(in.Sheet, in.FallbackListRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read state list: %w", err)
	}
	for _, v := range flatten(rows) {
		if v = strings.TrimSpace(v); v != "" {
			states = append(states, v)
		}
	}
	return states, nil
}

// ReadZoneCounts reads the climate zone count of every state on the state sheet
func ReadZoneCounts(wb RangeReader, in StateInputs) (map[string]int, error) {
	abbr, err := wb.ReadRange(in.Sheet, in.AbbreviationRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read state abbreviations: %w", err)
	}
	counts, err := wb.ReadRange(in.Sheet, in.ZoneCountRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read climate zone counts: %w", err)
	}
	return ClimateZoneCounts(flatten(abbr), flatten(counts)), nil
}

// activate makes state the selected state when the workbook recalculates
func activate(wb Workbook, state string) error {
	if !wb.Recalculates() {
		return nil
	}
	return wb.SelectState(state)
}

// HVACExtraction configures ExtractStateHVAC
type HVACExtraction struct {
	Buildings []string
	Layout    HVACSheetLayout
	Inputs    StateInputs
}

// ExtractStateHVAC extracts every prototype sheet for one state. A state
// that cannot be resolved to a known abbreviation or zone count yields an
// empty map and no error.
func ExtractStateHVAC(wb Workbook, state string, zoneCounts map[string]int, cfg HVACExtraction, logger *slog.Logger) (map[string]*domain.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := activate(wb, state); err != nil {
		return nil, err
	}

	abbr, ok := StateAbbreviation(state)
	zones, found := zoneCounts[abbr]
	if !ok || !found {
		logger.Warn("state not resolvable, skipping",
			slog.String("state", state),
			slog.String("abbreviation", abbr))
		return map[string]*domain.Table{}, nil
	}

	out := make(map[string]*domain.Table, len(cfg.Buildings))
	for _, building := range cfg.Buildings {
		table, err := ParseHVACSheet(wb, building, zones, cfg.Layout, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s for %s: %w", building, state, err)
		}
		out[building] = table
	}
	return out, nil
}

// ExtractStateCost extracts the cost summary of one state
func ExtractStateCost(wb Workbook, state string, layout CostSummaryLayout, logger *slog.Logger) (*domain.Table, error) {
	if err := activate(wb, state); err != nil {
		return nil, err
	}
	grid, err := wb.ReadRange(layout.Sheet, layout.Range)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s!%s: %w", layout.Sheet, layout.Range, err)
	}
	table, err := ParseCostSummary(grid, layout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to extract cost summary for %s: %w", state, err)
	}
	return table, nil
}
