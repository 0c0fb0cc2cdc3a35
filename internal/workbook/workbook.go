// Package workbook reads State CE Analysis workbooks through excelize.
//
// Values are read raw (unformatted). Formula cells can optionally be
// recalculated with the excelize calculation engine, which is how a state
// switch on the State Inputs sheet propagates to the prototype sheets.
package workbook

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
)

// Options controls how a workbook is read
type Options struct {
	// Recalculate evaluates formula cells instead of using cached values.
	Recalculate bool
	// StateSheet and StateCell locate the state selector.
	StateSheet string
	StateCell  string
}

// Workbook is an open workbook
type Workbook struct {
	path   string
	file   *excelize.File
	opts   Options
	logger *slog.Logger
	cache  map[string][][]string
	dirty  bool
}

// Open opens the workbook at path
func Open(path string, opts Options, logger *slog.Logger) (*Workbook, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	if opts.StateSheet == "" {
		opts.StateSheet = "State Inputs"
	}
	if opts.StateCell == "" {
		opts.StateCell = "A4"
	}
	return &Workbook{
		path:   path,
		file:   f,
		opts:   opts,
		logger: logger.With(slog.String("workbook", path)),
		cache:  make(map[string][][]string),
	}, nil
}

// Recalculates reports whether formula cells are evaluated on read
func (w *Workbook) Recalculates() bool {
	return w.opts.Recalculate
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Save writes changes (the state selector) back to the workbook file
func (w *Workbook) Save() error {
	if !w.dirty {
		return nil
	}
	if err := w.file.Save(); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.path, err)
	}
	w.dirty = false
	return nil
}

// sheetRows returns the raw rows of a sheet, read once per sheet
func (w *Workbook) sheetRows(sheet string) ([][]string, error) {
	if rows, ok := w.cache[sheet]; ok {
		return rows, nil
	}
	if idx, err := w.file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	w.cache[sheet] = rows
	return rows, nil
}

// ReadRange returns the rectangular region ref (e.g. "I8:R160") of sheet.
// Every returned row has the width of the region; empty cells are "".
func (w *Workbook) ReadRange(sheet, ref string) ([][]string, error) {
	c1, r1, c2, r2, err := ParseRange(ref)
	if err != nil {
		return nil, err
	}
	rows, err := w.sheetRows(sheet)
	if err != nil {
		return nil, err
	}

	out := make([][]string, r2-r1+1)
	for r := r1; r <= r2; r++ {
		line := make([]string, c2-c1+1)
		for c := c1; c <= c2; c++ {
			v := ""
			if r-1 < len(rows) && c-1 < len(rows[r-1]) {
				v = rows[r-1][c-1]
			}
			if w.opts.Recalculate {
				if v, err = w.evaluate(sheet, c, r, v); err != nil {
					return nil, err
				}
			}
			line[c-c1] = v
		}
		out[r-r1] = line
	}
	return out, nil
}

func (w *Workbook) evaluate(sheet string, col, row int, cached string) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	formula, err := w.file.GetCellFormula(sheet, cell)
	if err != nil || formula == "" {
		return cached, nil
	}
	v, err := w.file.CalcCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		// An Excel error value such as #DIV/0! is the cell's result.
		if msg := err.Error(); strings.HasPrefix(msg, "#") {
			if v == "" {
				v = msg
			}
			return v, nil
		}
		w.logger.Warn("formula evaluation failed",
			slog.String("sheet", sheet),
			slog.String("cell", cell),
			slog.String("formula", formula),
			slog.String("error", err.Error()))
		return "", apperrors.NewParsingError(fmt.Sprintf("failed to evaluate %s!%s", sheet, cell), err).
			WithContext("formula", formula)
	}
	return v, nil
}

// CellValue returns one cell of sheet
func (w *Workbook) CellValue(sheet, cell string) (string, error) {
	rows, err := w.ReadRange(sheet, cell+":"+cell)
	if err != nil {
		return "", err
	}
	return rows[0][0], nil
}

// SelectedState returns the state currently chosen on the state sheet
func (w *Workbook) SelectedState() (string, error) {
	v, err := w.CellValue(w.opts.StateSheet, w.opts.StateCell)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// SelectState writes name into the state selector. Cached reads are
// dropped so that recalculated values reflect the new state.
func (w *Workbook) SelectState(name string) error {
	if err := w.file.SetCellValue(w.opts.StateSheet, w.opts.StateCell, name); err != nil {
		return fmt.Errorf("failed to select state %q: %w", name, err)
	}
	w.cache = make(map[string][][]string)
	w.dirty = true
	return nil
}

// StateList returns the options of the drop-down list attached to the
// state selector. ok is false when the cell carries no list validation.
func (w *Workbook) StateList() (states []string, ok bool, err error) {
	validations, err := w.file.GetDataValidations(w.opts.StateSheet)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read data validations: %w", err)
	}
	for _, dv := range validations {
		if dv == nil || !sqrefContains(dv.Sqref, w.opts.StateCell) {
			continue
		}
		formula := cleanFormula(dv.Formula1)
		if formula == "" {
			continue
		}
		states, err := w.listValues(formula)
		if err != nil {
			return nil, false, err
		}
		return states, true, nil
	}
	return nil, false, nil
}

// listValues expands a list validation formula: either an inline
// comma-separated list or a range reference.
func (w *Workbook) listValues(formula string) ([]string, error) {
	if strings.HasPrefix(formula, `"`) {
		var out []string
		for _, item := range strings.Split(strings.Trim(formula, `"`), ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	}

	sheet := w.opts.StateSheet
	ref := formula
	if i := strings.LastIndex(formula, "!"); i >= 0 {
		sheet = strings.Trim(formula[:i], "'")
		ref = formula[i+1:]
	}
	ref = strings.ReplaceAll(ref, "$", "")
	rows, err := w.ReadRange(sheet, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read state list %s: %w", formula, err)
	}
	var out []string
	for _, r := range rows {
		for _, v := range r {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

func cleanFormula(f string) string {
	f = strings.TrimSpace(f)
	f = strings.TrimPrefix(f, "<formula1>")
	f = strings.TrimSuffix(f, "</formula1>")
	f = strings.TrimPrefix(f, "=")
	return strings.TrimSpace(f)
}

func sqrefContains(sqref, cell string) bool {
	col, row, err := excelize.CellNameToCoordinates(cell)
	if err != nil {
		return false
	}
	for _, part := range strings.Fields(sqref) {
		c1, r1, c2, r2, err := ParseRange(part)
		if err != nil {
			continue
		}
		if col >= c1 && col <= c2 && row >= r1 && row <= r2 {
			return true
		}
	}
	return false
}

// ParseRange converts "B20:X312" (or a single cell) into 1-based inclusive
// column and row bounds.
func ParseRange(ref string) (col1, row1, col2, row2 int, err error) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	first, last, found := strings.Cut(ref, ":")
	if !found {
		last = first
	}
	if col1, row1, err = excelize.CellNameToCoordinates(first); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid range %q: %w", ref, err)
	}
	if col2, row2, err = excelize.CellNameToCoordinates(last); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid range %q: %w", ref, err)
	}
	if col2 < col1 {
		col1, col2 = col2, col1
	}
	if row2 < row1 {
		row1, row2 = row2, row1
	}
	return col1, row1, col2, row2, nil
}
