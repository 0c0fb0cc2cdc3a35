package aggregation

import (
	"fmt"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// MeasureIndex is the key of an extracted HVAC table
var MeasureIndex = []string{domain.ColMeasure, domain.ColClimateZone, domain.ColYear}

// FilterYear keeps the rows whose Year equals year, indexes them by
// (Measure, Climate Zone, Year) and replaces every missing cell with 0.
// Year cells compare numerically, so "2021" and "2021.0" both match 2021.
// The input table is not modified.
func FilterYear(t *domain.Table, year int) (*domain.Table, error) {
	indexed, err := t.Reindex(MeasureIndex...)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot filter by year: %v", err))
	}

	yearLevel := indexed.IndexLevel(domain.ColYear)
	out := domain.NewTable(indexed.Index, indexed.Columns)
	for _, r := range indexed.Rows {
		y, ok := domain.ParseNumber(r.Key[yearLevel])
		if !ok || y != float64(year) {
			continue
		}
		values := make([]string, len(r.Values))
		for i, v := range r.Values {
			if v == "" {
				v = "0"
			}
			values[i] = v
		}
		out.Rows = append(out.Rows, domain.Row{Key: append([]string(nil), r.Key...), Values: values})
	}
	return out, nil
}

// FilterDeviceTypes drops every row whose DeviceType is one of exclude
func FilterDeviceTypes(t *domain.Table, exclude ...domain.DeviceType) (*domain.Table, error) {
	if t.IndexLevel(domain.ColDeviceType) < 0 && t.ColumnIndex(domain.ColDeviceType) < 0 {
		return nil, apperrors.NewMissingColumnError("", domain.ColDeviceType)
	}
	drop := make(map[string]bool, len(exclude))
	for _, d := range exclude {
		drop[string(d)] = true
	}

	out := domain.NewTable(t.Index, t.Columns)
	for i, r := range t.Rows {
		v, _ := t.Value(i, domain.ColDeviceType)
		if drop[v] {
			continue
		}
		out.Rows = append(out.Rows, domain.Row{
			Key:    append([]string(nil), r.Key...),
			Values: append([]string(nil), r.Values...),
		})
	}
	return out, nil
}

// CoerceNumeric rewrites a column as numbers. Cells that do not parse
// become 0.
func CoerceNumeric(t *domain.Table, column string) (*domain.Table, error) {
	col := t.ColumnIndex(column)
	if col < 0 {
		return nil, apperrors.NewMissingColumnError("", column)
	}
	out := t.Clone()
	for i := range out.Rows {
		out.Rows[i].Values[col] = domain.FormatNumber(domain.CoerceNumber(out.Rows[i].Values[col]))
	}
	return out, nil
}

// WithConstant appends a column holding value in every row
func WithConstant(t *domain.Table, column, value string) *domain.Table {
	out := domain.NewTable(t.Index, append(append([]string(nil), t.Columns...), column))
	out.Rows = make([]domain.Row, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = domain.Row{
			Key:    append([]string(nil), r.Key...),
			Values: append(append([]string(nil), r.Values...), value),
		}
	}
	return out
}

// Concatenate stacks tables row-wise. Columns are unioned in first-seen
// order and cells a table does not carry are left blank. All tables must
// share the same index.
func Concatenate(tables ...*domain.Table) (*domain.Table, error) {
	if len(tables) == 0 {
		return nil, apperrors.NewValidationError("no tables to concatenate")
	}
	index := tables[0].Index
	var columns []string
	position := make(map[string]int)
	for _, t := range tables {
		if !sameLevels(t.Index, index) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("index %v does not match %v", t.Index, index))
		}
		for _, c := range t.Columns {
			if _, ok := position[c]; !ok {
				position[c] = len(columns)
				columns = append(columns, c)
			}
		}
	}

	out := domain.NewTable(index, columns)
	for _, t := range tables {
		for _, r := range t.Rows {
			values := make([]string, len(columns))
			for i, c := range t.Columns {
				values[position[c]] = r.Values[i]
			}
			out.Rows = append(out.Rows, domain.Row{Key: append([]string(nil), r.Key...), Values: values})
		}
	}
	return out, nil
}

func sameLevels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FillMissing replaces every blank cell with value. Index levels are left
// as they are.
func FillMissing(t *domain.Table, value string) *domain.Table {
	out := t.Clone()
	for i := range out.Rows {
		for j, v := range out.Rows[i].Values {
			if v == "" {
				out.Rows[i].Values[j] = value
			}
		}
	}
	return out
}
