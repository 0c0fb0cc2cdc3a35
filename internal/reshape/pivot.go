// Package reshape converts between long and wide cost tables.
package reshape

import (
	"fmt"
	"sort"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// EnvelopeIndex is the row key of the wide lighting and envelope table
var EnvelopeIndex = []string{domain.ColState, domain.ColBuilding, domain.ColCodeYear, domain.ColDeviceType, domain.ColYear}

// PivotSpec describes a long-to-wide reshape
type PivotSpec struct {
	Index  []string // fields forming the row key
	Column string   // field whose distinct values become columns
	Value  string   // field holding the cell value
	// Numeric index levels sort as numbers.
	Numeric []string
}

// EnvelopePivot spreads climate zones into columns
func EnvelopePivot() PivotSpec {
	return PivotSpec{
		Index:   EnvelopeIndex,
		Column:  domain.ColZone,
		Value:   domain.ColCost,
		Numeric: []string{domain.ColCodeYear, domain.ColYear},
	}
}

// Pivot reshapes a long table into one row per distinct index key and one
// column per distinct value of spec.Column. Values that do not parse as
// numbers become 0. When several rows land in the same cell the last one
// wins. Cells with no source row are blank. Rows are sorted by key and
// columns lexicographically.
func Pivot(t *domain.Table, spec PivotSpec) (*domain.Table, error) {
	fields := append(append([]string(nil), spec.Index...), spec.Column, spec.Value)
	for _, f := range fields {
		if t.IndexLevel(f) < 0 && t.ColumnIndex(f) < 0 {
			return nil, apperrors.NewMissingColumnError("", f)
		}
	}

	type cell struct {
		row string
		col string
	}
	values := make(map[cell]string)
	rowKeys := make(map[string][]string)
	colSet := make(map[string]bool)

	for i := range t.Rows {
		key := make([]string, len(spec.Index))
		for j, f := range spec.Index {
			key[j], _ = t.Value(i, f)
		}
		col, _ := t.Value(i, spec.Column)
		v, _ := t.Value(i, spec.Value)

		k := domain.KeyString(key)
		if _, ok := rowKeys[k]; !ok {
			rowKeys[k] = key
		}
		colSet[col] = true
		values[cell{k, col}] = domain.FormatNumber(domain.CoerceNumber(v))
	}

	columns := make([]string, 0, len(colSet))
	for c := range colSet {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	out := domain.NewTable(spec.Index, columns)
	for k, key := range rowKeys {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = values[cell{k, c}]
		}
		out.Rows = append(out.Rows, domain.Row{Key: key, Values: row})
	}
	out.SortRows(spec.Numeric...)
	return out, nil
}

// Melt is the inverse of Pivot: every non-blank, non-zero cell becomes a
// row keyed by the table index plus the column name.
func Melt(t *domain.Table, column, value string) (*domain.Table, error) {
	if t.IndexLevel(column) >= 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("index already has a %q level", column))
	}
	index := append(append([]string(nil), t.Index...), column)
	out := domain.NewTable(index, []string{value})
	for _, r := range t.Rows {
		for j, c := range t.Columns {
			v := r.Values[j]
			if f, ok := domain.ParseNumber(v); v == "" || (ok && f == 0) {
				continue
			}
			key := append(append([]string(nil), r.Key...), c)
			out.Rows = append(out.Rows, domain.Row{Key: key, Values: []string{v}})
		}
	}
	return out, nil
}
