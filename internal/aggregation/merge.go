package aggregation

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// Reducer folds the cells of one column within a key group
type Reducer func(values []string) string

// Sum adds numeric cells. Missing and non-numeric cells count as zero.
func Sum(values []string) string {
	total := 0.0
	for _, v := range values {
		total += domain.CoerceNumber(v)
	}
	return domain.FormatNumber(total)
}

// Last returns the last non-missing cell, or "" when every cell is missing.
func Last(values []string) string {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != "" {
			return values[i]
		}
	}
	return ""
}

// MergeConfig separates the columns summed across a group from the
// attributes carried through by last value.
type MergeConfig struct {
	// KeyLevels is the number of leading index levels that form the group key.
	KeyLevels int `yaml:"key_levels" json:"key_levels" validate:"min=1"`
	// NonAdditive columns are reduced with Last instead of Sum and placed
	// after the summed columns.
	NonAdditive []string `yaml:"non_additive" json:"non_additive"`
}

// DefaultMergeConfig groups by (Measure, Climate Zone) and carries
// Replacement Life through by last value.
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{
		KeyLevels:   2,
		NonAdditive: []string{domain.ColReplacementLife},
	}
}

type group struct {
	key  []string
	rows []int
}

// Concat unions the tables of one side of a comparison and reduces them
// per key in two phases: additive columns are summed and non-additive
// columns take their last value. Every resulting column is renamed to
// "{role}: {column}". Groups come out in key order. A configured
// non-additive column missing from the input is an error.
func Concat(tables []*domain.Table, role domain.Role, cfg MergeConfig) (*domain.Table, error) {
	if cfg.KeyLevels < 1 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("key levels must be positive, got %d", cfg.KeyLevels))
	}

	trimmed := make([]*domain.Table, len(tables))
	for i, t := range tables {
		c := t.Clone()
		for j := range c.Columns {
			c.Columns[j] = strings.TrimSpace(c.Columns[j])
		}
		trimmed[i] = c
	}
	all, err := Concatenate(trimmed...)
	if err != nil {
		return nil, err
	}
	if len(all.Index) < cfg.KeyLevels {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("table has %d index levels, %d needed for grouping", len(all.Index), cfg.KeyLevels))
	}

	// phase a: split the column sets
	nonAdditive := make(map[string]bool, len(cfg.NonAdditive))
	for _, name := range cfg.NonAdditive {
		name = strings.TrimSpace(name)
		if all.ColumnIndex(name) < 0 {
			return nil, apperrors.NewMissingColumnError(string(role), name)
		}
		nonAdditive[name] = true
	}
	var additiveCols, lastCols []int
	for i, c := range all.Columns {
		if nonAdditive[c] {
			lastCols = append(lastCols, i)
		} else {
			additiveCols = append(additiveCols, i)
		}
	}

	// group rows by key, keeping input order within a group
	groups := make(map[string]*group)
	var order []*group
	for i, r := range all.Rows {
		key := r.Key[:cfg.KeyLevels]
		k := domain.KeyString(key)
		g, ok := groups[k]
		if !ok {
			g = &group{key: append([]string(nil), key...)}
			groups[k] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return domain.CompareKeys(order[a].key, order[b].key, nil) < 0
	})

	// phase b: reduce each set with its reducer and merge by key
	prefix := strings.TrimSpace(string(role)) + ": "
	columns := make([]string, 0, len(all.Columns))
	for _, i := range additiveCols {
		columns = append(columns, prefix+all.Columns[i])
	}
	for _, i := range lastCols {
		columns = append(columns, prefix+all.Columns[i])
	}

	out := domain.NewTable(all.Index[:cfg.KeyLevels], columns)
	cells := make([]string, 0)
	reduce := func(g *group, col int, fn Reducer) string {
		cells = cells[:0]
		for _, r := range g.rows {
			cells = append(cells, all.Rows[r].Values[col])
		}
		return fn(cells)
	}
	for _, g := range order {
		values := make([]string, 0, len(columns))
		for _, col := range additiveCols {
			values = append(values, reduce(g, col, Sum))
		}
		for _, col := range lastCols {
			values = append(values, reduce(g, col, Last))
		}
		out.Rows = append(out.Rows, domain.Row{Key: g.key, Values: values})
	}
	return out, nil
}
