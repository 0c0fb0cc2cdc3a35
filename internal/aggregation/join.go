package aggregation

import (
	"fmt"
	"sort"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// Join aligns base and target side by side on their shared index. Every key
// of either side appears exactly once, in key order; the columns of a side
// that lacks the key are left blank.
func Join(base, target *domain.Table) (*domain.Table, error) {
	if !sameLevels(base.Index, target.Index) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("cannot join index %v with %v", base.Index, target.Index))
	}
	for _, c := range target.Columns {
		if base.ColumnIndex(c) >= 0 {
			return nil, apperrors.NewValidationError(fmt.Sprintf("column %q present on both sides", c))
		}
	}

	baseRows, err := uniqueKeys(base)
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	targetRows, err := uniqueKeys(target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	var keys [][]string
	seen := make(map[string]bool)
	for _, t := range []*domain.Table{base, target} {
		for _, r := range t.Rows {
			k := domain.KeyString(r.Key)
			if !seen[k] {
				seen[k] = true
				keys = append(keys, r.Key)
			}
		}
	}
	sort.SliceStable(keys, func(a, b int) bool {
		return domain.CompareKeys(keys[a], keys[b], nil) < 0
	})

	columns := append(append([]string(nil), base.Columns...), target.Columns...)
	out := domain.NewTable(base.Index, columns)
	for _, key := range keys {
		k := domain.KeyString(key)
		values := make([]string, 0, len(columns))
		values = append(values, side(base, baseRows, k)...)
		values = append(values, side(target, targetRows, k)...)
		out.Rows = append(out.Rows, domain.Row{Key: append([]string(nil), key...), Values: values})
	}
	return out, nil
}

func uniqueKeys(t *domain.Table) (map[string]int, error) {
	rows := make(map[string]int, len(t.Rows))
	for i, r := range t.Rows {
		k := domain.KeyString(r.Key)
		if _, dup := rows[k]; dup {
			return nil, apperrors.NewValidationError(fmt.Sprintf("duplicate key %v", r.Key))
		}
		rows[k] = i
	}
	return rows, nil
}

func side(t *domain.Table, rows map[string]int, key string) []string {
	if i, ok := rows[key]; ok {
		return t.Rows[i].Values
	}
	return make([]string, len(t.Columns))
}
