package aggregation

import (
	"fmt"
	"sort"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// Level is an index level inserted with the same value in every row
type Level struct {
	Position int
	Name     string
	Value    string
}

// InsertLevels adds constant index levels. Positions refer to the final
// index and are applied in ascending order. Rows and columns are unchanged.
func InsertLevels(t *domain.Table, levels ...Level) (*domain.Table, error) {
	sorted := append([]Level(nil), levels...)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Position < sorted[b].Position })

	out := t.Clone()
	for _, l := range sorted {
		if l.Position < 0 || l.Position > len(out.Index) {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("cannot insert level %q at %d into %d levels", l.Name, l.Position, len(out.Index)))
		}
		if out.IndexLevel(l.Name) >= 0 {
			return nil, apperrors.NewValidationError(fmt.Sprintf("index level %q already exists", l.Name))
		}
		out.Index = insertAt(out.Index, l.Position, l.Name)
		for i := range out.Rows {
			out.Rows[i].Key = insertAt(out.Rows[i].Key, l.Position, l.Value)
		}
	}
	return out, nil
}

// InsertStateBuilding prefixes the index with State and Building
func InsertStateBuilding(t *domain.Table, state, building string) (*domain.Table, error) {
	return InsertLevels(t,
		Level{Position: 0, Name: domain.ColState, Value: state},
		Level{Position: 1, Name: domain.ColBuilding, Value: building})
}

func insertAt(s []string, pos int, v string) []string {
	s = append(s, "")
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}
