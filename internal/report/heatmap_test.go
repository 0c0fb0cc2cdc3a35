package report

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/palette/brewer"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/shared/testutil"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

func hvacTable(t *testing.T, rows ...[]string) *domain.Table {
	t.Helper()
	tbl := domain.NewTable(
		[]string{domain.ColMeasure, domain.ColClimateZone, domain.ColYear},
		[]string{ColReplacementCost},
	)
	for _, r := range rows {
		require.NoError(t, tbl.AddRow(r[:3], r[3:]))
	}
	return tbl
}

func TestReplacementCostMatrix(t *testing.T) {
	texasOffice := hvacTable(t,
		[]string{"Economizer", "2A", "2018", "10"},
		[]string{"Fan", "2A", "2018", "5"},
		[]string{"Economizer", "2A", "9", "1"},
		[]string{"Economizer", "2A", "2021", "40"},
		[]string{"Economizer", "3B", "2018", "7"},
	)
	texasSchool := hvacTable(t,
		[]string{"Economizer", "2A", "2018", "3"},
		[]string{"Economizer", "2A", "2021", "1"},
	)
	ohioOffice := hvacTable(t,
		[]string{"Economizer", "5A", "2018", "n/a"},
		[]string{"Economizer", "5A", "2021", "2"},
	)

	logger, handler := testutil.NewTestLogger(t)
	m, skipped := ReplacementCostMatrix([]Entry{
		{State: "Texas", Building: "Office", Table: texasOffice},
		{State: "Texas", Building: "School", Table: texasSchool},
		{State: "Ohio", Building: "Office", Table: ohioOffice},
	}, logger)

	assert.Empty(t, skipped)
	assert.Equal(t, []string{"Office", "School"}, m.Rows)
	assert.Equal(t, []string{"Texas: 2A", "Texas: 3B", "Ohio: 5A"}, m.Columns)

	// 2021 minus 2018: numeric year order keeps "9" first
	assert.Equal(t, 25.0, m.Value(0, 0))
	assert.True(t, math.IsNaN(m.Value(0, 1)))
	assert.Equal(t, 2.0, m.Value(0, 2))
	assert.Equal(t, -2.0, m.Value(1, 0))
	assert.True(t, math.IsNaN(m.Value(1, 2)))
	testutil.AssertNoErrors(t, handler)
}

func TestReplacementCostMatrix_SkipsTablesWithoutCost(t *testing.T) {
	tbl := domain.NewTable([]string{domain.ColMeasure, domain.ColClimateZone, domain.ColYear}, []string{"Cost"})
	logger, handler := testutil.NewTestLogger(t)

	m, skipped := ReplacementCostMatrix([]Entry{{State: "Texas", Building: "Office", Table: tbl}}, logger)
	require.Len(t, skipped, 1)
	assert.Empty(t, m.Rows)
	assert.True(t, handler.ContainsMessage("skipping replacement cost entry"))
	assert.True(t, handler.ContainsAttr("state", "Texas"))
}

func TestSaveHeatmap(t *testing.T) {
	m := &Matrix{
		Rows:    []string{"Office", "School"},
		Columns: []string{"Texas: 2A", "Texas: 3B"},
		Values:  [][]float64{{25, math.NaN()}, {-2, 4}},
	}
	path := filepath.Join(t.TempDir(), "plots", "heatmap.png")

	require.NoError(t, SaveHeatmap(m, "Replacement cost change", path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveHeatmap_NoValues(t *testing.T) {
	m := &Matrix{
		Rows:    []string{"Office"},
		Columns: []string{"Texas: 2A"},
		Values:  [][]float64{{math.NaN()}},
	}
	err := SaveHeatmap(m, "empty", filepath.Join(t.TempDir(), "heatmap.png"))
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
}

func TestSaveHeatmap_ConstantZero(t *testing.T) {
	m := &Matrix{
		Rows:    []string{"Office"},
		Columns: []string{"Texas: 2A"},
		Values:  [][]float64{{0}},
	}
	assert.NoError(t, SaveHeatmap(m, "flat", filepath.Join(t.TempDir(), "heatmap.png")))
}

func TestReversedPalette(t *testing.T) {
	rdbu, err := brewer.GetPalette(brewer.TypeDiverging, "RdBu", 11)
	require.NoError(t, err)

	want := rdbu.Colors()
	got := reversed{rdbu}.Colors()
	require.Len(t, got, len(want))
	assert.Equal(t, want[0], got[len(got)-1])
	assert.Equal(t, want[len(want)-1], got[0])
	assert.Equal(t, want[5], got[5])
}
