package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// sampleGrid has three blocks: two in zone 2A and one in zone 3B.
func sampleGrid() ([]string, domain.RawGrid) {
	labels := []string{
		"Climate Zone", "2A", "Code", "2021.0", "other", "Code", "2019",
		"Climate Zone", "3B", "Code", "2021.1", "tail",
	}
	rows := [][]string{
		{"", "", "Equipment", "Labor", "Replacement", "Equipment", "Labor", "", "", "Equipment", "Labor", "Replacement"},
		{"", "", "Cost", "Cost ", "Life", "Cost", "Cost", "", "", "Cost", "Cost", "Life"},
		{"", "", "100", "10", "15", "90", "9", "", "", "200", "20", "20"},
		{"", "", "110", "11", "15", "95", "", "", "", "210", "21", "20"},
	}
	measures := []string{"hdr", "hdr", "Boiler", "Chiller"}
	return measures, domain.RawGrid{Labels: labels, Rows: rows}
}

func TestLocateBlocks(t *testing.T) {
	_, grid := sampleGrid()

	blocks, err := LocateBlocks(grid.Labels)
	require.NoError(t, err)

	assert.Equal(t, []domain.Block{
		{Start: 2, End: 5, Zone: "2A", Year: "2021"},
		{Start: 5, End: 7, Zone: "2A", Year: "2019"},
		{Start: 9, End: 12, Zone: "3B", Year: "2021"},
	}, blocks)
}

func TestLocateBlocks_Errors(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
	}{
		{name: "code before any climate zone", labels: []string{"Code", "2021", "Climate Zone", "2A"}},
		{name: "code in last column", labels: []string{"Climate Zone", "2A", "Code"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LocateBlocks(tt.labels)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrBlockLayout))
		})
	}
}

func TestJoinHeaders(t *testing.T) {
	grid := domain.RawGrid{
		Labels: []string{"a", "b", "c", "d"},
		Rows: [][]string{
			{" Equipment ", "", "Labor", "x"},
			{"Cost", "", ""},
		},
	}

	assert.Equal(t, []string{"Equipment Cost", "", "Labor", "x"}, JoinHeaders(grid))
}

func TestExtractBlocks(t *testing.T) {
	measures, grid := sampleGrid()

	table, err := ExtractBlocks(measures, grid, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{domain.ColMeasure, domain.ColClimateZone, domain.ColYear}, table.Index)
	assert.Equal(t, []string{"Equipment Cost", "Labor Cost", "Replacement Life"}, table.Columns)

	want := []domain.Row{
		{Key: []string{"Boiler", "2A", "2021"}, Values: []string{"100", "10", "15"}},
		{Key: []string{"Chiller", "2A", "2021"}, Values: []string{"110", "11", "15"}},
		{Key: []string{"Boiler", "2A", "2019"}, Values: []string{"90", "9", ""}},
		{Key: []string{"Chiller", "2A", "2019"}, Values: []string{"95", "", ""}},
		{Key: []string{"Boiler", "3B", "2021"}, Values: []string{"200", "20", "20"}},
		{Key: []string{"Chiller", "3B", "2021"}, Values: []string{"210", "21", "20"}},
	}
	assert.Equal(t, want, table.Rows)
}

func TestExtractBlocks_RowCountProperty(t *testing.T) {
	measures, grid := sampleGrid()
	// add body rows; every block must grow by the same amount
	for i := 0; i < 5; i++ {
		grid.Rows = append(grid.Rows, []string{"", "", "1", "1", "1", "1", "1", "", "", "1", "1", "1"})
		measures = append(measures, "Extra")
	}

	for _, headerRows := range []int{1, 2, 3} {
		table, err := ExtractBlocks(measures, grid, headerRows)
		require.NoError(t, err)

		blocks, err := LocateBlocks(grid.Labels)
		require.NoError(t, err)
		assert.Equal(t, len(blocks)*(len(grid.Rows)-headerRows+1), table.Len())
	}
}

func TestExtractBlocks_DuplicateKeysAreKept(t *testing.T) {
	grid := domain.RawGrid{
		Labels: []string{"Climate Zone", "4A", "Code", "2021", "Code", "2021"},
		Rows: [][]string{
			{"", "", "Cost", "", "Cost", ""},
			{"", "", "", "", "", ""},
			{"", "", "5", "", "7", ""},
		},
	}

	table, err := ExtractBlocks([]string{"", "", "M1"}, grid, 3)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, table.Rows[0].Key, table.Rows[1].Key)
}

func TestExtractBlocks_RepeatedHeadersInBlock(t *testing.T) {
	grid := domain.RawGrid{
		Labels: []string{"Climate Zone", "2A", "Code", "2021", "", "", "Code", "2018", ""},
		Rows: [][]string{
			{"", "", "Material", "Labor", "Adj", "Adj", "Material", "Adj", "Adj"},
			{"", "", "Cost", "Cost", "", "", "Cost", "", ""},
			{"", "", "1", "2", "3", "4", "5", "6", "7"},
		},
	}

	table, err := ExtractBlocks([]string{"", "", "Boiler"}, grid, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"Material Cost", "Labor Cost", "Adj", "Adj.1"}, table.Columns)
	assert.Equal(t, []domain.Row{
		{Key: []string{"Boiler", "2A", "2021"}, Values: []string{"1", "2", "3", "4"}},
		{Key: []string{"Boiler", "2A", "2018"}, Values: []string{"5", "", "6", "7"}},
	}, table.Rows)
}

func TestExtractBlocks_Validation(t *testing.T) {
	measures, grid := sampleGrid()

	_, err := ExtractBlocks(measures[:2], grid, 3)
	assert.Error(t, err)

	_, err = ExtractBlocks(measures, grid, 0)
	assert.Error(t, err)

	grid.Labels = []string{"Climate Zone", "2A", "Other"}
	_, err = ExtractBlocks(measures, grid, 3)
	assert.True(t, errors.Is(err, apperrors.ErrBlockLayout))
}
