package files

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestFindWorkbooks(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "901-19_State_CE_Analysis.xlsm"))
	touch(t, filepath.Join(dir, "nested", "901-10_State_CE_Analysis_082024.xlsm"))
	touch(t, filepath.Join(dir, "901-13_State_CE_Analysis.XLSM"))
	touch(t, filepath.Join(dir, "901-16_State_CE_Analysis.xlsx"))
	touch(t, filepath.Join(dir, "~$901-19_State_CE_Analysis.xlsm"))
	touch(t, filepath.Join(dir, "current_vs_target_master2.csv"))

	tests := []struct {
		name        string
		includeXLSX bool
		expected    []string
	}{
		{
			name: "macro-enabled only",
			expected: []string{
				"901-13_State_CE_Analysis.XLSM",
				"901-19_State_CE_Analysis.xlsm",
				"901-10_State_CE_Analysis_082024.xlsm",
			},
		},
		{
			name:        "with xlsx",
			includeXLSX: true,
			expected: []string{
				"901-13_State_CE_Analysis.XLSM",
				"901-16_State_CE_Analysis.xlsx",
				"901-19_State_CE_Analysis.xlsm",
				"901-10_State_CE_Analysis_082024.xlsm",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := NewDiscovery(dir, tt.includeXLSX).FindWorkbooks()
			require.NoError(t, err)

			names := make([]string, len(found))
			for i, f := range found {
				names[i] = f.Name
				assert.Equal(t, int64(1), f.Size)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestFindWorkbooks_MissingDirectory(t *testing.T) {
	_, err := NewDiscovery(filepath.Join(t.TempDir(), "absent"), false).FindWorkbooks()
	assert.Error(t, err)
}

func TestFindYearWorkbooks(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "901-19_State_CE_Analysis.xlsm"))
	touch(t, filepath.Join(dir, "analysis.xlsm"))

	workbooks, unnamed, err := NewDiscovery(dir, false).FindYearWorkbooks()
	require.NoError(t, err)
	require.Len(t, workbooks, 1)
	assert.Equal(t, 2019, workbooks[0].Year)
	require.Len(t, unnamed, 1)
	assert.Equal(t, "analysis.xlsm", unnamed[0].Name)
}

func TestYearFromWorkbookName(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{name: "901-10_State_CE_Analysis_082024.xlsm", want: 2010},
		{name: "901_22-State.xlsm", want: 2022},
		{name: "/inputs/2018/901-16_x.xlsm", want: 2016},
		{name: "analysis.xlsm", wantErr: true},
		{name: "901--x.xlsm", wantErr: true},
		{name: "901-ab_x.xlsm", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := YearFromWorkbookName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeTable(t *testing.T) {
	input := "\ufeffMeasure,Climate Zone,Year,Cost,Replacement Life\n" +
		"Economizer,2A,2018,12,15\n" +
		"\"Fan, VSD\",3B,2018,0.5\n"

	tbl, err := DecodeTable(strings.NewReader(input), "Texas.csv", 0)
	require.NoError(t, err)
	assert.Empty(t, tbl.Index)
	assert.Equal(t, []string{"Measure", "Climate Zone", "Year", "Cost", "Replacement Life"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"Fan, VSD", "3B", "2018", "0.5", ""}, tbl.Rows[1].Values)

	indexed, err := DecodeTable(strings.NewReader(input), "Texas.csv", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Measure", "Climate Zone"}, indexed.Index)
	assert.Equal(t, []string{"Economizer", "2A"}, indexed.Rows[0].Key)
	assert.Equal(t, []string{"2018", "12", "15"}, indexed.Rows[0].Values)
}

func TestDecodeTable_Errors(t *testing.T) {
	_, err := DecodeTable(strings.NewReader(""), "empty.csv", 0)
	assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))

	_, err = DecodeTable(strings.NewReader("a,b\n1,2,3\n"), "wide.csv", 0)
	assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))

	_, err = DecodeTable(strings.NewReader("a,b\n"), "narrow.csv", 3)
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
}

func TestReadTable(t *testing.T) {
	dir := t.TempDir()
	path := CostTablePath(dir, 2018, "Texas")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("Building,Cost\nSmall Office,3\n"), 0644))

	tbl, err := ReadTable(path, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Small Office"}, tbl.Rows[0].Key)

	_, err = ReadTable(CostTablePath(dir, 2018, "Ohio"), 1)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestTablePaths(t *testing.T) {
	assert.Equal(t, filepath.Join("hvac", "2018", "Texas_HVAC Small Office Proto.csv"),
		HVACTablePath("hvac", 2018, "Texas", "HVAC Small Office Proto"))
	assert.Equal(t, filepath.Join("cost", "2021", "Ohio.csv"), CostTablePath("cost", 2021, "Ohio"))
	assert.Equal(t, filepath.Join("out", "aggregate_hvac.csv"), OutputPath("out", "aggregate_hvac"))
	assert.True(t, FileExists(t.TempDir()))
}
