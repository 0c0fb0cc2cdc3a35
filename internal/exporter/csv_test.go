package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/shared/testutil"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

func sampleTable(t *testing.T) *domain.Table {
	t.Helper()
	tbl := domain.NewTable(
		[]string{domain.ColMeasure, domain.ColClimateZone},
		[]string{"Base: Cost", "Base: Replacement Life"},
	)
	require.NoError(t, tbl.AddRow([]string{"Economizer", "2A"}, []string{"12", "15"}))
	require.NoError(t, tbl.AddRow([]string{"Fan, VSD", "3B"}, []string{"0.5", ""}))
	return tbl
}

func TestWriteTable(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	w := NewCSVWriter(logger)
	path := filepath.Join(t.TempDir(), "hvac", "2018", "Texas_HVAC Small Office Proto.csv")

	n, err := w.WriteTable(path, sampleTable(t))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, handler.ContainsAttr("rows", int64(2)))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Measure,Climate Zone,Base: Cost,Base: Replacement Life\n"+
			"Economizer,2A,12,15\n"+
			"\"Fan, VSD\",3B,0.5,\n",
		string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestWriteTable_RerunIsByteIdentical(t *testing.T) {
	w := NewCSVWriter(nil)
	path := filepath.Join(t.TempDir(), "out.csv")

	_, err := w.WriteTable(path, sampleTable(t))
	require.NoError(t, err)
	first, err := Checksum(path)
	require.NoError(t, err)

	_, err = w.WriteTable(path, sampleTable(t))
	require.NoError(t, err)
	second, err := Checksum(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWriteTable_Overwrites(t *testing.T) {
	w := NewCSVWriter(nil)
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the table\n"), 0644))

	empty := domain.NewTable([]string{"State"}, []string{"Cost"})
	_, err := w.WriteTable(path, empty)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "State,Cost\n", string(content))
}

func TestWriteCSV_BOM(t *testing.T) {
	w := NewCSVWriter(nil)
	path := filepath.Join(t.TempDir(), "bom.csv")

	require.NoError(t, w.WriteCSV(path, WriteOptions{
		Headers:   []string{"a"},
		Records:   [][]string{{"1"}},
		BOMPrefix: true,
	}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\ufeffa\n1\n", string(content))
}

func TestChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	sum, err := Checksum(path)
	require.NoError(t, err)
	assert.Equal(t, "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8", sum)

	_, err = Checksum(filepath.Join(dir, "absent"))
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "summary.json")
	require.NoError(t, WriteJSON(path, map[string]int{"successes": 2}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"successes\": 2\n}\n", string(content))
}
