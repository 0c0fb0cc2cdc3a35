package reshape

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

var longColumns = []string{"Building", "Year", "DeviceType", "ClimateZone", "Cost", "State", "CodeYear"}

func longTable(t *testing.T, rows ...[]string) *domain.Table {
	t.Helper()
	tbl := domain.NewTable(nil, longColumns)
	for _, r := range rows {
		require.NoError(t, tbl.AddRow(nil, r))
	}
	return tbl
}

func TestPivot(t *testing.T) {
	src := longTable(t,
		[]string{"Office", "10", "Lighting", "5A", "3", "Texas", "2018"},
		[]string{"Office", "-1", "Lighting", "5A", "1.5", "Texas", "2018"},
		[]string{"Office", "-1", "Lighting", "4A", "oops", "Texas", "2018"},
		[]string{"Office", "2", "Envelope", "4A", "7", "Texas", "2015"},
	)

	got, err := Pivot(src, EnvelopePivot())
	require.NoError(t, err)

	assert.Equal(t, EnvelopeIndex, got.Index)
	assert.Equal(t, []string{"4A", "5A"}, got.Columns)
	assert.Equal(t, []domain.Row{
		{Key: []string{"Texas", "Office", "2015", "Envelope", "2"}, Values: []string{"7", ""}},
		{Key: []string{"Texas", "Office", "2018", "Lighting", "-1"}, Values: []string{"0", "1.5"}},
		{Key: []string{"Texas", "Office", "2018", "Lighting", "10"}, Values: []string{"", "3"}},
	}, got.Rows)
}

func TestPivot_DuplicateCellLastWins(t *testing.T) {
	src := longTable(t,
		[]string{"Office", "1", "Lighting", "5A", "3", "Texas", "2018"},
		[]string{"Office", "1", "Lighting", "5A", "4", "Texas", "2018"},
	)

	got, err := Pivot(src, EnvelopePivot())
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, []string{"4"}, got.Rows[0].Values)
}

func TestPivot_MissingField(t *testing.T) {
	src := domain.NewTable(nil, []string{"Building", "Cost"})
	_, err := Pivot(src, EnvelopePivot())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMissingColumn))
}

func TestPivotMeltRoundTrip(t *testing.T) {
	src := longTable(t,
		[]string{"Office", "0", "Lighting", "5A", "3", "Texas", "2018"},
		[]string{"Office", "0", "Lighting", "4A", "2.25", "Texas", "2018"},
		[]string{"Retail", "1", "Envelope", "4A", "9", "Ohio", "2021"},
		[]string{"Retail", "1", "Envelope", "6B", "-4", "Ohio", "2021"},
		[]string{"Retail", "2", "Envelope", "6B", "0", "Ohio", "2021"},
	)

	wide, err := Pivot(src, EnvelopePivot())
	require.NoError(t, err)
	long, err := Melt(wide, domain.ColZone, domain.ColCost)
	require.NoError(t, err)

	type entry struct {
		key  string
		cost string
	}
	collect := func(tbl *domain.Table, key func(i int) []string, cost func(i int) string) []entry {
		var out []entry
		for i := range tbl.Rows {
			c := cost(i)
			if f, ok := domain.ParseNumber(c); !ok || f == 0 {
				continue
			}
			out = append(out, entry{domain.KeyString(key(i)), c})
		}
		sort.Slice(out, func(a, b int) bool { return out[a].key < out[b].key })
		return out
	}

	fields := append(append([]string(nil), EnvelopeIndex...), domain.ColZone)
	want := collect(src, func(i int) []string {
		key := make([]string, len(fields))
		for j, f := range fields {
			key[j], _ = src.Value(i, f)
		}
		return key
	}, func(i int) string {
		v, _ := src.Value(i, domain.ColCost)
		return v
	})
	got := collect(long, func(i int) []string { return long.Rows[i].Key }, func(i int) string { return long.Rows[i].Values[0] })

	assert.Equal(t, want, got)
	assert.Len(t, got, 4)
}

func TestMelt_RejectsExistingLevel(t *testing.T) {
	tbl := domain.NewTable([]string{domain.ColZone}, []string{"x"})
	_, err := Melt(tbl, domain.ColZone, domain.ColCost)
	assert.Error(t, err)
}
