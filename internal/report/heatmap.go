// Package report renders the replacement-cost overview of an HVAC extraction.
package report

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// ColReplacementCost is the summed column of an extracted HVAC table
const ColReplacementCost = "Total Replacement Cost"

// Entry is the extracted table of one state and building
type Entry struct {
	State    string
	Building string
	Table    *domain.Table
}

// Matrix holds one value per building (row) and "{state}: {zone}" (column).
// Missing cells are NaN.
type Matrix struct {
	Rows    []string
	Columns []string
	Values  [][]float64
}

// Value returns the cell at row r, column c
func (m *Matrix) Value(r, c int) float64 {
	return m.Values[r][c]
}

func (m *Matrix) rowIndex(name string) int {
	for i, r := range m.Rows {
		if r == name {
			return i
		}
	}
	m.Rows = append(m.Rows, name)
	row := make([]float64, len(m.Columns))
	for i := range row {
		row[i] = math.NaN()
	}
	m.Values = append(m.Values, row)
	return len(m.Rows) - 1
}

func (m *Matrix) columnIndex(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	m.Columns = append(m.Columns, name)
	for i := range m.Values {
		m.Values[i] = append(m.Values[i], math.NaN())
	}
	return len(m.Columns) - 1
}

// ReplacementCostMatrix sums Total Replacement Cost per (Climate Zone, Year)
// for every entry and keeps, per zone, the difference between the last two
// years. A zone with a single year yields NaN. Entries without the cost
// column are skipped and returned.
func ReplacementCostMatrix(entries []Entry, logger *slog.Logger) (*Matrix, []Entry) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Matrix{}
	var skipped []Entry

	for _, e := range entries {
		diffs, zones, err := lastYearDifference(e.Table)
		if err != nil {
			logger.Warn("skipping replacement cost entry",
				slog.String("state", e.State),
				slog.String("building", e.Building),
				slog.String("error", err.Error()))
			skipped = append(skipped, e)
			continue
		}
		r := m.rowIndex(e.Building)
		for _, z := range zones {
			c := m.columnIndex(fmt.Sprintf("%s: %s", e.State, z))
			m.Values[r][c] = diffs[z]
		}
	}
	return m, skipped
}

func lastYearDifference(t *domain.Table) (map[string]float64, []string, error) {
	for _, f := range []string{domain.ColClimateZone, domain.ColYear, ColReplacementCost} {
		if t.IndexLevel(f) < 0 && t.ColumnIndex(f) < 0 {
			return nil, nil, apperrors.NewMissingColumnError("", f)
		}
	}

	sums := make(map[string]map[string]float64)
	var zones []string
	for i := range t.Rows {
		zone, _ := t.Value(i, domain.ColClimateZone)
		year, _ := t.Value(i, domain.ColYear)
		cost, _ := t.Value(i, ColReplacementCost)
		if _, ok := sums[zone]; !ok {
			sums[zone] = make(map[string]float64)
			zones = append(zones, zone)
		}
		sums[zone][year] += domain.CoerceNumber(cost)
	}
	numeric := []bool{true}
	sort.Slice(zones, func(i, j int) bool { return zones[i] < zones[j] })

	diffs := make(map[string]float64, len(zones))
	for _, z := range zones {
		years := make([]string, 0, len(sums[z]))
		for y := range sums[z] {
			years = append(years, y)
		}
		sort.Slice(years, func(i, j int) bool {
			return domain.CompareKeys([]string{years[i]}, []string{years[j]}, numeric) < 0
		})
		if len(years) < 2 {
			diffs[z] = math.NaN()
			continue
		}
		diffs[z] = sums[z][years[len(years)-1]] - sums[z][years[len(years)-2]]
	}
	return diffs, zones, nil
}

// grid adapts a Matrix to plotter.GridXYZ: columns along X, rows along Y
type grid struct {
	m *Matrix
}

func (g grid) Dims() (c, r int)   { return len(g.m.Columns), len(g.m.Rows) }
func (g grid) Z(c, r int) float64 { return g.m.Values[r][c] }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }

// valueRange returns the largest absolute finite value, or false when the
// matrix carries none
func (m *Matrix) valueRange() (float64, bool) {
	limit, found := 0.0, false
	for _, row := range m.Values {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			found = true
			limit = math.Max(limit, math.Abs(v))
		}
	}
	return limit, found
}

// SaveHeatmap renders m with a diverging palette centred on zero. The image
// format follows the extension of path.
func SaveHeatmap(m *Matrix, title, path string) error {
	limit, ok := m.valueRange()
	if !ok {
		return apperrors.NewValidationError("replacement cost matrix has no values to plot")
	}
	if limit == 0 {
		limit = 1
	}

	rdbu, err := brewer.GetPalette(brewer.TypeDiverging, "RdBu", 11)
	if err != nil {
		return fmt.Errorf("failed to load palette: %w", err)
	}
	hm := plotter.NewHeatMap(grid{m}, reversed{rdbu})
	hm.Min = -limit
	hm.Max = limit

	p := plot.New()
	p.Title.Text = title
	p.Add(hm)

	xTicks := make([]plot.Tick, len(m.Columns))
	for i, c := range m.Columns {
		xTicks[i] = plot.Tick{Value: float64(i), Label: c}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Min = -0.5
	p.X.Max = float64(len(m.Columns)) - 0.5

	yTicks := make([]plot.Tick, len(m.Rows))
	for i, r := range m.Rows {
		yTicks[i] = plot.Tick{Value: float64(i), Label: r}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.Y.Min = -0.5
	p.Y.Max = float64(len(m.Rows)) - 0.5

	width := vg.Length(math.Max(8, 0.3*float64(len(m.Columns)))) * vg.Inch
	height := vg.Length(math.Max(4, 0.4*float64(len(m.Rows))+3)) * vg.Inch

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create directory for %s", path), err)
	}
	if err := p.Save(width, height, path); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to save heatmap %s", path), err)
	}
	return nil
}

// reversed flips a palette so that negative changes render blue
type reversed struct {
	palette.Palette
}

func (r reversed) Colors() []color.Color {
	c := r.Palette.Colors()
	out := make([]color.Color, len(c))
	for i := range c {
		out[len(c)-1-i] = c[i]
	}
	return out
}
