package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Column and index level names shared by the extractors and assemblers.
const (
	ColMeasure         = "Measure"
	ColClimateZone     = "Climate Zone"
	ColYear            = "Year"
	ColReplacementLife = "Replacement Life"
	ColBuilding        = "Building"
	ColDeviceType      = "DeviceType"
	ColZone            = "ClimateZone"
	ColCost            = "Cost"
	ColState           = "State"
	ColCodeYear        = "CodeYear"
)

// DeviceType identifies a cost group of the Cost Est Summary sheet
type DeviceType string

const (
	DeviceHVAC     DeviceType = "HVAC"
	DeviceLighting DeviceType = "Lighting"
	DeviceEnvelope DeviceType = "Envelope"
	DeviceTotal    DeviceType = "Total"
)

// Role labels one side of a base/target comparison
type Role string

const (
	RoleBase   Role = "Base"
	RoleTarget Role = "Target"
)

// Row is one table row. Key is aligned with Table.Index and Values with
// Table.Columns. An empty string is a missing cell.
type Row struct {
	Key    []string
	Values []string
}

// Table is a row-ordered, multi-key table of string cells. Keys are not
// required to be unique.
type Table struct {
	Index   []string
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given index levels and columns
func NewTable(index, columns []string) *Table {
	return &Table{
		Index:   append([]string(nil), index...),
		Columns: append([]string(nil), columns...),
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// AddRow appends a row after checking its shape
func (t *Table) AddRow(key, values []string) error {
	if len(key) != len(t.Index) {
		return fmt.Errorf("row key has %d levels, table index has %d", len(key), len(t.Index))
	}
	if len(values) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.Columns))
	}
	t.Rows = append(t.Rows, Row{
		Key:    append([]string(nil), key...),
		Values: append([]string(nil), values...),
	})
	return nil
}

// ColumnIndex returns the position of a column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// IndexLevel returns the position of an index level, or -1
func (t *Table) IndexLevel(name string) int {
	for i, c := range t.Index {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell of row r in the named column or index level.
func (t *Table) Value(r int, name string) (string, bool) {
	if i := t.IndexLevel(name); i >= 0 {
		return t.Rows[r].Key[i], true
	}
	if i := t.ColumnIndex(name); i >= 0 {
		return t.Rows[r].Values[i], true
	}
	return "", false
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	out := NewTable(t.Index, t.Columns)
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = Row{
			Key:    append([]string(nil), r.Key...),
			Values: append([]string(nil), r.Values...),
		}
	}
	return out
}

// Reindex moves the named fields (index levels or columns) into the index,
// in order. Remaining index levels become ordinary leading columns.
func (t *Table) Reindex(levels ...string) (*Table, error) {
	type src struct {
		inKey bool
		pos   int
	}
	locate := func(name string) (src, error) {
		if i := t.IndexLevel(name); i >= 0 {
			return src{true, i}, nil
		}
		if i := t.ColumnIndex(name); i >= 0 {
			return src{false, i}, nil
		}
		return src{}, fmt.Errorf("column %q not found", name)
	}

	wanted := make(map[string]bool, len(levels))
	keySrc := make([]src, 0, len(levels))
	for _, name := range levels {
		s, err := locate(name)
		if err != nil {
			return nil, err
		}
		wanted[name] = true
		keySrc = append(keySrc, s)
	}

	var columns []string
	var colSrc []src
	for i, name := range t.Index {
		if !wanted[name] {
			columns = append(columns, name)
			colSrc = append(colSrc, src{true, i})
		}
	}
	for i, name := range t.Columns {
		if !wanted[name] {
			columns = append(columns, name)
			colSrc = append(colSrc, src{false, i})
		}
	}

	pick := func(r Row, s src) string {
		if s.inKey {
			return r.Key[s.pos]
		}
		return r.Values[s.pos]
	}

	out := NewTable(levels, columns)
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		key := make([]string, len(keySrc))
		for j, s := range keySrc {
			key[j] = pick(r, s)
		}
		vals := make([]string, len(colSrc))
		for j, s := range colSrc {
			vals[j] = pick(r, s)
		}
		out.Rows[i] = Row{Key: key, Values: vals}
	}
	return out, nil
}

// SortRows orders rows by key. Levels listed in numeric compare as numbers
// when both cells parse; everything else compares as text. The sort is
// stable so equal keys keep their input order.
func (t *Table) SortRows(numeric ...string) {
	numLevel := make([]bool, len(t.Index))
	for _, name := range numeric {
		if i := t.IndexLevel(name); i >= 0 {
			numLevel[i] = true
		}
	}
	sort.SliceStable(t.Rows, func(a, b int) bool {
		return CompareKeys(t.Rows[a].Key, t.Rows[b].Key, numLevel) < 0
	})
}

// CompareKeys compares two keys level by level
func CompareKeys(a, b []string, numeric []bool) int {
	for i := range a {
		if i >= len(b) {
			return 1
		}
		if c := compareCell(a[i], b[i], i < len(numeric) && numeric[i]); c != 0 {
			return c
		}
	}
	if len(a) < len(b) {
		return -1
	}
	return 0
}

func compareCell(a, b string, numeric bool) int {
	if numeric {
		fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
		fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
		if errA == nil && errB == nil {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(a, b)
}

// KeyString joins a key into a single map key
func KeyString(key []string) string {
	return strings.Join(key, "\x1f")
}
