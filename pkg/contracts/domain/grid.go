package domain

// RawGrid is an untyped worksheet region. Labels holds the header label of
// each column; Rows holds the body. The first two body rows are the
// sub-header rows used to build column names.
type RawGrid struct {
	Labels []string
	Rows   [][]string
}

// Cell returns the body cell at (row, col), or "" outside the grid
func (g RawGrid) Cell(row, col int) string {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Rows[row]) {
		return ""
	}
	return g.Rows[row][col]
}

// Label returns the label of a column, or "" outside the grid
func (g RawGrid) Label(col int) string {
	if col < 0 || col >= len(g.Labels) {
		return ""
	}
	return g.Labels[col]
}

// Width is the number of labelled columns
func (g RawGrid) Width() int {
	return len(g.Labels)
}

// Block is one located (Climate Zone, Year) column range [Start, End)
type Block struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Zone  string `json:"zone"`
	Year  string `json:"year"`
}
