package domain

// YearPair is one base/target comparison
type YearPair struct {
	Target int `json:"target"`
	Base   int `json:"base"`
}

// StateYears holds the positionally paired target and base code years of a state
type StateYears struct {
	Target []int `json:"target"`
	Base   []int `json:"base"`
}

// CostMap maps a state to the code years to compare. States keeps the order
// in which they first appeared in the control file.
type CostMap struct {
	States []string              `json:"states"`
	Years  map[string]StateYears `json:"years"`
}

// NewCostMap creates an empty cost map
func NewCostMap() *CostMap {
	return &CostMap{Years: make(map[string]StateYears)}
}

// Set records the years of a state, replacing earlier entries
func (m *CostMap) Set(state string, years StateYears) {
	if _, ok := m.Years[state]; !ok {
		m.States = append(m.States, state)
	}
	m.Years[state] = years
}

// Pairs returns the comparisons for a state in control-file order
func (m *CostMap) Pairs(state string) []YearPair {
	y, ok := m.Years[state]
	if !ok {
		return nil
	}
	n := len(y.Target)
	if len(y.Base) < n {
		n = len(y.Base)
	}
	pairs := make([]YearPair, n)
	for i := 0; i < n; i++ {
		pairs[i] = YearPair{Target: y.Target[i], Base: y.Base[i]}
	}
	return pairs
}

// TargetMap maps a state to the target code years of the lighting and
// envelope pipeline.
type TargetMap struct {
	States []string         `json:"states"`
	Years  map[string][]int `json:"years"`
}

// NewTargetMap creates an empty target map
func NewTargetMap() *TargetMap {
	return &TargetMap{Years: make(map[string][]int)}
}

// Set records the target years of a state
func (m *TargetMap) Set(state string, years []int) {
	if _, ok := m.Years[state]; !ok {
		m.States = append(m.States, state)
	}
	m.Years[state] = years
}
