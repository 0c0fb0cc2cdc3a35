package operations

// Step identifiers, also used as span names and metric labels
const (
	StepExtractHVAC      = "extract_hvac"
	StepExtractCost      = "extract_cost"
	StepAssembleHVAC     = "assemble_hvac"
	StepAssembleEnvelope = "assemble_envelope"
	StepHeatmap          = "heatmap"
)

// Step names
const (
	StepNameExtractHVAC      = "HVAC Extraction"
	StepNameExtractCost      = "Cost Summary Extraction"
	StepNameAssembleHVAC     = "HVAC Cost Assembly"
	StepNameAssembleEnvelope = "Lighting and Envelope Cost Assembly"
	StepNameHeatmap          = "Replacement Cost Heatmap"
)

// Entity outcome values
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// StepName returns the display name of a step identifier
func StepName(step string) string {
	switch step {
	case StepExtractHVAC:
		return StepNameExtractHVAC
	case StepExtractCost:
		return StepNameExtractCost
	case StepAssembleHVAC:
		return StepNameAssembleHVAC
	case StepAssembleEnvelope:
		return StepNameAssembleEnvelope
	case StepHeatmap:
		return StepNameHeatmap
	}
	return step
}

// Outcome is the result of processing one entity: a workbook, a state,
// or a state and building.
type Outcome struct {
	Step    string   `json:"step"`
	Entity  string   `json:"entity"`
	Status  string   `json:"status"`
	Reason  string   `json:"reason,omitempty"`
	Rows    int      `json:"rows,omitempty"`
	Outputs []string `json:"outputs,omitempty"`
}

// OutputFile is a file written during a run
type OutputFile struct {
	Path     string `json:"path"`
	Rows     int    `json:"rows,omitempty"`
	Checksum string `json:"blake2b_256"`
}
