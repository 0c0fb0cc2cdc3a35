package config

import "github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts"

// Application constants
const (
	AppName    = "cea-pipeline"
	AppVersion = contracts.Version

	// EnvPrefix namespaces environment overrides, e.g. CEA_LOGGING_LEVEL
	EnvPrefix = "CEA"

	// Directories (relative to the base directory)
	DefaultInputDir          = "inputs"
	DefaultHVACDir           = "hvac_data_CE"
	DefaultCostDir           = "cost_data_CE"
	DefaultHVACOutputDir     = "hvac_assembled_cost"
	DefaultEnvelopeOutputDir = "light_envelope_assembled_cost"
	DefaultLogsDir           = "logs"

	// Control files
	DefaultCostMapFile   = "inputs/current_vs_target_master2.csv"
	DefaultTargetMapFile = "inputs/current_vs_target_master_exclude_CE_2010.csv"

	// Output files
	AggregateHVACFile     = "aggregate_hvac"
	LightEnvelopeCostFile = "light_envelope_cost"
	SummaryFile           = "summary.json"

	// Workbook layout
	DefaultStateSheet     = "State Inputs"
	DefaultStateCell      = "A4"
	DefaultStateListRange = "K2:K60"
	DefaultCostSheet      = "Cost Est Summary"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultBuildings lists the HVAC prototype sheets extracted per state
var DefaultBuildings = []string{
	"HVAC Small Office Proto",
	"HVAC Large Office Proto",
	"HVAC Standalone Retail Proto",
	"HVAC Primary School Proto",
	"HVAC Small Hotel Proto",
	"HVAC Mid-rise Apartment Proto",
}
