package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
)

// Config represents the complete pipeline configuration
type Config struct {
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Paths       PathsConfig       `yaml:"paths" envconfig:"PATHS"`
	Extraction  ExtractionConfig  `yaml:"extraction" envconfig:"EXTRACTION"`
	Aggregation AggregationConfig `yaml:"aggregation" envconfig:"AGGREGATION"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" envconfig:"TELEMETRY"`
	Report      ReportConfig      `yaml:"report" envconfig:"REPORT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PathsConfig contains the pipeline directories and control files.
// Relative paths are resolved against BaseDir.
type PathsConfig struct {
	BaseDir           string `yaml:"base_dir" envconfig:"BASE_DIR"`
	InputDir          string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	HVACDir           string `yaml:"hvac_dir" envconfig:"HVAC_DIR" validate:"required"`
	CostDir           string `yaml:"cost_dir" envconfig:"COST_DIR" validate:"required"`
	HVACOutputDir     string `yaml:"hvac_output_dir" envconfig:"HVAC_OUTPUT_DIR" validate:"required"`
	EnvelopeOutputDir string `yaml:"envelope_output_dir" envconfig:"ENVELOPE_OUTPUT_DIR" validate:"required"`
	CostMapFile       string `yaml:"cost_map_file" envconfig:"COST_MAP_FILE" validate:"required"`
	TargetMapFile     string `yaml:"target_map_file" envconfig:"TARGET_MAP_FILE" validate:"required"`
	LogsDir           string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// ExtractionConfig controls how workbooks are read
type ExtractionConfig struct {
	Buildings      []string `yaml:"buildings" envconfig:"BUILDINGS" validate:"required,min=1,dive,required"`
	Recalculate    bool     `yaml:"recalculate" envconfig:"RECALCULATE"`
	SaveWorkbooks  bool     `yaml:"save_workbooks" envconfig:"SAVE_WORKBOOKS"`
	IncludeXLSX    bool     `yaml:"include_xlsx" envconfig:"INCLUDE_XLSX"`
	StateSheet     string   `yaml:"state_sheet" envconfig:"STATE_SHEET" validate:"required"`
	StateCell      string   `yaml:"state_cell" envconfig:"STATE_CELL" validate:"required"`
	StateListRange string   `yaml:"state_list_range" envconfig:"STATE_LIST_RANGE"`
	CostSheet      string   `yaml:"cost_sheet" envconfig:"COST_SHEET" validate:"required"`
}

// AggregationConfig controls the per-side reduction
type AggregationConfig struct {
	KeyLevels   int      `yaml:"key_levels" envconfig:"KEY_LEVELS" validate:"min=1"`
	NonAdditive []string `yaml:"non_additive" envconfig:"NON_ADDITIVE"`
}

// TelemetryConfig controls tracing and metrics output
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// ReportConfig controls the replacement-cost heatmap
type ReportConfig struct {
	Heatmap     bool   `yaml:"heatmap" envconfig:"HEATMAP"`
	HeatmapFile string `yaml:"heatmap_file" envconfig:"HEATMAP_FILE" validate:"required_if=Heatmap true"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: filepath.Join(DefaultLogsDir, "pipeline.log"),
		},
		Paths: PathsConfig{
			InputDir:          DefaultInputDir,
			HVACDir:           DefaultHVACDir,
			CostDir:           DefaultCostDir,
			HVACOutputDir:     DefaultHVACOutputDir,
			EnvelopeOutputDir: DefaultEnvelopeOutputDir,
			CostMapFile:       DefaultCostMapFile,
			TargetMapFile:     DefaultTargetMapFile,
			LogsDir:           DefaultLogsDir,
		},
		Extraction: ExtractionConfig{
			Buildings:      append([]string(nil), DefaultBuildings...),
			StateSheet:     DefaultStateSheet,
			StateCell:      DefaultStateCell,
			StateListRange: DefaultStateListRange,
			CostSheet:      DefaultCostSheet,
		},
		Aggregation: AggregationConfig{
			KeyLevels:   2,
			NonAdditive: []string{"Replacement Life"},
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
			MetricsFile: "metrics.prom",
		},
		Report: ReportConfig{
			HeatmapFile: "replacement_cost_heatmap.png",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path when
// path is not empty, and CEA_* environment variables, in that order of
// precedence, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
		if cfg.Paths.BaseDir == "" {
			cfg.Paths.BaseDir = filepath.Dir(path)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Paths.Resolve()
	return cfg, nil
}

// loadFromFile overlays the YAML file at path onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
	}
	return nil
}

// Validate checks the struct tags of every section
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return apperrors.NewConfigError(
				fmt.Sprintf("config validation failed: %s failed on %q", first.Namespace(), first.Tag()), err).
				WithContext("field", first.Namespace())
		}
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}
