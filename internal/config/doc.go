// Package config provides configuration management for the cost-effectiveness
// pipeline.
//
// # Configuration Sources
//
// Configuration is layered in the following order, later sources winning:
//
//	1. Default values (Default)
//	2. A YAML file passed to Load
//	3. Environment variables
//
// # Environment Variables
//
// Environment variables follow the pattern CEA_<SECTION>_<FIELD>:
//
//	CEA_LOGGING_LEVEL=debug
//	CEA_PATHS_INPUT_DIR=/data/workbooks
//	CEA_EXTRACTION_RECALCULATE=true
//	CEA_EXTRACTION_BUILDINGS="HVAC Small Office Proto,HVAC Large Office Proto"
//	CEA_TELEMETRY_ENABLED=true
//
// # Paths
//
// Relative paths are resolved against paths.base_dir, which defaults to the
// directory of the config file or, without one, the working directory.
//
// # Usage
//
//	cfg, err := config.Load(*configPath)
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
