package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Resolve makes every relative path absolute against BaseDir, or the
// working directory when BaseDir is empty. Empty paths stay empty.
func (p *PathsConfig) Resolve() {
	base := p.BaseDir
	if base == "" {
		if wd, err := os.Getwd(); err == nil {
			base = wd
		}
	}
	p.BaseDir = base

	for _, path := range []*string{
		&p.InputDir,
		&p.HVACDir,
		&p.CostDir,
		&p.HVACOutputDir,
		&p.EnvelopeOutputDir,
		&p.CostMapFile,
		&p.TargetMapFile,
		&p.LogsDir,
	} {
		*path = resolve(base, *path)
	}
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// EnsureDirectories creates the output directories if they don't exist
func (p *PathsConfig) EnsureDirectories() error {
	for _, dir := range []string{p.HVACDir, p.CostDir, p.HVACOutputDir, p.EnvelopeOutputDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs the resolved paths
func (p *PathsConfig) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("input", p.InputDir),
			slog.String("hvac", p.HVACDir),
			slog.String("cost", p.CostDir),
			slog.String("hvac_output", p.HVACOutputDir),
			slog.String("envelope_output", p.EnvelopeOutputDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("control_files",
			slog.String("cost_map", p.CostMapFile),
			slog.String("target_map", p.TargetMapFile),
		))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
