// Package validation checks the files and directories a pipeline step
// depends on before any entity is processed.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
)

// Preflight validates step inputs and outputs
type Preflight struct {
	logger *slog.Logger
}

// NewPreflight creates a preflight checker
func NewPreflight(logger *slog.Logger) *Preflight {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preflight{logger: logger}
}

// InputDirectory checks that dir exists and is a directory and returns the
// number of files directly inside it matching any of patterns. No match is
// not an error.
func (p *Preflight) InputDirectory(dir string, patterns ...string) (int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		p.logger.Error("Input directory does not exist", slog.String("directory", dir))
		return 0, apperrors.NewNotFoundError("input directory " + dir).WithContext("path", dir)
	}
	if err != nil {
		return 0, apperrors.NewStorageError(fmt.Sprintf("failed to stat %s", dir), err)
	}
	if !info.IsDir() {
		p.logger.Error("Input path is not a directory", slog.String("path", dir))
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s is not a directory", dir))
	}

	count := 0
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return 0, apperrors.NewValidationError(fmt.Sprintf("bad file pattern %q", pattern))
		}
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
				count++
			}
		}
	}

	if len(patterns) > 0 {
		if count == 0 {
			p.logger.Warn("No input files found",
				slog.String("directory", dir),
				slog.Any("patterns", patterns))
		} else {
			p.logger.Info("Input directory validated",
				slog.String("directory", dir),
				slog.Int("files_found", count))
		}
	}
	return count, nil
}

// OutputDirectory creates dir if needed and checks that it is writable
func (p *Preflight) OutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		p.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	f, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		p.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	name := f.Name()
	f.Close()
	os.Remove(name)

	p.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// ControlFile checks that path is an existing, readable regular file
func (p *Preflight) ControlFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		p.logger.Error("Control file does not exist", slog.String("file", path))
		return apperrors.NewNotFoundError("control file " + path).WithContext("path", path)
	}
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat %s", path), err)
	}
	if !info.Mode().IsRegular() {
		return apperrors.NewValidationError(fmt.Sprintf("%s is not a regular file", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("control file %s is not readable", path), err)
	}
	f.Close()

	p.logger.Debug("Control file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}
