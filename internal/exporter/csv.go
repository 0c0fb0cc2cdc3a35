package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV replaces the file at filePath with the given header and records.
// The file is written next to its destination and renamed into place, so a
// failed write never leaves a truncated output.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*")
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create %s", filePath), err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := writeRecords(tmp, options); err != nil {
		tmp.Close()
		return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", filePath), err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to close %s", filePath), err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to set mode of %s", filePath), err)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to replace %s", filePath), err)
	}
	return nil
}

func writeRecords(f *os.File, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(f)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTable writes t with a header of its index level names followed by
// its column names, one line per row in table order. It returns the number
// of rows written.
func (w *CSVWriter) WriteTable(filePath string, t *domain.Table) (int, error) {
	headers := make([]string, 0, len(t.Index)+len(t.Columns))
	headers = append(headers, t.Index...)
	headers = append(headers, t.Columns...)

	records := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		record := make([]string, 0, len(headers))
		record = append(record, r.Key...)
		record = append(record, r.Values...)
		records[i] = record
	}

	if err := w.WriteCSV(filePath, WriteOptions{Headers: headers, Records: records}); err != nil {
		return 0, err
	}
	w.logger.Info("Wrote table",
		slog.String("file_path", filePath),
		slog.Int("rows", len(records)),
		slog.Int("columns", len(t.Columns)))
	return len(records), nil
}
