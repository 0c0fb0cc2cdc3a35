package files

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// ReadTable reads a CSV written by the exporter. The header names every
// field; the first indexLevels fields become the index and the rest the
// columns. Short lines are padded with blanks.
func ReadTable(path string, indexLevels int) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(path)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()
	return DecodeTable(f, path, indexLevels)
}

// DecodeTable reads a table from r; name identifies the source in errors
func DecodeTable(r io.Reader, name string, indexLevels int) (*domain.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s is empty", name), nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read header of %s", name), err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if indexLevels < 0 || indexLevels > len(header) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("%s has %d fields, cannot index %d levels", name, len(header), indexLevels))
	}

	t := domain.NewTable(header[:indexLevels], header[indexLevels:])
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read %s", name), err)
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("%s line %d has %d fields, header has %d", name, line, len(record), len(header)), nil)
		}
		if len(record) < len(header) {
			// blank line or trailing empty cells
			if len(record) == 1 && record[0] == "" {
				continue
			}
			record = append(record, make([]string, len(header)-len(record))...)
		}
		t.Rows = append(t.Rows, domain.Row{
			Key:    record[:indexLevels:indexLevels],
			Values: record[indexLevels:],
		})
	}
	return t, nil
}

// YearDir returns the subdirectory of root holding one code year's outputs
func YearDir(root string, year int) string {
	return filepath.Join(root, strconv.Itoa(year))
}

// HVACTablePath is the extracted table of one state and building for a
// code year: {root}/{year}/{state}_{building}.csv
func HVACTablePath(root string, year int, state, building string) string {
	return filepath.Join(YearDir(root, year), HVACTableName(state, building)+".csv")
}

// HVACTableName is the file stem of a state and building table
func HVACTableName(state, building string) string {
	return state + "_" + building
}

// CostTablePath is the extracted cost summary of one state for a code
// year: {root}/{year}/{state}.csv
func CostTablePath(root string, year int, state string) string {
	return filepath.Join(YearDir(root, year), state+".csv")
}

// OutputPath returns {dir}/{name}.csv
func OutputPath(dir, name string) string {
	return filepath.Join(dir, name+".csv")
}
