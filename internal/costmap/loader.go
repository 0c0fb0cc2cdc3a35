// Package costmap loads the control files that map each state to the code
// years it is evaluated for.
//
// A control file is a CSV with a header row. The HVAC pipeline needs the
// columns state, target and base; the lighting and envelope pipeline needs
// state and target. Year cells hold one integer or a ";"-separated list,
// paired positionally between target and base.
package costmap

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/rlutes/90.1-cost-effectiveness-analysis/internal/errors"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/pkg/contracts/domain"
)

// Control file columns
const (
	ColumnState  = "state"
	ColumnTarget = "target"
	ColumnBase   = "base"
)

// RowIssue describes a control-file row that was skipped
type RowIssue struct {
	Line   int    `json:"line"`
	State  string `json:"state"`
	Reason string `json:"reason"`
}

type record struct {
	line   int
	fields map[string]string
}

// readRecords reads the header and rows of a control file, failing when a
// required column is absent.
func readRecords(r io.Reader, name string, required ...string) ([]record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewMissingColumnError(name, required[0])
	}
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read header of %s", name), err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	position := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := position[h]; !dup {
			position[h] = i
		}
	}
	for _, col := range required {
		if _, ok := position[col]; !ok {
			return nil, apperrors.NewMissingColumnError(name, col)
		}
	}

	var records []record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read %s", name), err)
		}
		line, _ := reader.FieldPos(0)
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		fields := make(map[string]string, len(required))
		for _, col := range required {
			if i := position[col]; i < len(row) {
				fields[col] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, record{line: line, fields: fields})
	}
	return records, nil
}

// ParseYears parses "2015" or "2015;2018" into an ordered list of years
func ParseYears(s string) ([]int, error) {
	parts := strings.Split(s, ";")
	years := make([]int, 0, len(parts))
	for _, p := range parts {
		y, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("year %q is not an integer", p)
		}
		years = append(years, y)
	}
	return years, nil
}

// LoadCostMap reads a state/target/base control file. Rows with a
// non-integer year or with target and base lists of different length are
// skipped and reported. A missing column is returned as an error matching
// errors.ErrMissingColumn.
func LoadCostMap(r io.Reader, name string, logger *slog.Logger) (*domain.CostMap, []RowIssue, error) {
	if logger == nil {
		logger = slog.Default()
	}
	records, err := readRecords(r, name, ColumnState, ColumnTarget, ColumnBase)
	if err != nil {
		return nil, nil, err
	}

	m := domain.NewCostMap()
	var issues []RowIssue
	skip := func(rec record, reason string) {
		issue := RowIssue{Line: rec.line, State: rec.fields[ColumnState], Reason: reason}
		issues = append(issues, issue)
		logger.Warn("skipping cost map row",
			slog.String("file", name),
			slog.Int("line", issue.Line),
			slog.String("state", issue.State),
			slog.String("reason", reason))
	}

	for _, rec := range records {
		target, err := ParseYears(rec.fields[ColumnTarget])
		if err != nil {
			skip(rec, "target: "+err.Error())
			continue
		}
		base, err := ParseYears(rec.fields[ColumnBase])
		if err != nil {
			skip(rec, "base: "+err.Error())
			continue
		}
		if len(target) != len(base) {
			skip(rec, fmt.Sprintf("%d target years but %d base years", len(target), len(base)))
			continue
		}
		m.Set(rec.fields[ColumnState], domain.StateYears{Target: target, Base: base})
	}

	logger.Info("loaded cost map",
		slog.String("file", name),
		slog.Int("states", len(m.States)),
		slog.Int("skipped_rows", len(issues)))
	return m, issues, nil
}

// LoadTargetMap reads a state/target control file
func LoadTargetMap(r io.Reader, name string, logger *slog.Logger) (*domain.TargetMap, []RowIssue, error) {
	if logger == nil {
		logger = slog.Default()
	}
	records, err := readRecords(r, name, ColumnState, ColumnTarget)
	if err != nil {
		return nil, nil, err
	}

	m := domain.NewTargetMap()
	var issues []RowIssue
	for _, rec := range records {
		target, err := ParseYears(rec.fields[ColumnTarget])
		if err != nil {
			issue := RowIssue{Line: rec.line, State: rec.fields[ColumnState], Reason: "target: " + err.Error()}
			issues = append(issues, issue)
			logger.Warn("skipping target map row",
				slog.String("file", name),
				slog.Int("line", issue.Line),
				slog.String("state", issue.State),
				slog.String("reason", issue.Reason))
			continue
		}
		m.Set(rec.fields[ColumnState], target)
	}
	return m, issues, nil
}

// LoadCostMapFile opens path and loads it with LoadCostMap
func LoadCostMapFile(path string, logger *slog.Logger) (*domain.CostMap, []RowIssue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.NewStorageError(fmt.Sprintf("failed to open cost map %s", path), err)
	}
	defer f.Close()
	return LoadCostMap(f, path, logger)
}

// LoadTargetMapFile opens path and loads it with LoadTargetMap
func LoadTargetMapFile(path string, logger *slog.Logger) (*domain.TargetMap, []RowIssue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.NewStorageError(fmt.Sprintf("failed to open target map %s", path), err)
	}
	defer f.Close()
	return LoadTargetMap(f, path, logger)
}
