package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/exporter"
)

// Summary collects the outcome of every entity of a run together with the
// files it wrote.
type Summary struct {
	mu sync.Mutex

	RunID     string    `json:"run_id"`
	Operation string    `json:"operation"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`

	Successes int `json:"successes"`
	Failures  int `json:"failures"`
	Skipped   int `json:"skipped"`

	Outcomes []Outcome    `json:"outcomes"`
	Files    []OutputFile `json:"files"`
	Warnings []string     `json:"warnings,omitempty"`
}

// NewSummary creates an empty summary for one run
func NewSummary(runID, operation string) *Summary {
	return &Summary{
		RunID:     runID,
		Operation: operation,
		StartTime: time.Now(),
		Outcomes:  []Outcome{},
		Files:     []OutputFile{},
	}
}

// Record adds the outcome of one entity
func (s *Summary) Record(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch o.Status {
	case StatusSucceeded:
		s.Successes++
	case StatusFailed:
		s.Failures++
	case StatusSkipped:
		s.Skipped++
	}
	s.Outcomes = append(s.Outcomes, o)
}

// AddFile records a written file with its checksum
func (s *Summary) AddFile(path string, rows int) error {
	sum, err := exporter.Checksum(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files = append(s.Files, OutputFile{Path: path, Rows: rows, Checksum: sum})
	return nil
}

// Warn records a problem that did not fail an entity
func (s *Summary) Warn(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Merge appends the outcomes, files and warnings of other
func (s *Summary) Merge(other *Summary) {
	if other == nil || other == s {
		return
	}
	other.mu.Lock()
	outcomes := append([]Outcome(nil), other.Outcomes...)
	files := append([]OutputFile(nil), other.Files...)
	warnings := append([]string(nil), other.Warnings...)
	other.mu.Unlock()

	for _, o := range outcomes {
		s.Record(o)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files = append(s.Files, files...)
	s.Warnings = append(s.Warnings, warnings...)
}

// Complete stamps the end of the run
func (s *Summary) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime).String()
}

// Failed returns the failed outcomes
func (s *Summary) Failed() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var failed []Outcome
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// SaveToFile saves the summary to a JSON file
func (s *Summary) SaveToFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return exporter.WriteJSON(path, s)
}

// LoadSummaryFromFile loads a summary from a JSON file
func LoadSummaryFromFile(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary file: %w", err)
	}

	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}
