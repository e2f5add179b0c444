// Package report renders evaluation runs as JSON, Markdown, CSV and a
// colored console comparison. It is a pure consumer of dimension scores.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"arena/internal/metrics"
)

// Run is one complete evaluation: every pattern scored against the same
// catalog.
type Run struct {
	RunID       string                    `json:"runId"`
	GeneratedAt time.Time                 `json:"generatedAt"`
	Catalog     string                    `json:"catalog"`
	TaskCount   int                       `json:"taskCount"`
	Robustness  bool                      `json:"robustness"`
	Patterns    []metrics.DimensionScores `json:"patterns"`
}

// NewRun stamps a fresh run envelope.
func NewRun(catalog string, taskCount int, robustness bool) *Run {
	return &Run{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Catalog:     catalog,
		TaskCount:   taskCount,
		Robustness:  robustness,
	}
}

func (r *Run) Add(scores metrics.DimensionScores) {
	r.Patterns = append(r.Patterns, scores)
}

// WriteJSON writes the run as indented JSON, creating parent directories
// as needed.
func WriteJSON(path string, run *Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// LoadJSON reads a run previously written by WriteJSON.
func LoadJSON(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", path, err)
	}
	return &run, nil
}

// csvHeader stays aligned with csvRow below.
var csvHeader = []string{
	"pattern", "totalTrials", "baseTrials",
	"successRateStrict", "successRateLenient", "controllabilityGap",
	"avgLatency", "medianLatency", "avgTotalTokens", "avgSteps", "avgToolCalls",
	"robustnessScore", "toolFailureRecoveryScore",
	"schemaComplianceRate", "toolPolicyAdherenceRate",
}

// WriteCSV writes one row per pattern. Null rates stay as empty cells.
func WriteCSV(path string, run *Run) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range run.Patterns {
		if err := w.Write(csvRow(p)); err != nil {
			return fmt.Errorf("write csv row for %s: %w", p.Pattern, err)
		}
	}
	w.Flush()
	return w.Error()
}

func csvRow(p metrics.DimensionScores) []string {
	return []string{
		p.Pattern,
		strconv.Itoa(p.TotalTrials),
		strconv.Itoa(p.BaseTrials),
		csvRate(p.SuccessRateStrict),
		csvRate(p.SuccessRateLenient),
		csvRate(p.ControllabilityGap),
		csvRate(p.AvgLatency),
		csvRate(p.MedianLatency),
		csvRate(p.AvgTotalTokens),
		csvRate(p.AvgSteps),
		csvRate(p.AvgToolCalls),
		csvRate(p.RobustnessScore),
		csvRate(p.ToolFailureRecoveryScore),
		csvRate(p.SchemaComplianceRate),
		csvRate(p.ToolPolicyAdherenceRate),
	}
}

func csvRate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
