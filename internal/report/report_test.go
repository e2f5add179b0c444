package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena/internal/metrics"
)

func rate(v float64) *float64 { return &v }

func sampleRun() *Run {
	run := NewRun("builtin", 16, true)
	run.Add(metrics.DimensionScores{
		Pattern:            "react",
		TotalTrials:        52,
		BaseTrials:         16,
		SuccessRateStrict:  rate(1.0),
		SuccessRateLenient: rate(1.0),
		ControllabilityGap: rate(0.0),
		AvgLatency:         rate(0.012),
		MedianLatency:      rate(0.010),
		AvgTotalTokens:     rate(120),
		RobustnessScore:    rate(0.85),
		RobustnessByTask:   map[string]float64{"B4": 0.5, "A1": 1.0},
	})
	run.Add(metrics.DimensionScores{
		Pattern:           "reflex",
		TotalTrials:       52,
		BaseTrials:        16,
		SuccessRateStrict: rate(0.9),
		AvgLatency:        rate(0.002),
	})
	return run
}

func TestJSONRoundTrip(t *testing.T) {
	run := sampleRun()
	path := filepath.Join(t.TempDir(), "out", "run.json")

	require.NoError(t, WriteJSON(path, run))

	loaded, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, run.RunID, loaded.RunID)
	require.Len(t, loaded.Patterns, 2)
	assert.Equal(t, "react", loaded.Patterns[0].Pattern)
	require.NotNil(t, loaded.Patterns[0].SuccessRateStrict)
	assert.Equal(t, 1.0, *loaded.Patterns[0].SuccessRateStrict)
	// Null rates must stay null through the round trip.
	assert.Nil(t, loaded.Patterns[1].RobustnessScore)
}

func TestJSONNullRatesSerialization(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, WriteJSON(path, sampleRun()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `"successRateStrict": 1`)
	assert.Contains(t, text, `"robustnessScore": null`)
	assert.Contains(t, text, `"controllabilityGap"`)
}

func TestCSVShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	require.NoError(t, WriteCSV(path, sampleRun()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "react", rows[1][0])
	// reflex has no robustness score: empty cell, not zero.
	robustnessCol := -1
	for i, name := range csvHeader {
		if name == "robustnessScore" {
			robustnessCol = i
		}
	}
	require.GreaterOrEqual(t, robustnessCol, 0)
	assert.Equal(t, "", rows[2][robustnessCol])
}

func TestMarkdownContent(t *testing.T) {
	md := buildMarkdown(sampleRun())
	assert.Contains(t, md, "# Agent Pattern Evaluation Report")
	assert.Contains(t, md, "| react |")
	assert.Contains(t, md, "| reflex |")
	assert.Contains(t, md, "Best strict success rate:** react")
	assert.Contains(t, md, "B4 (50%)")
	assert.Contains(t, md, "n/a")
}

func TestWinnerPrefersRateThenLatency(t *testing.T) {
	run := NewRun("builtin", 16, false)
	run.Add(metrics.DimensionScores{Pattern: "a", SuccessRateStrict: rate(0.9), AvgLatency: rate(0.5)})
	run.Add(metrics.DimensionScores{Pattern: "b", SuccessRateStrict: rate(0.9), AvgLatency: rate(0.1)})
	run.Add(metrics.DimensionScores{Pattern: "c"})
	assert.Equal(t, "b", run.Winner())
}

func TestPrintConsole(t *testing.T) {
	var buf bytes.Buffer
	PrintConsole(&buf, sampleRun())
	out := buf.String()
	if !strings.Contains(out, "react") || !strings.Contains(out, "reflex") {
		t.Fatalf("console output missing patterns:\n%s", out)
	}
	if !strings.Contains(out, "n/a") {
		t.Fatalf("null rates must render as n/a:\n%s", out)
	}
}
