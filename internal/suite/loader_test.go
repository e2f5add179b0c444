package suite

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleCatalog = `
version: "1"
name: custom
description: sample catalog
tasks:
  - id: X1
    category: baseline
    complexity: simple
    prompt: "Compute 2 * 3. Number only."
    expected: "6"
    judge:
      mode: exact
    perturbations:
      - "2*3 = ? Number only."
  - id: X2
    category: tool
    complexity: medium
    prompt: "Weather in Rome; JSON {temp, condition}."
    expected:
      temp: 28
      condition: Sunny
    judge:
      mode: structured
      schema:
        type: object
        properties:
          temp:
            type: number
          condition:
            type: string
        required: [temp, condition]
    declared_tools: [weather_api]
    tool_whitelist: [weather_api]
    tool_failure_probability: 0.15
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog(writeCatalog(t, sampleCatalog))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if catalog.Name() != "custom" {
		t.Fatalf("name = %q, want custom", catalog.Name())
	}
	if catalog.Len() != 2 {
		t.Fatalf("len = %d, want 2", catalog.Len())
	}

	task, ok := catalog.TaskByID("X2")
	if !ok {
		t.Fatalf("X2 not found")
	}
	expected, ok := task.Expected.(map[string]any)
	if !ok {
		t.Fatalf("expected value not normalized to map[string]any: %T", task.Expected)
	}
	if _, ok := expected["condition"].(string); !ok {
		t.Fatalf("nested value lost: %+v", expected)
	}
	if task.Judge.Schema == nil {
		t.Fatalf("schema not decoded")
	}
	if !task.FailureEligible() {
		t.Fatalf("X2 must be failure eligible")
	}
}

func TestLoadCatalogRequiresNameAndVersion(t *testing.T) {
	if _, err := LoadCatalog(writeCatalog(t, "version: \"1\"\ntasks: []\n")); err == nil {
		t.Fatalf("expected missing name error")
	}
	if _, err := LoadCatalog(writeCatalog(t, "name: x\ntasks: []\n")); err == nil {
		t.Fatalf("expected missing version error")
	}
}

func TestLoadCatalogRejectsInvalidTask(t *testing.T) {
	bad := `
version: "1"
name: bad
tasks:
  - id: B1
    category: baseline
    complexity: simple
    prompt: "p"
    judge:
      mode: pattern
`
	if _, err := LoadCatalog(writeCatalog(t, bad)); err == nil {
		t.Fatalf("pattern mode without pattern must be rejected")
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}
