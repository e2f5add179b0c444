package suite

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogDefinition is the YAML-backed description of an external benchmark
// catalog. The built-in suite is authoritative for comparisons; external
// definitions exist so teams can maintain their own task banks.
type CatalogDefinition struct {
	Version     string `yaml:"version"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Tasks       []Task `yaml:"tasks"`
}

// LoadCatalog reads, validates and builds a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var def CatalogDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if strings.TrimSpace(def.Name) == "" {
		return nil, fmt.Errorf("catalog name is required")
	}
	if strings.TrimSpace(def.Version) == "" {
		return nil, fmt.Errorf("catalog version is required")
	}

	normalizeExpected(def.Tasks)
	return NewCatalog(def.Name, def.Tasks)
}

// normalizeExpected rewrites YAML-decoded expected values so they compare
// cleanly against JSON-decoded pattern output: string-keyed maps and
// []any lists all the way down.
func normalizeExpected(tasks []Task) {
	for i := range tasks {
		tasks[i].Expected = normalizeValue(tasks[i].Expected)
		if tasks[i].Judge.Schema != nil {
			if m, ok := normalizeValue(tasks[i].Judge.Schema).(map[string]any); ok {
				tasks[i].Judge.Schema = m
			}
		}
	}
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
