package benchmarks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
	yaml "gopkg.in/yaml.v2"
)

// Load builds the benchmark tables, applying overrides from path on top of
// the built-in defaults. An empty path returns the validated defaults.
// Hjson (.hjson, .json) and YAML (.yaml, .yml) files are accepted; the
// override file only needs the keys it changes.
func Load(path string) (*Tables, error) {
	tables := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("benchmarks: reading %s: %w", path, err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".hjson", ".json":
			if err := applyHJSON(raw, tables); err != nil {
				return nil, fmt.Errorf("benchmarks: parsing %s: %w", path, err)
			}
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(raw, tables); err != nil {
				return nil, fmt.Errorf("benchmarks: parsing %s: %w", path, err)
			}
		default:
			return nil, fmt.Errorf("benchmarks: unsupported table format %q", filepath.Ext(path))
		}
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return tables, nil
}

// applyHJSON decodes lenient Hjson by round-tripping through standard JSON,
// so struct json tags drive the field mapping.
func applyHJSON(raw []byte, into *Tables) error {
	var generic interface{}
	if err := hjson.Unmarshal(raw, &generic); err != nil {
		return err
	}
	jsonBytes, err := json.Marshal(generic)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonBytes, into)
}
