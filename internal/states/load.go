package states

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"aslharness/internal/fsutil"
)

// LoadDefinition reads a state machine document from disk (spec §6 Input
// 1), accepting either JSON or YAML auto-detected by extension, mirroring
// the mock package's config loader.
func LoadDefinition(path string) (*Definition, error) {
	raw, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("states: reading %q: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return Parse(raw)
	}

	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("states: parsing %q as YAML: %w", path, err)
	}
	asJSON, err := json.Marshal(convertYAMLValue(generic))
	if err != nil {
		return nil, err
	}
	return Parse(asJSON)
}

// convertYAMLValue normalizes yaml.v3's decoded values into plain
// JSON-compatible ones, mirroring the mock package's helper of the same
// name (kept package-local since states and mock load independent
// document shapes).
func convertYAMLValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			out[k] = convertYAMLValue(child)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			out[fmt.Sprintf("%v", k)] = convertYAMLValue(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, child := range val {
			out[i] = convertYAMLValue(child)
		}
		return out
	default:
		return val
	}
}
