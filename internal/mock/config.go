package mock

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"aslharness/internal/fsutil"
)

// LoadConfig parses a mock configuration document (spec §6 Input 2) from
// either JSON or YAML, auto-detected by extension.
func LoadConfig(path string) (*Config, error) {
	raw, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mock: reading config %q: %w", path, err)
	}

	var cfg Config
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		var generic interface{}
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("mock: parsing config %q: %w", path, err)
		}
		normalized := convertYAMLValue(generic)
		intermediate, err := json.Marshal(normalized)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(intermediate, &cfg); err != nil {
			return nil, fmt.Errorf("mock: decoding config %q: %w", path, err)
		}
	default:
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("mock: parsing config %q: %w", path, err)
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateConfig enforces the hard errors spec §6 calls out explicitly:
// a conditional rule's "when" clause must carry an "input" key.
func validateConfig(cfg *Config) error {
	for _, m := range cfg.Mocks {
		if m.Type != VariantConditional {
			continue
		}
		for _, rule := range m.Rules {
			if rule.When != nil && len(rule.When.Input) == 0 {
				return fmt.Errorf("mock: state %q: when clause must use an explicit input key", m.State)
			}
		}
	}
	return nil
}
