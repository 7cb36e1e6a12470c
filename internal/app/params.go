package app

import (
	"fmt"
	"os"

	"github.com/vk/jayvee/internal/expr"
	"gopkg.in/yaml.v3"
)

// loadParams merges the parameters file with the command line parameters.
// The file is a flat YAML mapping; scalar values are taken verbatim and
// parsed later against the type of the property they are used in.
func loadParams(cfg *Config) (*expr.Parameters, error) {
	raw := make(map[string]string)

	if cfg.ParamsFile != "" {
		data, err := os.ReadFile(cfg.ParamsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read parameters file: %w", err)
		}
		var doc map[string]yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse parameters file %s: %w", cfg.ParamsFile, err)
		}
		for name, node := range doc {
			if node.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("parameter '%s' in %s must be a scalar (line %d)", name, cfg.ParamsFile, node.Line)
			}
			raw[name] = node.Value
		}
	}

	for name, value := range cfg.Params {
		raw[name] = value
	}
	return expr.NewParameters(raw), nil
}
