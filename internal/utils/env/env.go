// Package env parses environment variable specs used to build sandbox secrets.
package env

import (
	"fmt"
	"io/fs"
	"maps"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/slok/rsbx/internal/model"
)

var envKeyRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseSpecs parses `KEY=VALUE` and `KEY` specs, a bare key takes its value from the host
// environment. Later specs override earlier ones.
func ParseSpecs(specs []string) (map[string]string, error) {
	return parseSpecs(specs, os.LookupEnv)
}

func parseSpecs(specs []string, lookup func(string) (string, bool)) (map[string]string, error) {
	env := make(map[string]string, len(specs))

	for _, spec := range specs {
		if spec == "" {
			return nil, fmt.Errorf("environment variable spec cannot be empty: %w", model.ErrNotValid)
		}

		key, value, hasValue := strings.Cut(spec, "=")
		if !isValidKey(key) {
			return nil, fmt.Errorf("invalid environment variable key %q: %w", key, model.ErrNotValid)
		}

		if !hasValue {
			v, ok := lookup(key)
			if !ok {
				return nil, fmt.Errorf("environment variable %q is not set: %w", key, model.ErrNotValid)
			}
			value = v
		}

		env[key] = value
	}

	return env, nil
}

// LoadFile loads a YAML mapping of environment variables, scalar values are used as strings.
func LoadFile(fsys fs.FS, path string) (map[string]string, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w: %w", model.ErrNotValid, err)
	}

	env := make(map[string]string, len(raw))
	for k, n := range raw {
		if !isValidKey(k) {
			return nil, fmt.Errorf("invalid environment variable key %q: %w", k, model.ErrNotValid)
		}
		if n.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("environment variable %q must be a scalar: %w", k, model.ErrNotValid)
		}
		env[k] = n.Value
	}

	return env, nil
}

// MergeMaps returns a new map with base values overridden by override ones.
func MergeMaps(base map[string]string, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	maps.Copy(merged, base)
	maps.Copy(merged, override)

	return merged
}

func isValidKey(k string) bool {
	return envKeyRegexp.MatchString(k)
}
