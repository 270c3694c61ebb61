// Package payload parses request payloads supplied on the command line or on
// stdin, auto-detecting the serialization format.
package payload

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Decode parses a payload string into a string-keyed mapping, auto-detecting
// the format. Supports:
// - TOML (key = value pairs, [section] headers)
// - JSON objects
// - YAML mappings (block or flow style)
//
// Blank input decodes to an empty mapping. Inputs that parse to anything other
// than a mapping (sequences, scalars) are rejected: payloads become request
// parameters, which are keyword-shaped by nature.
func Decode(input string) (map[string]any, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return map[string]any{}, nil
	}

	// Check for TOML before JSON - TOML [section] headers look like JSON arrays
	// but are distinct (e.g., "[server]" vs "[1, 2, 3]")
	if isLikelyTOML(trimmed) {
		return decodeTOML(trimmed)
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return decodeJSON(trimmed)
	}

	return decodeYAML(trimmed)
}

// decodeJSON parses a JSON object. Invalid JSON falls back to the YAML parser,
// which accepts flow-style mappings like {key: value} that JSON rejects.
func decodeJSON(input string) (map[string]any, error) {
	var data any
	if err := json.Unmarshal([]byte(input), &data); err != nil {
		return decodeYAML(input)
	}
	return asMapping(data)
}

// decodeYAML parses a single YAML document.
func decodeYAML(input string) (map[string]any, error) {
	var data any
	if err := yaml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return asMapping(data)
}

// decodeTOML parses TOML content.
func decodeTOML(input string) (map[string]any, error) {
	var data any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return asMapping(data)
}

// asMapping coerces a decoded document to map[string]any. YAML decodes
// string-keyed mappings as map[string]any already; other key types and
// non-mapping documents are rejected.
func asMapping(data any) (map[string]any, error) {
	switch v := data.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("payload key %v is not a string", k)
			}
			out[ks] = val
		}
		return out, nil
	default:
		return nil, fmt.Errorf("payload must be a mapping, got %T", data)
	}
}

// isLikelyTOML heuristic: returns true if the input looks like TOML.
// Detects TOML by looking for section headers [name] or key = value patterns
// that are distinct from YAML syntax.
func isLikelyTOML(input string) bool {
	lines := strings.Split(input, "\n")

	// Pattern for TOML section headers: [section] or [[array]]
	// Supports bare keys, quoted keys, and dotted keys:
	//   [server], [[items]], ["table name"], [database.credentials]
	// Excludes JSON arrays like [1, 2, 3] which have spaces/commas without quotes
	sectionPattern := regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)

	// Pattern for TOML key = value (not key: value which is YAML)
	keyValuePattern := regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)

	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++

		if sectionPattern.MatchString(line) {
			sectionCount++
		}
		if keyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}

	// Consider it TOML if we have sections, or if majority of lines are key=value
	if sectionCount > 0 {
		return true
	}
	if nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2 {
		return true
	}
	return false
}
