package document

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and converts a YAML document from the given path.
func LoadFile(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Value{}, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML (or JSON, which yaml.v3 accepts) into a Value.
func Parse(data []byte) (Value, error) {
	var raw any

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return Value{}, fmt.Errorf("failed to parse document: %w", err)
	}

	v, err := FromAny(raw)
	if err != nil {
		return Value{}, err
	}

	return v, nil
}
