package timeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Write writes a timeline to a YAML file.
func Write(t *Timeline, path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Read reads a timeline from a YAML file and validates it.
func Read(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var t Timeline
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &t, nil
}
