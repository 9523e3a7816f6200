package taxonomy

import (
	"bytes"
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/taxonomy.yaml
var dataFS embed.FS

// Parse decodes and validates a taxonomy from YAML.
func Parse(data []byte) (*Taxonomy, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("taxonomy: payload is empty")
	}
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("taxonomy: decode: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}
	t.Flatten()
	t.index()
	return &t, nil
}

// LoadFile reads a taxonomy from an on-disk YAML file.
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: read %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %s: %w", path, err)
	}
	return t, nil
}

// Load returns the taxonomy from path when set, otherwise the embedded
// reference catalog.
func Load(path string) (*Taxonomy, error) {
	if path != "" {
		return LoadFile(path)
	}
	data, err := dataFS.ReadFile("data/taxonomy.yaml")
	if err != nil {
		return nil, fmt.Errorf("taxonomy: embedded catalog: %w", err)
	}
	return Parse(data)
}
