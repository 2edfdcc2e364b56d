package templates

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

// Preset is a curated starter brief users can generate from without writing
// a prompt themselves.
type Preset struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Brief       string `yaml:"brief" json:"brief"`
}

// LoadPresets parses the embedded preset catalog. The file ships inside the
// binary, so a parse failure is a build defect and callers treat it as fatal.
func LoadPresets() ([]Preset, error) {
	var doc struct {
		Presets []Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(presetsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded presets: %w", err)
	}
	if len(doc.Presets) == 0 {
		return nil, fmt.Errorf("embedded preset catalog is empty")
	}
	for _, p := range doc.Presets {
		if p.ID == "" || p.Name == "" || p.Brief == "" {
			return nil, fmt.Errorf("preset %q is missing required fields", p.ID)
		}
	}
	return doc.Presets, nil
}
