// Package cli holds the shared plumbing of the formflow commands:
// schema loading, signal handling and the interactive preview loop.
package cli

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/acopio/formflow/pkg/domain"
)

// LoadDocument reads a schema document from a YAML or JSON file. The
// file is first parsed as YAML (a superset of JSON) and then decoded
// leniently, so numeric ids and booleans written as strings still load.
func LoadDocument(path string) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var doc domain.Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return &doc, nil
}

// SaveDocument writes a schema document back to disk as YAML.
func SaveDocument(path string, doc *domain.Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
