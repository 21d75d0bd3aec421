package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Schema describes the structure a document must follow beyond well-formedness.
type Schema struct {
	// Elements holds per-tag rules.
	Elements map[string]ElementRule `json:"elements" yaml:"elements"`
	// Unique declares keys that may only appear once per element type.
	Unique []UniqueRule `json:"unique,omitempty" yaml:"unique,omitempty"`
	// References declares keys whose values must match a unique key.
	References []ReferenceRule `json:"references,omitempty" yaml:"references,omitempty"`
}

// ElementRule constrains the direct children and attributes of one element.
// When Required or Optional is set, any other child tag is unexpected.
type ElementRule struct {
	Required   []string `json:"required,omitempty" yaml:"required,omitempty"`
	Optional   []string `json:"optional,omitempty" yaml:"optional,omitempty"`
	Attributes []string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// UniqueRule names a key. Key is "@attr" for an attribute or a child tag whose
// text is used.
type UniqueRule struct {
	Name    string `json:"name" yaml:"name"`
	Element string `json:"element" yaml:"element"`
	Key     string `json:"key" yaml:"key"`
}

// ReferenceRule requires every Key value on Element to exist in the Target
// unique rule.
type ReferenceRule struct {
	Element string `json:"element" yaml:"element"`
	Key     string `json:"key" yaml:"key"`
	Target  string `json:"target" yaml:"target"`
}

// LoadSchemaFile reads a schema description from JSON or YAML.
func LoadSchemaFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("validation: read schema %s: %w", path, err)
	}
	return LoadSchema(data, path)
}

// LoadSchema parses JSON first and falls back to YAML.
func LoadSchema(data []byte, source string) (*Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("validation: schema %s is empty", source)
	}
	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		schema = Schema{}
		if yamlErr := yaml.Unmarshal(data, &schema); yamlErr != nil {
			return nil, fmt.Errorf("validation: parse schema %s: %w", source, yamlErr)
		}
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("validation: schema %s: %w", source, err)
	}
	return &schema, nil
}

// Validate checks the schema's own consistency.
func (s *Schema) Validate() error {
	if s == nil {
		return nil
	}
	names := make(map[string]struct{}, len(s.Unique))
	for idx, rule := range s.Unique {
		if rule.Name == "" || rule.Element == "" || rule.Key == "" {
			return fmt.Errorf("unique rule %d requires name, element and key", idx)
		}
		if _, dup := names[rule.Name]; dup {
			return fmt.Errorf("unique rule %q declared twice", rule.Name)
		}
		names[rule.Name] = struct{}{}
	}
	for idx, rule := range s.References {
		if rule.Element == "" || rule.Key == "" {
			return fmt.Errorf("reference rule %d requires element and key", idx)
		}
		if _, ok := names[rule.Target]; !ok {
			return fmt.Errorf("reference rule %d targets unknown unique rule %q", idx, rule.Target)
		}
	}
	for tag, rule := range s.Elements {
		if tag == "" {
			return errors.New("element rule without tag")
		}
		seen := make(map[string]struct{})
		for _, child := range append(append([]string(nil), rule.Required...), rule.Optional...) {
			if _, dup := seen[child]; dup {
				return fmt.Errorf("element %q lists child %q twice", tag, child)
			}
			seen[child] = struct{}{}
		}
	}
	return nil
}
