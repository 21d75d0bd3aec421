package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var knownFields = map[string]struct{}{
	"root_element":      {},
	"namespace":         {},
	"encoding":          {},
	"pretty_print":      {},
	"custom_attributes": {},
	"metadata":          {},
	"max_depth":         {},
}

// LoadFile reads a JSON or YAML configuration file.
func LoadFile(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Config{}, &Error{Reason: "file path is required"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Reason: fmt.Sprintf("read %s: %v", path, err), Err: err}
	}
	return LoadBytes(data, path)
}

// LoadBytes parses JSON first and falls back to YAML. source only labels
// error messages.
func LoadBytes(data []byte, source string) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, &Error{Reason: fmt.Sprintf("file %s is empty", source)}
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err == nil {
		return Load(raw)
	}
	raw = nil
	if err := yaml.Unmarshal(data, &raw); err == nil && raw != nil {
		return Load(raw)
	}
	return Config{}, &Error{Reason: fmt.Sprintf("parse %s: invalid JSON or YAML object", source)}
}

// Load builds a Config from a decoded mapping. Unknown top-level fields are
// ignored and reported through UnknownFields. The input is never mutated.
func Load(raw map[string]any) (Config, error) {
	if raw == nil {
		return Config{}, &Error{Reason: "source mapping is required"}
	}

	cfg := Config{
		encoding:    "",
		prettyPrint: true,
		maxDepth:    DefaultMaxDepth,
	}

	rootValue, ok := raw["root_element"]
	if !ok || rootValue == nil {
		return Config{}, &Error{Field: "root_element", Reason: "is required"}
	}
	root, ok := rootValue.(string)
	if !ok {
		return Config{}, &Error{Field: "root_element", Reason: fmt.Sprintf("must be a string, got %T", rootValue)}
	}
	cfg.rootElement = strings.TrimSpace(root)

	if value, ok := raw["namespace"]; ok && value != nil {
		ns, ok := value.(string)
		if !ok {
			return Config{}, &Error{Field: "namespace", Reason: fmt.Sprintf("must be a string, got %T", value)}
		}
		cfg.namespace = strings.TrimSpace(ns)
	}

	if value, ok := raw["encoding"]; ok && value != nil {
		enc, ok := value.(string)
		if !ok {
			return Config{}, &Error{Field: "encoding", Reason: fmt.Sprintf("must be a string, got %T", value)}
		}
		cfg.encoding = strings.TrimSpace(enc)
	}

	if value, ok := raw["pretty_print"]; ok && value != nil {
		pretty, ok := value.(bool)
		if !ok {
			return Config{}, &Error{Field: "pretty_print", Reason: fmt.Sprintf("must be a boolean, got %T", value)}
		}
		cfg.prettyPrint = pretty
	}

	if value, ok := raw["custom_attributes"]; ok && value != nil {
		attrs, err := loadAttributes(value)
		if err != nil {
			return Config{}, err
		}
		cfg.customAttributes = attrs
	}

	if value, ok := raw["metadata"]; ok && value != nil {
		meta, ok := value.(map[string]any)
		if !ok {
			return Config{}, &Error{Field: "metadata", Reason: fmt.Sprintf("must be a mapping, got %T", value)}
		}
		cfg.metadata = copyMetadata(meta)
	}

	if value, ok := raw["max_depth"]; ok && value != nil {
		depth, err := loadDepth(value)
		if err != nil {
			return Config{}, err
		}
		cfg.maxDepth = depth
	}

	for key := range raw {
		if _, known := knownFields[key]; !known {
			cfg.unknownFields = append(cfg.unknownFields, key)
		}
	}
	sort.Strings(cfg.unknownFields)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadAttributes(value any) (map[string]string, error) {
	rawAttrs, ok := value.(map[string]any)
	if !ok {
		return nil, &Error{Field: "custom_attributes", Reason: fmt.Sprintf("must be a mapping, got %T", value)}
	}
	attrs := make(map[string]string, len(rawAttrs))
	for key, attrValue := range rawAttrs {
		if attrValue == nil {
			attrs[key] = ""
			continue
		}
		text, ok := ScalarText(attrValue)
		if !ok {
			return nil, &Error{Field: "custom_attributes." + key, Reason: fmt.Sprintf("must be a scalar, got %T", attrValue)}
		}
		attrs[key] = text
	}
	return attrs, nil
}

func loadDepth(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 {
			return 0, &Error{Field: "max_depth", Reason: fmt.Sprintf("must be an integer, got %v", v)}
		}
		return int(v), nil
	}
	return 0, &Error{Field: "max_depth", Reason: fmt.Sprintf("must be an integer, got %T", value)}
}
