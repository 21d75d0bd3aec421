package payload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Schema pre-flights payloads against an OpenAPI 3 schema object before any
// document is built.
type Schema struct {
	schema *openapi3.Schema
	source string
}

// LoadSchemaFile reads a JSON or YAML schema object.
func LoadSchemaFile(ctx context.Context, path string) (*Schema, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("payload schema: read %s: %w", path, err)
	}
	return ParseSchema(ctx, data, path)
}

// ParseSchema decodes a schema object (not a full OpenAPI document) and checks
// it is itself well formed.
func ParseSchema(ctx context.Context, data []byte, source string) (*Schema, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	raw := data
	if !json.Valid(raw) {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("payload schema: parse %s: %w", source, err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("payload schema: parse %s: %w", source, err)
		}
		raw = converted
	}

	schema := openapi3.NewSchema()
	if err := schema.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("payload schema: decode %s: %w", source, err)
	}
	if err := schema.Validate(ctx); err != nil {
		return nil, fmt.Errorf("payload schema: %s: %w", source, err)
	}
	return &Schema{schema: schema, source: source}, nil
}

// Source names where the schema was loaded from.
func (s *Schema) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

// Check validates a payload. Every violation is reported, sorted, in the
// returned error.
func (s *Schema) Check(value any) error {
	if s == nil || s.schema == nil {
		return nil
	}
	err := s.schema.VisitJSON(Plain(value), openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	messages := flatten(err, nil)
	sort.Strings(messages)
	return &SchemaError{Violations: messages, Err: err}
}

func flatten(err error, out []string) []string {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, item := range multi {
			out = flatten(item, out)
		}
		return out
	}
	return append(out, err.Error())
}

// SchemaError lists payload schema violations.
type SchemaError struct {
	Violations []string
	Err        error
}

func (e *SchemaError) Error() string {
	return "payload does not match schema: " + strings.Join(e.Violations, "; ")
}

func (e *SchemaError) Unwrap() error { return e.Err }
