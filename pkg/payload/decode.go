package payload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a JSON or YAML payload file. The context is checked before the
// file is opened.
func LoadFile(ctx context.Context, path string) (any, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("payload: file path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("payload: read %s: %w", path, err)
	}
	return Decode(data, path)
}

// Decode parses JSON first and falls back to YAML. Mappings decode to Object
// so key order is preserved. source only labels error messages.
func Decode(data []byte, source string) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("payload: %s is empty", source)
	}

	value, jsonErr := DecodeJSON(data)
	if jsonErr == nil {
		return value, nil
	}
	value, yamlErr := DecodeYAML(data)
	if yamlErr == nil {
		return value, nil
	}
	return nil, fmt.Errorf("payload: parse %s: json: %v; yaml: %w", source, jsonErr, yamlErr)
}

// DecodeJSON decodes a single JSON value. Numbers are kept as json.Number.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	value, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return value, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Object{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj = setField(obj, key, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			items := []any{}
			for dec.More() {
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return items, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return tok, nil
	}
}

// maxAliasExpansion bounds the nodes produced by alias expansion beyond the
// size of the parsed document itself.
const maxAliasExpansion = 100_000

// DecodeYAML decodes a single YAML document. Scalars resolve the way yaml.v3
// resolves them for an `any` target; integers stay int. Aliases that refer to
// themselves are rejected, and so is aliasing that expands past
// maxAliasExpansion nodes.
func DecodeYAML(data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		return nil, errors.New("empty document")
	}
	conv := &yamlConverter{
		expanding: map[*yaml.Node]bool{},
		budget:    countYAMLNodes(&root) + maxAliasExpansion,
	}
	return conv.convert(&root)
}

// countYAMLNodes counts the nodes of the parsed tree without following aliases.
func countYAMLNodes(node *yaml.Node) int {
	total := 1
	for _, child := range node.Content {
		total += countYAMLNodes(child)
	}
	return total
}

type yamlConverter struct {
	expanding map[*yaml.Node]bool
	budget    int
}

func (c *yamlConverter) convert(node *yaml.Node) (any, error) {
	c.budget--
	if c.budget < 0 {
		return nil, fmt.Errorf("line %d: document contains excessive aliasing", node.Line)
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return c.convert(node.Content[0])
	case yaml.MappingNode:
		obj := Object{}
		for idx := 0; idx+1 < len(node.Content); idx += 2 {
			keyNode := node.Content[idx]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			value, err := c.convert(node.Content[idx+1])
			if err != nil {
				return nil, err
			}
			obj = setField(obj, keyNode.Value, value)
		}
		return obj, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := c.convert(child)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	case yaml.AliasNode:
		target := node.Alias
		if target == nil {
			return nil, fmt.Errorf("line %d: dangling alias", node.Line)
		}
		if c.expanding[target] {
			return nil, fmt.Errorf("line %d: alias *%s refers to its own anchor", node.Line, node.Value)
		}
		c.expanding[target] = true
		value, err := c.convert(target)
		delete(c.expanding, target)
		return value, err
	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return value, nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", node.Line)
}

// setField keeps the last value for duplicate keys at the first key's
// position, matching map semantics.
func setField(obj Object, key string, value any) Object {
	for idx := range obj {
		if obj[idx].Key == key {
			obj[idx].Value = value
			return obj
		}
	}
	return append(obj, Field{Key: key, Value: value})
}

// Int reads an integral number from any numeric payload value.
func Int(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil {
			return n, true
		}
	}
	return 0, false
}
