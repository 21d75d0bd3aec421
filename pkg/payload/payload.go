// Package payload decodes generation input and gives generators a uniform view
// over it.
//
// Payload files decode into Object (an ordered mapping), []any and scalars so
// element order follows the input document. Plain Go maps are also accepted;
// their keys are visited in sorted order.
package payload

import (
	"encoding/json"
	"reflect"
	"sort"
)

// Field is one key/value pair of an ordered mapping.
type Field struct {
	Key   string
	Value any
}

// Object is a mapping that remembers key order.
type Object []Field

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, field := range o {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for idx, field := range o {
		keys[idx] = field.Key
	}
	return keys
}

// MarshalJSON keeps key order when an Object is re-encoded.
func (o Object) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for idx, field := range o {
		if idx > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, value...)
	}
	return append(buf, '}'), nil
}

// Fields returns the entries of a mapping value. ok is false when value is not
// a mapping.
func Fields(value any) ([]Field, bool) {
	switch v := value.(type) {
	case Object:
		return v, true
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := make([]Field, len(keys))
		for idx, key := range keys {
			out[idx] = Field{Key: key, Value: v[key]}
		}
		return out, true
	case map[string]string:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := make([]Field, len(keys))
		for idx, key := range keys {
			out[idx] = Field{Key: key, Value: v[key]}
		}
		return out, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	out := make([]Field, len(keys))
	for idx, key := range keys {
		out[idx] = Field{Key: key.String(), Value: rv.MapIndex(key).Interface()}
	}
	return out, true
}

// Lookup returns the value stored under key in any mapping value.
func Lookup(value any, key string) (any, bool) {
	fields, ok := Fields(value)
	if !ok {
		return nil, false
	}
	for _, field := range fields {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// Items returns the elements of a sequence value. Strings and byte slices are
// scalars, not sequences.
func Items(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case Object, string, []byte, nil:
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for idx := 0; idx < rv.Len(); idx++ {
		out[idx] = rv.Index(idx).Interface()
	}
	return out, true
}

// Plain converts a payload into the value shapes encoding/json produces
// (map[string]any, []any, float64, string, bool, nil). Schema validators
// operate on this form.
func Plain(value any) any {
	if fields, ok := Fields(value); ok {
		out := make(map[string]any, len(fields))
		for _, field := range fields {
			out[field.Key] = Plain(field.Value)
		}
		return out
	}
	if items, ok := Items(value); ok {
		out := make([]any, len(items))
		for idx, item := range items {
			out[idx] = Plain(item)
		}
		return out
	}
	switch v := value.(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	}
	return value
}
