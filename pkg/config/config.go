// Package config describes how a document is shaped: root element, namespace,
// encoding, pretty printing, fixed root attributes and the metadata block.
//
// A Config is an immutable value. It is built once per generation request
// (Default, New, Load, LoadBytes or LoadFile) and shared by reference with the
// generator and validator, neither of which can mutate it: getters hand out
// copies and With derives a new, re-validated value.
package config

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-xmlgen/pkg/document"
)

const (
	// DefaultRootElement names the root when callers rely on Default.
	DefaultRootElement = "document"
	// DefaultMaxDepth bounds payload nesting during content generation.
	DefaultMaxDepth = 64
	// GeneratedBy is the metadata value stamped by Default.
	GeneratedBy = "go-xmlgen"
)

// Config is the shared, read-only generation contract.
type Config struct {
	rootElement      string
	namespace        string
	encoding         string
	prettyPrint      bool
	customAttributes map[string]string
	metadata         map[string]any
	maxDepth         int
	unknownFields    []string
}

// Option customises a Config during New or With.
type Option func(*Config)

// WithRootElement sets the root element name.
func WithRootElement(name string) Option {
	return func(c *Config) {
		c.rootElement = strings.TrimSpace(name)
	}
}

// WithNamespace binds the document to a namespace URI. Empty removes it.
func WithNamespace(uri string) Option {
	return func(c *Config) {
		c.namespace = strings.TrimSpace(uri)
	}
}

// WithEncoding sets the declared output encoding.
func WithEncoding(name string) Option {
	return func(c *Config) {
		c.encoding = strings.TrimSpace(name)
	}
}

// WithPrettyPrint toggles indentation.
func WithPrettyPrint(enabled bool) Option {
	return func(c *Config) {
		c.prettyPrint = enabled
	}
}

// WithCustomAttributes replaces the fixed root attributes.
func WithCustomAttributes(attrs map[string]string) Option {
	return func(c *Config) {
		c.customAttributes = copyStrings(attrs)
	}
}

// WithMetadata replaces the metadata block. Values must be scalars or nested
// mappings.
func WithMetadata(meta map[string]any) Option {
	return func(c *Config) {
		c.metadata = copyMetadata(meta)
	}
}

// WithMaxDepth sets the nesting ceiling applied by content generators.
func WithMaxDepth(depth int) Option {
	return func(c *Config) {
		c.maxDepth = depth
	}
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		rootElement: DefaultRootElement,
		encoding:    document.DefaultEncoding,
		prettyPrint: true,
		metadata:    map[string]any{"generated_by": GeneratedBy},
		maxDepth:    DefaultMaxDepth,
	}
}

// New applies options on top of Default and validates the result.
func New(options ...Option) (Config, error) {
	return Default().With(options...)
}

// With derives a new Config. The receiver is left untouched.
func (c Config) With(options ...Option) (Config, error) {
	next := c.clone()
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&next)
	}
	if err := next.Validate(); err != nil {
		return Config{}, err
	}
	return next, nil
}

// Validate checks every field. It performs the same checks as the loaders so
// callers can pre-flight a Config before generation.
func (c Config) Validate() error {
	if c.rootElement == "" {
		return &Error{Field: "root_element", Reason: "is required"}
	}
	if !document.IsValidName(c.rootElement) {
		return &Error{Field: "root_element", Reason: fmt.Sprintf("%q is not a valid element name", c.rootElement)}
	}
	if c.namespace != "" {
		if err := validateNamespace(c.namespace); err != nil {
			return err
		}
	}
	if _, err := document.ResolveEncoding(c.encodingOrDefault()); err != nil {
		return &Error{Field: "encoding", Reason: err.Error(), Err: err}
	}
	for key, value := range c.customAttributes {
		if !document.IsValidName(key) {
			return &Error{Field: "custom_attributes", Reason: fmt.Sprintf("%q is not a valid attribute name", key)}
		}
		if key == "xmlns" {
			return &Error{Field: "custom_attributes", Reason: "xmlns is reserved; use namespace"}
		}
		if !document.IsValidText(value) {
			return &Error{Field: "custom_attributes", Reason: fmt.Sprintf("value of %q is not representable as text", key)}
		}
	}
	if err := validateMetadata(c.metadata, "metadata"); err != nil {
		return err
	}
	if c.maxDepth < 0 {
		return &Error{Field: "max_depth", Reason: "must not be negative"}
	}
	return nil
}

func validateNamespace(ns string) error {
	parsed, err := url.Parse(ns)
	if err != nil {
		return &Error{Field: "namespace", Reason: fmt.Sprintf("%q is not a URI", ns), Err: err}
	}
	if parsed.Scheme == "" {
		return &Error{Field: "namespace", Reason: fmt.Sprintf("%q has no scheme", ns)}
	}
	if !document.IsValidText(ns) || strings.ContainsAny(ns, " \t\r\n") {
		return &Error{Field: "namespace", Reason: fmt.Sprintf("%q contains invalid characters", ns)}
	}
	return nil
}

func validateMetadata(meta map[string]any, field string) error {
	for key, value := range meta {
		path := field + "." + key
		switch typed := value.(type) {
		case map[string]any:
			if err := validateMetadata(typed, path); err != nil {
				return err
			}
		default:
			if _, ok := ScalarText(value); !ok {
				return &Error{Field: path, Reason: fmt.Sprintf("unsupported value of type %T (want scalar or mapping)", value)}
			}
		}
	}
	return nil
}

// RootElement returns the root element name.
func (c Config) RootElement() string { return c.rootElement }

// Namespace returns the namespace URI, or "".
func (c Config) Namespace() string { return c.namespace }

// Encoding returns the declared output encoding.
func (c Config) Encoding() string { return c.encodingOrDefault() }

// PrettyPrint reports whether output is indented.
func (c Config) PrettyPrint() bool { return c.prettyPrint }

// MaxDepth returns the nesting ceiling; zero means DefaultMaxDepth.
func (c Config) MaxDepth() int {
	if c.maxDepth == 0 {
		return DefaultMaxDepth
	}
	return c.maxDepth
}

// CustomAttributes returns a copy of the fixed root attributes.
func (c Config) CustomAttributes() map[string]string { return copyStrings(c.customAttributes) }

// CustomAttributeNames returns attribute names in the order they are applied
// to the root (sorted, so output is deterministic).
func (c Config) CustomAttributeNames() []string {
	names := make([]string, 0, len(c.customAttributes))
	for name := range c.customAttributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Metadata returns a deep copy of the metadata block.
func (c Config) Metadata() map[string]any { return copyMetadata(c.metadata) }

// HasMetadata reports whether a metadata block will be written.
func (c Config) HasMetadata() bool { return len(c.metadata) > 0 }

// UnknownFields lists top-level fields a loader ignored.
func (c Config) UnknownFields() []string { return append([]string(nil), c.unknownFields...) }

// Snapshot renders the Config in its file format, e.g. for generation records.
func (c Config) Snapshot() map[string]any {
	out := map[string]any{
		"root_element":      c.rootElement,
		"encoding":          c.encodingOrDefault(),
		"pretty_print":      c.prettyPrint,
		"custom_attributes": c.CustomAttributes(),
		"metadata":          c.Metadata(),
		"max_depth":         c.MaxDepth(),
	}
	if c.namespace != "" {
		out["namespace"] = c.namespace
	}
	return out
}

func (c Config) encodingOrDefault() string {
	if c.encoding == "" {
		return document.DefaultEncoding
	}
	return c.encoding
}

func (c Config) clone() Config {
	next := c
	next.customAttributes = copyStrings(c.customAttributes)
	next.metadata = copyMetadata(c.metadata)
	next.unknownFields = append([]string(nil), c.unknownFields...)
	return next
}

// ScalarText renders a scalar value the way it appears in XML text. The
// boolean result is false for mappings, sequences and unsupported types.
func ScalarText(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

func copyStrings(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyMetadata(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if nested, ok := v.(map[string]any); ok {
			out[k] = copyMetadata(nested)
			if out[k] == nil {
				out[k] = map[string]any{}
			}
			continue
		}
		out[k] = v
	}
	return out
}
