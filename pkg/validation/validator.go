// Package validation checks finished document trees and reports every problem
// it finds as data.
//
// Checks run in a fixed order and never stop early: well-formedness, shape
// and schema conformance, integrity, size heuristics and content heuristics.
// Only a nil root is treated as a caller error.
package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
)

// ErrNilRoot is returned when Validate is called without a tree.
var ErrNilRoot = errors.New("validation: root node is required")

// Limits configures the size heuristics. Zero fields use the defaults.
type Limits struct {
	MaxNodes     int
	MaxBytes     int64
	MaxDepth     int
	MaxTextBytes int
}

// DefaultLimits are applied when no limits are configured.
var DefaultLimits = Limits{
	MaxNodes:     1_000_000,
	MaxBytes:     256 << 20,
	MaxDepth:     128,
	MaxTextBytes: 1 << 20,
}

func (l Limits) withDefaults() Limits {
	if l.MaxNodes <= 0 {
		l.MaxNodes = DefaultLimits.MaxNodes
	}
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultLimits.MaxBytes
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultLimits.MaxDepth
	}
	if l.MaxTextBytes <= 0 {
		l.MaxTextBytes = DefaultLimits.MaxTextBytes
	}
	return l
}

// Option customises a Validator.
type Option func(*Validator)

// WithSchema enables the schema rules of the shape and integrity checks.
func WithSchema(schema *Schema) Option {
	return func(v *Validator) {
		v.schema = schema
	}
}

// WithLimits overrides the size heuristics.
func WithLimits(limits Limits) Option {
	return func(v *Validator) {
		v.limits = limits.withDefaults()
	}
}

// WithoutContentChecks disables the content heuristics.
func WithoutContentChecks() Option {
	return func(v *Validator) {
		v.skipContent = true
	}
}

// Validator runs the check sequence. A Validator holds no per-run state and
// may be shared between goroutines.
type Validator struct {
	schema      *Schema
	limits      Limits
	skipContent bool
}

// New constructs a Validator.
func New(options ...Option) *Validator {
	v := &Validator{limits: DefaultLimits}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate is a convenience wrapper around New(WithSchema(schema)).Validate.
func Validate(root *document.Node, cfg config.Config, schema *Schema) (Report, error) {
	return New(WithSchema(schema)).Validate(root, cfg)
}

type check func(run *run)

// run carries the state of one validation pass.
type run struct {
	root   *document.Node
	cfg    config.Config
	schema *Schema
	limits Limits
	out    *collector

	nodes   []document.Visit
	visited bool
}

// Validate runs every check against root.
func (v *Validator) Validate(root *document.Node, cfg config.Config) (Report, error) {
	if root == nil {
		return Report{}, ErrNilRoot
	}
	out := &collector{}
	v.runChecks(root, cfg, out)
	return out.report(), nil
}

func (v *Validator) runChecks(root *document.Node, cfg config.Config, out *collector) {
	r := &run{root: root, cfg: cfg, schema: v.schema, limits: v.limits.withDefaults(), out: out}
	checks := []check{checkWellFormed, checkShape, checkIntegrity, checkSize}
	if !v.skipContent {
		checks = append(checks, checkContent)
	}
	for _, fn := range checks {
		fn(r)
	}
}

// ValidateBytes parses serialized output and validates the resulting tree. A
// parse failure is reported as a PARSE_ERROR finding.
func (v *Validator) ValidateBytes(data []byte, cfg config.Config) Report {
	out := &collector{}
	root, decl, err := document.Parse(bytes.NewReader(data))
	if err != nil {
		path := ""
		var parseErr *document.ParseError
		if errors.As(err, &parseErr) && parseErr.Line > 0 {
			path = fmt.Sprintf("line %d", parseErr.Line)
		}
		out.errorf(CodeParseError, path, "%v", err)
		return out.report()
	}

	declared := decl.Encoding
	if declared == "" {
		declared = document.DefaultEncoding
	}
	if !sameEncoding(declared, cfg.Encoding()) {
		out.errorf(CodeEncodingMismatch, "/"+root.Tag, "declared encoding %q does not match configured %q", declared, cfg.Encoding())
	}

	v.runChecks(root, cfg, out)
	return out.report()
}

// ValidateFile reads and validates a serialized document.
func (v *Validator) ValidateFile(ctx context.Context, path string, cfg config.Config) (Report, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("validation: read %s: %w", path, err)
	}
	return v.ValidateBytes(data, cfg), nil
}

func sameEncoding(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	canonA, errA := document.CanonicalEncoding(a)
	canonB, errB := document.CanonicalEncoding(b)
	return errA == nil && errB == nil && canonA == canonB
}
