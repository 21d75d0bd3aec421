package generator

import (
	"fmt"
	"strings"
)

// UnknownTypeError is returned by Create for names nobody registered.
type UnknownTypeError struct {
	Name  string
	Known []string
}

func (e *UnknownTypeError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("generator: unknown type %q", e.Name)
	}
	return fmt.Sprintf("generator: unknown type %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

// Code identifies the error class for command surfaces.
func (e *UnknownTypeError) Code() string { return "UNKNOWN_TYPE" }

// DuplicateTypeError is returned when a name is registered twice. The existing
// entry is kept.
type DuplicateTypeError struct {
	Name string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("generator: type %q already registered", e.Name)
}

// Code identifies the error class for command surfaces.
func (e *DuplicateTypeError) Code() string { return "DUPLICATE_TYPE" }

// ShapeError reports a payload that does not have the structure a content
// step expects.
type ShapeError struct {
	Generator string
	Path      string
	Reason    string
	Err       error
}

func (e *ShapeError) Error() string {
	var b strings.Builder
	b.WriteString("generator: ")
	if e.Generator != "" {
		b.WriteString(e.Generator)
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	return b.String()
}

func (e *ShapeError) Unwrap() error { return e.Err }

// Code identifies the error class for command surfaces.
func (e *ShapeError) Code() string { return "SHAPE_ERROR" }

// KeyCollisionError reports two distinct keys that sanitize to the same tag
// under one parent.
type KeyCollisionError struct {
	Path   string
	Tag    string
	First  string
	Second string
}

func (e *KeyCollisionError) Error() string {
	return fmt.Sprintf("generator: keys %q and %q both map to element %q under %s", e.First, e.Second, e.Tag, e.Path)
}

// Code identifies the error class for command surfaces.
func (e *KeyCollisionError) Code() string { return "KEY_COLLISION" }

// DepthExceededError reports payload nesting beyond the configured ceiling.
type DepthExceededError struct {
	Path  string
	Limit int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("generator: nesting exceeds max depth %d at %s", e.Limit, e.Path)
}

// Code identifies the error class for command surfaces.
func (e *DepthExceededError) Code() string { return "DEPTH_EXCEEDED" }
