package document

import "fmt"

// SerializationError reports a tree that cannot be written as XML: an invalid
// tag or attribute name, or a value that cannot be represented as text in the
// requested encoding.
type SerializationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *SerializationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("document: serialize: %s", e.Reason)
	}
	return fmt.Sprintf("document: serialize %s: %s", e.Path, e.Reason)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Code identifies the error class for command surfaces.
func (e *SerializationError) Code() string { return "SERIALIZATION_ERROR" }

// ParseError reports serialized input that is not well-formed XML.
type ParseError struct {
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("document: parse line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("document: parse: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
