package config

import "fmt"

// Error reports a missing or malformed configuration field. It is not
// retryable until the caller fixes the input.
type Error struct {
	Field  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %s", e.Reason)
	}
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Code identifies the error class for command surfaces.
func (e *Error) Code() string { return "CONFIG_ERROR" }
