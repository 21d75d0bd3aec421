package validation

import (
	"encoding/json"
	"fmt"
	"io"
)

// Severity classifies a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding codes.
const (
	CodeParseError        = "PARSE_ERROR"
	CodeEncodingMismatch  = "ENCODING_MISMATCH"
	CodeInvalidTag        = "INVALID_TAG"
	CodeInvalidAttribute  = "INVALID_ATTRIBUTE"
	CodeInvalidAttrValue  = "INVALID_ATTRIBUTE_VALUE"
	CodeDuplicateAttr     = "DUPLICATE_ATTRIBUTE"
	CodeInvalidText       = "INVALID_TEXT"
	CodeNilNode           = "NIL_NODE"
	CodeRootMismatch      = "ROOT_MISMATCH"
	CodeNamespaceMismatch = "NAMESPACE_MISMATCH"
	CodeMissingMetadata   = "MISSING_METADATA"
	CodeMetadataPosition  = "METADATA_POSITION"
	CodeMixedContent      = "MIXED_CONTENT"
	CodeRaggedRow         = "RAGGED_ROW"
	CodeMissingChild      = "MISSING_CHILD"
	CodeUnexpectedChild   = "UNEXPECTED_CHILD"
	CodeMissingAttribute  = "MISSING_ATTRIBUTE"
	CodeInvalidIndex      = "INVALID_INDEX"
	CodeIndexSequence     = "INDEX_SEQUENCE"
	CodeDuplicateID       = "DUPLICATE_ID"
	CodeDuplicateKey      = "DUPLICATE_KEY"
	CodeDanglingReference = "DANGLING_REFERENCE"
	CodeNodeCount         = "NODE_COUNT"
	CodeSizeEstimate      = "SIZE_ESTIMATE"
	CodeDepth             = "DEPTH"
	CodeLargeText         = "LARGE_TEXT"
	CodePlaintextPassword = "PLAINTEXT_PASSWORD"
	CodePossibleSecret    = "POSSIBLE_SECRET"
	CodeEmbeddedMarkup    = "EMBEDDED_MARKUP"
	CodeInvalidJSON       = "INVALID_EMBEDDED_JSON"
)

// Finding is one validation result. Path locates the element as
// /root/child[2]/leaf.
type Finding struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Path     string   `json:"path,omitempty"`
	Severity Severity `json:"severity"`
}

// Report collects every finding of one validation run. It is valid when no
// errors were found; warnings never affect validity.
type Report struct {
	IsValid  bool      `json:"is_valid"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// HasCode reports whether any finding carries code.
func (r Report) HasCode(code string) bool {
	for _, f := range r.Errors {
		if f.Code == code {
			return true
		}
	}
	for _, f := range r.Warnings {
		if f.Code == code {
			return true
		}
	}
	return false
}

// Summary returns a one-line description for logs and CLI output.
func (r Report) Summary() string {
	status := "valid"
	if !r.IsValid {
		status = "invalid"
	}
	return fmt.Sprintf("%s (%d errors, %d warnings)", status, len(r.Errors), len(r.Warnings))
}

// WriteJSON encodes the report with indentation.
func WriteJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// collector accumulates findings across checks.
type collector struct {
	errors   []Finding
	warnings []Finding
}

func (c *collector) errorf(code, path, format string, args ...any) {
	c.errors = append(c.errors, Finding{Code: code, Path: path, Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

func (c *collector) warnf(code, path, format string, args ...any) {
	c.warnings = append(c.warnings, Finding{Code: code, Path: path, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

func (c *collector) report() Report {
	errs := c.errors
	if errs == nil {
		errs = []Finding{}
	}
	warns := c.warnings
	if warns == nil {
		warns = []Finding{}
	}
	return Report{IsValid: len(c.errors) == 0, Errors: errs, Warnings: warns}
}
