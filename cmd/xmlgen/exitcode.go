package main

import (
	"errors"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
	"github.com/goliatone/go-xmlgen/pkg/generator"
	"github.com/goliatone/go-xmlgen/pkg/payload"
)

// Process exit codes.
const (
	exitOK            = 0
	exitFailure       = 1
	exitConfig        = 2
	exitRegistry      = 3
	exitShape         = 4
	exitSerialization = 5
	exitInvalid       = 6
)

// invalidDocumentError is returned under --strict when the report has errors.
type invalidDocumentError struct {
	summary string
}

func (e *invalidDocumentError) Error() string { return "document is " + e.summary }

func (e *invalidDocumentError) Code() string { return "INVALID_DOCUMENT" }

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var (
		configErr    *config.Error
		unknownErr   *generator.UnknownTypeError
		duplicateErr *generator.DuplicateTypeError
		shapeErr     *generator.ShapeError
		collisionErr *generator.KeyCollisionError
		depthErr     *generator.DepthExceededError
		schemaErr    *payload.SchemaError
		serialErr    *document.SerializationError
		invalidErr   *invalidDocumentError
	)
	switch {
	case errors.As(err, &configErr):
		return exitConfig
	case errors.As(err, &unknownErr), errors.As(err, &duplicateErr):
		return exitRegistry
	case errors.As(err, &shapeErr), errors.As(err, &collisionErr),
		errors.As(err, &depthErr), errors.As(err, &schemaErr):
		return exitShape
	case errors.As(err, &serialErr):
		return exitSerialization
	case errors.As(err, &invalidErr):
		return exitInvalid
	default:
		return exitFailure
	}
}
