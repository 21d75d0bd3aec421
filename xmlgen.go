// Package xmlgen turns JSON-like payloads into XML documents. Generators are
// resolved by type name from a registry, build an in-memory tree under a
// configured root, and every tree is validated before it is written.
//
// The root package re-exports the pieces most callers need; the sub packages
// hold the full API.
package xmlgen

import (
	"context"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
	"github.com/goliatone/go-xmlgen/pkg/generator"
	"github.com/goliatone/go-xmlgen/pkg/pipeline"
	"github.com/goliatone/go-xmlgen/pkg/validation"
)

// Config aliases config.Config so callers can build configurations from the
// root package.
type Config = config.Config

// Node is one element of a generated document.
type Node = document.Node

// Report is the outcome of validating a document.
type Report = validation.Report

// Request describes a pipeline run.
type Request = pipeline.Request

// Result is what a pipeline run produced.
type Result = pipeline.Result

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return config.Default()
}

// NewPipeline exposes the pipeline constructor from the top-level module.
func NewPipeline(options ...pipeline.Option) *pipeline.Pipeline {
	return pipeline.New(options...)
}

// Generate builds the tree for data with the named built-in type and
// validates it. The report is returned alongside the tree even when invalid.
func Generate(typeName string, data any, cfg Config) (*Node, Report, error) {
	gen, err := generator.Default().Create(typeName, cfg)
	if err != nil {
		return nil, Report{}, err
	}
	root, err := gen.Generate(data)
	if err != nil {
		return nil, Report{}, err
	}
	report, err := validation.New().Validate(root, cfg)
	if err != nil {
		return nil, Report{}, err
	}
	return root, report, nil
}

// GenerateBytes runs the full pipeline with default collaborators and
// returns the serialized document.
func GenerateBytes(ctx context.Context, typeName string, data any, cfg Config, options ...pipeline.Option) ([]byte, Report, error) {
	res, err := pipeline.New(options...).Run(ctx, pipeline.Request{
		TypeName: typeName,
		Payload:  data,
		Config:   cfg,
	})
	if err != nil {
		return nil, Report{}, err
	}
	return res.Output, res.Report, nil
}
