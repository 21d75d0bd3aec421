// Package pipeline runs generation requests end to end: payload pre-flight,
// factory lookup, tree generation, validation, serialization and persistence.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-xmlgen/internal/logging"
	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/document"
	"github.com/goliatone/go-xmlgen/pkg/generator"
	"github.com/goliatone/go-xmlgen/pkg/payload"
	"github.com/goliatone/go-xmlgen/pkg/store"
	"github.com/goliatone/go-xmlgen/pkg/validation"
)

// DefaultStreamThreshold is the estimated output size above which file output
// is streamed instead of materialized in memory first.
const DefaultStreamThreshold int64 = 64 << 20

// Option customises the pipeline.
type Option func(*Pipeline)

// WithRegistry injects the generator registry. Defaults to generator.Default().
func WithRegistry(registry *generator.Registry) Option {
	return func(p *Pipeline) {
		p.registry = registry
	}
}

// WithValidator injects the validator.
func WithValidator(validator *validation.Validator) Option {
	return func(p *Pipeline) {
		p.validator = validator
	}
}

// WithStore persists a record of every successful generation.
func WithStore(s store.Store) Option {
	return func(p *Pipeline) {
		p.store = s
	}
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics records prometheus metrics for every request.
func WithMetrics(metrics *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = metrics
	}
}

// WithStreamThreshold overrides DefaultStreamThreshold.
func WithStreamThreshold(bytes int64) Option {
	return func(p *Pipeline) {
		p.streamThreshold = bytes
	}
}

// Pipeline coordinates the generation stages. It holds no per-request state
// and is safe for concurrent use.
type Pipeline struct {
	registry        *generator.Registry
	validator       *validation.Validator
	store           store.Store
	logger          logrus.FieldLogger
	metrics         *Metrics
	streamThreshold int64
}

// New constructs a Pipeline. Missing dependencies use the built-in defaults.
func New(options ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	p.applyDefaults()
	return p
}

func (p *Pipeline) applyDefaults() {
	if p.registry == nil {
		p.registry = generator.Default()
	}
	if p.validator == nil {
		p.validator = validation.New()
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	if p.streamThreshold <= 0 {
		p.streamThreshold = DefaultStreamThreshold
	}
}

// Registry exposes the registry the pipeline resolves types with.
func (p *Pipeline) Registry() *generator.Registry { return p.registry }

// Request describes one generation.
type Request struct {
	// TypeName selects the generator.
	TypeName string
	// Payload is the fully materialized input.
	Payload any
	// Config shapes the document. It is validated before use.
	Config config.Config
	// PayloadSchema, when set, is checked before the generator runs.
	PayloadSchema *payload.Schema
	// OutputPath writes the document to a file through a temporary file.
	OutputPath string
	// Output receives the document when OutputPath is empty. When both are
	// empty the bytes are returned in Result.Output.
	Output io.Writer
}

// Result reports what a request produced. The document is written even when
// the report is invalid.
type Result struct {
	TypeName  string
	Root      *document.Node
	Report    validation.Report
	Output    []byte
	OutputRef string
	Bytes     int64
	Streamed  bool
	RecordID  string
	Duration  time.Duration
}

// Run executes a request. Configuration, registry, shape and serialization
// failures abort the request and are returned wrapped with the stage name.
// When only persisting the record fails, the Result is returned with the
// error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	log := p.logger.WithField("type", req.TypeName)

	res, err := p.run(ctx, req, log)
	if err != nil && res == nil {
		p.metrics.observe(req.TypeName, StatusFailed, start)
		log.WithError(err).Error("generation failed")
		return nil, err
	}

	res.Duration = time.Since(start)
	status := StatusValid
	if !res.Report.IsValid {
		status = StatusInvalid
	}
	p.metrics.observe(req.TypeName, status, start)
	p.metrics.observeReport(res.Report, res.Bytes)

	entry := log.WithFields(logrus.Fields{
		"root":      res.Root.Tag,
		"nodes":     res.Root.Count(),
		"bytes":     res.Bytes,
		"errors":    len(res.Report.Errors),
		"warnings":  len(res.Report.Warnings),
		"streamed":  res.Streamed,
		"record_id": res.RecordID,
	})
	if err != nil {
		entry.WithError(err).Warn("document generated but not recorded")
		return res, err
	}
	if !res.Report.IsValid {
		entry.Warn("document generated with validation errors")
	} else {
		entry.Info("document generated")
	}
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, req Request, log logrus.FieldLogger) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Config.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: config: %w", err)
	}

	if req.PayloadSchema != nil {
		if err := req.PayloadSchema.Check(req.Payload); err != nil {
			shapeErr := &generator.ShapeError{Generator: req.TypeName, Reason: err.Error(), Err: err}
			return nil, fmt.Errorf("pipeline: payload schema: %w", shapeErr)
		}
	}

	gen, err := p.registry.Create(req.TypeName, req.Config)
	if err != nil {
		return nil, fmt.Errorf("pipeline: create: %w", err)
	}
	root, err := gen.Generate(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("pipeline: generate: %w", err)
	}

	report, err := p.validator.Validate(root, req.Config)
	if err != nil {
		return nil, fmt.Errorf("pipeline: validate: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{TypeName: req.TypeName, Root: root, Report: report}
	if err := p.write(res, req, log); err != nil {
		return nil, fmt.Errorf("pipeline: serialize: %w", err)
	}

	if p.store != nil {
		id, err := p.store.SaveGenerationRecord(ctx, store.GenerationRecord{
			TypeName:  req.TypeName,
			Config:    req.Config.Snapshot(),
			Report:    report,
			OutputRef: res.OutputRef,
		})
		if err != nil {
			return res, fmt.Errorf("pipeline: save record: %w", err)
		}
		res.RecordID = id
	}
	return res, nil
}

// write serializes the tree to the request's sink. File output above the
// stream threshold is encoded straight into the temporary file; smaller
// documents are encoded in memory first so a serialization failure never
// touches the file system.
func (p *Pipeline) write(res *Result, req Request, log logrus.FieldLogger) error {
	opts := document.SerializeOptions{Encoding: req.Config.Encoding(), Pretty: req.Config.PrettyPrint()}

	switch {
	case req.OutputPath != "":
		estimate := document.EstimateSize(res.Root, opts.Pretty)
		res.OutputRef = req.OutputPath
		if estimate > p.streamThreshold {
			log.WithField("estimate", estimate).Debug("streaming output")
			n, err := writeFileAtomic(req.OutputPath, func(w io.Writer) error {
				return document.Serialize(w, res.Root, opts)
			})
			if err != nil {
				return err
			}
			res.Bytes, res.Streamed = n, true
			return nil
		}
		data, err := document.Marshal(res.Root, opts)
		if err != nil {
			return err
		}
		n, err := writeFileAtomic(req.OutputPath, func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(data))
			return err
		})
		if err != nil {
			return err
		}
		res.Bytes = n
		return nil

	case req.Output != nil:
		counter := &countingWriter{w: req.Output}
		if err := document.Serialize(counter, res.Root, opts); err != nil {
			return err
		}
		res.Bytes, res.Streamed = counter.n, true
		return nil

	default:
		data, err := document.Marshal(res.Root, opts)
		if err != nil {
			return err
		}
		res.Output, res.Bytes = data, int64(len(data))
		return nil
	}
}

// ErrorCode extracts the Code() of the first coded error in err's chain, or ""
// when none is present.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
