package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-xmlgen/pkg/catalog"
	"github.com/goliatone/go-xmlgen/pkg/generator"
	"github.com/goliatone/go-xmlgen/pkg/payload"
	"github.com/goliatone/go-xmlgen/pkg/pipeline"
	"github.com/goliatone/go-xmlgen/pkg/store"
	"github.com/goliatone/go-xmlgen/pkg/validation"
)

const stdoutPath = "-"

func newGenerateCmd(a *app) *cobra.Command {
	var (
		cfgFlags          configFlags
		reports           reportFlags
		output            string
		payloadSchemaPath string
		interactive       bool
	)

	cmd := &cobra.Command{
		Use:   "generate [type] [input]",
		Short: "Generate an XML document from a JSON or YAML payload",
		Example: `  xmlgen generate data data.json -o data.xml
  xmlgen generate table rows.yaml -c config.json --report report.txt
  xmlgen generate report report.json --no-pretty -o -
  xmlgen generate catalog --dsn postgres://localhost/xmlgen -o features.xml
  xmlgen generate --interactive data.json`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := reports.check(); err != nil {
				return err
			}
			typeName, input, err := a.target(ctx, args, interactive)
			if err != nil {
				return err
			}
			if !a.registry.Has(typeName) {
				return &generator.UnknownTypeError{Name: typeName, Known: a.registry.List()}
			}
			cfg, err := cfgFlags.load(cmd, a.logger)
			if err != nil {
				return err
			}
			validator, err := reports.validator()
			if err != nil {
				return err
			}
			var payloadSchema *payload.Schema
			if payloadSchemaPath != "" {
				if payloadSchema, err = payload.LoadSchemaFile(ctx, payloadSchemaPath); err != nil {
					return err
				}
			}

			records, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			data, err := loadPayload(ctx, typeName, input, records)
			if err != nil {
				return err
			}

			p := pipeline.New(
				pipeline.WithRegistry(a.registry),
				pipeline.WithValidator(validator),
				pipeline.WithStore(records),
				pipeline.WithLogger(a.logger),
			)
			req := pipeline.Request{
				TypeName:      typeName,
				Payload:       data,
				Config:        cfg,
				PayloadSchema: payloadSchema,
			}
			if output == stdoutPath {
				req.Output = a.stdout
			} else {
				req.OutputPath = output
			}

			res, err := p.Run(ctx, req)
			if res == nil {
				return err
			}
			if output != stdoutPath {
				fmt.Fprintf(a.stdout, "XML generated: %s (%d bytes, %s)\n", output, res.Bytes, res.Report.Summary())
			}
			meta := validation.TextMeta{Document: output, TypeName: typeName}
			return reports.emit(a.stderr, false, res.Report, meta)
		},
	}

	cfgFlags.register(cmd)
	reports.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "output.xml", "Output XML file, - for stdout")
	cmd.Flags().StringVar(&payloadSchemaPath, "payload-schema", "", "OpenAPI 3 schema the payload must satisfy")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Prompt for the document type")
	return cmd
}

// target resolves the document type and payload path from the arguments. In
// interactive mode the type is prompted for and every argument is the input.
func (a *app) target(ctx context.Context, args []string, interactive bool) (string, string, error) {
	if interactive {
		if len(args) > 1 {
			return "", "", errors.New("interactive mode takes at most the input argument")
		}
		typeName, err := a.selectType(ctx, a.registry.List())
		if err != nil {
			return "", "", err
		}
		input := ""
		if len(args) == 1 {
			input = args[0]
		}
		return typeName, input, nil
	}
	switch len(args) {
	case 0:
		return "", "", errors.New("document type is required (see xmlgen types)")
	case 1:
		return args[0], "", nil
	default:
		return args[0], args[1], nil
	}
}

// loadPayload reads the input file. The catalog type falls back to the
// stored feature catalog when no input is given.
func loadPayload(ctx context.Context, typeName, input string, records store.Store) (any, error) {
	if input != "" {
		return payload.LoadFile(ctx, input)
	}
	if typeName != catalog.TypeCatalog {
		return nil, fmt.Errorf("input payload is required for type %q", typeName)
	}
	entries, err := records.LoadFeatureCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
