package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-xmlgen/pkg/config"
	"github.com/goliatone/go-xmlgen/pkg/validation"
)

const (
	reportFormatText = "text"
	reportFormatJSON = "json"
)

// configFlags layers command line overrides over the optional config file.
type configFlags struct {
	path        string
	noPretty    bool
	encoding    string
	rootElement string
	namespace   string
}

func (f *configFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.path, "config", "c", "", "Configuration file (JSON or YAML)")
	flags.BoolVar(&f.noPretty, "no-pretty", false, "Disable pretty printing")
	flags.StringVar(&f.encoding, "encoding", "UTF-8", "XML encoding")
	flags.StringVar(&f.rootElement, "root-element", "", "Custom root element name")
	flags.StringVar(&f.namespace, "namespace", "", "XML namespace URI")
}

func (f *configFlags) load(cmd *cobra.Command, log logrus.FieldLogger) (config.Config, error) {
	cfg := config.Default()
	if f.path != "" {
		loaded, err := config.LoadFile(f.path)
		if err != nil {
			return config.Config{}, err
		}
		for _, field := range loaded.UnknownFields() {
			log.WithFields(logrus.Fields{"field": field, "file": f.path}).Warn("ignoring unknown config field")
		}
		cfg = loaded
	}

	var opts []config.Option
	if f.noPretty {
		opts = append(opts, config.WithPrettyPrint(false))
	}
	if cmd.Flags().Changed("encoding") {
		opts = append(opts, config.WithEncoding(f.encoding))
	}
	if f.rootElement != "" {
		opts = append(opts, config.WithRootElement(f.rootElement))
	}
	if f.namespace != "" {
		opts = append(opts, config.WithNamespace(f.namespace))
	}
	return cfg.With(opts...)
}

// reportFlags controls where the validation report goes and whether an
// invalid document fails the command.
type reportFlags struct {
	path       string
	format     string
	schemaPath string
	strict     bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.path, "report", "", "Write the validation report to this file")
	flags.StringVar(&f.format, "report-format", reportFormatText, "Report format (text, json)")
	flags.StringVar(&f.schemaPath, "schema", "", "Document schema (JSON or YAML) for structure and integrity rules")
	flags.BoolVar(&f.strict, "strict", false, "Exit non-zero when the document has validation errors")
}

func (f *reportFlags) check() error {
	switch f.format {
	case reportFormatText, reportFormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown report format %q", f.format)
	}
}

func (f *reportFlags) validator() (*validation.Validator, error) {
	if f.schemaPath == "" {
		return validation.New(), nil
	}
	schema, err := validation.LoadSchemaFile(f.schemaPath)
	if err != nil {
		return nil, err
	}
	return validation.New(validation.WithSchema(schema)), nil
}

// emit writes the report to the --report file, or to fallback when always is
// set or the report is invalid.
func (f *reportFlags) emit(fallback io.Writer, always bool, report validation.Report, meta validation.TextMeta) error {
	switch {
	case f.path != "":
		file, err := os.Create(f.path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		if err := f.render(file, report, meta); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("close report: %w", err)
		}
	case always || !report.IsValid:
		if err := f.render(fallback, report, meta); err != nil {
			return err
		}
	}

	if f.strict && !report.IsValid {
		return &invalidDocumentError{summary: report.Summary()}
	}
	return nil
}

func (f *reportFlags) render(w io.Writer, report validation.Report, meta validation.TextMeta) error {
	if f.format == reportFormatJSON {
		return validation.WriteJSON(w, report)
	}
	return validation.RenderText(w, report, meta)
}
