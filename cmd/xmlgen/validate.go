package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-xmlgen/pkg/validation"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		cfgFlags configFlags
		reports  reportFlags
	)

	cmd := &cobra.Command{
		Use:   "validate <file.xml>",
		Short: "Validate a serialized XML document",
		Example: `  xmlgen validate output.xml
  xmlgen validate catalog.xml -c config.yaml --schema catalog.schema.yaml --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := reports.check(); err != nil {
				return err
			}
			cfg, err := cfgFlags.load(cmd, a.logger)
			if err != nil {
				return err
			}
			validator, err := reports.validator()
			if err != nil {
				return err
			}

			path := args[0]
			report, err := validator.ValidateFile(cmd.Context(), path, cfg)
			if err != nil {
				return err
			}
			a.logger.WithFields(logrus.Fields{
				"document": path,
				"errors":   len(report.Errors),
				"warnings": len(report.Warnings),
			}).Debug("document validated")

			if reports.path != "" {
				fmt.Fprintf(a.stdout, "%s: %s\n", path, report.Summary())
			}
			return reports.emit(a.stdout, true, report, validation.TextMeta{Document: path})
		},
	}

	cfgFlags.register(cmd)
	reports.register(cmd)
	return cmd
}
