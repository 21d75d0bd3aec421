// Command xmlgen generates XML documents from JSON or YAML payloads and
// validates existing documents.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-xmlgen/internal/logging"
	"github.com/goliatone/go-xmlgen/pkg/catalog"
	"github.com/goliatone/go-xmlgen/pkg/generator"
	"github.com/goliatone/go-xmlgen/pkg/pipeline"
	"github.com/goliatone/go-xmlgen/pkg/store"
	"github.com/goliatone/go-xmlgen/pkg/store/memory"
	"github.com/goliatone/go-xmlgen/pkg/store/postgres"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command tree and maps the outcome to a process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, &app{stdout: stdout, stderr: stderr, selectType: surveySelectType}, args)
}

func execute(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		label := pipeline.ErrorCode(err)
		if label == "" {
			label = "ERROR"
		}
		fmt.Fprintf(a.stderr, "xmlgen: [%s] %v\n", label, err)
		return exitCode(err)
	}
	return exitOK
}

// app carries state shared by the subcommands.
type app struct {
	stdout io.Writer
	stderr io.Writer

	logLevel  string
	logFormat string
	dsn       string

	logger     *logrus.Logger
	registry   *generator.Registry
	selectType typeSelector
	memory     *memory.Store
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "xmlgen",
		Short:         "Generate and validate XML documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", logging.FormatText, "Log format (text, json)")
	cmd.PersistentFlags().StringVar(&a.dsn, "dsn", "", "PostgreSQL DSN for generation history and the feature catalog (in-memory when empty)")

	cmd.AddCommand(
		newGenerateCmd(a),
		newValidateCmd(a),
		newTypesCmd(a),
		newHistoryCmd(a),
		newCatalogCmd(a),
	)
	return cmd
}

func (a *app) init() error {
	logger, err := logging.New(a.logLevel, a.logFormat, a.stderr)
	if err != nil {
		return err
	}
	a.logger = logger

	registry := generator.NewDefaultRegistry()
	if err := catalog.Register(registry); err != nil {
		return err
	}
	a.registry = registry
	return nil
}

// openStore connects to PostgreSQL when a DSN is configured. Without one the
// records live in memory for the lifetime of the process.
func (a *app) openStore(ctx context.Context) (store.CatalogStore, func(), error) {
	if a.dsn == "" {
		if a.memory == nil {
			a.memory = memory.New()
		}
		return a.memory, func() {}, nil
	}
	pg, err := postgres.Open(ctx, a.dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	closer := func() {
		if err := pg.Close(); err != nil {
			a.logger.WithError(err).Warn("closing store")
		}
	}
	return pg, closer, nil
}
