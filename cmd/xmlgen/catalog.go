package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-xmlgen/pkg/catalog"
	"github.com/goliatone/go-xmlgen/pkg/payload"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the stored feature catalog",
	}
	cmd.AddCommand(newCatalogImportCmd(a), newCatalogSummaryCmd(a))
	return cmd
}

func newCatalogImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <features.json>",
		Short: "Upsert feature entries from a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := payload.LoadFile(ctx, args[0])
			if err != nil {
				return err
			}
			entries, err := catalog.Entries(data)
			if err != nil {
				return err
			}

			records, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := records.SaveFeatures(ctx, entries); err != nil {
				return err
			}
			a.logger.WithField("features", len(entries)).Info("catalog imported")
			fmt.Fprintf(a.stdout, "Imported %d features.\n", len(entries))
			return nil
		},
	}
}

func newCatalogSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count stored features per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			records, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			summary, err := records.CatalogSummary(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tTOTAL\tENABLED")
			for _, count := range summary {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", count.Category, count.Total, count.Enabled)
			}
			return tw.Flush()
		},
	}
}
