package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent generations recorded in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			records, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			history, err := records.History(ctx, limit)
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Fprintln(a.stdout, "No generations recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tTYPE\tSTATUS\tOUTPUT")
			for _, rec := range history {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					rec.ID, rec.CreatedAt.Format(time.RFC3339), rec.TypeName, rec.Report.Summary(), rec.OutputRef)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of records, 0 for all")
	return cmd
}
