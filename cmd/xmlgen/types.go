package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "types",
		Aliases: []string{"list-types"},
		Short:   "List available generator types",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.stdout, "Available generator types:")
			for _, name := range a.registry.List() {
				fmt.Fprintf(a.stdout, "  - %s\n", name)
			}
			return nil
		},
	}
}
