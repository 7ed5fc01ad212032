package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/strata/dialect/sql/schema"
)

func (c *CLI) orderCommand() *cobra.Command {
	var data, batches bool
	cmd := &cobra.Command{
		Use:   "order [schema.yaml]",
		Short: "Print the creation order of the tables",
		Long: `Print the tables in the order they can be created in, and the foreign keys
that must be added after all tables exist to break reference cycles.

With --data the order is computed for inserting rows instead: only nullable
foreign keys can be deferred, since their columns can be filled in later.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := c.tables(args)
			if err != nil {
				return err
			}
			opts := []schema.SortOption{schema.WithBreaker(schema.BreakAny), schema.OnlyCycles()}
			if data {
				opts = []schema.SortOption{schema.WithBreaker(schema.BreakNullable)}
			}
			out := cmd.OutOrStdout()
			if batches {
				groups, err := schema.BatchTables(tables, opts...)
				if err != nil {
					return err
				}
				for i, g := range groups {
					names := make([]string, len(g))
					for j, t := range g {
						names[j] = t.Name
					}
					fmt.Fprintf(out, "%d: %s\n", i+1, strings.Join(names, ", "))
				}
				return nil
			}
			order, err := schema.SortTables(tables, opts...)
			if err != nil {
				return err
			}
			for _, t := range order.Tables {
				fmt.Fprintln(out, t.Name)
			}
			if len(order.Deferred) > 0 {
				fmt.Fprintln(out, "\ndeferred foreign keys:")
				for _, fk := range order.Deferred {
					fmt.Fprintf(out, "  %s (%s -> %s)\n", fk.Symbol, fk.Table.Name, fk.RefTable.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&data, "data", false, "order for inserting rows instead of creating tables")
	cmd.Flags().BoolVar(&batches, "batches", false, "group tables that can be created concurrently")
	return cmd
}
