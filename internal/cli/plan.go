package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/syssam/strata/dialect/sql/schema"
)

func (c *CLI) planCommand() *cobra.Command {
	var (
		dialectName string
		drop, watch bool
	)
	cmd := &cobra.Command{
		Use:   "plan [schema.yaml]",
		Short: "Print the DDL statements creating or dropping the tables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := c.dialect(dialectName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printPlan := func() error {
				tables, err := c.tables(args)
				if err != nil {
					return err
				}
				return writePlan(out, name, tables, drop)
			}
			if !watch {
				return printPlan()
			}
			path := c.config.Schema
			if len(args) > 0 {
				path = args[0]
			}
			w, err := newFileWatcher(path, c.Logger)
			if err != nil {
				return err
			}
			if err := printPlan(); err != nil {
				c.Logger.Error("plan failed", "err", err)
			}
			c.Logger.Info("watching for changes", "path", path)
			return w.run(cmd.Context(), printPlan)
		},
	}
	cmd.Flags().StringVar(&dialectName, "dialect", "", "SQL dialect (mysql, postgres, sqlite)")
	cmd.Flags().BoolVar(&drop, "drop", false, "plan dropping the tables instead of creating them")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-plan when the schema file changes")
	return cmd
}

func writePlan(w io.Writer, name string, tables []*schema.Table, drop bool) error {
	plan := schema.PlanCreate
	if drop {
		plan = schema.PlanDrop
	}
	p, err := plan(name, tables)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "-- plan %s (%s)\n%s", p.ID, p.Dialect, p)
	return err
}
