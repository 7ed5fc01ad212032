package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/strata/dialect/sql/schema"
)

func (c *CLI) migrateCommand() *cobra.Command {
	var (
		dialectName, dsn string
		drop, dryRun     bool
	)
	cmd := &cobra.Command{
		Use:   "migrate [schema.yaml]",
		Short: "Create the tables in a database",
		Long: `Create the tables of the schema in a database, inside a single transaction.
With --drop, the tables are dropped first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := c.dialect(dialectName)
			if err != nil {
				return err
			}
			tables, err := c.tables(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			conn, drv, err := c.open(ctx, name, dsn)
			if err != nil {
				return err
			}
			defer conn.Close()

			m, err := schema.NewMigrate(drv, schema.WithDropTables(drop), schema.WithLogger(c.slogger()))
			if err != nil {
				return err
			}
			if dryRun {
				p, err := m.Plan(tables...)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), p)
				return err
			}
			prog := newProgress(c.Logger)
			if err := m.Create(ctx, tables...); err != nil {
				return err
			}
			prog.done("migration complete", "dialect", name, "tables", len(tables))
			return nil
		},
	}
	cmd.Flags().StringVar(&dialectName, "dialect", "", "SQL dialect (mysql, postgres, sqlite)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "data source name of the database")
	cmd.Flags().BoolVar(&drop, "drop", false, "drop the tables before creating them")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the statements instead of running them")
	return cmd
}
