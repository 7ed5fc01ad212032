package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/strata/dialect/sql/schema"
)

// errIncompatible is returned by diff when the schema cannot be applied to
// the snapshot without losing data.
var errIncompatible = errors.New("diff: schema is not compatible with the snapshot")

func (c *CLI) diffCommand() *cobra.Command {
	var dropTable, dropColumn, dropIndex, nullToNotNull bool
	cmd := &cobra.Command{
		Use:   "diff <snapshot> [schema.yaml]",
		Short: "Check the schema file against a snapshot",
		Long: `Compare the tables of a snapshot, written by inspect --snapshot, with the
tables of the schema file. The command fails when a change may lose data,
unless the change is explicitly allowed by a flag.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := readSnapshotFile(args[0])
			if err != nil {
				return err
			}
			desired, err := c.tables(args[1:])
			if err != nil {
				return err
			}
			var opts []schema.ValidateOption
			if dropTable {
				opts = append(opts, schema.AllowDropTable())
			}
			if dropColumn {
				opts = append(opts, schema.AllowDropColumn())
			}
			if dropIndex {
				opts = append(opts, schema.AllowDropIndex())
			}
			if nullToNotNull {
				opts = append(opts, schema.AllowNullToNotNull())
			}
			res := schema.ValidateDiff(current, desired, opts...)
			fmt.Fprintln(cmd.OutOrStdout(), res)
			if res.HasErrors() {
				return errIncompatible
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dropTable, "allow-drop-table", false, "allow dropping tables")
	cmd.Flags().BoolVar(&dropColumn, "allow-drop-column", false, "allow dropping columns")
	cmd.Flags().BoolVar(&dropIndex, "allow-drop-index", false, "allow dropping indexes")
	cmd.Flags().BoolVar(&nullToNotNull, "allow-null-to-not-null", false, "allow making nullable columns NOT NULL")
	return cmd
}

func readSnapshotFile(path string) ([]*schema.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return schema.ReadSnapshot(f)
}
