package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/dialect/sql/schema"
)

func (c *CLI) inspectCommand() *cobra.Command {
	var (
		dialectName, dsn, schemaName string
		snapshot, genDir, pkg        string
		quiet                        bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Read the tables of a database",
		Long: `Read the tables of a database and print them as YAML, in creation order.
The tables can also be saved as a snapshot for later diffs, or turned into
generated Go code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := c.dialect(dialectName)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			conn, _, err := c.open(ctx, name, dsn)
			if err != nil {
				return err
			}
			defer conn.Close()

			prog := newProgress(c.Logger)
			tables, err := schema.Inspect(ctx, conn.DB(), name, schemaName)
			if err != nil {
				return err
			}
			prog.done("database inspected", "tables", len(tables))
			if !quiet {
				if err := writeTables(cmd.OutOrStdout(), tables); err != nil {
					return err
				}
			}
			if snapshot != "" {
				if err := writeSnapshotFile(snapshot, tables); err != nil {
					return err
				}
				c.Logger.Info("snapshot written", "path", snapshot)
			}
			if genDir != "" {
				if err := gen.Generate(ctx, tables, gen.Config{Target: genDir, Package: pkg}); err != nil {
					return err
				}
				c.Logger.Info("code generated", "dir", genDir)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dialectName, "dialect", "", "SQL dialect (mysql, postgres, sqlite)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "data source name of the database")
	cmd.Flags().StringVar(&schemaName, "schema", "", "database schema to inspect; default is the connected one")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "write a snapshot of the tables to this file")
	cmd.Flags().StringVar(&genDir, "gen", "", "generate Go code for the tables into this directory")
	cmd.Flags().StringVar(&pkg, "package", "", "package name of the generated code")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the tables")
	return cmd
}

func writeSnapshotFile(path string, tables []*schema.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return schema.WriteSnapshot(f, tables)
}

type tablesDoc struct {
	Tables []tableDoc `yaml:"tables"`
}

type tableDoc struct {
	Name        string          `yaml:"name"`
	Comment     string          `yaml:"comment,omitempty"`
	Columns     []columnDoc     `yaml:"columns"`
	PrimaryKey  []string        `yaml:"primary_key,omitempty"`
	ForeignKeys []foreignKeyDoc `yaml:"foreign_keys,omitempty"`
	Indexes     []indexDoc      `yaml:"indexes,omitempty"`
}

type columnDoc struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Size      int64  `yaml:"size,omitempty"`
	Nullable  bool   `yaml:"nullable,omitempty"`
	Unique    bool   `yaml:"unique,omitempty"`
	Increment bool   `yaml:"increment,omitempty"`
	Default   any    `yaml:"default,omitempty"`
}

type foreignKeyDoc struct {
	Symbol     string   `yaml:"symbol"`
	Columns    []string `yaml:"columns"`
	RefTable   string   `yaml:"ref_table"`
	RefColumns []string `yaml:"ref_columns"`
	OnUpdate   string   `yaml:"on_update,omitempty"`
	OnDelete   string   `yaml:"on_delete,omitempty"`
}

type indexDoc struct {
	Name    string   `yaml:"name"`
	Unique  bool     `yaml:"unique,omitempty"`
	Columns []string `yaml:"columns"`
}

// writeTables prints the tables as a YAML document.
func writeTables(w io.Writer, tables []*schema.Table) error {
	doc := tablesDoc{Tables: make([]tableDoc, 0, len(tables))}
	for _, t := range tables {
		td := tableDoc{
			Name:       t.Name,
			Comment:    t.Comment,
			PrimaryKey: names(t.PrimaryKey),
		}
		for _, c := range t.Columns {
			td.Columns = append(td.Columns, columnDoc{
				Name:      c.Name,
				Type:      c.Type.String(),
				Size:      c.Size,
				Nullable:  c.Nullable,
				Unique:    c.Unique,
				Increment: c.Increment,
				Default:   c.Default,
			})
		}
		for _, fk := range t.ForeignKeys {
			fd := foreignKeyDoc{
				Symbol:     fk.Symbol,
				Columns:    names(fk.Columns),
				RefColumns: names(fk.RefColumns),
				OnUpdate:   string(fk.OnUpdate),
				OnDelete:   string(fk.OnDelete),
			}
			if fk.RefTable != nil {
				fd.RefTable = fk.RefTable.Name
			}
			td.ForeignKeys = append(td.ForeignKeys, fd)
		}
		for _, idx := range t.Indexes {
			td.Indexes = append(td.Indexes, indexDoc{Name: idx.Name, Unique: idx.Unique, Columns: names(idx.Columns)})
		}
		doc.Tables = append(doc.Tables, td)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func names(cols []*schema.Column) []string {
	if len(cols) == 0 {
		return nil
	}
	ns := make([]string, len(cols))
	for i, c := range cols {
		ns[i] = c.Name
	}
	return ns
}
