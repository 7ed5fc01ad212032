package cli

import (
	"github.com/spf13/cobra"

	"github.com/syssam/strata/compiler/gen"
)

func (c *CLI) generateCommand() *cobra.Command {
	var (
		out, pkg string
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "generate [schema.yaml]",
		Short: "Generate Go code describing the tables",
		Long: `Generate a Go package declaring every table of the schema and a Tables
slice in creation order, ready to be passed to schema.NewMigrate.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := c.tables(args)
			if err != nil {
				return err
			}
			cfg := gen.Config{Target: c.config.Out, Package: c.config.Package, Workers: workers}
			if out != "" {
				cfg.Target = out
			}
			if pkg != "" {
				cfg.Package = pkg
			}
			prog := newProgress(c.Logger)
			g, err := gen.New(tables, cfg)
			if err != nil {
				return err
			}
			if err := g.Generate(cmd.Context()); err != nil {
				return err
			}
			m := g.Metrics()
			prog.done("code generated", "dir", cfg.Target, "files", m.FilesGenerated, "removed", m.FilesRemoved, "bytes", m.TotalBytes)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "target directory of the generated code")
	cmd.Flags().StringVar(&pkg, "package", "", "package name of the generated code")
	cmd.Flags().IntVar(&workers, "workers", 0, "files written in parallel; default is GOMAXPROCS")
	return cmd
}
