// Package cli implements the strata command-line interface.
//
// The commands read entity definitions from a YAML schema file, order the
// resulting tables by their foreign keys and turn them into DDL plans,
// migrations, generated Go code or compatibility reports.
//
// # Commands
//
//   - order: print the creation order of the tables and the deferred foreign keys
//   - plan: print the DDL statements for a dialect, optionally re-planning on change
//   - migrate: apply the create plan to a database
//   - inspect: reverse engineer a database into tables, snapshots or Go code
//   - generate: generate Go code describing the tables
//   - diff: compare a snapshot with the schema file
//
// # Configuration
//
// Defaults for the dialect, DSN, schema file and output directory are read
// from strata.yaml (see --config). Flags override the file.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/syssam/strata/compiler/load"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql/schema"
)

var version = "dev"

// SetVersion sets the version displayed by --version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	config     *Config
	configPath string
	verbose    bool
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "strata",
		Short:         "Strata orders, plans and migrates relational schemas",
		Long:          `Strata reads entity definitions, orders their tables by foreign keys and turns them into DDL plans, migrations and generated Go code.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.verbose {
				c.Logger.SetLevel(log.DebugLevel)
			}
			cfg, err := loadConfig(c.configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			c.config = cfg
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", defaultConfigFile, "project configuration file")

	root.AddCommand(c.orderCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.migrateCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.diffCommand())
	return root
}

// slogger returns a slog.Logger writing through the CLI logger.
func (c *CLI) slogger() *slog.Logger {
	return slog.New(c.Logger)
}

// tables loads the tables of the schema file given as the first argument,
// or configured in strata.yaml.
func (c *CLI) tables(args []string) ([]*schema.Table, error) {
	path := c.config.Schema
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, fmt.Errorf("no schema file: pass one or set schema in %s", c.configPath)
	}
	spec, err := load.ParseFile(path)
	if err != nil {
		return nil, err
	}
	tables, err := spec.Tables()
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("schema loaded", "path", path, "tables", len(tables))
	return tables, nil
}

// dialect returns the dialect flag value, or the configured one.
func (c *CLI) dialect(flag string) (string, error) {
	name := c.config.Dialect
	if flag != "" {
		name = flag
	}
	if !dialect.Supported(name) {
		return "", fmt.Errorf("unsupported dialect %q", name)
	}
	return name, nil
}
