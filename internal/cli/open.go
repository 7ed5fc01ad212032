package cli

import (
	"context"
	"errors"
	"fmt"

	// Database drivers, registered under the dialect names.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
)

// open connects to the database of the DSN flag, or the configured one.
// The returned driver logs every statement at debug level when --verbose
// is set.
func (c *CLI) open(ctx context.Context, name, dsn string) (*sql.Driver, dialect.Driver, error) {
	if dsn == "" {
		dsn = c.config.DSN
	}
	if dsn == "" {
		return nil, nil, errors.New("missing --dsn or dsn in " + c.configPath)
	}
	drv, err := sql.Open(name, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s database: %w", name, err)
	}
	if err := drv.DB().PingContext(ctx); err != nil {
		drv.Close()
		return nil, nil, fmt.Errorf("connect to %s database: %w", name, err)
	}
	if c.verbose {
		return drv, sql.NewDebugDriver(drv, sql.DebugWithLogger(c.slogger())), nil
	}
	return drv, drv, nil
}
