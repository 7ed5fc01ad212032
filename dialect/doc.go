// Package dialect provides database dialect abstraction for strata.
//
// This package defines the interfaces and types used for database-specific
// operations, allowing strata to plan and apply migrations on PostgreSQL,
// MySQL and SQLite.
//
// # Supported Dialects
//
// The following dialects are supported:
//
//   - Postgres: PostgreSQL database
//   - MySQL: MySQL/MariaDB database
//   - SQLite: SQLite database
//
// # Dialect Constants
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// The package defines the Driver interface for database operations:
//
//	type Driver interface {
//	    ExecQuerier
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Transaction Interface
//
// The Tx interface adds commit and rollback to ExecQuerier:
//
//	type Tx interface {
//	    ExecQuerier
//	    Commit() error
//	    Rollback() error
//	}
//
// # ExecQuerier Interface
//
// The ExecQuerier interface is implemented by both Driver and Tx:
//
//	type ExecQuerier interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	}
//
// # Usage
//
// Opening a database connection and applying a schema:
//
//	import (
//	    "github.com/syssam/strata/dialect"
//	    "github.com/syssam/strata/dialect/sql"
//	    "github.com/syssam/strata/dialect/sql/schema"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
//	m, err := schema.NewMigrate(drv)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = m.Create(ctx, tables...)
//
// # Sub-packages
//
//   - dialect/sql: database/sql backed driver, debug logging and identifier quoting
//   - dialect/sql/schema: metadata tree, table ordering, DDL planning, migration and inspection
package dialect
