// Package sql implements dialect.Driver on top of database/sql.
//
// The database/sql driver of the dialect must be registered by the caller,
// usually with a blank import. The dialect name doubles as the driver name:
//
//	import _ "modernc.org/sqlite"
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db?_pragma=foreign_keys(1)")
//	if err != nil {
//		return err
//	}
//	defer drv.Close()
//
// # Statements
//
// Exec and Query take their arguments as []any and scan into a *sql.Result
// or *sql.Rows respectively:
//
//	var res sql.Result
//	err := drv.Exec(ctx, "DELETE FROM users WHERE id = ?", []any{1}, &res)
//
//	var rows sql.Rows
//	err := drv.Query(ctx, "SELECT name FROM users", []any{}, &rows)
//	defer rows.Close()
//
// # Identifiers
//
// Quote and QuoteList quote identifiers for a dialect: double quotes on
// PostgreSQL, backticks on MySQL and SQLite. ValidIdentifier reports whether
// a table or column name can be used unquoted in generated DDL.
//
// # Debugging
//
// NewDebugDriver wraps a Driver and logs every statement through log/slog
// at debug level:
//
//	m, err := schema.NewMigrate(sql.NewDebugDriver(drv, sql.DebugWithLogger(logger)))
package sql
